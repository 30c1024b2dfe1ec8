package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rosterdesk/rosterdesk/client"
	"github.com/spf13/cobra"
)

func newEntityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entity",
		Short: "Manage catalog entities",
	}
	cmd.AddCommand(entityCreateCmd())
	cmd.AddCommand(entityGetCmd())
	cmd.AddCommand(entityUpdateCmd())
	cmd.AddCommand(entityDeleteCmd())
	cmd.AddCommand(entityListCmd())
	return cmd
}

func entityCreateCmd() *cobra.Command {
	var id, attrsJSON, contextJSON string
	cmd := &cobra.Command{
		Use:   "create <type> <name>",
		Short: "Create an entity",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			req := &client.CreateEntityRequest{
				ID:   id,
				Type: args[0],
				Name: args[1],
			}
			if attrsJSON != "" {
				if err := json.Unmarshal([]byte(attrsJSON), &req.Attributes); err != nil {
					fatal("parse attributes", err)
				}
			}
			if contextJSON != "" {
				if err := json.Unmarshal([]byte(contextJSON), &req.ContextFields); err != nil {
					fatal("parse context fields", err)
				}
			}
			e, err := apiClient.Entities.Create(context.Background(), req)
			if err != nil {
				fatal("create entity", err)
			}
			output(e, e.ID)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Entity ID (generated when empty)")
	cmd.Flags().StringVar(&attrsJSON, "attrs", "", "Attributes as JSON")
	cmd.Flags().StringVar(&contextJSON, "context", "", `Context fields as JSON, e.g. '{"league_id":"nfl"}'`)
	return cmd
}

func entityGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <type> <id>",
		Short: "Get an entity by ID",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			e, err := apiClient.Entities.Get(context.Background(), args[0], args[1])
			if err != nil {
				fatal("get entity", err)
			}
			output(e, e.ID)
		},
	}
}

func entityUpdateCmd() *cobra.Command {
	var name, attrsJSON, contextJSON string
	cmd := &cobra.Command{
		Use:   "update <type> <id>",
		Short: "Update an entity",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			req := &client.UpdateEntityRequest{}
			if name != "" {
				req.Name = &name
			}
			if attrsJSON != "" {
				if err := json.Unmarshal([]byte(attrsJSON), &req.Attributes); err != nil {
					fatal("parse attributes", err)
				}
			}
			if contextJSON != "" {
				if err := json.Unmarshal([]byte(contextJSON), &req.ContextFields); err != nil {
					fatal("parse context fields", err)
				}
			}
			e, err := apiClient.Entities.Update(context.Background(), args[0], args[1], req)
			if err != nil {
				fatal("update entity", err)
			}
			output(e, e.ID)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New entity name")
	cmd.Flags().StringVar(&attrsJSON, "attrs", "", "Attributes as JSON")
	cmd.Flags().StringVar(&contextJSON, "context", "", "Context fields as JSON")
	return cmd
}

func entityDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <type> <id>",
		Short: "Delete an entity",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			if err := apiClient.Entities.Delete(context.Background(), args[0], args[1]); err != nil {
				fatal("delete entity", err)
			}
			output(map[string]bool{"deleted": true}, args[1])
		},
	}
}

func entityListCmd() *cobra.Command {
	var name, contextJSON string
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list <type>",
		Short: "List entities of a type",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			opts := &client.EntityListOptions{Name: name, Limit: limit, Offset: offset}
			if contextJSON != "" {
				if err := json.Unmarshal([]byte(contextJSON), &opts.Context); err != nil {
					fatal("parse context", err)
				}
			}
			entities, err := apiClient.Entities.List(context.Background(), args[0], opts)
			if err != nil {
				fatal("list entities", err)
			}
			if flagFmt == "table" {
				rows := make([][]string, 0, len(entities))
				for _, e := range entities {
					rows = append(rows, []string{e.ID, e.Name, fmt.Sprintf("%v", e.Virtual)})
				}
				formatTable([]string{"ID", "NAME", "VIRTUAL"}, rows)
				return
			}
			output(entities, fmt.Sprintf("%d", len(entities)))
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Name filter")
	cmd.Flags().StringVar(&contextJSON, "context", "", "Context filter as JSON")
	cmd.Flags().IntVar(&limit, "limit", 50, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Page offset")
	return cmd
}
