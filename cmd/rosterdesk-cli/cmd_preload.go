package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newPreloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preload",
		Short: "Warm the server-side resolution cache",
	}
	cmd.AddCommand(preloadSetCmd())
	cmd.AddCommand(relationshipsCmd())
	return cmd
}

func preloadSetCmd() *cobra.Command {
	var pageSize int
	var noDedupe bool
	cmd := &cobra.Command{
		Use:   "set <name>",
		Short: "Preload an entity set (team_form, league_form, broadcast_form)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			out, err := apiClient.Preload.PreloadSet(context.Background(), args[0], pageSize, !noDedupe)
			if err != nil {
				fatal("preload set", err)
			}
			total := 0
			for _, entities := range out {
				total += len(entities)
			}
			output(out, fmt.Sprintf("%d", total))
		},
	}
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Catalog page size (server default when 0)")
	cmd.Flags().BoolVar(&noDedupe, "no-dedupe", false, "Disable in-flight load coalescing")
	return cmd
}

func relationshipsCmd() *cobra.Command {
	var targetType string
	cmd := &cobra.Command{
		Use:   "relationships <source-type> <id>...",
		Short: "Hydrate the entities referenced by source entities' context fields",
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			out, err := apiClient.Preload.LoadRelationships(context.Background(), args[0], args[1:], targetType, true)
			if err != nil {
				fatal("load relationships", err)
			}
			output(out, fmt.Sprintf("%d", len(out)))
		},
	}
	cmd.Flags().StringVar(&targetType, "target-type", "", "Only load related entities of this type")
	return cmd
}
