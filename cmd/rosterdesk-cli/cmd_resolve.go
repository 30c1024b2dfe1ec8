package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rosterdesk/rosterdesk/client"
	"github.com/spf13/cobra"
)

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve entity references",
	}
	cmd.AddCommand(resolveOneCmd())
	cmd.AddCommand(resolveBatchCmd())
	return cmd
}

func resolveOneCmd() *cobra.Command {
	var (
		contextJSON string
		noFuzzy     bool
		minScore    float64
	)
	cmd := &cobra.Command{
		Use:   "one <type> <id-or-name>",
		Short: "Resolve a single reference",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			opts := &client.ResolutionOptions{
				AllowFuzzy:        !noFuzzy,
				MinimumMatchScore: minScore,
				ThrowOnError:      true,
			}
			if contextJSON != "" {
				if err := json.Unmarshal([]byte(contextJSON), &opts.Context); err != nil {
					fatal("parse context", err)
				}
			}
			res, err := apiClient.Resolve.Resolve(context.Background(), args[0], args[1], opts)
			if err != nil {
				fatal("resolve", err)
			}
			quiet := ""
			if res.Found() {
				quiet = res.Entity.ID
			}
			output(res, quiet)
		},
	}
	cmd.Flags().StringVar(&contextJSON, "context", "", `Disambiguation context as JSON, e.g. '{"league_id":"nfl"}'`)
	cmd.Flags().BoolVar(&noFuzzy, "no-fuzzy", false, "Disable fuzzy name matching")
	cmd.Flags().Float64Var(&minScore, "min-score", 0.6, "Minimum fuzzy match score")
	return cmd
}

func resolveBatchCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Resolve a named map of references from a JSON file or stdin",
		Long: `Resolve a batch of references. The input is a JSON object mapping
reference names to {entity_type, id_or_name, context}, read from --file
or stdin.`,
		Run: func(cmd *cobra.Command, args []string) {
			data, err := readInput(file)
			if err != nil {
				fatal("read input", err)
			}
			var refs map[string]client.BatchRef
			if err := json.Unmarshal(data, &refs); err != nil {
				fatal("parse references", err)
			}
			res, err := apiClient.Resolve.ResolveBatch(context.Background(), refs, false)
			if err != nil {
				fatal("resolve batch", err)
			}
			output(res, fmt.Sprintf("%d resolved, %d failed", len(res.Resolved), len(res.Errors)))
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path to the references JSON file (default: stdin)")
	return cmd
}

func readInput(file string) ([]byte, error) {
	if file == "" || file == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(file)
}
