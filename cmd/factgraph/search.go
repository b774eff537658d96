package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/factgraph/internal/domain/entities"
)

func newSearchCmd() *cobra.Command {
	var (
		limit            int
		includeRetracted bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search for facts",
		Long:  "Performs semantic search over indexed facts.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args[0], limit, includeRetracted)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultSearchLimit, "Maximum number of results")
	cmd.Flags().BoolVar(&includeRetracted, "include-retracted", false, "Include retracted facts in the results")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, limit int, includeRetracted bool) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		result, err := d.QueryHandler.HandleIncludeRetracted(ctx, query, limit, includeRetracted)
		if err != nil {
			return fmt.Errorf("searching facts: %w", err)
		}

		if len(result.Documents) == 0 {
			fmt.Println("No facts found.")
			return nil
		}

		fmt.Printf("Found %d facts:\n\n", len(result.Documents))

		for i, doc := range result.Documents {
			fmt.Printf("%d. [%s] %s\n", i+1, doc.Type, documentEndpoints(doc))
			if doc.Value != "" {
				fmt.Printf("   Value: %s\n", doc.Value)
			}
			fmt.Printf("   Confidence: %.2f\n", doc.Confidence)
			if doc.OriginID != "" {
				fmt.Printf("   Origin: %s\n", doc.OriginID)
			}
			if doc.Retracted {
				fmt.Println("   Retracted: yes")
			}
			fmt.Println()
		}

		return nil
	})
}

// documentEndpoints renders the bound objects of an indexed fact document.
func documentEndpoints(doc entities.FactDocument) string {
	if len(doc.Objects) == 0 {
		return "(no bound objects)"
	}

	parts := make([]string, 0, len(doc.Objects))
	for _, object := range doc.Objects {
		parts = append(parts, fmt.Sprintf("%s:%s", object.Type, object.Value))
	}
	return strings.Join(parts, " / ")
}
