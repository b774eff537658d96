package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/factgraph/internal/application/handlers"
)

func newIngestCmd() *cobra.Command {
	var (
		pattern   string
		recursive bool
	)

	cmd := &cobra.Command{
		Use:   "ingest <path>",
		Short: "Extract facts from a report",
		Long:  "Reads a report file, extracts indicators using the LLM, generates embeddings, and stores the resulting facts. A directory ingests every matching file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, args[0], pattern, recursive)
		},
	}

	cmd.Flags().StringVarP(&pattern, "pattern", "p", "*.txt", "File pattern for directory ingestion")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Recurse into subdirectories")

	return cmd
}

func runIngest(cmd *cobra.Command, path, pattern string, recursive bool) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		if handlers.IsDirectory(path) {
			return ingestDirectory(cmd, d, path, pattern, recursive)
		}

		fmt.Printf("Ingesting %s...\n", path)

		result, err := d.IngestHandler.Handle(ctx, path)
		if err != nil {
			return fmt.Errorf("ingesting file: %w", err)
		}

		displayIngestResult(result)
		return nil
	})
}

func ingestDirectory(cmd *cobra.Command, d *Deps, path, pattern string, recursive bool) error {
	ctx := cmd.Context()

	result, err := d.IngestHandler.HandleDirectory(ctx, path, pattern, recursive, func(file string) {
		fmt.Printf("Ingesting %s...\n", file)
	})
	if err != nil {
		return fmt.Errorf("ingesting directory: %w", err)
	}

	for _, fileResult := range result.FileResults {
		displayIngestResult(fileResult)
	}

	if len(result.Errors) > 0 {
		fmt.Printf("\nErrors (%d):\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("  %v\n", e)
		}
	}

	fmt.Printf("\nIngested %d files: %d facts, %d skipped indicators\n",
		result.TotalFiles, result.TotalFacts, result.TotalSkipped)

	return nil
}

func displayIngestResult(result *handlers.IngestResult) {
	fmt.Printf("Extracted %d facts from %s\n", result.FactsCount, result.FilePath)

	for i, fact := range result.Facts {
		fmt.Printf("  %d. [%s] %s\n", i+1, fact.Type, factEndpoints(fact))
	}

	for _, skipped := range result.Skipped {
		fmt.Printf("  skipped: %s (%s)\n", skipped.Indicator.SourceValue, skipped.Reason)
	}
}
