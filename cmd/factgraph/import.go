package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/factgraph/internal/application/handlers"
)

type importFlags struct {
	format string
	dryRun bool
	origin string
}

func newImportCmd() *cobra.Command {
	var flags importFlags

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import indicators from JSON or CSV",
		Long:  "Imports indicator rows from a structured file. Generates embeddings automatically.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "auto", "File format (json, csv, auto)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Validate without saving")
	cmd.Flags().StringVar(&flags.origin, "origin", "", "Origin recorded on imported facts (default: file path)")

	return cmd
}

func runImport(cmd *cobra.Command, filePath string, flags importFlags) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		opts := handlers.ImportOptions{
			Format:   flags.format,
			DryRun:   flags.dryRun,
			OriginID: flags.origin,
		}

		fmt.Printf("Importing %s...\n", filePath)

		result, err := d.ImportHandler.Handle(ctx, filePath, opts)
		if err != nil {
			return fmt.Errorf("importing file: %w", err)
		}

		if len(result.Errors) > 0 {
			fmt.Printf("\nValidation errors (%d):\n", len(result.Errors))
			for _, e := range result.Errors {
				fmt.Printf("  %s\n", e.Error())
			}
		}

		fmt.Println()
		if flags.dryRun {
			fmt.Printf("Dry run: %d facts would be imported", result.Imported)
		} else {
			fmt.Printf("Imported: %d facts", result.Imported)
		}

		if len(result.Errors) > 0 {
			fmt.Printf(", %d errors", len(result.Errors))
		}

		fmt.Println()

		return nil
	})
}
