package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/factgraph/internal/domain/entities"
)

type exportFlags struct {
	format string
	output string
	limit  int
}

func newExportCmd() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export facts to file",
		Long:  "Exports facts to JSON, CSV, or markdown format.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "json", "Output format (json, csv, markdown)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().IntVarP(&flags.limit, "limit", "l", DefaultExportLimit, "Maximum number of facts to export")

	return cmd
}

func runExport(cmd *cobra.Command, flags exportFlags) error {
	if !contains(validFormats, flags.format) {
		return fmt.Errorf("invalid format %q, valid formats: %v", flags.format, validFormats)
	}

	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		result, err := d.FactHandler.HandleList(ctx, flags.limit, 0)
		if err != nil {
			return fmt.Errorf("listing facts: %w", err)
		}
		if len(result.Facts) == 0 {
			return fmt.Errorf("no facts found to export")
		}

		return exportFacts(result.Facts, flags.format, flags.output)
	})
}

func exportFacts(facts []*entities.Fact, format, output string) (err error) {
	var w io.Writer
	var f *os.File

	if output != "" {
		f, err = os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("creating file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing file: %w", cerr)
			}
		}()
		w = f
	} else {
		w = os.Stdout
	}

	if err := formatFacts(w, facts, format); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if output != "" {
		fmt.Printf("Exported %d facts to %s\n", len(facts), output)
	}

	return nil
}

func formatFacts(w io.Writer, facts []*entities.Fact, format string) error {
	switch format {
	case "json":
		return formatJSON(w, facts)
	case "csv":
		return formatCSV(w, facts)
	case "markdown":
		return formatMarkdown(w, facts)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

type exportFact struct {
	ID               string  `json:"id"`
	Type             string  `json:"type"`
	Value            string  `json:"value,omitempty"`
	SourceType       string  `json:"source_type,omitempty"`
	SourceValue      string  `json:"source_value,omitempty"`
	DestinationType  string  `json:"destination_type,omitempty"`
	DestinationValue string  `json:"destination_value,omitempty"`
	Bidirectional    bool    `json:"bidirectional,omitempty"`
	Confidence       float64 `json:"confidence"`
	OriginID         string  `json:"origin_id,omitempty"`
	Retracted        bool    `json:"retracted,omitempty"`
}

func toExportFact(f *entities.Fact) exportFact {
	e := exportFact{
		ID:            f.ID,
		Type:          string(f.Type),
		Value:         f.Value,
		Bidirectional: f.Bidirectional,
		Confidence:    f.Confidence,
		OriginID:      f.OriginID,
		Retracted:     f.Retracted,
	}
	if f.SourceObject != nil {
		e.SourceType = string(f.SourceObject.Type)
		e.SourceValue = f.SourceObject.Value
	}
	if f.DestinationObject != nil {
		e.DestinationType = string(f.DestinationObject.Type)
		e.DestinationValue = f.DestinationObject.Value
	}
	return e
}

func formatJSON(w io.Writer, facts []*entities.Fact) error {
	exportFacts := make([]exportFact, 0, len(facts))
	for _, f := range facts {
		exportFacts = append(exportFacts, toExportFact(f))
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exportFacts)
}

func formatCSV(w io.Writer, facts []*entities.Fact) error {
	writer := csv.NewWriter(w)

	header := []string{"id", "type", "value", "source_type", "source_value", "destination_type", "destination_value", "bidirectional", "confidence", "origin_id"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, f := range facts {
		e := toExportFact(f)
		row := []string{
			e.ID,
			e.Type,
			e.Value,
			e.SourceType,
			e.SourceValue,
			e.DestinationType,
			e.DestinationValue,
			fmt.Sprintf("%t", e.Bidirectional),
			fmt.Sprintf("%.2f", e.Confidence),
			e.OriginID,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatMarkdown(w io.Writer, facts []*entities.Fact) error {
	if _, err := fmt.Fprintf(w, "# Exported Facts\n\nTotal: %d facts\n\n", len(facts)); err != nil {
		return err
	}

	if _, err := fmt.Fprint(w, "| Type | Source | Destination | Confidence | Origin |\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "|------|--------|-------------|------------|--------|\n"); err != nil {
		return err
	}

	for _, f := range facts {
		e := toExportFact(f)
		origin := e.OriginID
		if len(origin) > 30 {
			origin = "..." + origin[len(origin)-27:]
		}
		if _, err := fmt.Fprintf(w, "| %s | %s | %s | %.2f | %s |\n",
			e.Type,
			escapeMarkdown(e.SourceValue),
			escapeMarkdown(e.DestinationValue),
			e.Confidence,
			escapeMarkdown(origin),
		); err != nil {
			return err
		}
	}

	return nil
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
