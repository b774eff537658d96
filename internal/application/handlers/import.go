package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/ersonp/factgraph/internal/domain/services"
	"github.com/ersonp/factgraph/internal/infrastructure/parsers"
)

// ImportHandler handles importing indicator bundles from files.
type ImportHandler struct {
	service *services.ImportService
}

// NewImportHandler creates a new import handler.
func NewImportHandler(service *services.ImportService) *ImportHandler {
	return &ImportHandler{
		service: service,
	}
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	Format   string // "json", "csv", or "auto"
	DryRun   bool   // Validate without saving
	OriginID string // Origin recorded on imported facts without one
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Imported int
	Errors   []services.ImportError
}

// Handle imports indicators from a file.
func (h *ImportHandler) Handle(ctx context.Context, filePath string, opts ImportOptions) (*ImportResult, error) {
	// Get parser
	var parser parsers.Parser
	if opts.Format == "" || opts.Format == "auto" {
		parser = parsers.ForFile(filePath)
	} else {
		parser = parsers.ForFormat(opts.Format)
	}

	if parser == nil {
		return nil, fmt.Errorf("unsupported format for file: %s", filePath)
	}

	// Open file
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	// Parse indicators
	indicators, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}

	if len(indicators) == 0 {
		return &ImportResult{}, nil
	}

	originID := opts.OriginID
	if originID == "" {
		originID = filePath
	}

	serviceResult, err := h.service.Import(ctx, indicators, services.ImportOptions{
		DryRun:   opts.DryRun,
		OriginID: originID,
	})
	if err != nil {
		return nil, err
	}

	return &ImportResult{
		Imported: serviceResult.Imported,
		Errors:   serviceResult.Errors,
	}, nil
}
