package services

import (
	"context"
	"fmt"

	"github.com/ersonp/factgraph/internal/domain/entities"
	"github.com/ersonp/factgraph/internal/infrastructure/parsers"
)

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun   bool   // Validate without saving
	OriginID string // Origin recorded on imported facts without one
}

// ImportError represents an error for a specific indicator during import.
type ImportError struct {
	Line    int    // Line number (1-indexed, 0 if unknown)
	Field   string // Which field has the error
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ImportError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Imported int
	Errors   []ImportError
}

// ImportService handles importing indicator bundles from external files.
type ImportService struct {
	facts  *FactService
	schema *SchemaService
}

// NewImportService creates a new import service.
func NewImportService(facts *FactService, schema *SchemaService) *ImportService {
	return &ImportService{
		facts:  facts,
		schema: schema,
	}
}

// Import validates and imports raw indicators. Duplicate facts are detected
// by the fact service and refresh the existing fact rather than erroring.
func (s *ImportService) Import(ctx context.Context, indicators []parsers.RawIndicator, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{}

	for i := range indicators {
		raw := &indicators[i]
		lineNum := raw.LineNum
		if lineNum == 0 {
			lineNum = i + 1
		}

		if importErr := s.validate(ctx, raw, lineNum); importErr != nil {
			result.Errors = append(result.Errors, *importErr)
			continue
		}

		if opts.DryRun {
			result.Imported++
			continue
		}

		confidence := 0.5
		if raw.Confidence != nil {
			confidence = *raw.Confidence
		}
		originID := raw.OriginID
		if originID == "" {
			originID = opts.OriginID
		}

		_, err := s.facts.Create(ctx, CreateFactParams{
			Type:             entities.FactType(raw.FactType),
			Value:            raw.Value,
			SourceType:       entities.ObjectType(raw.SourceType),
			SourceValue:      raw.SourceValue,
			DestinationType:  entities.ObjectType(raw.TargetType),
			DestinationValue: raw.TargetValue,
			Bidirectional:    raw.Bidirectional,
			Confidence:       confidence,
			OriginID:         originID,
		})
		if err != nil {
			result.Errors = append(result.Errors, ImportError{
				Line:    lineNum,
				Message: err.Error(),
			})
			continue
		}
		result.Imported++
	}

	return result, nil
}

// validate checks an indicator against the type schema.
func (s *ImportService) validate(ctx context.Context, raw *parsers.RawIndicator, lineNum int) *ImportError {
	if raw.FactType == "" {
		return &ImportError{Line: lineNum, Field: "fact_type", Message: "fact_type is required"}
	}
	if !s.schema.IsValid(ctx, entities.TypeKindFact, raw.FactType) {
		return &ImportError{Line: lineNum, Field: "fact_type", Value: raw.FactType,
			Message: fmt.Sprintf("unknown fact type: %s", raw.FactType)}
	}
	if raw.SourceValue == "" {
		return &ImportError{Line: lineNum, Field: "source_value", Message: "source_value is required"}
	}
	if !s.schema.IsValid(ctx, entities.TypeKindObject, raw.SourceType) {
		return &ImportError{Line: lineNum, Field: "source_type", Value: raw.SourceType,
			Message: fmt.Sprintf("unknown object type: %s", raw.SourceType)}
	}
	if raw.TargetValue != "" && !s.schema.IsValid(ctx, entities.TypeKindObject, raw.TargetType) {
		return &ImportError{Line: lineNum, Field: "target_type", Value: raw.TargetType,
			Message: fmt.Sprintf("unknown object type: %s", raw.TargetType)}
	}
	if raw.Confidence != nil && (*raw.Confidence < 0 || *raw.Confidence > 1) {
		return &ImportError{Line: lineNum, Field: "confidence",
			Value:   fmt.Sprintf("%v", *raw.Confidence),
			Message: "confidence must be between 0 and 1"}
	}
	return nil
}
