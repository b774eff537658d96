package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ersonp/factgraph/internal/domain/entities"
	"github.com/ersonp/factgraph/internal/domain/ports"
)

const (
	// DefaultChunkSize is the default size for report text chunks.
	DefaultChunkSize = 2000
	// DefaultChunkOverlap is the default overlap between chunks.
	DefaultChunkOverlap = 200
)

// ExtractionResult contains the outcome of extracting one report.
type ExtractionResult struct {
	Facts   []*entities.Fact
	Skipped []SkippedIndicator
}

// SkippedIndicator records an extracted indicator that failed validation.
type SkippedIndicator struct {
	Indicator ports.ExtractedIndicator
	Reason    string
}

// ExtractionService turns free-text threat reports into objects and facts
// via LLM extraction. Extracted indicators are validated against the type
// schema before creation; invalid ones are skipped, not fatal.
type ExtractionService struct {
	llm    ports.LLMClient
	facts  *FactService
	schema *SchemaService
	log    ports.Logger
}

// NewExtractionService creates a new extraction service.
func NewExtractionService(llm ports.LLMClient, facts *FactService, schema *SchemaService, log ports.Logger) *ExtractionService {
	return &ExtractionService{
		llm:    llm,
		facts:  facts,
		schema: schema,
		log:    log,
	}
}

// Extract processes report text and creates the extracted facts.
// originID is recorded on every created fact.
func (s *ExtractionService) Extract(ctx context.Context, text, originID string) (*ExtractionResult, error) {
	objectTypes, err := s.schema.ValidTypeNames(ctx, entities.TypeKindObject)
	if err != nil {
		return nil, fmt.Errorf("loading object types: %w", err)
	}
	factTypes, err := s.schema.ValidTypeNames(ctx, entities.TypeKindFact)
	if err != nil {
		return nil, fmt.Errorf("loading fact types: %w", err)
	}

	indicators, err := s.extractFromChunks(ctx, text, objectTypes, factTypes)
	if err != nil {
		return nil, err
	}

	result := &ExtractionResult{}
	for _, indicator := range indicators {
		fact, reason := s.createFromIndicator(ctx, indicator, originID)
		if reason != "" {
			result.Skipped = append(result.Skipped, SkippedIndicator{Indicator: indicator, Reason: reason})
			continue
		}
		result.Facts = append(result.Facts, fact)
	}

	s.log.Info("extracted report",
		"facts", len(result.Facts),
		"skipped", len(result.Skipped),
	)
	return result, nil
}

// extractFromChunks extracts indicators from report chunks. LLMs have token
// limits, so long reports must be chunked and each chunk processed
// separately.
func (s *ExtractionService) extractFromChunks(ctx context.Context, text string, objectTypes, factTypes []string) ([]ports.ExtractedIndicator, error) {
	chunks := ChunkText(text, DefaultChunkSize, DefaultChunkOverlap)

	var all []ports.ExtractedIndicator
	for i, chunk := range chunks {
		indicators, err := s.llm.ExtractIndicators(ctx, chunk, objectTypes, factTypes)
		if err != nil {
			return nil, fmt.Errorf("extracting indicators from chunk %d: %w", i, err)
		}
		all = append(all, indicators...)
	}

	return all, nil
}

// createFromIndicator validates one extracted indicator and creates its
// fact. Returns a non-empty reason when the indicator is skipped.
func (s *ExtractionService) createFromIndicator(ctx context.Context, indicator ports.ExtractedIndicator, originID string) (*entities.Fact, string) {
	if indicator.SourceValue == "" {
		return nil, "missing source value"
	}
	if !s.schema.IsValid(ctx, entities.TypeKindObject, indicator.SourceType) {
		return nil, fmt.Sprintf("unknown object type: %s", indicator.SourceType)
	}
	if !s.schema.IsValid(ctx, entities.TypeKindFact, indicator.FactType) {
		return nil, fmt.Sprintf("unknown fact type: %s", indicator.FactType)
	}
	if indicator.TargetValue != "" && !s.schema.IsValid(ctx, entities.TypeKindObject, indicator.TargetType) {
		return nil, fmt.Sprintf("unknown object type: %s", indicator.TargetType)
	}

	confidence := indicator.Confidence
	if confidence <= 0 || confidence > 1 {
		confidence = 0.5
	}

	fact, err := s.facts.Create(ctx, CreateFactParams{
		Type:             entities.FactType(indicator.FactType),
		SourceType:       entities.ObjectType(indicator.SourceType),
		SourceValue:      indicator.SourceValue,
		DestinationType:  entities.ObjectType(indicator.TargetType),
		DestinationValue: indicator.TargetValue,
		Bidirectional:    indicator.Bidirectional,
		Confidence:       confidence,
		OriginID:         originID,
	})
	if err != nil {
		return nil, err.Error()
	}
	return fact, ""
}

// ChunkText splits text into overlapping chunks of roughly chunkSize runes,
// breaking at line boundaries where possible.
func ChunkText(text string, chunkSize, overlap int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	lines := strings.Split(text, "\n")
	var current strings.Builder

	for _, line := range lines {
		if current.Len() > 0 && current.Len()+len(line)+1 > chunkSize {
			chunk := current.String()
			chunks = append(chunks, chunk)
			current.Reset()
			// Carry the tail of the previous chunk for context.
			if overlap > 0 && len(chunk) > overlap {
				current.WriteString(chunk[len(chunk)-overlap:])
				current.WriteString("\n")
			}
		}
		current.WriteString(line)
		current.WriteString("\n")
	}

	if strings.TrimSpace(current.String()) != "" {
		chunks = append(chunks, current.String())
	}

	return chunks
}
