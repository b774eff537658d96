package ports

import "context"

// ExtractedIndicator is one object/fact assertion extracted from report text
// before validation. Target fields are empty for single-object facts.
type ExtractedIndicator struct {
	SourceType    string  `json:"source_type"`
	SourceValue   string  `json:"source_value"`
	FactType      string  `json:"fact_type"`
	TargetType    string  `json:"target_type,omitempty"`
	TargetValue   string  `json:"target_value,omitempty"`
	Bidirectional bool    `json:"bidirectional,omitempty"`
	Confidence    float64 `json:"confidence"`
}

// LLMClient defines the interface for LLM-based indicator extraction.
type LLMClient interface {
	// ExtractIndicators extracts indicator assertions from report text.
	// validObjectTypes and validFactTypes constrain the extraction.
	ExtractIndicators(ctx context.Context, text string, validObjectTypes, validFactTypes []string) ([]ExtractedIndicator, error)
}
