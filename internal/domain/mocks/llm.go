package mocks

import (
	"context"

	"github.com/ersonp/factgraph/internal/domain/ports"
)

// LLM is a mock implementation of ports.LLMClient.
type LLM struct {
	// Indicators is returned for every ExtractIndicators call.
	Indicators []ports.ExtractedIndicator

	// Err, when set, is returned by ExtractIndicators.
	Err error

	// Calls records the texts passed to ExtractIndicators.
	Calls []string
}

// NewLLM creates a new mock LLM client.
func NewLLM() *LLM {
	return &LLM{}
}

// ExtractIndicators extracts indicator assertions from report text.
func (m *LLM) ExtractIndicators(_ context.Context, text string, _, _ []string) ([]ports.ExtractedIndicator, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.Calls = append(m.Calls, text)
	return m.Indicators, nil
}
