package mocks

import "context"

// Embedder is a mock implementation of ports.Embedder.
type Embedder struct {
	// Vector is returned for every Embed call. Defaults to a small fixed
	// vector when nil.
	Vector []float32

	// Err, when set, is returned by Embed.
	Err error

	// Calls records the texts passed to Embed.
	Calls []string
}

// NewEmbedder creates a new mock Embedder.
func NewEmbedder() *Embedder {
	return &Embedder{Vector: []float32{0.1, 0.2, 0.3}}
}

// Embed generates an embedding vector for the given text.
func (m *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.Calls = append(m.Calls, text)
	return m.Vector, nil
}

// Dimensions returns the size of the embedding vectors.
func (m *Embedder) Dimensions() uint64 {
	return uint64(len(m.Vector))
}
