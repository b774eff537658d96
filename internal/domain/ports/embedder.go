package ports

import "context"

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates an embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the size of the embedding vectors.
	Dimensions() uint64
}
