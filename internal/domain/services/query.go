package services

import (
	"context"
	"fmt"

	"github.com/ersonp/factgraph/internal/domain/entities"
	"github.com/ersonp/factgraph/internal/domain/ports"
)

// DefaultSearchLimit is the default number of results to return.
const DefaultSearchLimit = 10

// QueryService handles fact querying and semantic search.
type QueryService struct {
	embedder ports.Embedder
	index    ports.SearchIndex
}

// NewQueryService creates a new query service.
func NewQueryService(embedder ports.Embedder, index ports.SearchIndex) *QueryService {
	return &QueryService{
		embedder: embedder,
		index:    index,
	}
}

// Search finds fact documents semantically similar to the query text.
func (s *QueryService) Search(ctx context.Context, query string, limit int) ([]entities.FactDocument, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("generating query embedding: %w", err)
	}

	docs, err := s.index.Search(ctx, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("searching facts: %w", err)
	}

	return docs, nil
}
