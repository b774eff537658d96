package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/factgraph/internal/domain/entities"
	"github.com/ersonp/factgraph/internal/domain/services"
)

// QueryHandler handles semantic fact searches.
type QueryHandler struct {
	queryService *services.QueryService
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(queryService *services.QueryService) *QueryHandler {
	return &QueryHandler{
		queryService: queryService,
	}
}

// QueryResult contains the result of a query.
type QueryResult struct {
	Query     string
	Documents []entities.FactDocument
}

// Handle searches for fact documents matching the query.
func (h *QueryHandler) Handle(ctx context.Context, query string, limit int) (*QueryResult, error) {
	docs, err := h.queryService.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching facts: %w", err)
	}

	return &QueryResult{
		Query:     query,
		Documents: docs,
	}, nil
}

// HandleIncludeRetracted filters retracted documents out of the result
// unless includeRetracted is set.
func (h *QueryHandler) HandleIncludeRetracted(ctx context.Context, query string, limit int, includeRetracted bool) (*QueryResult, error) {
	result, err := h.Handle(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if includeRetracted {
		return result, nil
	}

	active := make([]entities.FactDocument, 0, len(result.Documents))
	for _, doc := range result.Documents {
		if !doc.Retracted {
			active = append(active, doc)
		}
	}
	result.Documents = active
	return result, nil
}
