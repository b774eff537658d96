package ports

import (
	"context"

	"github.com/ersonp/factgraph/internal/domain/entities"
)

// SearchIndex defines the interface for the fact search index. Documents are
// derived from stored facts; the index additionally owns the retracted flag,
// which is not persisted in the relational store.
type SearchIndex interface {
	// EnsureCollection creates the collection if it doesn't exist.
	EnsureCollection(ctx context.Context, vectorSize uint64) error

	// DeleteCollection removes the collection and all its data.
	DeleteCollection(ctx context.Context) error

	// Index stores a fact document with its embedding.
	Index(ctx context.Context, doc *entities.FactDocument) error

	// FindByID retrieves a fact document by its ID.
	// Returns nil if the document is absent.
	FindByID(ctx context.Context, id string) (*entities.FactDocument, error)

	// FindByCriteria returns documents matching the existence criteria
	// exactly, including bound object (id, direction) pairs.
	FindByCriteria(ctx context.Context, criteria *entities.ExistenceCriteria) ([]entities.FactDocument, error)

	// Search performs a semantic search and returns similar fact documents.
	Search(ctx context.Context, embedding []float32, limit int) ([]entities.FactDocument, error)

	// MarkRetracted flags a fact document as retracted.
	MarkRetracted(ctx context.Context, id string) error

	// Delete removes a fact document by its ID.
	Delete(ctx context.Context, id string) error

	// Count returns the number of indexed fact documents.
	Count(ctx context.Context) (uint64, error)
}
