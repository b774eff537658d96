package mocks

import (
	"context"

	"github.com/ersonp/factgraph/internal/domain/entities"
)

// SearchIndex is an in-memory mock implementation of ports.SearchIndex.
type SearchIndex struct {
	Docs map[string]*entities.FactDocument

	// Err, when set, is returned by every method.
	Err error
}

// NewSearchIndex creates a new mock SearchIndex.
func NewSearchIndex() *SearchIndex {
	return &SearchIndex{Docs: make(map[string]*entities.FactDocument)}
}

// EnsureCollection creates the collection if it doesn't exist.
func (m *SearchIndex) EnsureCollection(_ context.Context, _ uint64) error {
	return m.Err
}

// DeleteCollection removes the collection and all its data.
func (m *SearchIndex) DeleteCollection(_ context.Context) error {
	if m.Err != nil {
		return m.Err
	}
	m.Docs = make(map[string]*entities.FactDocument)
	return nil
}

// Index stores a fact document.
func (m *SearchIndex) Index(_ context.Context, doc *entities.FactDocument) error {
	if m.Err != nil {
		return m.Err
	}
	m.Docs[doc.ID] = doc
	return nil
}

// FindByID retrieves a fact document by its ID.
func (m *SearchIndex) FindByID(_ context.Context, id string) (*entities.FactDocument, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Docs[id], nil
}

// FindByCriteria returns documents matching the existence criteria.
func (m *SearchIndex) FindByCriteria(_ context.Context, criteria *entities.ExistenceCriteria) ([]entities.FactDocument, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.FactDocument
	for _, doc := range m.Docs {
		if matchesCriteria(doc, criteria) {
			result = append(result, *doc)
		}
	}
	return result, nil
}

func matchesCriteria(doc *entities.FactDocument, criteria *entities.ExistenceCriteria) bool {
	if doc.Type != criteria.Type ||
		doc.Value != criteria.Value ||
		doc.OriginID != criteria.OriginID ||
		doc.OrganizationID != criteria.OrganizationID ||
		doc.AccessMode != criteria.AccessMode ||
		doc.Confidence != criteria.Confidence ||
		doc.InReferenceToID != criteria.InReferenceToID {
		return false
	}
	if len(doc.Objects) != len(criteria.Objects) {
		return false
	}
	for _, want := range criteria.Objects {
		found := false
		for _, bound := range doc.Objects {
			if bound.ID == want.ObjectID && bound.Direction == want.Direction {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Search performs a semantic search and returns fact documents.
func (m *SearchIndex) Search(_ context.Context, _ []float32, limit int) ([]entities.FactDocument, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.FactDocument
	for _, doc := range m.Docs {
		if limit > 0 && len(result) >= limit {
			break
		}
		result = append(result, *doc)
	}
	return result, nil
}

// MarkRetracted flags a fact document as retracted.
func (m *SearchIndex) MarkRetracted(_ context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	if doc, ok := m.Docs[id]; ok {
		doc.Retracted = true
	}
	return nil
}

// Delete removes a fact document by its ID.
func (m *SearchIndex) Delete(_ context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	delete(m.Docs, id)
	return nil
}

// Count returns the number of indexed fact documents.
func (m *SearchIndex) Count(_ context.Context) (uint64, error) {
	return uint64(len(m.Docs)), m.Err
}
