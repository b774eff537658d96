package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/factgraph/internal/domain/entities"
	"github.com/ersonp/factgraph/internal/domain/ports"
	"github.com/ersonp/factgraph/internal/domain/services"
)

// ObjectHandler handles object operations at the application layer.
type ObjectHandler struct {
	store  ports.FactStore
	facts  *services.FactService
	schema *services.SchemaService
}

// NewObjectHandler creates a new ObjectHandler.
func NewObjectHandler(store ports.FactStore, facts *services.FactService, schema *services.SchemaService) *ObjectHandler {
	return &ObjectHandler{
		store:  store,
		facts:  facts,
		schema: schema,
	}
}

// HandleAdd registers an object ahead of any fact binding it. Returns the
// existing object when one with the same type and value is already known.
func (h *ObjectHandler) HandleAdd(ctx context.Context, objectType entities.ObjectType, value string) (*entities.Object, error) {
	if !h.schema.IsValid(ctx, entities.TypeKindObject, string(objectType)) {
		return nil, fmt.Errorf("unknown object type: %s", objectType)
	}
	if value == "" {
		return nil, fmt.Errorf("object value is required")
	}

	object, err := h.store.FindOrCreateObject(ctx, objectType, value)
	if err != nil {
		return nil, fmt.Errorf("creating object: %w", err)
	}
	return object, nil
}

// ObjectListResult contains the result of listing objects.
type ObjectListResult struct {
	Objects []*entities.Object `json:"objects"`
	Total   int                `json:"total"`
}

// HandleList returns objects with pagination.
func (h *ObjectHandler) HandleList(ctx context.Context, limit, offset int) (*ObjectListResult, error) {
	objects, err := h.store.ListObjects(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing objects: %w", err)
	}

	total, err := h.store.CountObjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting objects: %w", err)
	}

	return &ObjectListResult{
		Objects: objects,
		Total:   total,
	}, nil
}

// HandleGet returns an object by type and value.
func (h *ObjectHandler) HandleGet(ctx context.Context, objectType entities.ObjectType, value string) (*entities.Object, error) {
	object, err := h.store.FindObjectByValue(ctx, objectType, value)
	if err != nil {
		return nil, fmt.Errorf("finding object: %w", err)
	}
	if object == nil {
		return nil, fmt.Errorf("object not found: %s %s", objectType, value)
	}
	return object, nil
}

// HandleFacts returns all facts bound to the object identified by type and
// value.
func (h *ObjectHandler) HandleFacts(ctx context.Context, objectType entities.ObjectType, value string) ([]*entities.Fact, error) {
	object, err := h.HandleGet(ctx, objectType, value)
	if err != nil {
		return nil, err
	}
	return h.facts.ListByObject(ctx, object.ID)
}
