package handlers

import (
	"context"

	"github.com/ersonp/factgraph/internal/domain/entities"
	"github.com/ersonp/factgraph/internal/domain/services"
)

// SchemaHandler handles type definition operations.
type SchemaHandler struct {
	service *services.SchemaService
}

// NewSchemaHandler creates a new SchemaHandler.
func NewSchemaHandler(service *services.SchemaService) *SchemaHandler {
	return &SchemaHandler{
		service: service,
	}
}

// HandleList returns all type definitions of a kind.
func (h *SchemaHandler) HandleList(ctx context.Context, kind entities.TypeKind) ([]entities.TypeDef, error) {
	return h.service.List(ctx, kind)
}

// HandleAdd creates a new custom type definition.
func (h *SchemaHandler) HandleAdd(ctx context.Context, kind entities.TypeKind, name, description string) error {
	return h.service.Add(ctx, kind, name, description)
}

// HandleRemove deletes a custom type definition.
func (h *SchemaHandler) HandleRemove(ctx context.Context, kind entities.TypeKind, name string) error {
	return h.service.Remove(ctx, kind, name)
}

// HandleDescribe returns details about a specific type definition.
func (h *SchemaHandler) HandleDescribe(ctx context.Context, kind entities.TypeKind, name string) (*entities.TypeDef, error) {
	return h.service.Get(ctx, kind, name)
}
