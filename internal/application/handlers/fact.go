package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/factgraph/internal/domain/entities"
	"github.com/ersonp/factgraph/internal/domain/ports"
	"github.com/ersonp/factgraph/internal/domain/services"
)

// FactHandler handles fact operations at the application layer.
type FactHandler struct {
	facts  *services.FactService
	schema *services.SchemaService
	store  ports.FactStore
}

// NewFactHandler creates a new FactHandler.
func NewFactHandler(facts *services.FactService, schema *services.SchemaService, store ports.FactStore) *FactHandler {
	return &FactHandler{
		facts:  facts,
		schema: schema,
		store:  store,
	}
}

// FactListResult contains the result of listing facts.
type FactListResult struct {
	Facts []*entities.Fact `json:"facts"`
	Total int              `json:"total"`
}

// HandleCreate validates the type names against the schema and creates the
// fact.
func (h *FactHandler) HandleCreate(ctx context.Context, params services.CreateFactParams) (*entities.Fact, error) {
	if !h.schema.IsValid(ctx, entities.TypeKindFact, string(params.Type)) {
		return nil, fmt.Errorf("unknown fact type: %s", params.Type)
	}
	if params.SourceValue != "" && !h.schema.IsValid(ctx, entities.TypeKindObject, string(params.SourceType)) {
		return nil, fmt.Errorf("unknown object type: %s", params.SourceType)
	}
	if params.DestinationValue != "" && !h.schema.IsValid(ctx, entities.TypeKindObject, string(params.DestinationType)) {
		return nil, fmt.Errorf("unknown object type: %s", params.DestinationType)
	}

	return h.facts.Create(ctx, params)
}

// HandleGet returns a fact by ID with its objects, ACL and comments resolved.
func (h *FactHandler) HandleGet(ctx context.Context, factID string) (*entities.Fact, error) {
	return h.facts.Get(ctx, factID)
}

// HandleList returns facts with pagination, newest first.
func (h *FactHandler) HandleList(ctx context.Context, limit, offset int) (*FactListResult, error) {
	facts, err := h.facts.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	total, err := h.store.CountFacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting facts: %w", err)
	}

	return &FactListResult{
		Facts: facts,
		Total: total,
	}, nil
}

// HandleRetract flags a fact as retracted.
func (h *FactHandler) HandleRetract(ctx context.Context, factID, reason string) error {
	return h.facts.Retract(ctx, factID, reason)
}

// HandleComment attaches a comment to a fact.
func (h *FactHandler) HandleComment(ctx context.Context, factID, text, replyToID, originID string) (*entities.Comment, error) {
	return h.facts.AddComment(ctx, factID, text, replyToID, originID)
}

// HandleGrant adds a subject to a fact's ACL.
func (h *FactHandler) HandleGrant(ctx context.Context, factID, subjectID, originID string) (*entities.AclEntry, error) {
	return h.facts.GrantAccess(ctx, factID, subjectID, originID)
}

// HandleHistory returns the recorded versions of a fact, newest first.
func (h *FactHandler) HandleHistory(ctx context.Context, factID string) ([]entities.FactVersion, error) {
	return h.facts.History(ctx, factID)
}

// HandleAuditLog returns the audit trail of a fact.
func (h *FactHandler) HandleAuditLog(ctx context.Context, factID string) ([]entities.AuditEntry, error) {
	return h.store.FindAuditLog(ctx, factID)
}
