package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ersonp/factgraph/internal/domain/entities"
	"github.com/ersonp/factgraph/internal/domain/ports"
)

// CreateFactParams describes a fact to be created. Source and destination
// objects are identified by type and value and created on demand. For a
// single-object bidirectional fact only the source side is given.
type CreateFactParams struct {
	Type  entities.FactType
	Value string

	SourceType  entities.ObjectType
	SourceValue string

	DestinationType  entities.ObjectType
	DestinationValue string

	Bidirectional bool

	AccessMode      entities.AccessMode
	Confidence      float64
	Trust           float64
	OrganizationID  string
	OriginID        string
	AddedByID       string
	InReferenceToID string
}

// FactService manages the fact lifecycle: creation with duplicate detection,
// retrieval, retraction, comments and access grants. Every write goes to the
// relational store first and is then mirrored into the search index.
type FactService struct {
	store     ports.FactStore
	index     ports.SearchIndex
	embedder  ports.Embedder
	converter *FactConverter
	log       ports.Logger
}

// NewFactService creates a new FactService.
func NewFactService(
	store ports.FactStore,
	index ports.SearchIndex,
	embedder ports.Embedder,
	converter *FactConverter,
	log ports.Logger,
) *FactService {
	return &FactService{
		store:     store,
		index:     index,
		embedder:  embedder,
		converter: converter,
		log:       log,
	}
}

// Create creates a new fact, resolving or creating its bound objects first.
// If a logically-equal fact already exists in the search index the existing
// fact's last-seen timestamp is refreshed instead and the existing fact is
// returned.
func (s *FactService) Create(ctx context.Context, params CreateFactParams) (*entities.Fact, error) {
	if err := validateCreateParams(&params); err != nil {
		return nil, err
	}

	fact, err := s.buildFact(ctx, params)
	if err != nil {
		return nil, err
	}

	// Duplicate detection against the search index.
	existing, err := s.index.FindByCriteria(ctx, s.converter.ToCriteria(fact))
	if err != nil {
		return nil, fmt.Errorf("checking fact existence: %w", err)
	}
	if len(existing) > 0 {
		return s.refreshExisting(ctx, existing[0].ID)
	}

	now := time.Now()
	fact.ID = uuid.New().String()
	fact.CreatedAt = now
	fact.LastSeenAt = now

	stored := s.converter.ToStored(fact)
	if err := s.store.SaveFact(ctx, stored); err != nil {
		return nil, fmt.Errorf("saving fact: %w", err)
	}

	if err := s.indexFact(ctx, fact); err != nil {
		// Roll back the relational save so both stores stay in step.
		_ = s.store.DeleteFact(ctx, fact.ID)
		return nil, fmt.Errorf("indexing fact: %w", err)
	}

	if err := s.recordVersion(ctx, stored, entities.ChangeCreation, "fact created"); err != nil {
		return nil, err
	}
	if err := s.store.LogAction(ctx, "fact_created", fact.ID, map[string]any{"type": string(fact.Type)}); err != nil {
		return nil, fmt.Errorf("logging action: %w", err)
	}

	s.log.Info("created fact", "fact_id", fact.ID, "type", fact.Type)
	return fact, nil
}

// validateCreateParams checks the parts of the request the service owns.
// Type names are validated upstream by SchemaService.
func validateCreateParams(params *CreateFactParams) error {
	if params.Type == "" {
		return errors.New("fact type is required")
	}
	if params.SourceValue == "" && params.DestinationValue == "" {
		return errors.New("at least one bound object is required")
	}
	if params.SourceValue == "" && params.Bidirectional {
		return errors.New("a single-object bidirectional fact binds its object as source")
	}
	if params.AccessMode == "" {
		params.AccessMode = entities.AccessModePublic
	}
	if !params.AccessMode.IsValid() {
		return fmt.Errorf("invalid access mode: %s", params.AccessMode)
	}
	if params.Confidence < 0 || params.Confidence > 1 {
		return fmt.Errorf("confidence must be between 0 and 1, got %v", params.Confidence)
	}
	return nil
}

// buildFact resolves the bound objects and assembles the fact record.
func (s *FactService) buildFact(ctx context.Context, params CreateFactParams) (*entities.Fact, error) {
	fact := &entities.Fact{
		Type:            params.Type,
		Value:           params.Value,
		InReferenceToID: params.InReferenceToID,
		OrganizationID:  params.OrganizationID,
		OriginID:        params.OriginID,
		AddedByID:       params.AddedByID,
		AccessMode:      params.AccessMode,
		Confidence:      params.Confidence,
		Trust:           params.Trust,
		Bidirectional:   params.Bidirectional,
	}

	if params.SourceValue != "" {
		source, err := s.store.FindOrCreateObject(ctx, params.SourceType, params.SourceValue)
		if err != nil {
			return nil, fmt.Errorf("resolving source object: %w", err)
		}
		fact.SourceObject = source
	}

	if params.DestinationValue != "" {
		destination, err := s.store.FindOrCreateObject(ctx, params.DestinationType, params.DestinationValue)
		if err != nil {
			return nil, fmt.Errorf("resolving destination object: %w", err)
		}
		fact.DestinationObject = destination
	} else if params.Bidirectional {
		// Single-object bidirectional: the one object fills both roles.
		fact.DestinationObject = fact.SourceObject
	}

	return fact, nil
}

// refreshExisting bumps the last-seen timestamp of an already-known fact.
func (s *FactService) refreshExisting(ctx context.Context, factID string) (*entities.Fact, error) {
	if err := s.store.RefreshFactSeen(ctx, factID); err != nil {
		return nil, fmt.Errorf("refreshing fact: %w", err)
	}

	stored, err := s.store.FindFactByID(ctx, factID)
	if err != nil {
		return nil, fmt.Errorf("loading fact: %w", err)
	}
	if stored == nil {
		// Indexed but gone from the store; treat as a miss rather than
		// resurrecting it.
		return nil, fmt.Errorf("fact %s indexed but not stored", factID)
	}

	if err := s.recordVersion(ctx, stored, entities.ChangeRefresh, "duplicate observation"); err != nil {
		return nil, err
	}
	if err := s.store.LogAction(ctx, "fact_refreshed", factID, nil); err != nil {
		return nil, fmt.Errorf("logging action: %w", err)
	}

	s.log.Info("refreshed existing fact", "fact_id", factID)
	return s.converter.FromStored(ctx, stored)
}

// indexFact embeds the fact text and writes its document to the search index.
func (s *FactService) indexFact(ctx context.Context, fact *entities.Fact) error {
	doc := s.converter.ToDocument(fact)

	embedding, err := s.embedder.Embed(ctx, FactText(fact))
	if err != nil {
		return fmt.Errorf("generating embedding: %w", err)
	}
	doc.Embedding = embedding

	return s.index.Index(ctx, doc)
}

func (s *FactService) recordVersion(ctx context.Context, stored *entities.StoredFact, change entities.ChangeType, reason string) error {
	count, err := s.store.CountVersions(ctx, stored.ID)
	if err != nil {
		return fmt.Errorf("counting versions: %w", err)
	}
	version := &entities.FactVersion{
		ID:         uuid.New().String(),
		FactID:     stored.ID,
		Version:    count + 1,
		ChangeType: change,
		Data:       *stored,
		Reason:     reason,
		CreatedAt:  time.Now(),
	}
	if err := s.store.SaveVersion(ctx, version); err != nil {
		return fmt.Errorf("saving version: %w", err)
	}
	return nil
}

// Get loads a fact by ID and converts it to its API-facing record.
func (s *FactService) Get(ctx context.Context, factID string) (*entities.Fact, error) {
	stored, err := s.store.FindFactByID(ctx, factID)
	if err != nil {
		return nil, fmt.Errorf("loading fact: %w", err)
	}
	if stored == nil {
		return nil, fmt.Errorf("fact not found: %s", factID)
	}
	return s.converter.FromStored(ctx, stored)
}

// List returns facts converted to API records, newest first.
func (s *FactService) List(ctx context.Context, limit, offset int) ([]*entities.Fact, error) {
	storedFacts, err := s.store.ListFacts(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing facts: %w", err)
	}
	return s.convertBatch(ctx, storedFacts)
}

// ListByObject returns all facts bound to the given object.
func (s *FactService) ListByObject(ctx context.Context, objectID string) ([]*entities.Fact, error) {
	storedFacts, err := s.store.FindFactsByObject(ctx, objectID)
	if err != nil {
		return nil, fmt.Errorf("listing facts by object: %w", err)
	}
	return s.convertBatch(ctx, storedFacts)
}

// convertBatch converts stored facts one by one. Corrupt binding sets only
// warn inside the converter, so a bad fact never aborts the batch.
func (s *FactService) convertBatch(ctx context.Context, storedFacts []entities.StoredFact) ([]*entities.Fact, error) {
	facts := make([]*entities.Fact, 0, len(storedFacts))
	for i := range storedFacts {
		fact, err := s.converter.FromStored(ctx, &storedFacts[i])
		if err != nil {
			return nil, fmt.Errorf("converting fact %s: %w", storedFacts[i].ID, err)
		}
		facts = append(facts, fact)
	}
	return facts, nil
}

// Retract flags a fact as retracted. The flag lives only in the search
// index; the stored fact is untouched.
func (s *FactService) Retract(ctx context.Context, factID string, reason string) error {
	stored, err := s.store.FindFactByID(ctx, factID)
	if err != nil {
		return fmt.Errorf("loading fact: %w", err)
	}
	if stored == nil {
		return fmt.Errorf("fact not found: %s", factID)
	}

	if err := s.index.MarkRetracted(ctx, factID); err != nil {
		return fmt.Errorf("marking fact retracted: %w", err)
	}

	if err := s.recordVersion(ctx, stored, entities.ChangeRetraction, reason); err != nil {
		return err
	}
	if err := s.store.LogAction(ctx, "fact_retracted", factID, map[string]any{"reason": reason}); err != nil {
		return fmt.Errorf("logging action: %w", err)
	}

	s.log.Info("retracted fact", "fact_id", factID)
	return nil
}

// AddComment attaches a comment to a fact.
func (s *FactService) AddComment(ctx context.Context, factID, text, replyToID, originID string) (*entities.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("comment text is required")
	}
	if err := s.ensureFactExists(ctx, factID); err != nil {
		return nil, err
	}

	comment := &entities.Comment{
		ID:        uuid.New().String(),
		FactID:    factID,
		ReplyToID: replyToID,
		OriginID:  originID,
		Comment:   text,
		CreatedAt: time.Now(),
	}
	if err := s.store.SaveComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("saving comment: %w", err)
	}
	return comment, nil
}

// GrantAccess adds a subject to a fact's ACL and mirrors the new ACL into
// the fact's search-index document.
func (s *FactService) GrantAccess(ctx context.Context, factID, subjectID, originID string) (*entities.AclEntry, error) {
	if subjectID == "" {
		return nil, errors.New("subject id is required")
	}
	if err := s.ensureFactExists(ctx, factID); err != nil {
		return nil, err
	}

	entry := &entities.AclEntry{
		ID:        uuid.New().String(),
		FactID:    factID,
		SubjectID: subjectID,
		OriginID:  originID,
		CreatedAt: time.Now(),
	}
	if err := s.store.SaveAclEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("saving acl entry: %w", err)
	}

	doc, err := s.index.FindByID(ctx, factID)
	if err != nil {
		return nil, fmt.Errorf("fetching fact document: %w", err)
	}
	if doc != nil {
		doc.ACL = append(doc.ACL, subjectID)
		if err := s.index.Index(ctx, doc); err != nil {
			return nil, fmt.Errorf("reindexing fact: %w", err)
		}
	}

	return entry, nil
}

// History returns the recorded versions of a fact, newest first.
func (s *FactService) History(ctx context.Context, factID string) ([]entities.FactVersion, error) {
	return s.store.FindVersionsByFact(ctx, factID)
}

func (s *FactService) ensureFactExists(ctx context.Context, factID string) error {
	stored, err := s.store.FindFactByID(ctx, factID)
	if err != nil {
		return fmt.Errorf("loading fact: %w", err)
	}
	if stored == nil {
		return fmt.Errorf("fact not found: %s", factID)
	}
	return nil
}

// FactText renders a fact as a single line of searchable text used for
// embeddings.
func FactText(fact *entities.Fact) string {
	var b strings.Builder
	if fact.SourceObject != nil {
		b.WriteString(fact.SourceObject.Value)
		b.WriteString(" ")
	}
	b.WriteString(string(fact.Type))
	if fact.DestinationObject != nil && (fact.SourceObject == nil || fact.DestinationObject.ID != fact.SourceObject.ID) {
		b.WriteString(" ")
		b.WriteString(fact.DestinationObject.Value)
	}
	if fact.Value != "" {
		b.WriteString(": ")
		b.WriteString(fact.Value)
	}
	return b.String()
}
