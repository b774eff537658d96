// Package services contains domain business logic.
package services

import (
	"context"
	"fmt"

	"github.com/ersonp/factgraph/internal/domain/entities"
	"github.com/ersonp/factgraph/internal/domain/ports"
)

// FactConverter reconciles the three representations of a fact: the stored
// form (scalar row plus ordered bindings), the API-facing record (resolved
// source/destination objects) and the search-index document. It is the only
// code that interprets raw Direction values.
//
// The stored direction names the fact's role relative to the bound object,
// so decoding is asymmetric: a binding stored as FactIsDestination denotes
// the fact's source object, and vice versa. Encoding applies the exact
// inverse so that a decode/encode round trip is lossless.
type FactConverter struct {
	store ports.FactStore
	index ports.SearchIndex
	log   ports.Logger
}

// NewFactConverter creates a new FactConverter.
func NewFactConverter(store ports.FactStore, index ports.SearchIndex, log ports.Logger) *FactConverter {
	return &FactConverter{
		store: store,
		index: index,
		log:   log,
	}
}

// FromStored converts a stored fact into its API-facing record: scalar
// fields are copied, bindings are resolved into source/destination objects,
// and the record is enriched with the retracted flag from the search index
// plus ACL entries and comments from the store.
//
// Malformed binding cardinality (more than two bindings, or two bindings
// with the same one-sided direction) is reported through the logger and
// degrades to a record without objects; it never fails the conversion, so
// one corrupt fact cannot abort a batch. Object lookup errors do propagate.
func (c *FactConverter) FromStored(ctx context.Context, stored *entities.StoredFact) (*entities.Fact, error) {
	if stored == nil {
		return nil, nil
	}

	fact := &entities.Fact{
		ID:              stored.ID,
		Type:            stored.Type,
		Value:           stored.Value,
		InReferenceToID: stored.InReferenceToID,
		OrganizationID:  stored.OrganizationID,
		OriginID:        stored.OriginID,
		AddedByID:       stored.AddedByID,
		AccessMode:      stored.AccessMode,
		Confidence:      stored.Confidence,
		Trust:           stored.Trust,
		CreatedAt:       stored.CreatedAt,
		LastSeenAt:      stored.LastSeenAt,
	}

	if err := c.resolveBindings(ctx, fact, stored.Bindings); err != nil {
		return nil, err
	}
	if err := c.populateRetracted(ctx, fact); err != nil {
		return nil, err
	}
	if err := c.populateACL(ctx, fact); err != nil {
		return nil, err
	}
	if err := c.populateComments(ctx, fact); err != nil {
		return nil, err
	}

	return fact, nil
}

// resolveBindings reconstructs source/destination objects from the ordered
// binding list. Valid cardinality is 0, 1 or 2.
func (c *FactConverter) resolveBindings(ctx context.Context, fact *entities.Fact, bindings []entities.Binding) error {
	switch len(bindings) {
	case 0:
		return nil
	case 1:
		return c.resolveSingleBinding(ctx, fact, bindings[0])
	case 2:
		return c.resolveBindingPair(ctx, fact, bindings[0], bindings[1])
	default:
		// Create APIs only accept one or two bindings, so anything else is
		// stored-data corruption. Never guess an assignment from it.
		c.log.Warn("fact is bound to more than two objects, ignoring objects in result", "fact_id", fact.ID)
		return nil
	}
}

func (c *FactConverter) resolveSingleBinding(ctx context.Context, fact *entities.Fact, binding entities.Binding) error {
	switch binding.Direction {
	case entities.DirectionFactIsDestination:
		// The stored direction names the fact's role, so the bound object
		// is the source.
		object, err := c.lookupObject(ctx, binding.ObjectID)
		if err != nil {
			return err
		}
		fact.SourceObject = object
	case entities.DirectionFactIsSource:
		object, err := c.lookupObject(ctx, binding.ObjectID)
		if err != nil {
			return err
		}
		fact.DestinationObject = object
	default:
		// Bidirectional with cardinality 1: the same object fills both
		// roles. Resolve it once and share the reference.
		object, err := c.lookupObject(ctx, binding.ObjectID)
		if err != nil {
			return err
		}
		fact.SourceObject = object
		fact.DestinationObject = object
		fact.Bidirectional = true
	}
	return nil
}

func (c *FactConverter) resolveBindingPair(ctx context.Context, fact *entities.Fact, first, second entities.Binding) error {
	if (first.Direction == entities.DirectionFactIsDestination && second.Direction == entities.DirectionFactIsDestination) ||
		(first.Direction == entities.DirectionFactIsSource && second.Direction == entities.DirectionFactIsSource) {
		// Two endpoints claiming the same role is stored-data corruption.
		c.log.Warn("fact is bound to two objects with the same direction, ignoring objects in result", "fact_id", fact.ID)
		return nil
	}

	if first.Direction == entities.DirectionFactIsDestination {
		// 'first' carries the source object and 'second' the destination.
		return c.assignPair(ctx, fact, first.ObjectID, second.ObjectID, false)
	}
	if second.Direction == entities.DirectionFactIsDestination {
		// Mirror of the case above.
		return c.assignPair(ctx, fact, second.ObjectID, first.ObjectID, false)
	}

	// Neither binding marks a destination, so role assignment is symmetric.
	// Always take the first binding as source so the result is reproducible.
	return c.assignPair(ctx, fact, first.ObjectID, second.ObjectID, true)
}

func (c *FactConverter) assignPair(ctx context.Context, fact *entities.Fact, sourceID, destinationID string, bidirectional bool) error {
	source, err := c.lookupObject(ctx, sourceID)
	if err != nil {
		return err
	}
	destination, err := c.lookupObject(ctx, destinationID)
	if err != nil {
		return err
	}
	fact.SourceObject = source
	fact.DestinationObject = destination
	fact.Bidirectional = bidirectional
	return nil
}

// lookupObject materializes a bound object by ID. Absence passes through as
// nil; the converter never substitutes a placeholder object.
func (c *FactConverter) lookupObject(ctx context.Context, objectID string) (*entities.Object, error) {
	object, err := c.store.FindObjectByID(ctx, objectID)
	if err != nil {
		return nil, fmt.Errorf("looking up object %s: %w", objectID, err)
	}
	return object, nil
}

// populateRetracted fetches the retracted flag, which lives only in the
// search index.
func (c *FactConverter) populateRetracted(ctx context.Context, fact *entities.Fact) error {
	doc, err := c.index.FindByID(ctx, fact.ID)
	if err != nil {
		return fmt.Errorf("fetching fact document %s: %w", fact.ID, err)
	}
	if doc != nil && doc.Retracted {
		fact.Retracted = true
	}
	return nil
}

func (c *FactConverter) populateACL(ctx context.Context, fact *entities.Fact) error {
	acl, err := c.store.FindAclByFact(ctx, fact.ID)
	if err != nil {
		return fmt.Errorf("fetching fact acl %s: %w", fact.ID, err)
	}
	fact.ACL = acl
	return nil
}

func (c *FactConverter) populateComments(ctx context.Context, fact *entities.Fact) error {
	comments, err := c.store.FindCommentsByFact(ctx, fact.ID)
	if err != nil {
		return fmt.Errorf("fetching fact comments %s: %w", fact.ID, err)
	}
	fact.Comments = comments
	return nil
}

// DeriveBindings encodes a fact's resolved endpoints back into the stored
// binding list. This is the exact inverse of resolveBindings for every valid
// input: the source object is stored with direction FactIsDestination and
// the destination object with FactIsSource, unless the fact is bidirectional,
// in which case both carry BiDirectional. The source binding always comes
// first, matching the decode tie-break for symmetric pairs.
func (c *FactConverter) DeriveBindings(fact *entities.Fact) []entities.Binding {
	if fact == nil {
		return nil
	}

	var bindings []entities.Binding
	if fact.SourceObject != nil {
		bindings = append(bindings, entities.Binding{
			ObjectID:  fact.SourceObject.ID,
			Direction: sourceDirection(fact),
		})
	}
	// A single-object bidirectional fact stores exactly one binding, so the
	// shared endpoint is not encoded twice.
	if fact.DestinationObject != nil && !sharedEndpoint(fact) {
		bindings = append(bindings, entities.Binding{
			ObjectID:  fact.DestinationObject.ID,
			Direction: destinationDirection(fact),
		})
	}
	return bindings
}

// sharedEndpoint reports whether a bidirectional fact's single object fills
// both roles, in which case only one binding is encoded.
func sharedEndpoint(fact *entities.Fact) bool {
	return fact.Bidirectional &&
		fact.SourceObject != nil &&
		fact.DestinationObject != nil &&
		fact.SourceObject.ID == fact.DestinationObject.ID
}

// ToStored converts an API-facing fact record back into its persisted form.
func (c *FactConverter) ToStored(fact *entities.Fact) *entities.StoredFact {
	if fact == nil {
		return nil
	}

	return &entities.StoredFact{
		ID:              fact.ID,
		Type:            fact.Type,
		Value:           fact.Value,
		InReferenceToID: fact.InReferenceToID,
		OrganizationID:  fact.OrganizationID,
		OriginID:        fact.OriginID,
		AddedByID:       fact.AddedByID,
		AccessMode:      fact.AccessMode,
		Confidence:      fact.Confidence,
		Trust:           fact.Trust,
		CreatedAt:       fact.CreatedAt,
		LastSeenAt:      fact.LastSeenAt,
		Bindings:        c.DeriveBindings(fact),
	}
}

// ToDocument converts a fact record into its search-index form. The
// embedding is left empty; the indexing caller fills it in.
func (c *FactConverter) ToDocument(fact *entities.Fact) *entities.FactDocument {
	if fact == nil {
		return nil
	}

	doc := &entities.FactDocument{
		ID:              fact.ID,
		Type:            fact.Type,
		Value:           fact.Value,
		InReferenceToID: fact.InReferenceToID,
		OrganizationID:  fact.OrganizationID,
		OriginID:        fact.OriginID,
		AddedByID:       fact.AddedByID,
		AccessMode:      fact.AccessMode,
		Confidence:      fact.Confidence,
		Trust:           fact.Trust,
		CreatedAt:       fact.CreatedAt,
		LastSeenAt:      fact.LastSeenAt,
		Retracted:       fact.Retracted,
	}

	for _, entry := range fact.ACL {
		doc.ACL = append(doc.ACL, entry.SubjectID)
	}

	if fact.SourceObject != nil {
		doc.Objects = append(doc.Objects, boundObject(fact.SourceObject, sourceDirection(fact)))
	}
	if fact.DestinationObject != nil && !sharedEndpoint(fact) {
		doc.Objects = append(doc.Objects, boundObject(fact.DestinationObject, destinationDirection(fact)))
	}

	return doc
}

// ToCriteria converts a fact record into existence criteria used to detect
// logically-equal facts in the search index before creating a new one.
func (c *FactConverter) ToCriteria(fact *entities.Fact) *entities.ExistenceCriteria {
	if fact == nil {
		return nil
	}

	criteria := &entities.ExistenceCriteria{
		Type:            fact.Type,
		Value:           fact.Value,
		OriginID:        fact.OriginID,
		OrganizationID:  fact.OrganizationID,
		AccessMode:      fact.AccessMode,
		Confidence:      fact.Confidence,
		InReferenceToID: fact.InReferenceToID,
	}

	if fact.SourceObject != nil {
		criteria.Objects = append(criteria.Objects, entities.ObjectCriterion{
			ObjectID:  fact.SourceObject.ID,
			Direction: sourceDirection(fact),
		})
	}
	if fact.DestinationObject != nil && !sharedEndpoint(fact) {
		criteria.Objects = append(criteria.Objects, entities.ObjectCriterion{
			ObjectID:  fact.DestinationObject.ID,
			Direction: destinationDirection(fact),
		})
	}

	return criteria
}

// sourceDirection returns the stored direction for a fact's source object.
func sourceDirection(fact *entities.Fact) entities.Direction {
	if fact.Bidirectional {
		return entities.DirectionBiDirectional
	}
	return entities.DirectionFactIsDestination
}

// destinationDirection returns the stored direction for a fact's destination
// object.
func destinationDirection(fact *entities.Fact) entities.Direction {
	if fact.Bidirectional {
		return entities.DirectionBiDirectional
	}
	return entities.DirectionFactIsSource
}

func boundObject(object *entities.Object, direction entities.Direction) entities.BoundObject {
	return entities.BoundObject{
		ID:        object.ID,
		Type:      object.Type,
		Value:     object.Value,
		Direction: direction,
	}
}
