package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/factgraph/internal/domain/entities"
	"github.com/ersonp/factgraph/internal/domain/services"
)

func createParams() services.CreateFactParams {
	return services.CreateFactParams{
		Type:             entities.FactTypeResolvesTo,
		SourceType:       entities.ObjectTypeDomain,
		SourceValue:      "evil.example.com",
		DestinationType:  entities.ObjectTypeIPv4,
		DestinationValue: "203.0.113.7",
		Confidence:       0.9,
		OriginID:         "origin-1",
	}
}

func TestFactHandler_Create(t *testing.T) {
	f := newFixture(t)
	handler := NewFactHandler(f.facts, f.schema, f.store)
	ctx := context.Background()

	fact, err := handler.HandleCreate(ctx, createParams())
	require.NoError(t, err)
	require.NotNil(t, fact)

	assert.NotEmpty(t, fact.ID)
	assert.Equal(t, "evil.example.com", fact.SourceObject.Value)
	assert.Equal(t, "203.0.113.7", fact.DestinationObject.Value)
	assert.False(t, fact.Bidirectional)

	// The fact landed in both stores.
	assert.Len(t, f.store.Facts, 1)
	assert.Len(t, f.index.Docs, 1)
}

func TestFactHandler_Create_UnknownFactType(t *testing.T) {
	f := newFixture(t)
	handler := NewFactHandler(f.facts, f.schema, f.store)

	params := createParams()
	params.Type = "drops"

	_, err := handler.HandleCreate(context.Background(), params)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown fact type")
	assert.Empty(t, f.store.Facts)
}

func TestFactHandler_Create_UnknownObjectType(t *testing.T) {
	f := newFixture(t)
	handler := NewFactHandler(f.facts, f.schema, f.store)

	params := createParams()
	params.SourceType = "mutex"

	_, err := handler.HandleCreate(context.Background(), params)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown object type")
}

func TestFactHandler_Create_CustomTypeAfterSchemaAdd(t *testing.T) {
	f := newFixture(t)
	handler := NewFactHandler(f.facts, f.schema, f.store)
	ctx := context.Background()

	require.NoError(t, f.schema.Add(ctx, entities.TypeKindFact, "drops", "payload delivery"))

	params := createParams()
	params.Type = "drops"

	fact, err := handler.HandleCreate(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, entities.FactType("drops"), fact.Type)
}

func TestFactHandler_Create_DuplicateRefreshes(t *testing.T) {
	f := newFixture(t)
	handler := NewFactHandler(f.facts, f.schema, f.store)
	ctx := context.Background()

	first, err := handler.HandleCreate(ctx, createParams())
	require.NoError(t, err)

	second, err := handler.HandleCreate(ctx, createParams())
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.store.Facts, 1)

	// Creation plus refresh makes two versions.
	versions, err := handler.HandleHistory(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, entities.ChangeRefresh, versions[0].ChangeType)
}

func TestFactHandler_GetAndList(t *testing.T) {
	f := newFixture(t)
	handler := NewFactHandler(f.facts, f.schema, f.store)
	ctx := context.Background()

	created, err := handler.HandleCreate(ctx, createParams())
	require.NoError(t, err)

	fetched, err := handler.HandleGet(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, created.SourceObject.ID, fetched.SourceObject.ID)

	list, err := handler.HandleList(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
	require.Len(t, list.Facts, 1)
}

func TestFactHandler_Get_NotFound(t *testing.T) {
	f := newFixture(t)
	handler := NewFactHandler(f.facts, f.schema, f.store)

	_, err := handler.HandleGet(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestFactHandler_Retract(t *testing.T) {
	f := newFixture(t)
	handler := NewFactHandler(f.facts, f.schema, f.store)
	ctx := context.Background()

	created, err := handler.HandleCreate(ctx, createParams())
	require.NoError(t, err)

	require.NoError(t, handler.HandleRetract(ctx, created.ID, "false positive"))

	// The flag lives in the index and surfaces on the next read.
	assert.True(t, f.index.Docs[created.ID].Retracted)
	fetched, err := handler.HandleGet(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, fetched.Retracted)
}

func TestFactHandler_CommentAndGrant(t *testing.T) {
	f := newFixture(t)
	handler := NewFactHandler(f.facts, f.schema, f.store)
	ctx := context.Background()

	created, err := handler.HandleCreate(ctx, createParams())
	require.NoError(t, err)

	comment, err := handler.HandleComment(ctx, created.ID, "confirmed", "", "origin-1")
	require.NoError(t, err)
	assert.NotEmpty(t, comment.ID)

	entry, err := handler.HandleGrant(ctx, created.ID, "subject-1", "origin-1")
	require.NoError(t, err)
	assert.Equal(t, "subject-1", entry.SubjectID)

	fetched, err := handler.HandleGet(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Comments, 1)
	require.Len(t, fetched.ACL, 1)
	// The grant is mirrored into the index document.
	assert.Contains(t, f.index.Docs[created.ID].ACL, "subject-1")
}

func TestFactHandler_AuditLog(t *testing.T) {
	f := newFixture(t)
	handler := NewFactHandler(f.facts, f.schema, f.store)
	ctx := context.Background()

	created, err := handler.HandleCreate(ctx, createParams())
	require.NoError(t, err)
	require.NoError(t, handler.HandleRetract(ctx, created.ID, "cleanup"))

	entries, err := handler.HandleAuditLog(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "fact_created", entries[0].Action)
	assert.Equal(t, "fact_retracted", entries[1].Action)
}
