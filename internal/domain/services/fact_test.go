package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/factgraph/internal/domain/entities"
	"github.com/ersonp/factgraph/internal/domain/mocks"
)

type serviceFixture struct {
	store    *mocks.FactStore
	index    *mocks.SearchIndex
	embedder *mocks.Embedder
	log      *mocks.Logger
	facts    *FactService
}

func newServiceFixture() *serviceFixture {
	store := mocks.NewFactStore()
	index := mocks.NewSearchIndex()
	embedder := mocks.NewEmbedder()
	log := mocks.NewLogger()
	converter := NewFactConverter(store, index, log)
	return &serviceFixture{
		store:    store,
		index:    index,
		embedder: embedder,
		log:      log,
		facts:    NewFactService(store, index, embedder, converter, log),
	}
}

func factParams() CreateFactParams {
	return CreateFactParams{
		Type:        entities.FactTypeResolvesTo,
		SourceType:  entities.ObjectTypeDomain,
		SourceValue: "evil.example.com",

		DestinationType:  entities.ObjectTypeIPv4,
		DestinationValue: "203.0.113.7",

		Confidence: 0.9,
		Trust:      0.8,
		OriginID:   "origin-1",
	}
}

func TestValidateCreateParams(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CreateFactParams)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(p *CreateFactParams) {},
		},
		{
			name:    "missing type",
			mutate:  func(p *CreateFactParams) { p.Type = "" },
			wantErr: "fact type is required",
		},
		{
			name: "no bound objects",
			mutate: func(p *CreateFactParams) {
				p.SourceValue = ""
				p.DestinationValue = ""
			},
			wantErr: "at least one bound object",
		},
		{
			name: "destination-only bidirectional",
			mutate: func(p *CreateFactParams) {
				p.SourceValue = ""
				p.Bidirectional = true
			},
			wantErr: "binds its object as source",
		},
		{
			name:    "invalid access mode",
			mutate:  func(p *CreateFactParams) { p.AccessMode = "secret" },
			wantErr: "invalid access mode",
		},
		{
			name:    "confidence above one",
			mutate:  func(p *CreateFactParams) { p.Confidence = 1.5 },
			wantErr: "confidence must be between 0 and 1",
		},
		{
			name:    "negative confidence",
			mutate:  func(p *CreateFactParams) { p.Confidence = -0.1 },
			wantErr: "confidence must be between 0 and 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := factParams()
			tt.mutate(&params)

			err := validateCreateParams(&params)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateCreateParams_DefaultsAccessMode(t *testing.T) {
	params := factParams()
	params.AccessMode = ""

	require.NoError(t, validateCreateParams(&params))
	assert.Equal(t, entities.AccessModePublic, params.AccessMode)
}

func TestFactService_Create_IndexFailureRollsBack(t *testing.T) {
	f := newServiceFixture()
	f.embedder.Err = errors.New("embedding backend down")

	_, err := f.facts.Create(context.Background(), factParams())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "indexing fact")
	// The relational save was rolled back so both stores stay in step.
	assert.Empty(t, f.store.Facts)
	assert.Empty(t, f.index.Docs)
}

func TestFactService_Create_RecordsCreationVersion(t *testing.T) {
	f := newServiceFixture()

	fact, err := f.facts.Create(context.Background(), factParams())
	require.NoError(t, err)

	versions, err := f.facts.History(context.Background(), fact.ID)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, entities.ChangeCreation, versions[0].ChangeType)
	assert.Equal(t, 1, versions[0].Version)
}

func TestFactService_Get_NotFound(t *testing.T) {
	f := newServiceFixture()

	_, err := f.facts.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fact not found")
}

func TestFactService_Retract_NotFound(t *testing.T) {
	f := newServiceFixture()

	err := f.facts.Retract(context.Background(), "missing", "reason")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fact not found")
}

func TestFactService_AddComment_RequiresText(t *testing.T) {
	f := newServiceFixture()

	fact, err := f.facts.Create(context.Background(), factParams())
	require.NoError(t, err)

	_, err = f.facts.AddComment(context.Background(), fact.ID, "   ", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "comment text is required")
}

func TestFactService_GrantAccess_RequiresSubject(t *testing.T) {
	f := newServiceFixture()

	fact, err := f.facts.Create(context.Background(), factParams())
	require.NoError(t, err)

	_, err = f.facts.GrantAccess(context.Background(), fact.ID, "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subject id is required")
}

func TestFactText(t *testing.T) {
	source := &entities.Object{ID: "object-1", Type: entities.ObjectTypeDomain, Value: "evil.example.com"}
	destination := &entities.Object{ID: "object-2", Type: entities.ObjectTypeIPv4, Value: "203.0.113.7"}

	tests := []struct {
		name string
		fact *entities.Fact
		want string
	}{
		{
			name: "source and destination",
			fact: &entities.Fact{Type: entities.FactTypeResolvesTo, SourceObject: source, DestinationObject: destination},
			want: "evil.example.com resolves_to 203.0.113.7",
		},
		{
			name: "with value",
			fact: &entities.Fact{Type: entities.FactTypeResolvesTo, Value: "passive dns", SourceObject: source, DestinationObject: destination},
			want: "evil.example.com resolves_to 203.0.113.7: passive dns",
		},
		{
			name: "single-object bidirectional renders the object once",
			fact: &entities.Fact{Type: entities.FactTypeMentions, SourceObject: source, DestinationObject: source, Bidirectional: true},
			want: "evil.example.com mentions",
		},
		{
			name: "destination only",
			fact: &entities.Fact{Type: entities.FactTypeMentions, DestinationObject: destination},
			want: "mentions 203.0.113.7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FactText(tt.fact))
		})
	}
}
