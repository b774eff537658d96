package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/factgraph/internal/domain/entities"
	"github.com/ersonp/factgraph/internal/domain/mocks"
)

type converterFixture struct {
	store     *mocks.FactStore
	index     *mocks.SearchIndex
	log       *mocks.Logger
	converter *FactConverter
}

func newConverterFixture() *converterFixture {
	store := mocks.NewFactStore()
	index := mocks.NewSearchIndex()
	log := mocks.NewLogger()
	return &converterFixture{
		store:     store,
		index:     index,
		log:       log,
		converter: NewFactConverter(store, index, log),
	}
}

func storedFact(id string, bindings ...entities.Binding) *entities.StoredFact {
	return &entities.StoredFact{
		ID:         id,
		Type:       entities.FactTypeResolvesTo,
		Value:      "observed in passive dns",
		AccessMode: entities.AccessModePublic,
		Confidence: 0.9,
		Trust:      0.8,
		CreatedAt:  time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC),
		LastSeenAt: time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC),
		Bindings:   bindings,
	}
}

func TestFactConverter_FromStored_NilFact(t *testing.T) {
	f := newConverterFixture()

	fact, err := f.converter.FromStored(context.Background(), nil)

	require.NoError(t, err)
	assert.Nil(t, fact)
}

func TestFactConverter_FromStored_CopiesScalarFields(t *testing.T) {
	f := newConverterFixture()
	stored := storedFact("fact-1")
	stored.InReferenceToID = "fact-0"
	stored.OrganizationID = "org-1"
	stored.OriginID = "origin-1"
	stored.AddedByID = "analyst-1"

	fact, err := f.converter.FromStored(context.Background(), stored)

	require.NoError(t, err)
	assert.Equal(t, stored.ID, fact.ID)
	assert.Equal(t, stored.Type, fact.Type)
	assert.Equal(t, stored.Value, fact.Value)
	assert.Equal(t, stored.InReferenceToID, fact.InReferenceToID)
	assert.Equal(t, stored.OrganizationID, fact.OrganizationID)
	assert.Equal(t, stored.OriginID, fact.OriginID)
	assert.Equal(t, stored.AddedByID, fact.AddedByID)
	assert.Equal(t, stored.AccessMode, fact.AccessMode)
	assert.Equal(t, stored.Confidence, fact.Confidence)
	assert.Equal(t, stored.Trust, fact.Trust)
	assert.Equal(t, stored.CreatedAt, fact.CreatedAt)
	assert.Equal(t, stored.LastSeenAt, fact.LastSeenAt)
}

func TestFactConverter_FromStored_ZeroBindings(t *testing.T) {
	f := newConverterFixture()

	fact, err := f.converter.FromStored(context.Background(), storedFact("fact-1"))

	require.NoError(t, err)
	assert.Nil(t, fact.SourceObject)
	assert.Nil(t, fact.DestinationObject)
	assert.False(t, fact.Bidirectional)
	assert.Empty(t, f.log.Warnings())
}

func TestFactConverter_FromStored_SingleBinding(t *testing.T) {
	tests := []struct {
		name            string
		direction       entities.Direction
		wantSource      bool
		wantDestination bool
		wantBidir       bool
	}{
		{
			// The stored direction names the counterpart role: a binding
			// marked FactIsDestination carries the fact's source object.
			name:       "fact is destination resolves source",
			direction:  entities.DirectionFactIsDestination,
			wantSource: true,
		},
		{
			name:            "fact is source resolves destination",
			direction:       entities.DirectionFactIsSource,
			wantDestination: true,
		},
		{
			name:            "bidirectional fills both roles",
			direction:       entities.DirectionBiDirectional,
			wantSource:      true,
			wantDestination: true,
			wantBidir:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newConverterFixture()
			f.store.AddObject("object-x", entities.ObjectTypeDomain, "evil.example.org")

			fact, err := f.converter.FromStored(context.Background(),
				storedFact("fact-1", entities.Binding{ObjectID: "object-x", Direction: tt.direction}))

			require.NoError(t, err)
			if tt.wantSource {
				require.NotNil(t, fact.SourceObject)
				assert.Equal(t, "object-x", fact.SourceObject.ID)
			} else {
				assert.Nil(t, fact.SourceObject)
			}
			if tt.wantDestination {
				require.NotNil(t, fact.DestinationObject)
				assert.Equal(t, "object-x", fact.DestinationObject.ID)
			} else {
				assert.Nil(t, fact.DestinationObject)
			}
			assert.Equal(t, tt.wantBidir, fact.Bidirectional)
			assert.Empty(t, f.log.Warnings())
		})
	}
}

func TestFactConverter_FromStored_SingleBidirectionalSharesReference(t *testing.T) {
	f := newConverterFixture()
	f.store.AddObject("object-x", entities.ObjectTypeThreatActor, "sandworm")

	fact, err := f.converter.FromStored(context.Background(),
		storedFact("fact-1", entities.Binding{ObjectID: "object-x", Direction: entities.DirectionBiDirectional}))

	require.NoError(t, err)
	assert.Same(t, fact.SourceObject, fact.DestinationObject)
}

func TestFactConverter_FromStored_BindingPair(t *testing.T) {
	dest := entities.DirectionFactIsDestination
	src := entities.DirectionFactIsSource
	bidir := entities.DirectionBiDirectional

	tests := []struct {
		name       string
		first      entities.Direction
		second     entities.Direction
		wantSource string
		wantDest   string
		wantBidir  bool
	}{
		{
			name:       "destination first",
			first:      dest,
			second:     src,
			wantSource: "object-a",
			wantDest:   "object-b",
		},
		{
			name:       "destination second",
			first:      src,
			second:     dest,
			wantSource: "object-b",
			wantDest:   "object-a",
		},
		{
			// For symmetric pairs stored order alone decides the roles.
			name:       "both bidirectional keeps stored order",
			first:      bidir,
			second:     bidir,
			wantSource: "object-a",
			wantDest:   "object-b",
			wantBidir:  true,
		},
		{
			name:       "bidirectional with destination",
			first:      dest,
			second:     bidir,
			wantSource: "object-a",
			wantDest:   "object-b",
		},
		{
			// Without a FactIsDestination binding there is no asymmetric
			// anchor, so the pair resolves through the symmetric branch.
			name:       "bidirectional with source",
			first:      src,
			second:     bidir,
			wantSource: "object-a",
			wantDest:   "object-b",
			wantBidir:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newConverterFixture()
			f.store.AddObject("object-a", entities.ObjectTypeDomain, "evil.example.org")
			f.store.AddObject("object-b", entities.ObjectTypeIPv4, "198.51.100.7")

			fact, err := f.converter.FromStored(context.Background(), storedFact("fact-1",
				entities.Binding{ObjectID: "object-a", Direction: tt.first},
				entities.Binding{ObjectID: "object-b", Direction: tt.second},
			))

			require.NoError(t, err)
			require.NotNil(t, fact.SourceObject)
			require.NotNil(t, fact.DestinationObject)
			assert.Equal(t, tt.wantSource, fact.SourceObject.ID)
			assert.Equal(t, tt.wantDest, fact.DestinationObject.ID)
			assert.Equal(t, tt.wantBidir, fact.Bidirectional)
			assert.Empty(t, f.log.Warnings())
		})
	}
}

func TestFactConverter_FromStored_SymmetricPairIsOrderSensitive(t *testing.T) {
	f := newConverterFixture()
	f.store.AddObject("object-a", entities.ObjectTypeDomain, "evil.example.org")
	f.store.AddObject("object-b", entities.ObjectTypeIPv4, "198.51.100.7")

	forward, err := f.converter.FromStored(context.Background(), storedFact("fact-1",
		entities.Binding{ObjectID: "object-a", Direction: entities.DirectionBiDirectional},
		entities.Binding{ObjectID: "object-b", Direction: entities.DirectionBiDirectional},
	))
	require.NoError(t, err)

	reversed, err := f.converter.FromStored(context.Background(), storedFact("fact-1",
		entities.Binding{ObjectID: "object-b", Direction: entities.DirectionBiDirectional},
		entities.Binding{ObjectID: "object-a", Direction: entities.DirectionBiDirectional},
	))
	require.NoError(t, err)

	assert.Equal(t, forward.SourceObject.ID, reversed.DestinationObject.ID)
	assert.Equal(t, forward.DestinationObject.ID, reversed.SourceObject.ID)
}

func TestFactConverter_FromStored_SameDirectionPairIsCorrupt(t *testing.T) {
	for _, direction := range []entities.Direction{
		entities.DirectionFactIsDestination,
		entities.DirectionFactIsSource,
	} {
		t.Run(string(direction), func(t *testing.T) {
			f := newConverterFixture()
			f.store.AddObject("object-a", entities.ObjectTypeDomain, "evil.example.org")
			f.store.AddObject("object-b", entities.ObjectTypeIPv4, "198.51.100.7")

			fact, err := f.converter.FromStored(context.Background(), storedFact("fact-1",
				entities.Binding{ObjectID: "object-a", Direction: direction},
				entities.Binding{ObjectID: "object-b", Direction: direction},
			))

			require.NoError(t, err)
			assert.Nil(t, fact.SourceObject)
			assert.Nil(t, fact.DestinationObject)
			assert.False(t, fact.Bidirectional)
			require.Len(t, f.log.Warnings(), 1)
			assert.True(t, f.log.WarnedAbout("fact_id", "fact-1"))
		})
	}
}

func TestFactConverter_FromStored_TooManyBindings(t *testing.T) {
	f := newConverterFixture()
	f.store.AddObject("object-a", entities.ObjectTypeDomain, "evil.example.org")
	f.store.AddObject("object-b", entities.ObjectTypeIPv4, "198.51.100.7")
	f.store.AddObject("object-c", entities.ObjectTypeHash, "d41d8cd98f00b204e9800998ecf8427e")

	fact, err := f.converter.FromStored(context.Background(), storedFact("fact-1",
		entities.Binding{ObjectID: "object-a", Direction: entities.DirectionFactIsDestination},
		entities.Binding{ObjectID: "object-b", Direction: entities.DirectionFactIsSource},
		entities.Binding{ObjectID: "object-c", Direction: entities.DirectionBiDirectional},
	))

	require.NoError(t, err)
	assert.Nil(t, fact.SourceObject)
	assert.Nil(t, fact.DestinationObject)
	assert.False(t, fact.Bidirectional)
	require.Len(t, f.log.Warnings(), 1)
	assert.True(t, f.log.WarnedAbout("fact_id", "fact-1"))
}

func TestFactConverter_FromStored_LookupErrorPropagates(t *testing.T) {
	f := newConverterFixture()
	f.store.Err = errors.New("store unavailable")

	_, err := f.converter.FromStored(context.Background(),
		storedFact("fact-1", entities.Binding{ObjectID: "object-x", Direction: entities.DirectionFactIsDestination}))

	require.Error(t, err)
	assert.ErrorContains(t, err, "store unavailable")
}

func TestFactConverter_FromStored_AbsentObjectPassesThrough(t *testing.T) {
	f := newConverterFixture()

	fact, err := f.converter.FromStored(context.Background(),
		storedFact("fact-1", entities.Binding{ObjectID: "object-missing", Direction: entities.DirectionFactIsDestination}))

	require.NoError(t, err)
	assert.Nil(t, fact.SourceObject)
	assert.Empty(t, f.log.Warnings())
}

func TestFactConverter_FromStored_Enrichment(t *testing.T) {
	f := newConverterFixture()
	f.index.Docs["fact-1"] = &entities.FactDocument{ID: "fact-1", Retracted: true}
	f.store.ACL["fact-1"] = []entities.AclEntry{{ID: "acl-1", FactID: "fact-1", SubjectID: "subject-1"}}
	f.store.Comments["fact-1"] = []entities.Comment{{ID: "comment-1", FactID: "fact-1", Comment: "confirmed by ir team"}}

	fact, err := f.converter.FromStored(context.Background(), storedFact("fact-1"))

	require.NoError(t, err)
	assert.True(t, fact.Retracted)
	require.Len(t, fact.ACL, 1)
	assert.Equal(t, "subject-1", fact.ACL[0].SubjectID)
	require.Len(t, fact.Comments, 1)
	assert.Equal(t, "confirmed by ir team", fact.Comments[0].Comment)
}

func TestFactConverter_FromStored_NotIndexedIsNotRetracted(t *testing.T) {
	f := newConverterFixture()

	fact, err := f.converter.FromStored(context.Background(), storedFact("fact-1"))

	require.NoError(t, err)
	assert.False(t, fact.Retracted)
}

func TestFactConverter_DeriveBindings(t *testing.T) {
	source := &entities.Object{ID: "object-a", Type: entities.ObjectTypeDomain, Value: "evil.example.org"}
	destination := &entities.Object{ID: "object-b", Type: entities.ObjectTypeIPv4, Value: "198.51.100.7"}

	tests := []struct {
		name string
		fact *entities.Fact
		want []entities.Binding
	}{
		{
			name: "nil fact",
			fact: nil,
			want: nil,
		},
		{
			name: "no objects",
			fact: &entities.Fact{ID: "fact-1"},
			want: nil,
		},
		{
			name: "source only encodes as fact-is-destination",
			fact: &entities.Fact{ID: "fact-1", SourceObject: source},
			want: []entities.Binding{
				{ObjectID: "object-a", Direction: entities.DirectionFactIsDestination},
			},
		},
		{
			name: "destination only encodes as fact-is-source",
			fact: &entities.Fact{ID: "fact-1", DestinationObject: destination},
			want: []entities.Binding{
				{ObjectID: "object-b", Direction: entities.DirectionFactIsSource},
			},
		},
		{
			name: "asymmetric pair keeps source first",
			fact: &entities.Fact{ID: "fact-1", SourceObject: source, DestinationObject: destination},
			want: []entities.Binding{
				{ObjectID: "object-a", Direction: entities.DirectionFactIsDestination},
				{ObjectID: "object-b", Direction: entities.DirectionFactIsSource},
			},
		},
		{
			name: "bidirectional pair",
			fact: &entities.Fact{ID: "fact-1", SourceObject: source, DestinationObject: destination, Bidirectional: true},
			want: []entities.Binding{
				{ObjectID: "object-a", Direction: entities.DirectionBiDirectional},
				{ObjectID: "object-b", Direction: entities.DirectionBiDirectional},
			},
		},
		{
			name: "bidirectional shared endpoint encodes once",
			fact: &entities.Fact{ID: "fact-1", SourceObject: source, DestinationObject: source, Bidirectional: true},
			want: []entities.Binding{
				{ObjectID: "object-a", Direction: entities.DirectionBiDirectional},
			},
		},
	}

	f := newConverterFixture()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.converter.DeriveBindings(tt.fact))
		})
	}
}

// TestFactConverter_RoundTrip verifies that decoding a stored binding list
// and re-encoding it reproduces the original list, and that decoding the
// re-encoded form yields the same endpoints, for every valid cardinality.
func TestFactConverter_RoundTrip(t *testing.T) {
	dest := entities.DirectionFactIsDestination
	src := entities.DirectionFactIsSource
	bidir := entities.DirectionBiDirectional

	tests := []struct {
		name     string
		bindings []entities.Binding
	}{
		{name: "no bindings", bindings: nil},
		{name: "single source", bindings: []entities.Binding{{ObjectID: "object-a", Direction: dest}}},
		{name: "single destination", bindings: []entities.Binding{{ObjectID: "object-a", Direction: src}}},
		{name: "single bidirectional", bindings: []entities.Binding{{ObjectID: "object-a", Direction: bidir}}},
		{name: "asymmetric pair", bindings: []entities.Binding{
			{ObjectID: "object-a", Direction: dest},
			{ObjectID: "object-b", Direction: src},
		}},
		{name: "asymmetric pair reversed", bindings: []entities.Binding{
			{ObjectID: "object-a", Direction: src},
			{ObjectID: "object-b", Direction: dest},
		}},
		{name: "bidirectional pair", bindings: []entities.Binding{
			{ObjectID: "object-a", Direction: bidir},
			{ObjectID: "object-b", Direction: bidir},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newConverterFixture()
			f.store.AddObject("object-a", entities.ObjectTypeDomain, "evil.example.org")
			f.store.AddObject("object-b", entities.ObjectTypeIPv4, "198.51.100.7")

			fact, err := f.converter.FromStored(context.Background(), storedFact("fact-1", tt.bindings...))
			require.NoError(t, err)

			stored := f.converter.ToStored(fact)
			if len(tt.bindings) == 0 {
				assert.Empty(t, stored.Bindings)
			} else {
				assert.Equal(t, normalizePairOrder(tt.bindings), stored.Bindings)
			}

			again, err := f.converter.FromStored(context.Background(), stored)
			require.NoError(t, err)
			assert.Equal(t, fact.SourceObject, again.SourceObject)
			assert.Equal(t, fact.DestinationObject, again.DestinationObject)
			assert.Equal(t, fact.Bidirectional, again.Bidirectional)
			assert.Empty(t, f.log.Warnings())
		})
	}
}

// normalizePairOrder rewrites a valid binding list into encode order: the
// binding carrying the source object first. Decoding is order-tolerant for
// asymmetric pairs, encoding always emits the source binding first.
func normalizePairOrder(bindings []entities.Binding) []entities.Binding {
	if len(bindings) == 2 && bindings[1].Direction == entities.DirectionFactIsDestination {
		return []entities.Binding{bindings[1], bindings[0]}
	}
	return bindings
}

func TestFactConverter_ToStored_CopiesScalarFields(t *testing.T) {
	f := newConverterFixture()
	fact := &entities.Fact{
		ID:              "fact-1",
		Type:            entities.FactTypeUses,
		Value:           "dropper observed",
		InReferenceToID: "fact-0",
		OrganizationID:  "org-1",
		OriginID:        "origin-1",
		AddedByID:       "analyst-1",
		AccessMode:      entities.AccessModeRoleBased,
		Confidence:      0.75,
		Trust:           0.6,
		CreatedAt:       time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		LastSeenAt:      time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
	}

	stored := f.converter.ToStored(fact)

	require.NotNil(t, stored)
	assert.Equal(t, fact.ID, stored.ID)
	assert.Equal(t, fact.Type, stored.Type)
	assert.Equal(t, fact.Value, stored.Value)
	assert.Equal(t, fact.InReferenceToID, stored.InReferenceToID)
	assert.Equal(t, fact.OrganizationID, stored.OrganizationID)
	assert.Equal(t, fact.OriginID, stored.OriginID)
	assert.Equal(t, fact.AddedByID, stored.AddedByID)
	assert.Equal(t, fact.AccessMode, stored.AccessMode)
	assert.Equal(t, fact.Confidence, stored.Confidence)
	assert.Equal(t, fact.Trust, stored.Trust)
	assert.Nil(t, f.converter.ToStored(nil))
}

func TestFactConverter_ToDocument(t *testing.T) {
	f := newConverterFixture()
	source := &entities.Object{ID: "object-a", Type: entities.ObjectTypeDomain, Value: "evil.example.org"}
	destination := &entities.Object{ID: "object-b", Type: entities.ObjectTypeIPv4, Value: "198.51.100.7"}
	fact := &entities.Fact{
		ID:                "fact-1",
		Type:              entities.FactTypeResolvesTo,
		Value:             "observed in passive dns",
		AccessMode:        entities.AccessModePublic,
		Confidence:        0.9,
		Retracted:         true,
		ACL:               []entities.AclEntry{{SubjectID: "subject-1"}, {SubjectID: "subject-2"}},
		SourceObject:      source,
		DestinationObject: destination,
	}

	doc := f.converter.ToDocument(fact)

	require.NotNil(t, doc)
	assert.Equal(t, "fact-1", doc.ID)
	assert.True(t, doc.Retracted)
	assert.Equal(t, []string{"subject-1", "subject-2"}, doc.ACL)
	require.Len(t, doc.Objects, 2)
	assert.Equal(t, entities.BoundObject{
		ID: "object-a", Type: entities.ObjectTypeDomain, Value: "evil.example.org",
		Direction: entities.DirectionFactIsDestination,
	}, doc.Objects[0])
	assert.Equal(t, entities.BoundObject{
		ID: "object-b", Type: entities.ObjectTypeIPv4, Value: "198.51.100.7",
		Direction: entities.DirectionFactIsSource,
	}, doc.Objects[1])
	assert.Nil(t, f.converter.ToDocument(nil))
}

func TestFactConverter_ToDocument_BidirectionalDirections(t *testing.T) {
	f := newConverterFixture()
	source := &entities.Object{ID: "object-a", Type: entities.ObjectTypeThreatActor, Value: "sandworm"}
	destination := &entities.Object{ID: "object-b", Type: entities.ObjectTypeThreatActor, Value: "voodoo bear"}

	doc := f.converter.ToDocument(&entities.Fact{
		ID:                "fact-1",
		Type:              entities.FactTypeAlias,
		SourceObject:      source,
		DestinationObject: destination,
		Bidirectional:     true,
	})

	require.Len(t, doc.Objects, 2)
	assert.Equal(t, entities.DirectionBiDirectional, doc.Objects[0].Direction)
	assert.Equal(t, entities.DirectionBiDirectional, doc.Objects[1].Direction)
}

func TestFactConverter_ToDocument_SharedEndpointEncodesOnce(t *testing.T) {
	f := newConverterFixture()
	object := &entities.Object{ID: "object-a", Type: entities.ObjectTypeThreatActor, Value: "sandworm"}

	doc := f.converter.ToDocument(&entities.Fact{
		ID:                "fact-1",
		SourceObject:      object,
		DestinationObject: object,
		Bidirectional:     true,
	})

	require.Len(t, doc.Objects, 1)
	assert.Equal(t, entities.DirectionBiDirectional, doc.Objects[0].Direction)
}

func TestFactConverter_ToCriteria(t *testing.T) {
	f := newConverterFixture()
	source := &entities.Object{ID: "object-a", Type: entities.ObjectTypeDomain, Value: "evil.example.org"}
	destination := &entities.Object{ID: "object-b", Type: entities.ObjectTypeIPv4, Value: "198.51.100.7"}
	fact := &entities.Fact{
		ID:                "fact-1",
		Type:              entities.FactTypeResolvesTo,
		Value:             "observed in passive dns",
		OriginID:          "origin-1",
		OrganizationID:    "org-1",
		AccessMode:        entities.AccessModePublic,
		Confidence:        0.9,
		SourceObject:      source,
		DestinationObject: destination,
	}

	criteria := f.converter.ToCriteria(fact)

	require.NotNil(t, criteria)
	assert.Equal(t, fact.Type, criteria.Type)
	assert.Equal(t, fact.Value, criteria.Value)
	assert.Equal(t, fact.OriginID, criteria.OriginID)
	assert.Equal(t, fact.Confidence, criteria.Confidence)
	assert.Equal(t, []entities.ObjectCriterion{
		{ObjectID: "object-a", Direction: entities.DirectionFactIsDestination},
		{ObjectID: "object-b", Direction: entities.DirectionFactIsSource},
	}, criteria.Objects)
	assert.Nil(t, f.converter.ToCriteria(nil))
}
