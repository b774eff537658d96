// Package integration contains tests that require a running Qdrant instance.
// Run with: INTEGRATION_TEST=1 go test ./tests/integration/...
package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/ersonp/factgraph/internal/domain/entities"
	embedder "github.com/ersonp/factgraph/internal/infrastructure/embedder/openai"
	"github.com/ersonp/factgraph/internal/infrastructure/config"
	"github.com/ersonp/factgraph/internal/infrastructure/searchindex/qdrant"
)

const (
	testQdrantHost = "localhost"
	testQdrantPort = 6334
	testCollection = "factgraph_integration_test"
)

var testIndex *qdrant.Repository

func TestMain(m *testing.M) {
	// Skip if INTEGRATION_TEST is not set
	if os.Getenv("INTEGRATION_TEST") != "1" {
		os.Exit(0)
	}

	cfg := config.QdrantConfig{
		Host:       testQdrantHost,
		Port:       testQdrantPort,
		Collection: testCollection,
	}

	var err error
	testIndex, err = qdrant.NewRepository(cfg)
	if err != nil {
		panic("failed to create repository: " + err.Error())
	}

	// Ensure clean collection
	ctx := context.Background()
	_ = testIndex.DeleteCollection(ctx) // Ignore error if collection doesn't exist
	if err := testIndex.EnsureCollection(ctx, uint64(embedder.VectorSize)); err != nil {
		panic("failed to create collection: " + err.Error())
	}

	code := m.Run()

	_ = testIndex.DeleteCollection(ctx)
	testIndex.Close()

	os.Exit(code)
}

// resetCollection drops and recreates the collection between tests.
func resetCollection(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	if err := testIndex.DeleteCollection(ctx); err != nil {
		t.Fatalf("deleting collection: %v", err)
	}
	if err := testIndex.EnsureCollection(ctx, uint64(embedder.VectorSize)); err != nil {
		t.Fatalf("recreating collection: %v", err)
	}
}

// testEmbedding returns a deterministic embedding seeded by one value.
func testEmbedding(seed float32) []float32 {
	embedding := make([]float32, embedder.VectorSize)
	for i := range embedding {
		embedding[i] = seed
	}
	embedding[0] = 1
	return embedding
}

// testDocument builds an indexable fact document with two bound objects.
func testDocument(id string) *entities.FactDocument {
	now := time.Now().UTC().Truncate(time.Second)
	return &entities.FactDocument{
		ID:         id,
		Type:       entities.FactTypeResolvesTo,
		AccessMode: entities.AccessModePublic,
		Confidence: 0.9,
		Trust:      0.8,
		OriginID:   "integration-test",
		CreatedAt:  now,
		LastSeenAt: now,
		Objects: []entities.BoundObject{
			{ID: "object-src", Type: entities.ObjectTypeDomain, Value: "evil.example.com", Direction: entities.DirectionFactIsDestination},
			{ID: "object-dst", Type: entities.ObjectTypeIPv4, Value: "203.0.113.7", Direction: entities.DirectionFactIsSource},
		},
		Embedding: testEmbedding(0.1),
	}
}
