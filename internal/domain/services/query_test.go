package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/factgraph/internal/domain/entities"
	"github.com/ersonp/factgraph/internal/domain/mocks"
)

func TestQueryService_Search(t *testing.T) {
	embedder := mocks.NewEmbedder()
	index := mocks.NewSearchIndex()
	index.Docs["fact-1"] = &entities.FactDocument{ID: "fact-1", Type: entities.FactTypeResolvesTo}

	service := NewQueryService(embedder, index)

	docs, err := service.Search(context.Background(), "evil infrastructure", 5)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, []string{"evil infrastructure"}, embedder.Calls)
}

func TestQueryService_Search_DefaultLimit(t *testing.T) {
	embedder := mocks.NewEmbedder()
	index := mocks.NewSearchIndex()
	for i := 0; i < DefaultSearchLimit+5; i++ {
		id := fmt.Sprintf("fact-%d", i)
		index.Docs[id] = &entities.FactDocument{ID: id, Type: entities.FactTypeMentions}
	}

	service := NewQueryService(embedder, index)

	docs, err := service.Search(context.Background(), "anything", 0)
	require.NoError(t, err)
	assert.Len(t, docs, DefaultSearchLimit)
}

func TestQueryService_Search_EmbedderErrorPropagates(t *testing.T) {
	embedder := mocks.NewEmbedder()
	embedder.Err = errors.New("backend down")

	service := NewQueryService(embedder, mocks.NewSearchIndex())

	_, err := service.Search(context.Background(), "anything", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generating query embedding")
}
