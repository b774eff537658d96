package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ersonp/factgraph/internal/domain/mocks"
	"github.com/ersonp/factgraph/internal/domain/services"
)

// fixture wires the full service graph on top of in-memory mocks.
type fixture struct {
	store    *mocks.FactStore
	index    *mocks.SearchIndex
	embedder *mocks.Embedder
	llm      *mocks.LLM
	log      *mocks.Logger

	facts      *services.FactService
	schema     *services.SchemaService
	query      *services.QueryService
	extraction *services.ExtractionService
	importer   *services.ImportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:    mocks.NewFactStore(),
		index:    mocks.NewSearchIndex(),
		embedder: mocks.NewEmbedder(),
		llm:      mocks.NewLLM(),
		log:      mocks.NewLogger(),
	}

	converter := services.NewFactConverter(f.store, f.index, f.log)
	f.facts = services.NewFactService(f.store, f.index, f.embedder, converter, f.log)
	f.schema = services.NewSchemaService(f.store)
	f.query = services.NewQueryService(f.embedder, f.index)
	f.extraction = services.NewExtractionService(f.llm, f.facts, f.schema, f.log)
	f.importer = services.NewImportService(f.facts, f.schema)

	require.NoError(t, f.schema.LoadDefaults(context.Background()))
	return f
}
