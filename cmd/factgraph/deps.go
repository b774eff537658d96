package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ersonp/factgraph/internal/application/handlers"
	"github.com/ersonp/factgraph/internal/domain/ports"
	"github.com/ersonp/factgraph/internal/domain/services"
	"github.com/ersonp/factgraph/internal/infrastructure/config"
	embedder "github.com/ersonp/factgraph/internal/infrastructure/embedder/openai"
	llm "github.com/ersonp/factgraph/internal/infrastructure/llm/openai"
	"github.com/ersonp/factgraph/internal/infrastructure/logger/console"
	"github.com/ersonp/factgraph/internal/infrastructure/relationaldb/sqlite"
	"github.com/ersonp/factgraph/internal/infrastructure/searchindex/qdrant"
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and repositories are internal.
type Deps struct {
	Config        *config.Config
	FactHandler   *handlers.FactHandler
	ObjectHandler *handlers.ObjectHandler
	SchemaHandler *handlers.SchemaHandler
	IngestHandler *handlers.IngestHandler
	ImportHandler *handlers.ImportHandler
	QueryHandler  *handlers.QueryHandler
}

// internalDeps holds all dependencies including low-level components.
// Used internally by helper functions.
type internalDeps struct {
	Deps
	store         *sqlite.Repository
	index         *qdrant.Repository
	embedder      *embedder.Embedder
	factService   *services.FactService
	schemaService *services.SchemaService
}

// withDeps loads config and builds dependencies, then calls the provided function.
// It handles cleanup automatically.
func withDeps(fn func(*Deps) error) error {
	return withInternalDeps(func(d *internalDeps) error {
		return fn(&d.Deps)
	})
}

// withInternalDeps provides access to all dependencies including low-level components.
// Used by commands that need direct repository or service access.
func withInternalDeps(fn func(*internalDeps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := console.New(cfg.Log.Level)

	store, err := sqlite.NewRepository(cfg.SQLite)
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	index, err := qdrant.NewRepository(cfg.Qdrant)
	if err != nil {
		return fmt.Errorf("creating qdrant repository: %w", err)
	}
	defer index.Close()

	emb, err := embedder.NewEmbedder(cfg.Embedder)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}

	llmClient, err := llm.NewClient(cfg.LLM)
	if err != nil {
		return fmt.Errorf("creating llm client: %w", err)
	}

	converter := services.NewFactConverter(store, index, log)
	factService := services.NewFactService(store, index, emb, converter, log)
	schemaService := services.NewSchemaService(store)

	// Auto-migrate: seed any missing default types.
	if err := schemaService.LoadDefaults(ctx); err != nil {
		return fmt.Errorf("seeding default types: %w", err)
	}

	queryService := services.NewQueryService(emb, index)
	extractionService := services.NewExtractionService(llmClient, factService, schemaService, log)
	importService := services.NewImportService(factService, schemaService)

	deps := &internalDeps{
		Deps: Deps{
			Config:        cfg,
			FactHandler:   handlers.NewFactHandler(factService, schemaService, store),
			ObjectHandler: handlers.NewObjectHandler(store, factService, schemaService),
			SchemaHandler: handlers.NewSchemaHandler(schemaService),
			IngestHandler: handlers.NewIngestHandler(extractionService),
			ImportHandler: handlers.NewImportHandler(importService),
			QueryHandler:  handlers.NewQueryHandler(queryService),
		},
		store:         store,
		index:         index,
		embedder:      emb,
		factService:   factService,
		schemaService: schemaService,
	}

	return fn(deps)
}

// withStore provides direct fact store access.
//
//nolint:unused // Will be used by future commands (stats, prune)
func withStore(fn func(ports.FactStore) error) error {
	return withInternalDeps(func(d *internalDeps) error {
		return fn(d.store)
	})
}
