// Package handlers contains application use case handlers.
package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/factgraph/internal/domain/ports"
	"github.com/ersonp/factgraph/internal/domain/services"
	"github.com/ersonp/factgraph/internal/infrastructure/config"
)

// InitHandler handles workspace initialization: config file, relational
// schema, search collection and the default type definitions.
type InitHandler struct {
	store  ports.FactStore
	index  ports.SearchIndex
	schema *services.SchemaService
}

// NewInitHandler creates a new init handler. Store, index and schema may be
// nil, in which case only the config file is written.
func NewInitHandler(store ports.FactStore, index ports.SearchIndex, schema *services.SchemaService) *InitHandler {
	return &InitHandler{
		store:  store,
		index:  index,
		schema: schema,
	}
}

// InitResult contains the result of initialization.
type InitResult struct {
	ConfigPath     string
	DatabasePath   string
	CollectionName string
}

// Handle initializes the factgraph workspace in basePath.
func (h *InitHandler) Handle(ctx context.Context, basePath string, vectorSize uint64) (*InitResult, error) {
	if config.Exists(basePath) {
		return nil, fmt.Errorf("factgraph already initialized in %s", basePath)
	}

	if err := config.WriteDefault(basePath); err != nil {
		return nil, fmt.Errorf("writing default config: %w", err)
	}

	cfg, err := config.Load(basePath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if h.store != nil {
		if err := h.store.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("creating database schema: %w", err)
		}
	}
	if h.schema != nil {
		if err := h.schema.LoadDefaults(ctx); err != nil {
			return nil, fmt.Errorf("seeding default types: %w", err)
		}
	}
	if h.index != nil {
		if err := h.index.EnsureCollection(ctx, vectorSize); err != nil {
			return nil, fmt.Errorf("creating collection: %w", err)
		}
	}

	return &InitResult{
		ConfigPath:     config.ConfigFilePath(basePath),
		DatabasePath:   cfg.SQLite.Path,
		CollectionName: cfg.Qdrant.Collection,
	}, nil
}
