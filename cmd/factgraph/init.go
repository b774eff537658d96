package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/factgraph/internal/application/handlers"
	"github.com/ersonp/factgraph/internal/domain/services"
	"github.com/ersonp/factgraph/internal/infrastructure/config"
	embedder "github.com/ersonp/factgraph/internal/infrastructure/embedder/openai"
	"github.com/ersonp/factgraph/internal/infrastructure/relationaldb/sqlite"
	"github.com/ersonp/factgraph/internal/infrastructure/searchindex/qdrant"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new factgraph workspace",
		Long:  "Creates a .factgraph directory with default configuration, the SQLite database and the Qdrant collection.",
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	if config.Exists(cwd) {
		return fmt.Errorf("factgraph already initialized in %s", cwd)
	}

	// The stores open files inside the config directory, so it has to exist
	// before they are constructed.
	if err := os.MkdirAll(config.ConfigDir(cwd), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	cfg := config.Default()
	cfg.SQLite.Path = config.DatabasePath(cwd)

	store, err := sqlite.NewRepository(cfg.SQLite)
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer store.Close()

	index, err := qdrant.NewRepository(cfg.Qdrant)
	if err != nil {
		return fmt.Errorf("connecting to qdrant: %w", err)
	}
	defer index.Close()

	initHandler := handlers.NewInitHandler(store, index, services.NewSchemaService(store))

	result, err := initHandler.Handle(ctx, cwd, embedder.VectorSize)
	if err != nil {
		return err
	}

	fmt.Printf("Created %s\n", result.ConfigPath)
	fmt.Printf("Created database: %s\n", result.DatabasePath)
	fmt.Printf("Created Qdrant collection: %s\n", result.CollectionName)
	fmt.Println("Factgraph initialized successfully!")

	return nil
}
