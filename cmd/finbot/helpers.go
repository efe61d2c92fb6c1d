package main

import (
	"context"
	"fmt"

	"github.com/pbarbosa/finbot/internal/config"
	"github.com/pbarbosa/finbot/internal/service"
	"github.com/pbarbosa/finbot/internal/storage"
)

// initStorage opens the expense store and brings its schema up to date.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath, err := config.DatabasePath()
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}
