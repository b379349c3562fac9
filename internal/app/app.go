// Package app is the composition root shared by the server and the CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recipeq/internal/config"
	"github.com/kailas-cloud/recipeq/internal/db"
	"github.com/kailas-cloud/recipeq/internal/db/memory"
	dbRedis "github.com/kailas-cloud/recipeq/internal/db/redis"
	dbSQLite "github.com/kailas-cloud/recipeq/internal/db/sqlite"
	"github.com/kailas-cloud/recipeq/internal/domain/query"
	domrecipe "github.com/kailas-cloud/recipeq/internal/domain/recipe"
	"github.com/kailas-cloud/recipeq/internal/domain/schema"
	reciperepo "github.com/kailas-cloud/recipeq/internal/repository/recipe"
	healthuc "github.com/kailas-cloud/recipeq/internal/usecase/health"
	recipeuc "github.com/kailas-cloud/recipeq/internal/usecase/recipe"
	searchuc "github.com/kailas-cloud/recipeq/internal/usecase/search"
)

// App holds the wired services.
type App struct {
	Logger  *zap.Logger
	Store   db.Store
	Schema  schema.Schema
	Search  *searchuc.Service
	Recipes *recipeuc.Service
	Health  *healthuc.Service
}

// OpenStore creates the document store selected by cfg.Driver.
// redis and valkey share one RESP driver.
func OpenStore(cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory, "":
		return memory.NewStore(), nil
	case config.DriverRedis, config.DriverValkey:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.Addrs,
			Username:  cfg.Username,
			Password:  cfg.Password,
			DB:        cfg.DB,
			KeyPrefix: cfg.KeyPrefix,
			ScanCount: cfg.ScanCount,
		})
		if err != nil {
			return nil, fmt.Errorf("open %s store: %w", cfg.Driver, err)
		}
		return store, nil
	case config.DriverSQLite:
		store, err := dbSQLite.NewStore(dbSQLite.Config{Path: cfg.Path})
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// New opens the store, waits for it, and wires the services on top.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	s, err := cfg.Schema.Build()
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	validator, err := domrecipe.NewValidator(s)
	if err != nil {
		return nil, err
	}

	store, err := OpenStore(cfg.Database)
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

	repo := reciperepo.New(store)
	return &App{
		Logger:  logger,
		Store:   store,
		Schema:  s,
		Search:  searchuc.New(query.NewParser(s), repo).WithMaxLength(cfg.Query.MaxLength),
		Recipes: recipeuc.New(repo, s, validator),
		Health:  healthuc.New(store),
	}, nil
}

// Close releases the store.
func (a *App) Close() {
	a.Store.Close()
}
