package recipeq

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recipeq/internal/app"
	"github.com/kailas-cloud/recipeq/internal/config"
	"github.com/kailas-cloud/recipeq/internal/db"
	domrecipe "github.com/kailas-cloud/recipeq/internal/domain/recipe"
	"github.com/kailas-cloud/recipeq/internal/domain/schema"
	healthuc "github.com/kailas-cloud/recipeq/internal/usecase/health"
	recipeuc "github.com/kailas-cloud/recipeq/internal/usecase/recipe"
)

// Recipe is a flat record of string or string-list attributes keyed by field name.
type Recipe map[string]any

// Scope names a queryable collection.
type Scope string

// Built-in scopes.
const (
	All        Scope = Scope(schema.All)
	Favourites Scope = Scope(schema.Favourite)
)

// Internal interfaces, swapped in tests.
type searchUseCase interface {
	Search(ctx context.Context, raw string) ([]domrecipe.Document, error)
}

type recipeUseCase interface {
	Get(ctx context.Context, scope schema.Scope, id string) (domrecipe.Document, error)
	Create(ctx context.Context, scope schema.Scope, raw map[string]any) (string, error)
	Update(ctx context.Context, scope schema.Scope, id string, raw map[string]any) error
	Delete(ctx context.Context, scope schema.Scope, id string) error
	Import(ctx context.Context, scope schema.Scope, raws []map[string]any) (recipeuc.ImportResult, error)
	Export(ctx context.Context) (map[schema.Scope][]domrecipe.Document, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the recipeq SDK entry point.
type Client struct {
	store     db.Store
	searchSvc searchUseCase
	recipeSvc recipeUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New opens the configured store and waits until it answers.
// The provided context bounds the readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	full := config.Config{Database: cfg.db, Schema: cfg.schema}
	full.Query.MaxLength = cfg.maxQueryLength
	full.ApplyDefaults()

	a, err := app.New(ctx, full, zap.NewNop())
	if err != nil {
		return nil, fmt.Errorf("recipeq: %w", err)
	}
	return &Client{
		store:     a.Store,
		searchSvc: a.Search,
		recipeSvc: a.Recipes,
		healthSvc: a.Health,
		obs:       obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Query evaluates a query. No match is an empty slice, not an error.
func (c *Client) Query(ctx context.Context, q string) ([]Recipe, error) {
	start := time.Now()
	docs, err := c.searchSvc.Search(ctx, q)
	c.obs.observe("query", "", start, err)
	if err != nil {
		return nil, err
	}
	return toRecipes(docs), nil
}

// Recipes returns the record service for one scope.
func (c *Client) Recipes(scope Scope) *RecipeService {
	return &RecipeService{scope: scope, svc: c.recipeSvc, obs: c.obs}
}

// Export returns every recipe grouped by scope.
func (c *Client) Export(ctx context.Context) (map[Scope][]Recipe, error) {
	start := time.Now()
	byScope, err := c.recipeSvc.Export(ctx)
	c.obs.observe("export", "", start, err)
	if err != nil {
		return nil, err
	}
	out := make(map[Scope][]Recipe, len(byScope))
	for sc, docs := range byScope {
		out[Scope(sc)] = toRecipes(docs)
	}
	return out, nil
}

func toRecipes(docs []domrecipe.Document) []Recipe {
	out := make([]Recipe, len(docs))
	for i, d := range docs {
		out[i] = Recipe(d)
	}
	return out
}
