package recipeq

import (
	"context"
	"time"

	"github.com/kailas-cloud/recipeq/internal/domain/batch"
	"github.com/kailas-cloud/recipeq/internal/domain/schema"
)

// ImportResult counts the outcome of a bulk import.
type ImportResult struct {
	Inserted int
	Skipped  int
	Rejected int
}

// RecipeService manages the recipes of one scope.
type RecipeService struct {
	scope Scope
	svc   recipeUseCase
	obs   *observer
}

// Get returns a recipe by id.
func (s *RecipeService) Get(ctx context.Context, id string) (Recipe, error) {
	start := time.Now()
	doc, err := s.svc.Get(ctx, schema.Scope(s.scope), id)
	s.obs.observe("get", s.scope, start, err)
	if err != nil {
		return nil, err
	}
	return Recipe(doc), nil
}

// Create inserts r and returns its id. Unknown and empty attributes are dropped.
func (s *RecipeService) Create(ctx context.Context, r Recipe) (string, error) {
	start := time.Now()
	id, err := s.svc.Create(ctx, schema.Scope(s.scope), r)
	s.obs.observe("create", s.scope, start, err)
	return id, err
}

// Update sets the known, non-empty attributes of r on recipe id. An id inside r is ignored.
func (s *RecipeService) Update(ctx context.Context, id string, r Recipe) error {
	start := time.Now()
	err := s.svc.Update(ctx, schema.Scope(s.scope), id, r)
	s.obs.observe("update", s.scope, start, err)
	return err
}

// Delete removes recipe id.
func (s *RecipeService) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := s.svc.Delete(ctx, schema.Scope(s.scope), id)
	s.obs.observe("delete", s.scope, start, err)
	return err
}

// Import inserts every recipe, skipping ids that already exist.
// Invalid recipes are reported together once the rest are in.
func (s *RecipeService) Import(ctx context.Context, recipes []Recipe) (ImportResult, error) {
	raws := make([]map[string]any, len(recipes))
	for i, r := range recipes {
		raws[i] = r
	}

	start := time.Now()
	res, err := s.svc.Import(ctx, schema.Scope(s.scope), raws)
	s.obs.observe("import", s.scope, start, err)
	counts := batch.Count(res.Items)
	return ImportResult{
		Inserted: counts[batch.StatusOK],
		Skipped:  counts[batch.StatusSkipped],
		Rejected: counts[batch.StatusError],
	}, err
}
