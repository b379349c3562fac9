package recipe

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recipeq/internal/domain"
	"github.com/kailas-cloud/recipeq/internal/domain/batch"
	domrecipe "github.com/kailas-cloud/recipeq/internal/domain/recipe"
	"github.com/kailas-cloud/recipeq/internal/domain/schema"
	"github.com/kailas-cloud/recipeq/internal/logger"
	"github.com/kailas-cloud/recipeq/internal/metrics"
)

// Service handles recipe CRUD within the schema's scopes.
type Service struct {
	repo      Repository
	schema    schema.Schema
	validator *domrecipe.Validator
}

// New creates a recipe service.
func New(repo Repository, s schema.Schema, v *domrecipe.Validator) *Service {
	return &Service{repo: repo, schema: s, validator: v}
}

// ImportResult counts the outcome of a bulk import. Items holds one entry per input record.
type ImportResult struct {
	Inserted int
	Skipped  int
	Items    []batch.Result
}

// Get returns a recipe by id. An empty id is invalid.
func (s *Service) Get(ctx context.Context, scope schema.Scope, id string) (domrecipe.Document, error) {
	coll, err := s.collection(scope)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("recipe id %q is not valid: %w", id, domain.ErrInvalidRecipe)
	}
	doc, err := s.repo.Get(ctx, coll, id)
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return doc, nil
}

// Create validates raw and inserts it. Unknown and empty attributes are dropped.
// Returns the new recipe id.
func (s *Service) Create(ctx context.Context, scope schema.Scope, raw map[string]any) (string, error) {
	coll, err := s.collection(scope)
	if err != nil {
		return "", err
	}
	id, err := s.create(ctx, coll, raw)
	s.record(scope, "create", err)
	return id, err
}

func (s *Service) create(ctx context.Context, coll string, raw map[string]any) (string, error) {
	doc, err := s.validator.Validate(raw)
	if err != nil {
		return "", err
	}
	if _, ok := doc[schema.IDField]; !ok {
		return "", fmt.Errorf("found recipe with no id: %w", domain.ErrInvalidRecipe)
	}
	id := doc.ID()
	if id == "" {
		return "", fmt.Errorf("recipe id is empty: %w", domain.ErrInvalidRecipe)
	}
	if err := s.repo.Create(ctx, coll, s.validator.Known(doc)); err != nil {
		return "", fmt.Errorf("create recipe %s: %w", id, err)
	}
	return id, nil
}

// Update sets the recognized, non-empty attributes of raw on an existing recipe.
// The id comes from the caller; an id in raw is ignored.
func (s *Service) Update(ctx context.Context, scope schema.Scope, id string, raw map[string]any) error {
	coll, err := s.collection(scope)
	if err != nil {
		return err
	}
	err = s.update(ctx, coll, id, raw)
	s.record(scope, "update", err)
	return err
}

func (s *Service) update(ctx context.Context, coll, id string, raw map[string]any) error {
	if !isNumericID(id) {
		return fmt.Errorf("recipe id %q is not valid: %w", id, domain.ErrInvalidRecipe)
	}
	if _, err := s.repo.Get(ctx, coll, id); err != nil {
		return fmt.Errorf("update recipe %s: %w", id, err)
	}

	var body map[string]any
	if raw != nil {
		body = make(map[string]any, len(raw))
		for k, v := range raw {
			if k != schema.IDField {
				body[k] = v
			}
		}
	}
	doc, err := s.validator.Validate(body)
	if err != nil {
		return err
	}

	set := s.validator.Known(doc)
	for _, k := range doc.Keys() {
		if !s.schema.HasField(k) {
			logger.FromContext(ctx).Warn("ignoring unknown recipe attribute",
				zap.String("id", id), zap.String("attribute", k))
		}
	}
	if len(set) == 0 {
		return nil
	}
	if err := s.repo.Update(ctx, coll, id, set); err != nil {
		return fmt.Errorf("update recipe %s: %w", id, err)
	}
	return nil
}

// Delete removes a recipe. The id must be numeric.
func (s *Service) Delete(ctx context.Context, scope schema.Scope, id string) error {
	coll, err := s.collection(scope)
	if err != nil {
		return err
	}
	err = s.delete(ctx, coll, id)
	s.record(scope, "delete", err)
	return err
}

func (s *Service) delete(ctx context.Context, coll, id string) error {
	if !isNumericID(id) {
		return fmt.Errorf("recipe id %q is not valid: %w", id, domain.ErrInvalidRecipe)
	}
	if err := s.repo.Delete(ctx, coll, id); err != nil {
		return fmt.Errorf("delete recipe %s: %w", id, err)
	}
	return nil
}

// Import creates every record in raws, skipping duplicates.
// Invalid records are reported together after the whole batch is tried.
func (s *Service) Import(ctx context.Context, scope schema.Scope, raws []map[string]any) (ImportResult, error) {
	coll, err := s.collection(scope)
	if err != nil {
		return ImportResult{}, err
	}

	res := ImportResult{Items: make([]batch.Result, 0, len(raws))}
	var errs []error
	for i, raw := range raws {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		id, err := s.create(ctx, coll, raw)
		s.record(scope, "create", err)
		switch {
		case err == nil:
			res.Inserted++
			res.Items = append(res.Items, batch.NewOK(i, id))
		case errors.Is(err, domain.ErrRecipeExists):
			res.Skipped++
			res.Items = append(res.Items, batch.NewSkipped(i, rawID(raw), err))
		default:
			res.Items = append(res.Items, batch.NewError(i, rawID(raw), err))
			errs = append(errs, fmt.Errorf("record %d: %w", i, err))
		}
	}
	return res, errors.Join(errs...)
}

// rawID returns the string id of an unvalidated record, or "".
func rawID(raw map[string]any) string {
	id, _ := raw[schema.IDField].(string)
	return id
}

// Export returns every recipe of every scope.
func (s *Service) Export(ctx context.Context) (map[schema.Scope][]domrecipe.Document, error) {
	out := make(map[schema.Scope][]domrecipe.Document)
	for _, sc := range s.schema.Scopes() {
		coll, _ := s.schema.Collection(sc)
		docs, err := s.repo.List(ctx, coll)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", sc, err)
		}
		if docs == nil {
			docs = []domrecipe.Document{}
		}
		out[sc] = docs
	}
	return out, nil
}

func (s *Service) collection(scope schema.Scope) (string, error) {
	coll, ok := s.schema.Collection(scope)
	if !ok {
		return "", fmt.Errorf("scope %q: %w", scope, domain.ErrObjectNotExist)
	}
	return coll, nil
}

func (s *Service) record(scope schema.Scope, op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RecipeWritesTotal.WithLabelValues(string(scope), op, status).Inc()
}

func isNumericID(id string) bool {
	if id == "" {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return false
		}
	}
	return true
}
