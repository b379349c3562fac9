package recipe

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/recipeq/internal/db"
	"github.com/kailas-cloud/recipeq/internal/domain"
	"github.com/kailas-cloud/recipeq/internal/domain/predicate"
	domrecipe "github.com/kailas-cloud/recipeq/internal/domain/recipe"
)

// store is the consumer interface for recipe documents (ISP).
type store interface {
	Find(ctx context.Context, collection string, pred predicate.Predicate) (db.Cursor, error)
	FindOne(ctx context.Context, collection, id string) (domrecipe.Document, error)
	Insert(ctx context.Context, collection string, doc domrecipe.Document) error
	Update(ctx context.Context, collection, id string, set domrecipe.Document) error
	Delete(ctx context.Context, collection, id string) error
}

// Repo implements usecase/recipe.Repository and usecase/search.Finder.
type Repo struct {
	store store
}

// New creates a recipe repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Find runs a predicate against a collection and returns a lazy cursor.
func (r *Repo) Find(ctx context.Context, collection string, pred predicate.Predicate) (db.Cursor, error) {
	cur, err := r.store.Find(ctx, collection, pred)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", collection, err)
	}
	return cur, nil
}

// Get returns a recipe by id.
func (r *Repo) Get(ctx context.Context, collection, id string) (domrecipe.Document, error) {
	doc, err := r.store.FindOne(ctx, collection, id)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

// Create inserts a new recipe.
func (r *Repo) Create(ctx context.Context, collection string, doc domrecipe.Document) error {
	err := r.store.Insert(ctx, collection, doc)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, db.ErrKeyExists):
		return domain.ErrRecipeExists
	case errors.Is(err, db.ErrMissingDocumentID):
		return fmt.Errorf("recipe has no id: %w", domain.ErrInvalidRecipe)
	default:
		return fmt.Errorf("insert %s/%s: %w", collection, doc.ID(), err)
	}
}

// Update sets the given fields on an existing recipe.
func (r *Repo) Update(ctx context.Context, collection, id string, set domrecipe.Document) error {
	if err := r.store.Update(ctx, collection, id, set); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.ErrRecipeNotFound
		}
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete removes a recipe.
func (r *Repo) Delete(ctx context.Context, collection, id string) error {
	if err := r.store.Delete(ctx, collection, id); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.ErrRecipeNotFound
		}
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// List returns every recipe in a collection.
func (r *Repo) List(ctx context.Context, collection string) ([]domrecipe.Document, error) {
	cur, err := r.Find(ctx, collection, predicate.Predicate{})
	if err != nil {
		return nil, err
	}
	docs, err := db.Collect(ctx, cur)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return docs, nil
}
