package recipe

import (
	"context"

	"github.com/kailas-cloud/recipeq/internal/db"
	"github.com/kailas-cloud/recipeq/internal/domain/predicate"
	domrecipe "github.com/kailas-cloud/recipeq/internal/domain/recipe"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	findFn    func(ctx context.Context, collection string, pred predicate.Predicate) (db.Cursor, error)
	findOneFn func(ctx context.Context, collection, id string) (domrecipe.Document, error)
	insertFn  func(ctx context.Context, collection string, doc domrecipe.Document) error
	updateFn  func(ctx context.Context, collection, id string, set domrecipe.Document) error
	deleteFn  func(ctx context.Context, collection, id string) error
}

func (m *mockStore) Find(ctx context.Context, collection string, pred predicate.Predicate) (db.Cursor, error) {
	if m.findFn != nil {
		return m.findFn(ctx, collection, pred)
	}
	return db.NewSliceCursor(nil, pred), nil
}

func (m *mockStore) FindOne(ctx context.Context, collection, id string) (domrecipe.Document, error) {
	if m.findOneFn != nil {
		return m.findOneFn(ctx, collection, id)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) Insert(ctx context.Context, collection string, doc domrecipe.Document) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, collection, doc)
	}
	return nil
}

func (m *mockStore) Update(ctx context.Context, collection, id string, set domrecipe.Document) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, collection, id, set)
	}
	return nil
}

func (m *mockStore) Delete(ctx context.Context, collection, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, collection, id)
	}
	return nil
}
