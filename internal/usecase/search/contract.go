package search

import (
	"context"

	"github.com/kailas-cloud/recipeq/internal/db"
	"github.com/kailas-cloud/recipeq/internal/domain/predicate"
)

// Finder runs a predicate against one collection.
type Finder interface {
	Find(ctx context.Context, collection string, pred predicate.Predicate) (db.Cursor, error)
}
