package recipe

import (
	"context"

	domrecipe "github.com/kailas-cloud/recipeq/internal/domain/recipe"
)

// Repository defines the storage contract for recipes.
type Repository interface {
	Get(ctx context.Context, collection, id string) (domrecipe.Document, error)
	Create(ctx context.Context, collection string, doc domrecipe.Document) error
	Update(ctx context.Context, collection, id string, set domrecipe.Document) error
	Delete(ctx context.Context, collection, id string) error
	List(ctx context.Context, collection string) ([]domrecipe.Document, error)
}
