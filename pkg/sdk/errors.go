package recipeq

import "github.com/kailas-cloud/recipeq/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrMalformedQuery        = domain.ErrMalformedQuery
	ErrObjectNotExist        = domain.ErrObjectNotExist
	ErrObjectMatch           = domain.ErrObjectMatch
	ErrFieldNotExist         = domain.ErrFieldNotExist
	ErrValueType             = domain.ErrValueType
	ErrOperatorNotApplicable = domain.ErrOperatorNotApplicable
	ErrRecipeNotFound        = domain.ErrRecipeNotFound
	ErrRecipeExists          = domain.ErrRecipeExists
	ErrInvalidRecipe         = domain.ErrInvalidRecipe
)

// IsQueryError reports whether err is a rejected query rather than a store failure.
func IsQueryError(err error) bool { return domain.IsQueryError(err) }
