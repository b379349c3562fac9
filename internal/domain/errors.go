package domain

import (
	"errors"
	"fmt"
)

// Query errors. The set is closed: every failed evaluation wraps exactly one of these.
var (
	// ErrMalformedQuery signals a clause without the '.' or ':' delimiter.
	ErrMalformedQuery = errors.New("malformed query string")
	// ErrObjectNotExist signals a scope token that names no collection.
	ErrObjectNotExist = errors.New("object does not exist")
	// ErrObjectMatch signals clauses of one compound query targeting different scopes.
	ErrObjectMatch = errors.New("objects do not match")
	// ErrFieldNotExist signals a field outside the recognized set.
	ErrFieldNotExist = errors.New("field does not exist")
	// ErrValueType signals a numeric field given a non-integer value.
	ErrValueType = errors.New("value type of the field should be integer")
	// ErrOperatorNotApplicable signals a comparison operator on a text field.
	ErrOperatorNotApplicable = errors.New("comparison operator not applicable")
)

// Record errors.
var (
	// ErrRecipeNotFound signals a missing recipe.
	ErrRecipeNotFound = errors.New("recipe not found")
	// ErrRecipeExists signals a duplicate recipe id within a collection.
	ErrRecipeExists = errors.New("recipe already exists")
	// ErrInvalidRecipe signals a record that fails structural validation.
	ErrInvalidRecipe = errors.New("invalid recipe")
)

// QueryErrors lists the query taxonomy in a stable order.
func QueryErrors() []error {
	return []error{
		ErrMalformedQuery,
		ErrObjectNotExist,
		ErrObjectMatch,
		ErrFieldNotExist,
		ErrValueType,
		ErrOperatorNotApplicable,
	}
}

// IsQueryError reports whether err belongs to the query taxonomy.
func IsQueryError(err error) bool {
	for _, s := range QueryErrors() {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}

// ClauseError attaches the offending clause to a query error.
type ClauseError struct {
	Clause string
	Err    error
}

func (e *ClauseError) Error() string {
	return fmt.Sprintf("clause %q: %s", e.Clause, e.Err.Error())
}

func (e *ClauseError) Unwrap() error { return e.Err }

// NewClauseError wraps err with the clause text it came from.
func NewClauseError(clause string, err error) error {
	return &ClauseError{Clause: clause, Err: err}
}

// QueryErrorKind returns a stable snake_case label for a query error,
// or "" if err is not one.
func QueryErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrMalformedQuery):
		return "malformed_query"
	case errors.Is(err, ErrObjectNotExist):
		return "object_not_exist"
	case errors.Is(err, ErrObjectMatch):
		return "object_match"
	case errors.Is(err, ErrFieldNotExist):
		return "field_not_exist"
	case errors.Is(err, ErrValueType):
		return "value_type"
	case errors.Is(err, ErrOperatorNotApplicable):
		return "operator_not_applicable"
	default:
		return ""
	}
}
