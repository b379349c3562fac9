package query

import (
	"strings"

	"github.com/kailas-cloud/recipeq/internal/domain"
	"github.com/kailas-cloud/recipeq/internal/domain/schema"
)

// Delimiters of a clause: scope.field:content.
const (
	scopeDelim = "."
	fieldDelim = ":"
)

// Clause is one parsed scope.field:content unit.
type Clause struct {
	Scope   schema.Scope
	Field   string
	Content string
}

// Split cuts a clause at the first '.' and then at the first ':' after it.
// Each token is trimmed; whitespace inside content is kept.
func Split(clause string) (Clause, error) {
	scope, rest, ok := strings.Cut(clause, scopeDelim)
	if !ok {
		return Clause{}, domain.NewClauseError(clause, domain.ErrMalformedQuery)
	}
	field, content, ok := strings.Cut(rest, fieldDelim)
	if !ok {
		return Clause{}, domain.NewClauseError(clause, domain.ErrMalformedQuery)
	}
	return Clause{
		Scope:   schema.Scope(strings.TrimSpace(scope)),
		Field:   strings.TrimSpace(field),
		Content: strings.TrimSpace(content),
	}, nil
}
