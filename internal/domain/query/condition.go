package query

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/recipeq/internal/domain"
	"github.com/kailas-cloud/recipeq/internal/domain/predicate"
)

// Comparability is the outcome of a successful content type check.
type Comparability int

const (
	// CannotBeCompared marks text content: substring search only.
	CannotBeCompared Comparability = iota
	// CanBeCompared marks integer content of a numeric field.
	CanBeCompared
)

func (c Comparability) String() string {
	if c == CanBeCompared {
		return "can be compared"
	}
	return "cannot be compared"
}

const negation = "NOT"

// comparison operators, in the order they are looked for.
var comparisons = []struct {
	token string
	build func(field string, n int64) predicate.Condition
}{
	{"<", predicate.NewLt},
	{">", predicate.NewGt},
}

// CheckContentType classifies content for a field.
// Numeric fields need a non-empty string of decimal digits, otherwise ErrValueType.
// Text fields are never type-checked and cannot be compared.
func (p *Parser) CheckContentType(field, content string) (Comparability, error) {
	content = strings.TrimSpace(content)
	if !p.schema.IsNumeric(field) {
		return CannotBeCompared, nil
	}
	if !isDigits(content) {
		return CannotBeCompared, domain.ErrValueType
	}
	return CanBeCompared, nil
}

// BuildCondition translates clause content into a condition.
//
// A NOT anywhere in the content yields a negated exact match on the text after
// the first NOT, with no further operator parsing. Otherwise a '<' or '>'
// yields a one-sided integer comparison, valid only on numeric fields. Plain
// content is an exact match on numeric fields and a substring match on text.
func (p *Parser) BuildCondition(field, content string) (predicate.Condition, error) {
	if _, after, ok := strings.Cut(content, negation); ok {
		return predicate.NewNe(field, strings.TrimSpace(after)), nil
	}

	for _, cmp := range comparisons {
		_, after, ok := strings.Cut(content, cmp.token)
		if !ok {
			continue
		}
		comparand := strings.TrimSpace(after)
		kind, err := p.CheckContentType(field, comparand)
		if err != nil {
			return predicate.Condition{}, err
		}
		if kind == CannotBeCompared {
			return predicate.Condition{}, domain.ErrOperatorNotApplicable
		}
		n, err := strconv.ParseInt(comparand, 10, 64)
		if err != nil {
			return predicate.Condition{}, domain.ErrValueType
		}
		return cmp.build(field, n), nil
	}

	content = strings.TrimSpace(content)
	if _, err := p.CheckContentType(field, content); err != nil {
		return predicate.Condition{}, err
	}
	if p.schema.IsNumeric(field) {
		return predicate.NewEq(field, content), nil
	}
	return predicate.NewContains(field, content), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
