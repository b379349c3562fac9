// Package predicate models translated query conditions and evaluates them against documents.
package predicate

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/recipeq/internal/domain/recipe"
)

// Op is the comparison applied by a Condition.
type Op string

// Condition operators.
const (
	Eq       Op = "eq"
	Ne       Op = "ne"
	Contains Op = "contains"
	Gt       Op = "gt"
	Lt       Op = "lt"
)

// Logic combines the conditions of a Predicate.
type Logic string

// Logic values. None marks a single-condition predicate.
const (
	None Logic = ""
	And  Logic = "and"
	Or   Logic = "or"
)

// Condition is one field test. Immutable.
type Condition struct {
	field  string
	op     Op
	value  string
	number int64
}

// NewEq creates an exact match condition.
func NewEq(field, value string) Condition {
	return Condition{field: field, op: Eq, value: value}
}

// NewNe creates a negated exact match condition.
func NewNe(field, value string) Condition {
	return Condition{field: field, op: Ne, value: value}
}

// NewContains creates a case-sensitive substring condition.
func NewContains(field, value string) Condition {
	return Condition{field: field, op: Contains, value: value}
}

// NewGt creates an integer greater-than condition.
func NewGt(field string, n int64) Condition {
	return Condition{field: field, op: Gt, value: strconv.FormatInt(n, 10), number: n}
}

// NewLt creates an integer less-than condition.
func NewLt(field string, n int64) Condition {
	return Condition{field: field, op: Lt, value: strconv.FormatInt(n, 10), number: n}
}

// Field returns the tested field name.
func (c Condition) Field() string { return c.field }

// Op returns the operator.
func (c Condition) Op() Op { return c.op }

// Value returns the comparand as text.
func (c Condition) Value() string { return c.value }

// Number returns the integer comparand of Gt/Lt conditions.
func (c Condition) Number() int64 { return c.number }

// IsComparison reports whether the condition is Gt or Lt.
func (c Condition) IsComparison() bool { return c.op == Gt || c.op == Lt }

// Pattern returns the regular expression equivalent of a Contains condition.
func (c Condition) Pattern() string { return ".*" + c.value + ".*" }

// Match evaluates the condition against a document.
//
// Eq holds when any element equals the value; Ne when none does, so a missing
// field matches. Contains holds when any element contains the value. Gt and Lt
// cast the scalar stored value to an integer; values that do not cast never match.
func (c Condition) Match(doc recipe.Document) bool {
	switch c.op {
	case Eq:
		values, _ := doc.Values(c.field)
		return anyOf(values, func(v string) bool { return v == c.value })
	case Ne:
		values, _ := doc.Values(c.field)
		return !anyOf(values, func(v string) bool { return v == c.value })
	case Contains:
		values, _ := doc.Values(c.field)
		return anyOf(values, func(v string) bool { return strings.Contains(v, c.value) })
	case Gt, Lt:
		s, ok := doc.Scalar(c.field)
		if !ok {
			return false
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return false
		}
		if c.op == Gt {
			return n > c.number
		}
		return n < c.number
	default:
		return false
	}
}

func anyOf(values []string, fn func(string) bool) bool {
	for _, v := range values {
		if fn(v) {
			return true
		}
	}
	return false
}

// Predicate is a single condition or a flat AND/OR combination of conditions. Immutable.
type Predicate struct {
	logic      Logic
	conditions []Condition
}

// Single wraps one condition.
func Single(c Condition) Predicate {
	return Predicate{logic: None, conditions: []Condition{c}}
}

// Combine validates and creates a logical combination.
func Combine(logic Logic, conditions []Condition) (Predicate, error) {
	if logic != And && logic != Or {
		return Predicate{}, fmt.Errorf("invalid logic %q", logic)
	}
	if len(conditions) == 0 {
		return Predicate{}, fmt.Errorf("at least one condition is required")
	}
	return Predicate{logic: logic, conditions: append([]Condition(nil), conditions...)}, nil
}

// Logic returns the combining operator, None for a single condition.
func (p Predicate) Logic() Logic { return p.logic }

// Conditions returns a copy of the conditions.
func (p Predicate) Conditions() []Condition {
	return append([]Condition(nil), p.conditions...)
}

// IsEmpty reports whether the predicate holds no condition.
func (p Predicate) IsEmpty() bool { return len(p.conditions) == 0 }

// Match evaluates the predicate. An empty predicate matches everything.
func (p Predicate) Match(doc recipe.Document) bool {
	if len(p.conditions) == 0 {
		return true
	}
	if p.logic == Or {
		for _, c := range p.conditions {
			if c.Match(doc) {
				return true
			}
		}
		return false
	}
	for _, c := range p.conditions {
		if !c.Match(doc) {
			return false
		}
	}
	return true
}

// Equal reports structural equality.
func (p Predicate) Equal(o Predicate) bool {
	if p.logic != o.logic || len(p.conditions) != len(o.conditions) {
		return false
	}
	for i := range p.conditions {
		if p.conditions[i] != o.conditions[i] {
			return false
		}
	}
	return true
}

// String renders the predicate in document-store filter notation, for logs.
func (p Predicate) String() string {
	var v any
	switch {
	case len(p.conditions) == 0:
		v = map[string]any{}
	case p.logic == None:
		v = p.conditions[0].filter()
	default:
		parts := make([]any, len(p.conditions))
		for i, c := range p.conditions {
			parts[i] = c.filter()
		}
		v = map[string]any{"$" + string(p.logic): parts}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(b)
}

func (c Condition) filter() map[string]any {
	switch c.op {
	case Ne:
		return map[string]any{c.field: map[string]any{"$ne": c.value}}
	case Contains:
		return map[string]any{c.field: map[string]any{"$regex": c.Pattern()}}
	case Gt, Lt:
		return map[string]any{"$expr": map[string]any{
			"$" + string(c.op): []any{map[string]any{"$toInt": "$" + c.field}, c.number},
		}}
	default:
		return map[string]any{c.field: c.value}
	}
}
