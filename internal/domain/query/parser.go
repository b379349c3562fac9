// Package query parses scope.field:content filter expressions into predicates.
//
// Grammar:
//
//	query   := clause | clause (' AND ' clause)+ | clause (' OR ' clause)+
//	clause  := scope '.' field ':' content
//	content := ['NOT' ws]? text | [('>' | '<') ws]? text | text
//
// Combination is flat: the first logical operator present (AND before OR) is
// honored and the query is split on every occurrence of it. Operators are found
// by plain substring search, so a token glued to adjacent words still splits.
package query

import (
	"strings"

	"github.com/kailas-cloud/recipeq/internal/domain"
	"github.com/kailas-cloud/recipeq/internal/domain/predicate"
	"github.com/kailas-cloud/recipeq/internal/domain/schema"
)

var logicalOperators = []struct {
	token string
	logic predicate.Logic
}{
	{"AND", predicate.And},
	{"OR", predicate.Or},
}

// Query is a parsed expression bound to one scope.
type Query struct {
	Scope      schema.Scope
	Collection string
	Predicate  predicate.Predicate
}

// Equal reports structural equality.
func (q Query) Equal(o Query) bool {
	return q.Scope == o.Scope && q.Collection == o.Collection && q.Predicate.Equal(o.Predicate)
}

// Parser translates query strings against a fixed schema. Safe for concurrent use.
type Parser struct {
	schema schema.Schema
}

// NewParser creates a parser for the given schema.
func NewParser(s schema.Schema) *Parser {
	return &Parser{schema: s}
}

// Schema returns the parser's schema.
func (p *Parser) Schema() schema.Schema { return p.schema }

// Parse translates a query string. Errors wrap one of the domain query sentinels.
func (p *Parser) Parse(raw string) (Query, error) {
	for _, op := range logicalOperators {
		if strings.Contains(raw, op.token) {
			return p.parseCompound(raw, op.token, op.logic)
		}
	}
	return p.parseSingle(raw)
}

func (p *Parser) parseSingle(raw string) (Query, error) {
	clause, err := p.resolve(raw)
	if err != nil {
		return Query{}, err
	}
	cond, err := p.condition(raw, clause)
	if err != nil {
		return Query{}, err
	}
	return p.bind(clause.Scope, predicate.Single(cond)), nil
}

func (p *Parser) parseCompound(raw, token string, logic predicate.Logic) (Query, error) {
	parts := strings.Split(raw, token)

	var scope schema.Scope
	conds := make([]predicate.Condition, 0, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		clause, err := p.resolve(part)
		if err != nil {
			return Query{}, err
		}
		if i == 0 {
			scope = clause.Scope
		} else if clause.Scope != scope {
			return Query{}, domain.NewClauseError(part, domain.ErrObjectMatch)
		}
		cond, err := p.condition(part, clause)
		if err != nil {
			return Query{}, err
		}
		conds = append(conds, cond)
	}

	pred, err := predicate.Combine(logic, conds)
	if err != nil {
		return Query{}, domain.NewClauseError(raw, domain.ErrMalformedQuery)
	}
	return p.bind(scope, pred), nil
}

// resolve splits a clause and checks its scope.
func (p *Parser) resolve(text string) (Clause, error) {
	clause, err := Split(text)
	if err != nil {
		return Clause{}, err
	}
	if !p.schema.HasScope(clause.Scope) {
		return Clause{}, domain.NewClauseError(text, domain.ErrObjectNotExist)
	}
	return clause, nil
}

// condition checks the clause field and builds its condition.
func (p *Parser) condition(text string, clause Clause) (predicate.Condition, error) {
	if !p.schema.HasField(clause.Field) {
		return predicate.Condition{}, domain.NewClauseError(text, domain.ErrFieldNotExist)
	}
	cond, err := p.BuildCondition(clause.Field, clause.Content)
	if err != nil {
		return predicate.Condition{}, domain.NewClauseError(text, err)
	}
	return cond, nil
}

func (p *Parser) bind(scope schema.Scope, pred predicate.Predicate) Query {
	coll, _ := p.schema.Collection(scope)
	return Query{Scope: scope, Collection: coll, Predicate: pred}
}
