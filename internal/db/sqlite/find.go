package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/kailas-cloud/recipeq/internal/db"
	"github.com/kailas-cloud/recipeq/internal/domain/predicate"
	"github.com/kailas-cloud/recipeq/internal/domain/recipe"
)

// Find streams matching documents in insertion order.
func (s *Store) Find(ctx context.Context, collection string, pred predicate.Predicate) (db.Cursor, error) {
	where, args := whereClause(pred)
	query := `SELECT body FROM documents WHERE collection = ?`
	if where != "" {
		query += " AND (" + where + ")"
	}
	query += " ORDER BY rowid"

	rows, err := s.db.QueryContext(ctx, query, append([]any{collection}, args...)...)
	if err != nil {
		return nil, &db.Error{Op: db.OpFind, Err: err}
	}
	return &rowCursor{rows: rows, pred: pred}, nil
}

// whereClause renders the predicate as a SQL prefilter.
func whereClause(pred predicate.Predicate) (string, []any) {
	conds := pred.Conditions()
	if len(conds) == 0 {
		return "", nil
	}

	joiner := " AND "
	if pred.Logic() == predicate.Or {
		joiner = " OR "
	}

	parts := make([]string, 0, len(conds))
	var args []any
	for _, c := range conds {
		sqlText, condArgs := conditionSQL(c)
		parts = append(parts, sqlText)
		args = append(args, condArgs...)
	}
	return strings.Join(parts, joiner), args
}

func conditionSQL(c predicate.Condition) (string, []any) {
	path := jsonPath(c.Field())
	switch c.Op() {
	case predicate.Eq:
		return `EXISTS (SELECT 1 FROM json_each(body, ?) WHERE value = ?)`, []any{path, c.Value()}
	case predicate.Ne:
		return `NOT EXISTS (SELECT 1 FROM json_each(body, ?) WHERE value = ?)`, []any{path, c.Value()}
	case predicate.Contains:
		return `EXISTS (SELECT 1 FROM json_each(body, ?) WHERE instr(value, ?) > 0)`, []any{path, c.Value()}
	case predicate.Gt:
		return `(json_type(body, ?) = 'text' AND CAST(json_extract(body, ?) AS INTEGER) > ?)`,
			[]any{path, path, c.Number()}
	case predicate.Lt:
		return `(json_type(body, ?) = 'text' AND CAST(json_extract(body, ?) AS INTEGER) < ?)`,
			[]any{path, path, c.Number()}
	default:
		return "1", nil
	}
}

// jsonPath quotes a field name as a JSON path label; names may contain spaces.
func jsonPath(field string) string {
	return `$."` + strings.ReplaceAll(field, `"`, `\"`) + `"`
}

// rowCursor streams rows and re-checks each against the predicate.
type rowCursor struct {
	rows *sql.Rows
	pred predicate.Predicate
	cur  recipe.Document
	err  error
}

func (c *rowCursor) Next(ctx context.Context) bool {
	if c.err != nil {
		return false
	}
	for c.rows.Next() {
		if err := ctx.Err(); err != nil {
			c.err = err
			return false
		}
		var body string
		if err := c.rows.Scan(&body); err != nil {
			c.err = &db.Error{Op: db.OpFind, Err: err}
			return false
		}
		doc, err := db.DecodeDocument([]byte(body))
		if err != nil {
			c.err = &db.Error{Op: db.OpFind, Err: err}
			return false
		}
		if c.pred.Match(doc) {
			c.cur = doc.Without(db.InternalIDField)
			return true
		}
	}
	if err := c.rows.Err(); err != nil {
		c.err = &db.Error{Op: db.OpFind, Err: err}
	}
	c.cur = nil
	return false
}

func (c *rowCursor) Document() recipe.Document { return c.cur }

func (c *rowCursor) Err() error { return c.err }

func (c *rowCursor) Close() error { return c.rows.Close() }
