package db

import (
	"context"
	"time"

	"github.com/kailas-cloud/recipeq/internal/domain/predicate"
	"github.com/kailas-cloud/recipeq/internal/domain/recipe"
)

// InternalIDField is the storage identifier kept with every document.
// It never leaves the store: Find and FindOne project it out.
const InternalIDField = "_id"

// Store is the main database facade combining all sub-interfaces.
type Store interface {
	Pinger
	DocumentStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Finder runs predicates against a collection.
type Finder interface {
	// Find returns a lazy cursor over matching documents. Zero matches is not an error.
	Find(ctx context.Context, collection string, pred predicate.Predicate) (Cursor, error)
}

// DocumentStore provides per-collection document operations keyed by the "id" field.
type DocumentStore interface {
	Finder
	FindOne(ctx context.Context, collection, id string) (recipe.Document, error)
	Insert(ctx context.Context, collection string, doc recipe.Document) error
	Update(ctx context.Context, collection, id string, set recipe.Document) error
	Delete(ctx context.Context, collection, id string) error
}

// Cursor iterates query results. It cannot be rewound: run Find again instead.
type Cursor interface {
	Next(ctx context.Context) bool
	Document() recipe.Document
	Err() error
	Close() error
}

// Collect drains a cursor and closes it.
func Collect(ctx context.Context, cur Cursor) ([]recipe.Document, error) {
	defer func() { _ = cur.Close() }()

	var docs []recipe.Document
	for cur.Next(ctx) {
		docs = append(docs, cur.Document())
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// SliceCursor iterates an in-memory slice, keeping documents the predicate matches.
type SliceCursor struct {
	docs []recipe.Document
	pred predicate.Predicate
	pos  int
	cur  recipe.Document
	err  error
}

// NewSliceCursor creates a cursor over docs filtered by pred.
func NewSliceCursor(docs []recipe.Document, pred predicate.Predicate) *SliceCursor {
	return &SliceCursor{docs: docs, pred: pred}
}

// Next advances to the next match.
func (c *SliceCursor) Next(ctx context.Context) bool {
	for c.pos < len(c.docs) {
		if err := ctx.Err(); err != nil {
			c.err = err
			return false
		}
		doc := c.docs[c.pos]
		c.pos++
		if c.pred.Match(doc) {
			c.cur = doc.Without(InternalIDField)
			return true
		}
	}
	c.cur = nil
	return false
}

// Document returns the current match.
func (c *SliceCursor) Document() recipe.Document { return c.cur }

// Err returns the error that stopped iteration, if any.
func (c *SliceCursor) Err() error { return c.err }

// Close releases the slice.
func (c *SliceCursor) Close() error {
	c.docs = nil
	c.cur = nil
	return nil
}
