package redis

import (
	"context"
	"errors"

	"github.com/kailas-cloud/recipeq/internal/db"
	"github.com/kailas-cloud/recipeq/internal/domain/predicate"
	"github.com/kailas-cloud/recipeq/internal/domain/recipe"
)

const maxUpdateAttempts = 8

var errUpdateConflict = errors.New("document kept changing during update")

// Find returns a cursor that scans the collection lazily and filters in process.
func (s *Store) Find(_ context.Context, collection string, pred predicate.Predicate) (db.Cursor, error) {
	return newScanCursor(s, s.collectionPattern(collection), pred), nil
}

// FindOne loads a document by id.
func (s *Store) FindOne(ctx context.Context, collection, id string) (recipe.Document, error) {
	data, err := s.get(ctx, s.documentKey(collection, id))
	if err != nil {
		return nil, err
	}
	doc, err := db.DecodeDocument(data)
	if err != nil {
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return doc.Without(db.InternalIDField), nil
}

// Insert stores a new document. Returns db.ErrKeyExists if the id is taken.
func (s *Store) Insert(ctx context.Context, collection string, doc recipe.Document) error {
	stored, err := db.PrepareInsert(doc)
	if err != nil {
		return err
	}
	data, err := db.EncodeDocument(stored)
	if err != nil {
		return &db.Error{Op: db.OpInsert, Err: err}
	}
	ok, err := s.setNX(ctx, s.documentKey(collection, doc.ID()), data)
	if err != nil {
		return err
	}
	if !ok {
		return db.ErrKeyExists
	}
	return nil
}

// Update merges set into the stored document.
// The write only lands if the document is unchanged since it was read; on a
// concurrent change the merge is redone, up to maxUpdateAttempts times.
func (s *Store) Update(ctx context.Context, collection, id string, set recipe.Document) error {
	key := s.documentKey(collection, id)
	for range maxUpdateAttempts {
		data, err := s.get(ctx, key)
		if err != nil {
			return err
		}
		current, err := db.DecodeDocument(data)
		if err != nil {
			return &db.Error{Op: db.OpUpdate, Err: err}
		}
		merged, err := db.EncodeDocument(db.ApplySet(current, set))
		if err != nil {
			return &db.Error{Op: db.OpUpdate, Err: err}
		}
		switch res, err := s.compareAndSet(ctx, key, data, merged); {
		case err != nil:
			return err
		case res == casMissing:
			return db.ErrKeyNotFound
		case res == casStored:
			return nil
		}
	}
	return &db.Error{Op: db.OpUpdate, Err: errUpdateConflict}
}

// Delete removes a document by id.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	ok, err := s.del(ctx, s.documentKey(collection, id))
	if err != nil {
		return err
	}
	if !ok {
		return db.ErrKeyNotFound
	}
	return nil
}

// scanCursor walks SCAN pages, fetching each page's documents with one MGET.
type scanCursor struct {
	store   *Store
	pattern string
	pred    predicate.Predicate

	next    uint64
	started bool
	seen    map[string]struct{}
	buf     []recipe.Document
	cur     recipe.Document
	err     error
	closed  bool
}

func newScanCursor(s *Store, pattern string, pred predicate.Predicate) *scanCursor {
	return &scanCursor{store: s, pattern: pattern, pred: pred, seen: make(map[string]struct{})}
}

func (c *scanCursor) Next(ctx context.Context) bool {
	for {
		if c.closed || c.err != nil {
			return false
		}
		if len(c.buf) > 0 {
			c.cur = c.buf[0]
			c.buf = c.buf[1:]
			return true
		}
		if c.started && c.next == 0 {
			c.cur = nil
			return false
		}
		if err := c.fill(ctx); err != nil {
			c.err = err
			return false
		}
	}
}

// fill loads the next SCAN page into buf, keeping only matches.
func (c *scanCursor) fill(ctx context.Context) error {
	entry, err := c.store.scanPage(ctx, c.next, c.pattern)
	if err != nil {
		return err
	}
	c.started = true
	c.next = entry.Cursor

	// SCAN may return a key more than once
	keys := make([]string, 0, len(entry.Elements))
	for _, k := range entry.Elements {
		if _, dup := c.seen[k]; dup {
			continue
		}
		c.seen[k] = struct{}{}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return nil
	}

	values, err := c.store.mget(ctx, keys)
	if err != nil {
		return err
	}
	for _, data := range values {
		// deleted between SCAN and MGET
		if data == nil {
			continue
		}
		doc, err := db.DecodeDocument(data)
		if err != nil {
			return &db.Error{Op: db.OpFind, Err: err}
		}
		if c.pred.Match(doc) {
			c.buf = append(c.buf, doc.Without(db.InternalIDField))
		}
	}
	return nil
}

func (c *scanCursor) Document() recipe.Document { return c.cur }

func (c *scanCursor) Err() error { return c.err }

func (c *scanCursor) Close() error {
	c.closed = true
	c.buf = nil
	c.cur = nil
	return nil
}
