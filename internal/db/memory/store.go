// Package memory is an in-process db.Store used for tests and ephemeral runs.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/recipeq/internal/db"
	"github.com/kailas-cloud/recipeq/internal/domain/predicate"
	"github.com/kailas-cloud/recipeq/internal/domain/recipe"
)

var _ db.Store = (*Store)(nil)

// Store keeps collections in maps, preserving insertion order for Find.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

type collection struct {
	order []string
	docs  map[string]recipe.Document
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{collections: make(map[string]*collection)}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

// WaitForReady returns immediately.
func (s *Store) WaitForReady(context.Context, time.Duration) error { return nil }

// Find snapshots the collection and filters it lazily.
func (s *Store) Find(_ context.Context, name string, pred predicate.Predicate) (db.Cursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return db.NewSliceCursor(nil, pred), nil
	}
	snapshot := make([]recipe.Document, 0, len(c.order))
	for _, id := range c.order {
		snapshot = append(snapshot, c.docs[id].Clone())
	}
	return db.NewSliceCursor(snapshot, pred), nil
}

// FindOne returns a copy of the document with the given id.
func (s *Store) FindOne(_ context.Context, name, id string) (recipe.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	doc, ok := c.docs[id]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return doc.Without(db.InternalIDField), nil
}

// Insert adds a document, failing with db.ErrKeyExists on a duplicate id.
func (s *Store) Insert(_ context.Context, name string, doc recipe.Document) error {
	stored, err := db.PrepareInsert(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		c = &collection{docs: make(map[string]recipe.Document)}
		s.collections[name] = c
	}
	id := stored.ID()
	if _, exists := c.docs[id]; exists {
		return db.ErrKeyExists
	}
	c.docs[id] = stored
	c.order = append(c.order, id)
	return nil
}

// Update merges set into the stored document.
func (s *Store) Update(_ context.Context, name, id string, set recipe.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return db.ErrKeyNotFound
	}
	doc, ok := c.docs[id]
	if !ok {
		return db.ErrKeyNotFound
	}
	c.docs[id] = db.ApplySet(doc, set)
	return nil
}

// Delete removes a document.
func (s *Store) Delete(_ context.Context, name, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return db.ErrKeyNotFound
	}
	if _, ok := c.docs[id]; !ok {
		return db.ErrKeyNotFound
	}
	delete(c.docs, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}
