// Package sqlite is a db.Store on an embedded SQLite database (modernc.org/sqlite, no cgo).
//
// All collections share one table keyed by (collection, id); bodies are JSON.
// Predicates are pushed down as a SQL prefilter over json_each and re-checked
// in process, so stored values SQLite would coerce differently never match.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/kailas-cloud/recipeq/internal/db"
	"github.com/kailas-cloud/recipeq/internal/domain/recipe"
)

var _ db.Store = (*Store)(nil)

const memoryPath = ":memory:"

// Config configures the SQLite store.
type Config struct {
	// Path is the database file, or ":memory:".
	Path string
	// BusyTimeout is how long to wait for locks. Default: 5 seconds.
	BusyTimeout time.Duration
}

// Store implements db.Store on SQLite.
// It holds a single connection: close a cursor before issuing the next call.
type Store struct {
	db *sql.DB
}

// NewStore opens the database and creates the schema.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)", cfg.Path, cfg.BusyTimeout.Milliseconds())
	if cfg.Path != memoryPath {
		dsn += "&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// single writer; also keeps one shared in-memory database
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	s := &Store{db: sqlDB}
	if err := s.initSchema(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		internal_id TEXT NOT NULL,
		body TEXT NOT NULL,
		PRIMARY KEY (collection, id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() {
	_ = s.db.Close()
}

// WaitForReady pings once; an embedded database is ready as soon as it opens.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.Ping(ctx)
}

// FindOne loads a document by id.
func (s *Store) FindOne(ctx context.Context, collection, id string) (recipe.Document, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	doc, err := db.DecodeDocument([]byte(body))
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	return doc.Without(db.InternalIDField), nil
}

// Insert adds a document. Returns db.ErrKeyExists if the id is taken.
func (s *Store) Insert(ctx context.Context, collection string, doc recipe.Document) error {
	stored, err := db.PrepareInsert(doc)
	if err != nil {
		return err
	}
	body, err := db.EncodeDocument(stored)
	if err != nil {
		return &db.Error{Op: db.OpInsert, Err: err}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, internal_id, body) VALUES (?, ?, ?, ?)
		ON CONFLICT (collection, id) DO NOTHING`,
		collection, stored.ID(), stored[db.InternalIDField], string(body))
	if err != nil {
		return &db.Error{Op: db.OpInsert, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &db.Error{Op: db.OpInsert, Err: err}
	}
	if n == 0 {
		return db.ErrKeyExists
	}
	return nil
}

// Update merges set into the stored document inside a transaction.
func (s *Store) Update(ctx context.Context, collection, id string, set recipe.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &db.Error{Op: db.OpUpdate, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	var body string
	err = tx.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return db.ErrKeyNotFound
		}
		return &db.Error{Op: db.OpUpdate, Err: err}
	}
	current, err := db.DecodeDocument([]byte(body))
	if err != nil {
		return &db.Error{Op: db.OpUpdate, Err: err}
	}
	merged, err := db.EncodeDocument(db.ApplySet(current, set))
	if err != nil {
		return &db.Error{Op: db.OpUpdate, Err: err}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET body = ? WHERE collection = ? AND id = ?`,
		string(merged), collection, id); err != nil {
		return &db.Error{Op: db.OpUpdate, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &db.Error{Op: db.OpUpdate, Err: err}
	}
	return nil
}

// Delete removes a document.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return &db.Error{Op: db.OpDelete, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &db.Error{Op: db.OpDelete, Err: err}
	}
	if n == 0 {
		return db.ErrKeyNotFound
	}
	return nil
}
