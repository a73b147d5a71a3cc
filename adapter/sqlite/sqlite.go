// Package sqlite stores collections in a single SQLite database, one row per
// collection holding its canonical JSON text.
//
// Table:
//
//	collections(name, data)  PRIMARY KEY (name)
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	// registers the "sqlite3" driver
	_ "github.com/mattn/go-sqlite3"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/deserializer"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/serializer"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/storage"
	"github.com/vinicius-lino-figueiredo/jsongo/domain"
	"go.uber.org/zap"
)

const createTable = `CREATE TABLE IF NOT EXISTS collections (
	name TEXT PRIMARY KEY,
	data TEXT NOT NULL
)`

// Store is a SQLite database holding collections. It implements
// [domain.Catalog] and hands out one [domain.Persistence] per collection.
type Store struct {
	db           *sql.DB
	path         string
	dirMode      os.FileMode
	serializer   domain.Serializer
	deserializer domain.Deserializer
	storage      domain.Storage
	logger       *zap.Logger
}

// Open opens or creates the SQLite database at path.
func Open(ctx context.Context, path string, options ...Option) (*Store, error) {
	s := Store{
		path:         path,
		dirMode:      0o755,
		serializer:   serializer.NewSerializer(),
		deserializer: deserializer.NewDeserializer(),
		storage:      storage.NewStorage(),
		logger:       zap.NewNop(),
	}
	for _, option := range options {
		option(&s)
	}

	if err := s.storage.EnsureParentDirectoryExists(path, s.dirMode); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// single writer, and keeps ":memory:" databases on one connection
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		db.Close()
		return nil, err
	}

	s.db = db
	s.logger.Debug("opened sqlite store", zap.String("path", path))
	return &s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Persistence returns the backend of the named collection.
func (s *Store) Persistence(name string) (domain.Persistence, error) {
	if name == "" {
		return nil, domain.ErrCollectionName{Name: name, Reason: "cannot be empty"}
	}
	return &Collection{store: s, name: name}, nil
}

// Names implements domain.Catalog.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM collections ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Collection implements domain.Persistence on one row of a [Store].
type Collection struct {
	store *Store
	name  string
}

// Load implements domain.Persistence.
func (c *Collection) Load(ctx context.Context) ([]domain.Document, bool, error) {
	var raw string
	err := c.store.db.QueryRowContext(ctx,
		"SELECT data FROM collections WHERE name = ?", c.name,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		c.store.logger.Debug("collection row not found", zap.String("collection", c.name))
		return make([]domain.Document, 0), false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading collection %q: %w", c.name, err)
	}

	docs, err := c.store.deserializer.Deserialize(ctx, []byte(raw))
	if err != nil {
		var corrupt domain.ErrCorruptCollection
		if errors.As(err, &corrupt) {
			corrupt.Collection = c.name
			return nil, false, corrupt
		}
		return nil, false, err
	}
	return docs, true, nil
}

// Save implements domain.Persistence.
func (c *Collection) Save(ctx context.Context, docs []domain.Document) error {
	b, err := c.store.serializer.Serialize(ctx, docs)
	if err != nil {
		return err
	}

	_, err = c.store.db.ExecContext(ctx,
		`INSERT INTO collections (name, data) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET data = excluded.data`,
		c.name, string(b),
	)
	if err != nil {
		return fmt.Errorf("saving collection %q: %w", c.name, err)
	}

	c.store.logger.Debug("saved collection row",
		zap.String("collection", c.name),
		zap.Int("documents", len(docs)),
	)
	return nil
}
