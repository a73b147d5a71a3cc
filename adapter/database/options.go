package database

import (
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/collection"
	"github.com/vinicius-lino-figueiredo/jsongo/domain"
	"go.uber.org/zap"
)

// WithPersistenceFactory sets the function returning the backend of each
// collection. By default every collection is kept in memory.
func WithPersistenceFactory(f domain.PersistenceFactory) Option {
	return func(d *Database) {
		d.persistenceFactory = f
	}
}

// WithCatalog sets the catalog listing collections present in the backing
// store.
func WithCatalog(c domain.Catalog) Option {
	return func(d *Database) {
		d.catalog = c
	}
}

// WithCollectionOptions adds options used when creating collections.
func WithCollectionOptions(options ...collection.Option) Option {
	return func(d *Database) {
		d.collectionOptions = append(d.collectionOptions, options...)
	}
}

// WithLogger sets the logger of the database and its collections.
func WithLogger(l *zap.Logger) Option {
	return func(d *Database) {
		d.logger = l
	}
}

// Option configures a [Database].
type Option func(*Database)

// Backend stores collections by name, such as a directory of files or a
// SQLite database.
type Backend interface {
	domain.Catalog
	// Persistence returns the backend of the named collection.
	Persistence(name string) (domain.Persistence, error)
}

// WithBackend sets both the persistence factory and the catalog from b.
func WithBackend(b Backend) Option {
	return func(d *Database) {
		d.persistenceFactory = b.Persistence
		d.catalog = b
	}
}
