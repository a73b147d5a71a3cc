// Package database contains the default [domain.Database] implementation, a
// registry creating collections on first use.
package database

import (
	"context"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/vinicius-lino-figueiredo/jsongo/adapter/collection"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/persistence"
	"github.com/vinicius-lino-figueiredo/jsongo/domain"
	"github.com/vinicius-lino-figueiredo/jsongo/pkg/ctxsync"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Database implements [domain.Database].
type Database struct {
	persistenceFactory domain.PersistenceFactory
	catalog            domain.Catalog
	collectionOptions  []collection.Option
	logger             *zap.Logger
	executor           *ctxsync.Mutex
	collections        map[string]domain.Collection
}

// NewDatabase returns a new implementation of [domain.Database].
func NewDatabase(options ...Option) domain.Database {
	d := Database{
		persistenceFactory: func(string) (domain.Persistence, error) {
			return persistence.NewMemory(), nil
		},
		logger:      zap.NewNop(),
		executor:    ctxsync.NewMutex(),
		collections: make(map[string]domain.Collection),
	}
	for _, option := range options {
		option(&d)
	}
	return &d
}

// ValidateName returns [domain.ErrCollectionName] if name cannot be used as a
// collection name.
func ValidateName(name string) error {
	var reason string
	switch {
	case name == "":
		reason = "cannot be empty"
	case strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, os.PathSeparator):
		reason = "cannot contain a path separator"
	case strings.HasPrefix(name, "."):
		reason = "cannot start with '.'"
	case strings.HasSuffix(name, "~"):
		reason = "cannot end with '~', reserved for temporary files"
	default:
		return nil
	}
	return domain.ErrCollectionName{Name: name, Reason: reason}
}

// Collection implements [domain.Resolver].
func (d *Database) Collection(name string) (domain.Collection, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	d.executor.Lock()
	defer d.executor.Unlock()

	if coll, ok := d.collections[name]; ok {
		return coll, nil
	}

	p, err := d.persistenceFactory(name)
	if err != nil {
		return nil, err
	}

	options := []collection.Option{
		collection.WithLogger(d.logger),
	}
	options = append(options, d.collectionOptions...)
	options = append(options,
		collection.WithPersistence(p),
		collection.WithResolver(d),
	)

	coll := collection.NewCollection(name, options...)
	d.collections[name] = coll
	d.logger.Debug("collection registered", zap.String("collection", name))
	return coll, nil
}

// registered returns the registered collections sorted by name.
func (d *Database) registered(ctx context.Context) ([]domain.Collection, error) {
	if err := d.executor.LockWithContext(ctx); err != nil {
		return nil, err
	}
	defer d.executor.Unlock()

	names := slices.Sorted(maps.Keys(d.collections))
	res := make([]domain.Collection, len(names))
	for n, name := range names {
		res[n] = d.collections[name]
	}
	return res, nil
}

// CollectionNames implements [domain.Database].
func (d *Database) CollectionNames(ctx context.Context) ([]string, error) {
	colls, err := d.registered(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(colls))
	for _, coll := range colls {
		names = append(names, coll.Name())
	}

	if d.catalog != nil {
		persisted, err := d.catalog.Names(ctx)
		if err != nil {
			return nil, err
		}
		for _, name := range persisted {
			if ValidateName(name) == nil {
				names = append(names, name)
			}
		}
	}

	slices.Sort(names)
	return slices.Compact(names), nil
}

// SaveAll implements [domain.Database]. Every dirty collection is saved, in
// name order, even after a failure; all failures are returned combined.
func (d *Database) SaveAll(ctx context.Context) error {
	colls, err := d.registered(ctx)
	if err != nil {
		return err
	}

	var errs error
	saved := 0
	for _, coll := range colls {
		if !coll.IsDirty() {
			continue
		}
		if err := coll.Save(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("saving collection %q: %w", coll.Name(), err))
			continue
		}
		saved++
	}

	d.logger.Debug("saved dirty collections",
		zap.Int("saved", saved),
		zap.Int("failed", len(multierr.Errors(errs))),
	)
	return errs
}

// Fsck implements [domain.Database]. It checks every collection returned by
// CollectionNames.
func (d *Database) Fsck(ctx context.Context) ([]domain.IntegrityViolation, error) {
	names, err := d.CollectionNames(ctx)
	if err != nil {
		return nil, err
	}

	violations := make([]domain.IntegrityViolation, 0)
	for _, name := range names {
		coll, err := d.Collection(name)
		if err != nil {
			return nil, err
		}
		found, err := coll.Fsck(ctx)
		if err != nil {
			return nil, err
		}
		violations = append(violations, found...)
	}
	return violations, nil
}
