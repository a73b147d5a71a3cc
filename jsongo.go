// Package jsongo provides an embedded, schema-less JSON document store.
//
// A [Database] is a registry of named collections. Each [Collection] holds
// documents with a unique "_id" field, answers MongoDB-like queries and can
// be saved as one canonical JSON file, whose bytes only depend on the stored
// content, so the files diff well under version control.
//
// The basic usage starts with creating a new [Database], which can be done by
// calling [NewMemDB], [NewFSDB] or [NewDB].
package jsongo

import (
	"context"
	"io"
	"os"

	"github.com/vinicius-lino-figueiredo/jsongo/adapter/collection"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/data"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/database"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/idgenerator"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/integrity"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/persistence"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/sqlite"
	"github.com/vinicius-lino-figueiredo/jsongo/domain"
	"go.uber.org/zap"
)

var (
	// ErrCursorClosed is returned when trying to use a closed [Cursor].
	ErrCursorClosed = domain.ErrCursorClosed
	// ErrScanBeforeNext is returned when calling [Cursor.Scan] before
	// calling [Cursor.Next].
	ErrScanBeforeNext = domain.ErrScanBeforeNext
	// ErrTargetNil is returned when a nil value is given as a target to
	// decode data, for example calling [Cursor.Scan].
	ErrTargetNil = domain.ErrTargetNil
	// ErrNonPointer is returned when the decode target is not a pointer.
	ErrNonPointer = domain.ErrNonPointer
	// ErrNoResolver is returned by [Collection.Fsck] on a collection that
	// does not belong to a [Database].
	ErrNoResolver = domain.ErrNoResolver
)

// ErrDocumentNotFound is returned by [Collection.FindOneOrFail] when no
// document matches. It carries the criteria used.
type ErrDocumentNotFound = domain.ErrDocumentNotFound

// ErrDuplicateDocumentID is returned when an insert targets an _id already
// present in the collection.
type ErrDuplicateDocumentID = domain.ErrDuplicateDocumentID

// ErrDuplicateInputID is returned when one batch holds the same explicit _id
// twice.
type ErrDuplicateInputID = domain.ErrDuplicateInputID

// ErrCollectionName is returned by [Database.Collection] for names that
// cannot be used as file names.
type ErrCollectionName = domain.ErrCollectionName

// ErrCorruptCollection is returned when persisted data is not a list of
// documents with _id.
type ErrCorruptCollection = domain.ErrCorruptCollection

// ErrDatafileName is returned when a data file name is reserved for the
// crash-safe temporary file.
type ErrDatafileName = domain.ErrDatafileName

// ErrDocumentType is returned when a value, or one of its sub values, cannot
// be stored in a document.
type ErrDocumentType = domain.ErrDocumentType

// ErrDecode is returned by [Decoder.Decode] to wrap third party decoding
// errors.
type ErrDecode = domain.ErrDecode

// ErrFlushToStorage is returned when a file cannot be synced to disk.
type ErrFlushToStorage = domain.ErrFlushToStorage

type (
	// Document is one record of a collection.
	Document = domain.Document
	// M is the default [Document] implementation. It can also be used to
	// write queries.
	M = data.M
	// Database is a registry of collections.
	Database = domain.Database
	// Collection is an ordered set of documents with unique _id values.
	Collection = domain.Collection
	// Cursor iterates lazily over query results.
	Cursor = domain.Cursor
	// IntegrityViolation is one problem found by Fsck.
	IntegrityViolation = domain.IntegrityViolation
	// DeleteResult is returned by delete operations.
	DeleteResult = domain.DeleteResult
	// Persistence is the backend of a single collection.
	Persistence = domain.Persistence
	// Catalog lists the collections present in a backing store.
	Catalog = domain.Catalog
	// Backend stores collections by name.
	Backend = database.Backend
	// IDGenerator mints identifiers for documents inserted without one.
	IDGenerator = domain.IDGenerator
	// Matcher evaluates queries.
	Matcher = domain.Matcher
	// Querier runs queries over a list of documents.
	Querier = domain.Querier
	// Serializer produces the canonical form of a document list.
	Serializer = domain.Serializer
	// Deserializer parses a persisted document list.
	Deserializer = domain.Deserializer
	// Storage provides crash-safe file operations.
	Storage = domain.Storage
	// Decoder converts documents to user-defined types.
	Decoder = domain.Decoder
	// Comparer orders JSON values.
	Comparer = domain.Comparer
	// FieldNavigator resolves dotted field paths.
	FieldNavigator = domain.FieldNavigator
	// Hasher hashes JSON values consistently with [Comparer].
	Hasher = domain.Hasher
	// DocumentFactory turns maps and structs into documents.
	DocumentFactory = domain.DocumentFactory
	// PersistenceFactory returns the backend of a named collection.
	PersistenceFactory = domain.PersistenceFactory
	// Sort lists the fields used to sort query results.
	Sort = domain.Sort
	// SortName is one field of a [Sort].
	SortName = domain.SortName
	// FindOption configures a query.
	FindOption = domain.FindOption
	// SQLiteStore keeps every collection in one SQLite database.
	SQLiteStore = sqlite.Store
	// Directory keeps every collection in a JSON file inside a directory.
	Directory = persistence.Directory
)

// Messages of [IntegrityViolation].
const (
	ViolationNoMatch       = domain.ViolationNoMatch
	ViolationManyMatches   = domain.ViolationManyMatches
	ViolationRelationList  = domain.ViolationRelationList
	ViolationInvalidTarget = domain.ViolationInvalidTarget
)

// NewDB creates a new [Database]. Without options, collections are kept in
// memory. Available options:
//
// - [WithBackend]: sets where collections are stored.
//
// - [WithPersistenceFactory]: sets the backend of each collection.
//
// - [WithCatalog]: sets the catalog listing persisted collections.
//
// - [WithLogger]: sets the logger.
//
// - [WithIDGenerator]: sets the generator of missing ids.
//
// - [WithMatcher], [WithQuerier], [WithSerializer], [WithComparer],
// [WithHasher], [WithDocumentFactory]: replace collection collaborators.
func NewDB(options ...Option) Database {
	return database.NewDatabase(options...)
}

// NewMemDB creates a [Database] whose collections are kept in memory only.
func NewMemDB(options ...Option) Database {
	return NewDB(options...)
}

// NewFSDB creates a [Database] storing each collection in
// "<dir>/<name>.json". File permissions can be set by passing
// [WithBackend] with a [NewDirectory] built with [WithFileMode] and
// [WithDirMode].
func NewFSDB(dir string, options ...Option) Database {
	options = append([]Option{WithBackend(NewDirectory(dir))}, options...)
	return NewDB(options...)
}

// NewDirectory returns a [Directory] backend storing collections as JSON
// files inside dir.
func NewDirectory(dir string, options ...FileOption) *Directory {
	return persistence.NewDirectory(dir, options...)
}

// OpenSQLite opens or creates a SQLite database at path, to be used with
// [WithBackend]. The returned store must be closed after use.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	return sqlite.Open(ctx, path)
}

// RelationTarget returns the collection targeted by a relation field name,
// like "customer" for "customer_id" or "Customer (customer_id)".
func RelationTarget(field string) (string, bool) {
	return integrity.RelationTarget(field)
}

// WithSort specifies the sort order of query results.
func WithSort(s Sort) FindOption {
	return domain.WithSort(s)
}

// WithSkip sets the number of matches to skip.
func WithSkip(s int64) FindOption {
	return domain.WithSkip(s)
}

// WithLimit sets the maximum number of matches. Zero means no limit.
func WithLimit(l int64) FindOption {
	return domain.WithLimit(l)
}

// Option configures a [Database].
type Option = database.Option

// WithBackend sets where collections are stored.
func WithBackend(b Backend) Option {
	return database.WithBackend(b)
}

// WithPersistenceFactory sets the function returning the backend of each
// collection.
func WithPersistenceFactory(f PersistenceFactory) Option {
	return database.WithPersistenceFactory(f)
}

// WithCatalog sets the catalog listing persisted collections.
func WithCatalog(c Catalog) Option {
	return database.WithCatalog(c)
}

// WithLogger sets the logger of the database and its collections.
func WithLogger(l *zap.Logger) Option {
	return database.WithLogger(l)
}

// WithIDGenerator sets the generator of ids for documents inserted without
// one.
func WithIDGenerator(g IDGenerator) Option {
	return database.WithCollectionOptions(collection.WithIDGenerator(g))
}

// WithRandomReader makes collections mint UUIDs read from r instead of
// ObjectIDs.
func WithRandomReader(r io.Reader) Option {
	return WithIDGenerator(idgenerator.NewUUIDGenerator(idgenerator.WithReader(r)))
}

// WithMatcher sets the matcher used by delete operations.
func WithMatcher(m Matcher) Option {
	return database.WithCollectionOptions(collection.WithMatcher(m))
}

// WithQuerier sets the querier used by find operations.
func WithQuerier(q Querier) Option {
	return database.WithCollectionOptions(collection.WithQuerier(q))
}

// WithSerializer sets the serializer used by ToJSON and ToJSONObj.
func WithSerializer(s Serializer) Option {
	return database.WithCollectionOptions(collection.WithSerializer(s))
}

// WithComparer sets the comparer used to compare ids.
func WithComparer(c Comparer) Option {
	return database.WithCollectionOptions(collection.WithComparer(c))
}

// WithHasher sets the hasher used to find repeated ids in a batch.
func WithHasher(h Hasher) Option {
	return database.WithCollectionOptions(collection.WithHasher(h))
}

// WithDocumentFactory sets the function turning user input into documents.
func WithDocumentFactory(d DocumentFactory) Option {
	return database.WithCollectionOptions(collection.WithDocumentFactory(d))
}

// FileOption configures a file backend.
type FileOption = persistence.Option

// WithFileMode sets the permissions of data files.
func WithFileMode(m os.FileMode) FileOption {
	return persistence.WithFileMode(m)
}

// WithDirMode sets the permissions of created directories.
func WithDirMode(m os.FileMode) FileOption {
	return persistence.WithDirMode(m)
}

// WithStorage sets the storage used for file operations.
func WithStorage(s Storage) FileOption {
	return persistence.WithStorage(s)
}

// WithFileLogger sets the logger of a file backend.
func WithFileLogger(l *zap.Logger) FileOption {
	return persistence.WithLogger(l)
}
