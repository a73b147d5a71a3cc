// Package domain contains domain-specific interfaces, errors and option types
// for jsongo.
//
// This package defines the core interfaces implemented by adapters, so a
// collection can be assembled from interchangeable collaborators: a query
// engine (matcher, querier, cursor), an id generator and a persistence
// backend.
package domain

import (
	"context"
	"io"
	"iter"
	"os"
)

// Document represents one record of a collection: an open key-value mapping
// whose mandatory "_id" field identifies it. Document is used by one
// goroutine at a time and doesn't need to be concurrency safe.
type Document interface {
	// ID returns the document ID, if any, or nil.
	ID() any
	// D returns the subdocument for the given key, if any.
	D(string) Document
	// Get returns the value under the given key, or nil if unset.
	Get(string) any
	// Set sets the value under the given key.
	Set(string, any)
	// Unset unsets the value under the given key.
	Unset(string)
	// Iter returns an unordered sequence of key-value pairs in the
	// document.
	Iter() iter.Seq2[string, any]
	// Keys returns an unordered sequence of keys in the document.
	Keys() iter.Seq[string]
	// Has reports whether a value is set under the given key.
	Has(string) bool
	// Len returns the number of set fields in the document.
	Len() int
}

// Getter represents a value that can be treated as undefined.
type Getter interface {
	// Get returns the value for the given address and a bool that indicates
	// whether the value counts as defined or not. If an address points to
	// an unset key in a document, an out of bounds index in an array or
	// any address within a primitive value, it counts as undefined. An
	// explicit nil is defined.
	Get() (value any, defined bool)
}

// FieldNavigator provides field access with dot notation support.
type FieldNavigator interface {
	// GetAddress splits a field address into path parts.
	GetAddress(field string) ([]string, error)
	// GetField extracts values from nested documents, following path
	// parts. The returned bool reports whether an array was expanded on
	// the way, in which case more than one value can be returned.
	GetField(any, ...string) ([]Getter, bool, error)
}

// Comparer provides ordering and comparison operations for JSON values.
type Comparer interface {
	// Compare returns -1, 0, or 1 based on the comparison of two values.
	Compare(any, any) (int, error)
	// Comparable returns true if two values can be ordered against each
	// other (numbers with numbers, strings with strings).
	Comparable(any, any) bool
}

// Hasher generates hash values consistent with [Comparer] equality.
type Hasher interface {
	// Hash generates a hash value for the given data.
	Hash(any) (uint64, error)
}

// Predicate reports whether a document matches a compiled query.
type Predicate = func(Document) (bool, error)

// Matcher evaluates whether values match query criteria.
type Matcher interface {
	// Match returns true if the value matches the query.
	Match(value any, query any) (bool, error)
	// Compile parses the query once and returns a reusable predicate.
	Compile(query any) (Predicate, error)
}

// Querier runs a query against a list of documents.
type Querier interface {
	// Query returns a lazy cursor over the documents matching criteria,
	// in list order unless a sort option is given.
	Query(ctx context.Context, docs []Document, criteria any, options ...FindOption) (Cursor, error)
}

// Cursor provides lazy, forward-only iteration over query results.
type Cursor interface {
	// Next advances the cursor to the next matching document, returning
	// true if one is available.
	Next() bool
	// Document returns a copy of the current document.
	Document() Document
	// Scan decodes the current document into target.
	Scan(ctx context.Context, target any) error
	// All drains the remaining documents into a list.
	All() ([]Document, error)
	// Err returns any error that occurred during iteration.
	Err() error
	// Close releases cursor resources.
	Close() error
}

// IDGenerator mints identifiers for documents inserted without one.
type IDGenerator interface {
	// NewID returns a new universally unique identifier.
	NewID() (string, error)
}

// Decoder converts documents to user-defined types.
type Decoder interface {
	// Decode converts source into target, which must be a pointer.
	Decode(source any, target any) error
}

// Serializer produces the canonical form of a document list.
type Serializer interface {
	// Canonicalize returns the documents sorted by _id.
	Canonicalize(ctx context.Context, docs []Document) ([]Document, error)
	// Serialize returns the canonical JSON text of docs, including the
	// trailing newline.
	Serialize(ctx context.Context, docs []Document) ([]byte, error)
}

// Deserializer parses a persisted document list.
type Deserializer interface {
	// Deserialize parses a JSON array of documents.
	Deserialize(ctx context.Context, b []byte) ([]Document, error)
}

// Storage provides low-level file operations with crash-safety guarantees.
type Storage interface {
	// Exists checks if a file exists.
	Exists(string) (bool, error)
	// EnsureParentDirectoryExists creates parent directories if needed.
	EnsureParentDirectoryExists(string, os.FileMode) error
	// RecoverDatafile moves a leftover temporary file into place when the
	// data file itself is missing. It reports whether it did so.
	RecoverDatafile(string) (bool, error)
	// CrashSafeWriteFile atomically replaces the file contents.
	CrashSafeWriteFile(string, []byte, os.FileMode, os.FileMode) error
	// ReadFileStream opens a file for streaming reads.
	ReadFileStream(string) (io.ReadCloser, error)
	// List returns the base names of the files in dir with the given
	// extension, without the extension.
	List(dir string, ext string) ([]string, error)
	// Remove deletes a file.
	Remove(string) error
}

// Persistence is the backend of a single collection.
type Persistence interface {
	// Load reads the persisted documents. found is false when the backing
	// resource does not exist.
	Load(ctx context.Context) (docs []Document, found bool, err error)
	// Save replaces the persisted documents.
	Save(ctx context.Context, docs []Document) error
}

// Catalog lists the collections present in a backing store.
type Catalog interface {
	// Names returns the names of the persisted collections.
	Names(ctx context.Context) ([]string, error)
}

// Resolver resolves a collection by name, creating it if needed.
type Resolver interface {
	// Collection returns the collection with the given name.
	Collection(name string) (Collection, error)
}

// Collection is an ordered set of documents with unique _id values.
type Collection interface {
	// Name returns the collection name.
	Name() string
	// IsDirty reports whether the collection has changes not yet saved.
	IsDirty() bool
	// Docs returns a copy of every document, loading them on first use.
	Docs(ctx context.Context) ([]Document, error)
	// Count returns the number of documents.
	Count(ctx context.Context) (int, error)
	// CountID returns the number of documents whose _id equals id.
	CountID(ctx context.Context, id any) (int, error)
	// Find returns a lazy cursor over the matching documents.
	Find(ctx context.Context, criteria any, options ...FindOption) (Cursor, error)
	// FindOne returns the first matching document or nil.
	FindOne(ctx context.Context, criteria any) (Document, error)
	// FindOneOrFail returns the first matching document or
	// [ErrDocumentNotFound].
	FindOneOrFail(ctx context.Context, criteria any) (Document, error)
	// Exists reports whether any document matches.
	Exists(ctx context.Context, criteria any) (bool, error)
	// InsertOne inserts a map or struct and returns the stored document.
	InsertOne(ctx context.Context, doc any) (Document, error)
	// InsertMany inserts every document or none of them.
	InsertMany(ctx context.Context, docs ...any) ([]Document, error)
	// UpsertOne replaces the document with the same _id in place or
	// inserts it.
	UpsertOne(ctx context.Context, doc any) (Document, error)
	// UpsertMany upserts every document or none of them.
	UpsertMany(ctx context.Context, docs ...any) ([]Document, error)
	// DeleteOne removes the first matching document.
	DeleteOne(ctx context.Context, criteria any) (DeleteResult, error)
	// DeleteMany removes every matching document.
	DeleteMany(ctx context.Context, criteria any) (DeleteResult, error)
	// ToJSONObj returns the documents in canonical order.
	ToJSONObj(ctx context.Context) ([]Document, error)
	// ToJSON returns the canonical JSON text of the collection.
	ToJSON(ctx context.Context) ([]byte, error)
	// Fsck checks the relation fields of every document.
	Fsck(ctx context.Context) ([]IntegrityViolation, error)
	// Save writes the documents to the persistence backend.
	Save(ctx context.Context) error
}

// Database is a registry of collections.
type Database interface {
	Resolver
	// CollectionNames returns the sorted names of the registered and
	// persisted collections.
	CollectionNames(ctx context.Context) ([]string, error)
	// SaveAll saves every dirty collection.
	SaveAll(ctx context.Context) error
	// Fsck checks every collection.
	Fsck(ctx context.Context) ([]IntegrityViolation, error)
}
