package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrTargetNil is returned when the passed target, which should be a
	// pointer, is nil.
	ErrTargetNil = errors.New("target interface is nil")
	// ErrNonPointer is returned when the decode target is not a pointer.
	ErrNonPointer = errors.New("target should be a pointer")
	// ErrScanBeforeNext is returned when calling [Cursor.Scan] before
	// calling [Cursor.Next].
	ErrScanBeforeNext = errors.New("called Scan before calling Next")
	// ErrCursorClosed is returned when trying to use a closed [Cursor].
	ErrCursorClosed = errors.New("cursor is closed")
	// ErrNoResolver is returned by Fsck on a collection that does not
	// belong to a database.
	ErrNoResolver = errors.New("collection has no database to resolve relations")
)

// ErrDocumentNotFound is returned by FindOneOrFail when no document matches.
type ErrDocumentNotFound struct {
	Criteria any
}

// Error implements [error].
func (e ErrDocumentNotFound) Error() string {
	return fmt.Sprintf("no document matches %s", describe(e.Criteria))
}

// ErrDuplicateDocumentID is returned when an insert targets an _id that is
// already in the collection.
type ErrDuplicateDocumentID struct {
	ID         any
	Collection string
}

// Error implements [error].
func (e ErrDuplicateDocumentID) Error() string {
	return fmt.Sprintf("duplicate _id %s in collection %q", describe(e.ID), e.Collection)
}

// ErrDuplicateInputID is returned when a batch contains the same explicit _id
// twice.
type ErrDuplicateInputID struct {
	ID any
}

// Error implements [error].
func (e ErrDuplicateInputID) Error() string {
	return fmt.Sprintf("_id %s appears more than once in input", describe(e.ID))
}

// ErrCollectionName is returned when a collection name cannot be used.
type ErrCollectionName struct {
	Name   string
	Reason string
}

// Error implements [error].
func (e ErrCollectionName) Error() string {
	return fmt.Sprintf("invalid collection name %q: %s", e.Name, e.Reason)
}

// ErrCorruptCollection is returned when persisted data is not a list of
// documents.
type ErrCorruptCollection struct {
	Collection string
	Index      int
	Reason     string
}

// Error implements [error].
func (e ErrCorruptCollection) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("corrupt collection %q: %s", e.Collection, e.Reason)
	}
	return fmt.Sprintf("corrupt collection %q at document %d: %s", e.Collection, e.Index, e.Reason)
}

// ErrFlushToStorage is returned when a file cannot be synced to disk.
type ErrFlushToStorage struct {
	ErrorOnFsync error
	ErrorOnClose error
}

// Error implements [error].
func (e ErrFlushToStorage) Error() string {
	err := e.ErrorOnFsync
	if err == nil {
		err = e.ErrorOnClose
	}
	return fmt.Sprint("storage flush error: ", err)
}

// Unwrap returns the underlying error.
func (e ErrFlushToStorage) Unwrap() error {
	if e.ErrorOnFsync != nil {
		return e.ErrorOnFsync
	}
	return e.ErrorOnClose
}

// ErrDecode is used to wrap third party decoding errors.
type ErrDecode struct {
	Source any
	Target any
}

// Error implements [error].
func (e ErrDecode) Error() string {
	return fmt.Sprintf("cannot decode %T into %T", e.Source, e.Target)
}

func describe(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// ErrDocumentType is returned when a value, or one of its sub values, cannot
// be represented as a JSON document.
type ErrDocumentType struct {
	Reason string
}

// Error implements [error].
func (e ErrDocumentType) Error() string {
	return "invalid document: " + e.Reason
}

// ErrDatafileName is returned when a data file name cannot be used.
type ErrDatafileName struct {
	Name   string
	Reason string
}

// Error implements [error].
func (e ErrDatafileName) Error() string {
	return fmt.Sprintf("invalid datafile name %q: %s", e.Name, e.Reason)
}
