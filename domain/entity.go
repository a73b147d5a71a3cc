package domain

// Messages of [IntegrityViolation].
const (
	ViolationNoMatch       = "no matching related document"
	ViolationManyMatches   = "more than one related document"
	ViolationRelationList  = "relation lists are not supported"
	ViolationInvalidTarget = "invalid relation target"
)

// IntegrityViolation is one problem found by Fsck. Violations are returned
// as data, never raised.
type IntegrityViolation struct {
	Message    string   `json:"error" jsongo:"error"`
	Collection string   `json:"collection" jsongo:"collection"`
	Doc        Document `json:"doc" jsongo:"doc"`
	Field      string   `json:"field" jsongo:"field"`
}

// DeleteResult is returned by delete operations.
type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount" jsongo:"deletedCount"`
}

// Sort represents an ordered list of fields which should be used to sort query
// results, applied in sequence.
type Sort = []SortName

// SortName represents a single field and the order which should be used to sort
// it. A positive Order value means ascending order and a negative value means
// descending order.
type SortName struct {
	Key   string
	Order int64
}

// DocumentFactory represents a function that constructs [Document] instances
// from maps and structs. If nil is provided, returns an empty document.
type DocumentFactory = func(any) (Document, error)

// PersistenceFactory returns the backend of the named collection.
type PersistenceFactory = func(name string) (Persistence, error)
