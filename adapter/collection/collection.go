// Package collection contains the default [domain.Collection]
// implementation.
//
// A collection keeps its documents in memory, in insertion order, and reads
// them from its [domain.Persistence] the first time they are needed. Every
// mutation checks the _id uniqueness before changing anything, so a failed
// call leaves the collection as it was. Stored documents are never handed to
// callers; every returned document is a copy.
package collection

import (
	"context"
	"slices"

	"github.com/vinicius-lino-figueiredo/jsongo/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/data"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/hasher"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/idgenerator"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/integrity"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/matcher"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/persistence"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/querier"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/serializer"
	"github.com/vinicius-lino-figueiredo/jsongo/domain"
	"github.com/vinicius-lino-figueiredo/jsongo/pkg/ctxsync"
	"github.com/vinicius-lino-figueiredo/jsongo/pkg/uncomparable"
	"go.uber.org/zap"
)

type loadState uint8

const (
	unloaded loadState = iota
	loaded
	loadFailed
)

// Collection implements [domain.Collection].
type Collection struct {
	name            string
	persistence     domain.Persistence
	resolver        domain.Resolver
	querier         domain.Querier
	matcher         domain.Matcher
	comparer        domain.Comparer
	hasher          domain.Hasher
	idGenerator     domain.IDGenerator
	serializer      domain.Serializer
	documentFactory domain.DocumentFactory
	logger          *zap.Logger
	executor        *ctxsync.Mutex

	state   loadState
	loadErr error
	docs    []domain.Document
	dirty   bool
}

// NewCollection returns a new implementation of [domain.Collection]. Without
// a persistence option the collection lives in memory only.
func NewCollection(name string, options ...Option) domain.Collection {
	c := Collection{
		name:            name,
		persistence:     persistence.NewMemory(),
		comparer:        comparer.NewComparer(),
		hasher:          hasher.NewHasher(),
		idGenerator:     idgenerator.NewIDGenerator(),
		serializer:      serializer.NewSerializer(),
		documentFactory: data.NewDocument,
		logger:          zap.NewNop(),
		executor:        ctxsync.NewMutex(),
	}
	for _, option := range options {
		option(&c)
	}
	if c.matcher == nil {
		c.matcher = matcher.NewMatcher(matcher.WithComparer(c.comparer))
	}
	if c.querier == nil {
		c.querier = querier.NewQuerier(
			querier.WithComparer(c.comparer),
			querier.WithMatcher(c.matcher),
		)
	}
	return &c
}

// Name implements [domain.Collection].
func (c *Collection) Name() string {
	return c.name
}

// IsDirty implements [domain.Collection].
func (c *Collection) IsDirty() bool {
	c.executor.Lock()
	defer c.executor.Unlock()
	return c.dirty
}

// lock acquires the executor and loads the documents if needed. The caller
// must unlock the executor when lock returns no error.
func (c *Collection) lock(ctx context.Context) error {
	if err := c.executor.LockWithContext(ctx); err != nil {
		return err
	}
	if err := c.load(ctx); err != nil {
		c.executor.Unlock()
		return err
	}
	return nil
}

func (c *Collection) load(ctx context.Context) error {
	switch c.state {
	case loaded:
		return nil
	case loadFailed:
		return c.loadErr
	}

	docs, found, err := c.persistence.Load(ctx)
	if err != nil {
		// a canceled load can be retried
		if ctx.Err() != nil {
			return err
		}
		c.state, c.loadErr = loadFailed, err
		c.logger.Debug("collection load failed",
			zap.String("collection", c.name),
			zap.Error(err),
		)
		return err
	}

	c.state, c.docs = loaded, docs
	if !found {
		c.dirty = true
	}
	c.logger.Debug("collection loaded",
		zap.String("collection", c.name),
		zap.Int("documents", len(docs)),
		zap.Bool("found", found),
	)
	return nil
}

// snapshot returns the current document list. Stored documents are replaced,
// never modified, so the snapshot stays valid after the executor is released.
func (c *Collection) snapshot(ctx context.Context) ([]domain.Document, error) {
	if err := c.lock(ctx); err != nil {
		return nil, err
	}
	defer c.executor.Unlock()
	return slices.Clone(c.docs), nil
}

// Docs implements [domain.Collection].
func (c *Collection) Docs(ctx context.Context) ([]domain.Document, error) {
	docs, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	for n, doc := range docs {
		docs[n] = data.Clone(doc)
	}
	return docs, nil
}

// Count implements [domain.Collection].
func (c *Collection) Count(ctx context.Context) (int, error) {
	if err := c.lock(ctx); err != nil {
		return 0, err
	}
	defer c.executor.Unlock()
	return len(c.docs), nil
}

// CountID implements [domain.Collection].
func (c *Collection) CountID(ctx context.Context, id any) (int, error) {
	id, err := data.NormalizeValue(id)
	if err != nil {
		return 0, err
	}

	if err := c.lock(ctx); err != nil {
		return 0, err
	}
	defer c.executor.Unlock()

	count := 0
	for _, doc := range c.docs {
		comp, err := c.comparer.Compare(doc.ID(), id)
		if err != nil {
			return 0, err
		}
		if comp == 0 {
			count++
		}
	}
	return count, nil
}

// indexOf returns the position of the document with the given id, or -1.
func (c *Collection) indexOf(id any) (int, error) {
	for n, doc := range c.docs {
		comp, err := c.comparer.Compare(doc.ID(), id)
		if err != nil {
			return -1, err
		}
		if comp == 0 {
			return n, nil
		}
	}
	return -1, nil
}

// Find implements [domain.Collection].
func (c *Collection) Find(ctx context.Context, criteria any, options ...domain.FindOption) (domain.Cursor, error) {
	docs, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return c.querier.Query(ctx, docs, criteria, options...)
}

// FindOne implements [domain.Collection].
func (c *Collection) FindOne(ctx context.Context, criteria any) (domain.Document, error) {
	cur, err := c.Find(ctx, criteria, domain.WithLimit(1))
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	if !cur.Next() {
		return nil, cur.Err()
	}
	return cur.Document(), nil
}

// FindOneOrFail implements [domain.Collection].
func (c *Collection) FindOneOrFail(ctx context.Context, criteria any) (domain.Document, error) {
	doc, err := c.FindOne(ctx, criteria)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrDocumentNotFound{Criteria: criteria}
	}
	return doc, nil
}

// Exists implements [domain.Collection].
func (c *Collection) Exists(ctx context.Context, criteria any) (bool, error) {
	cur, err := c.Find(ctx, criteria, domain.WithLimit(1))
	if err != nil {
		return false, err
	}
	defer cur.Close()

	if cur.Next() {
		return true, nil
	}
	return false, cur.Err()
}

// prepare turns user input into documents owned by the collection and
// rejects ids repeated within the input.
func (c *Collection) prepare(input []any) ([]domain.Document, error) {
	seen := uncomparable.New[struct{}](c.hasher, c.comparer)
	docs := make([]domain.Document, len(input))
	for n, in := range input {
		doc, err := c.documentFactory(in)
		if err != nil {
			return nil, err
		}
		docs[n] = doc
		if !doc.Has("_id") {
			continue
		}
		_, repeated, err := seen.Get(doc.ID())
		if err != nil {
			return nil, err
		}
		if repeated {
			return nil, domain.ErrDuplicateInputID{ID: doc.ID()}
		}
		if err := seen.Set(doc.ID(), struct{}{}); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// assignID mints an id for doc if it has none.
func (c *Collection) assignID(doc domain.Document) error {
	if doc.Has("_id") {
		return nil
	}
	id, err := c.idGenerator.NewID()
	if err != nil {
		return err
	}
	doc.Set("_id", id)
	return nil
}

func (c *Collection) clones(docs []domain.Document) []domain.Document {
	res := make([]domain.Document, len(docs))
	for n, doc := range docs {
		res[n] = data.Clone(doc)
	}
	return res
}

// InsertOne implements [domain.Collection].
func (c *Collection) InsertOne(ctx context.Context, doc any) (domain.Document, error) {
	docs, err := c.InsertMany(ctx, doc)
	if err != nil {
		return nil, err
	}
	return docs[0], nil
}

// InsertMany implements [domain.Collection].
func (c *Collection) InsertMany(ctx context.Context, docs ...any) ([]domain.Document, error) {
	if err := c.lock(ctx); err != nil {
		return nil, err
	}
	defer c.executor.Unlock()

	prepared, err := c.prepare(docs)
	if err != nil {
		return nil, err
	}

	for _, doc := range prepared {
		if !doc.Has("_id") {
			continue
		}
		idx, err := c.indexOf(doc.ID())
		if err != nil {
			return nil, err
		}
		if idx >= 0 {
			return nil, domain.ErrDuplicateDocumentID{ID: doc.ID(), Collection: c.name}
		}
	}

	for _, doc := range prepared {
		if err := c.assignID(doc); err != nil {
			return nil, err
		}
	}

	if len(prepared) > 0 {
		c.docs = append(c.docs, prepared...)
		c.dirty = true
	}
	return c.clones(prepared), nil
}

// UpsertOne implements [domain.Collection].
func (c *Collection) UpsertOne(ctx context.Context, doc any) (domain.Document, error) {
	docs, err := c.UpsertMany(ctx, doc)
	if err != nil {
		return nil, err
	}
	return docs[0], nil
}

// UpsertMany implements [domain.Collection]. Documents whose _id is already
// stored replace it at its position; the others are appended in input order.
func (c *Collection) UpsertMany(ctx context.Context, docs ...any) ([]domain.Document, error) {
	if err := c.lock(ctx); err != nil {
		return nil, err
	}
	defer c.executor.Unlock()

	prepared, err := c.prepare(docs)
	if err != nil {
		return nil, err
	}

	replaced := make(map[int]domain.Document)
	var appended []domain.Document
	for _, doc := range prepared {
		if doc.Has("_id") {
			idx, err := c.indexOf(doc.ID())
			if err != nil {
				return nil, err
			}
			if idx >= 0 {
				replaced[idx] = doc
				continue
			}
		}
		if err := c.assignID(doc); err != nil {
			return nil, err
		}
		appended = append(appended, doc)
	}

	if len(prepared) > 0 {
		for idx, doc := range replaced {
			c.docs[idx] = doc
		}
		c.docs = append(c.docs, appended...)
		c.dirty = true
	}
	return c.clones(prepared), nil
}

// DeleteOne implements [domain.Collection].
func (c *Collection) DeleteOne(ctx context.Context, criteria any) (domain.DeleteResult, error) {
	return c.delete(ctx, criteria, false)
}

// DeleteMany implements [domain.Collection].
func (c *Collection) DeleteMany(ctx context.Context, criteria any) (domain.DeleteResult, error) {
	return c.delete(ctx, criteria, true)
}

// delete builds a new list without the matching documents, so the stored
// list is never modified while it is scanned.
func (c *Collection) delete(ctx context.Context, criteria any, many bool) (domain.DeleteResult, error) {
	pred, err := c.matcher.Compile(criteria)
	if err != nil {
		return domain.DeleteResult{}, err
	}

	if err := c.lock(ctx); err != nil {
		return domain.DeleteResult{}, err
	}
	defer c.executor.Unlock()

	kept := make([]domain.Document, 0, len(c.docs))
	var removed int64
	for _, doc := range c.docs {
		if removed > 0 && !many {
			kept = append(kept, doc)
			continue
		}
		match, err := pred(doc)
		if err != nil {
			return domain.DeleteResult{}, err
		}
		if match {
			removed++
			continue
		}
		kept = append(kept, doc)
	}

	if removed > 0 {
		c.docs = kept
		c.dirty = true
	}
	return domain.DeleteResult{DeletedCount: removed}, nil
}

// ToJSONObj implements [domain.Collection].
func (c *Collection) ToJSONObj(ctx context.Context) ([]domain.Document, error) {
	docs, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return c.serializer.Canonicalize(ctx, docs)
}

// ToJSON implements [domain.Collection].
func (c *Collection) ToJSON(ctx context.Context) ([]byte, error) {
	docs, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return c.serializer.Serialize(ctx, docs)
}

// Fsck implements [domain.Collection]. The executor is released before
// related collections are resolved, so a collection may relate to itself.
func (c *Collection) Fsck(ctx context.Context) ([]domain.IntegrityViolation, error) {
	if c.resolver == nil {
		return nil, domain.ErrNoResolver
	}
	docs, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return integrity.Check(ctx, c.resolver, c.name, docs)
}

// Save implements [domain.Collection].
func (c *Collection) Save(ctx context.Context) error {
	if err := c.lock(ctx); err != nil {
		return err
	}
	defer c.executor.Unlock()

	if err := c.persistence.Save(ctx, c.docs); err != nil {
		return err
	}
	c.dirty = false
	c.logger.Debug("collection saved",
		zap.String("collection", c.name),
		zap.Int("documents", len(c.docs)),
	)
	return nil
}
