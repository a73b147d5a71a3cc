package collection

import (
	"github.com/vinicius-lino-figueiredo/jsongo/domain"
	"go.uber.org/zap"
)

// WithPersistence sets the backend documents are loaded from and saved to.
func WithPersistence(p domain.Persistence) Option {
	return func(c *Collection) {
		c.persistence = p
	}
}

// WithResolver sets the resolver used by Fsck to find related collections.
func WithResolver(r domain.Resolver) Option {
	return func(c *Collection) {
		c.resolver = r
	}
}

// WithQuerier sets the querier used by find operations.
func WithQuerier(q domain.Querier) Option {
	return func(c *Collection) {
		c.querier = q
	}
}

// WithMatcher sets the matcher used by delete operations.
func WithMatcher(m domain.Matcher) Option {
	return func(c *Collection) {
		c.matcher = m
	}
}

// WithComparer sets the comparer used to compare ids.
func WithComparer(cmp domain.Comparer) Option {
	return func(c *Collection) {
		c.comparer = cmp
	}
}

// WithHasher sets the hasher used to find repeated ids in a batch.
func WithHasher(h domain.Hasher) Option {
	return func(c *Collection) {
		c.hasher = h
	}
}

// WithIDGenerator sets the generator of ids for documents inserted without
// one.
func WithIDGenerator(g domain.IDGenerator) Option {
	return func(c *Collection) {
		c.idGenerator = g
	}
}

// WithSerializer sets the serializer used by ToJSON and ToJSONObj.
func WithSerializer(s domain.Serializer) Option {
	return func(c *Collection) {
		c.serializer = s
	}
}

// WithDocumentFactory sets the function that turns user input into
// documents. It must return a deep copy.
func WithDocumentFactory(f domain.DocumentFactory) Option {
	return func(c *Collection) {
		c.documentFactory = f
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Collection) {
		c.logger = l
	}
}

// Option configures a [Collection].
type Option func(*Collection)
