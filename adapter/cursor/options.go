package cursor

import "github.com/vinicius-lino-figueiredo/jsongo/domain"

// WithDecoder sets the decoder used by [Cursor.Scan].
func WithDecoder(d domain.Decoder) Option {
	return func(c *Cursor) {
		c.dec = d
	}
}

// WithPredicate sets the filter evaluated by [Cursor.Next]. A nil predicate
// accepts every document.
func WithPredicate(p domain.Predicate) Option {
	return func(c *Cursor) {
		c.pred = p
	}
}

// WithSkip sets how many accepted documents are skipped before the first one
// is returned.
func WithSkip(s int64) Option {
	return func(c *Cursor) {
		c.skip = s
	}
}

// WithLimit sets the maximum number of returned documents. Zero or less means
// no limit.
func WithLimit(l int64) Option {
	return func(c *Cursor) {
		c.limit = l
	}
}

// Option configures cursor behavior through the functional options pattern.
type Option func(*Cursor)
