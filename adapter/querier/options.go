package querier

import "github.com/vinicius-lino-figueiredo/jsongo/domain"

// WithMatcher sets the matcher implementation for querier evaluations.
func WithMatcher(m domain.Matcher) Option {
	return func(q *Querier) {
		q.mtchr = m
	}
}

// WithComparer sets the comparer implementation for sorting operations.
func WithComparer(c domain.Comparer) Option {
	return func(q *Querier) {
		q.cmpr = c
	}
}

// WithFieldNavigator sets the field navigator for accessing document fields.
func WithFieldNavigator(f domain.FieldNavigator) Option {
	return func(q *Querier) {
		q.fn = f
	}
}

// WithDecoder sets the decoder used by the returned cursors.
func WithDecoder(d domain.Decoder) Option {
	return func(q *Querier) {
		q.dec = d
	}
}

// Option configures querier behavior through the functional options
// pattern.
type Option func(*Querier)
