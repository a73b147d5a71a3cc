// Package cursor contains the default [domain.Cursor] implementation.
//
// The cursor walks a snapshot of a document list and evaluates its predicate
// only when [Cursor.Next] is called, so abandoning a cursor early skips the
// remaining matches.
package cursor

import (
	"context"

	"github.com/vinicius-lino-figueiredo/jsongo/adapter/data"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/decoder"
	"github.com/vinicius-lino-figueiredo/jsongo/domain"
)

// Cursor implements domain.Cursor.
type Cursor struct {
	data     []domain.Document
	ctx      context.Context
	cancel   context.CancelCauseFunc
	dec      domain.Decoder
	pred     domain.Predicate
	skip     int64
	limit    int64
	pos      int
	skipped  int64
	returned int64
	current  domain.Document
	err      error
}

// NewCursor returns a new implementation of Cursor over dt. dt is not
// copied and must not be modified while the cursor is in use.
func NewCursor(ctx context.Context, dt []domain.Document, options ...Option) (domain.Cursor, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	ctx, cancel := context.WithCancelCause(ctx)
	cur := &Cursor{
		ctx:    ctx,
		cancel: cancel,
		dec:    decoder.NewDecoder(),
		data:   dt,
	}

	for _, option := range options {
		option(cur)
	}

	return cur, nil
}

// Err implements domain.Cursor.
func (c *Cursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return context.Cause(c.ctx)
}

// Next implements domain.Cursor.
func (c *Cursor) Next() bool {
	c.current = nil
	if c.err != nil || c.ctx.Err() != nil {
		return false
	}
	if c.limit > 0 && c.returned >= c.limit {
		return false
	}
	for c.pos < len(c.data) {
		doc := c.data[c.pos]
		c.pos++
		if c.pred != nil {
			matches, err := c.pred(doc)
			if err != nil {
				c.err = err
				return false
			}
			if !matches {
				continue
			}
		}
		if c.skipped < c.skip {
			c.skipped++
			continue
		}
		c.current = doc
		c.returned++
		return true
	}
	return false
}

// Document implements domain.Cursor.
func (c *Cursor) Document() domain.Document {
	return data.Clone(c.current)
}

// Scan implements domain.Cursor.
func (c *Cursor) Scan(ctx context.Context, target any) error {
	select {
	case <-c.ctx.Done():
		return c.ctx.Err()
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if c.current == nil {
		return domain.ErrScanBeforeNext
	}
	return c.dec.Decode(data.Clone(c.current), target)
}

// All implements domain.Cursor.
func (c *Cursor) All() ([]domain.Document, error) {
	res := make([]domain.Document, 0)
	for c.Next() {
		res = append(res, c.Document())
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close implements domain.Cursor.
func (c *Cursor) Close() error {
	select {
	case <-c.ctx.Done():
		return context.Cause(c.ctx)
	default:
	}
	c.cancel(domain.ErrCursorClosed)
	c.data = nil
	c.current = nil
	return nil
}
