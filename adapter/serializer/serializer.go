// Package serializer contains the default [domain.Serializer] implementation,
// which produces the canonical form of a collection: documents stably sorted
// by _id and object keys sorted at every depth, indented with two spaces and
// followed by a newline. The same logical content always produces the same
// bytes.
package serializer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/vinicius-lino-figueiredo/jsongo/adapter/data"
	"github.com/vinicius-lino-figueiredo/jsongo/domain"
)

// Serializer implements domain.Serializer.
type Serializer struct{}

// NewSerializer returns a new implementation of domain.Serializer.
func NewSerializer() domain.Serializer {
	return &Serializer{}
}

// Canonicalize implements domain.Serializer. The returned documents are
// copies.
func (s *Serializer) Canonicalize(ctx context.Context, docs []domain.Document) ([]domain.Document, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	type keyed struct {
		key string
		doc domain.Document
	}
	items := make([]keyed, len(docs))
	for n, doc := range docs {
		key, err := s.sortKey(doc.ID())
		if err != nil {
			return nil, err
		}
		items[n] = keyed{key: key, doc: doc}
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		return strings.Compare(a.key, b.key)
	})

	res := make([]domain.Document, len(items))
	for n, item := range items {
		res[n] = data.Clone(item.doc)
	}
	return res, nil
}

// sortKey returns the case insensitive ordering key of an _id: the id itself
// if it is a string, its JSON text otherwise.
func (s *Serializer) sortKey(id any) (string, error) {
	if str, ok := id.(string); ok {
		return strings.ToUpper(str), nil
	}
	b, err := json.Marshal(id)
	if err != nil {
		return "", fmt.Errorf("encoding _id: %w", err)
	}
	return strings.ToUpper(string(b)), nil
}

// Serialize implements domain.Serializer.
func (s *Serializer) Serialize(ctx context.Context, docs []domain.Document) ([]byte, error) {
	sorted, err := s.Canonicalize(ctx, docs)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sorted); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
