// Package deserializer contains the default [domain.Deserializer]
// implementation.
package deserializer

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/vinicius-lino-figueiredo/jsongo/adapter/data"
	"github.com/vinicius-lino-figueiredo/jsongo/domain"
)

// NewDeserializer returns a new instance of domain.Deserializer.
func NewDeserializer() domain.Deserializer {
	return &Deserializer{}
}

// Deserializer implements [domain.Deserializer].
type Deserializer struct{}

// Deserialize implements [domain.Deserializer]. b must hold a JSON array of
// objects, each one with an _id key. Empty input is an empty list. Problems
// are reported as [domain.ErrCorruptCollection] with no collection name, so
// the caller can set it.
func (d *Deserializer) Deserialize(ctx context.Context, b []byte) ([]domain.Document, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if len(bytes.TrimSpace(b)) == 0 {
		return make([]domain.Document, 0), nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, domain.ErrCorruptCollection{Index: -1, Reason: err.Error()}
	}
	if raw == nil {
		return nil, domain.ErrCorruptCollection{Index: -1, Reason: "expected array, got null"}
	}

	res := make([]domain.Document, len(raw))
	for n, item := range raw {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var doc data.M
		if err := json.Unmarshal(item, &doc); err != nil {
			return nil, domain.ErrCorruptCollection{Index: n, Reason: err.Error()}
		}
		if !doc.Has("_id") {
			return nil, domain.ErrCorruptCollection{Index: n, Reason: "missing _id"}
		}
		res[n] = doc
	}
	return res, nil
}
