// Package fieldnavigator resolves dot notation addresses inside documents.
//
// Each address part is a document key or, for lists, either an index or a key
// that is looked up in every element of the list ("expansion"). Lists nested
// directly inside an expanded list are not expanded again.
package fieldnavigator

import (
	"strconv"
	"strings"

	"github.com/vinicius-lino-figueiredo/jsongo/domain"
)

// FieldNavigator implements [domain.FieldNavigator].
type FieldNavigator struct{}

// NewFieldNavigator returns a new instance of [domain.FieldNavigator].
func NewFieldNavigator() domain.FieldNavigator {
	return &FieldNavigator{}
}

// GetAddress implements [domain.FieldNavigator].
func (fn *FieldNavigator) GetAddress(field string) ([]string, error) {
	return strings.Split(field, "."), nil
}

// GetField implements [domain.FieldNavigator].
func (fn *FieldNavigator) GetField(obj any, fieldParts ...string) ([]domain.Getter, bool, error) {
	if obj == nil {
		return []domain.Getter{NewUndefined()}, false, nil
	}
	res, expanded := fn.walk(obj, fieldParts, true)
	return res, expanded, nil
}

func (fn *FieldNavigator) walk(v any, parts []string, expandable bool) ([]domain.Getter, bool) {
	if len(parts) == 0 {
		return []domain.Getter{NewGetter(v)}, false
	}
	part := parts[0]

	switch t := v.(type) {
	case domain.Document:
		if !t.Has(part) {
			return []domain.Getter{NewUndefined()}, false
		}
		return fn.walk(t.Get(part), parts[1:], true)
	case []any:
		if i, err := strconv.Atoi(part); err == nil {
			if i < 0 || i >= len(t) {
				return []domain.Getter{NewUndefined()}, false
			}
			return fn.walk(t[i], parts[1:], true)
		}
		if !expandable {
			return []domain.Getter{NewUndefined()}, false
		}
		res := make([]domain.Getter, 0, len(t))
		for _, item := range t {
			values, _ := fn.walk(item, parts, false)
			res = append(res, values...)
		}
		return res, true
	default:
		return []domain.Getter{NewUndefined()}, false
	}
}
