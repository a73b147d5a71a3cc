// Package comparer contains the default [domain.Comparer] implementation.
//
// Values are ordered first by type: undefined < nil < numbers < strings <
// booleans < lists < documents. Values of the same type are then compared by
// content, so two documents are equal when they have the same keys holding
// equal values, regardless of key order. Numbers of any Go numeric type are
// compared by value.
package comparer

import (
	"cmp"
	"fmt"
	"math"
	"math/big"
	"slices"

	"github.com/vinicius-lino-figueiredo/jsongo/domain"
)

// Comparer implements domain.Comparer.
type Comparer struct{}

// NewComparer returns a new implementation of domain.Comparer.
func NewComparer() domain.Comparer {
	return &Comparer{}
}

// Comparable implements domain.Comparer.
func (c *Comparer) Comparable(a, b any) bool {
	if !c.isSet(a) || !c.isSet(b) {
		return false
	}
	a, b = c.getVal(a), c.getVal(b)

	if _, ok := c.asNumber(a); ok {
		_, ok = c.asNumber(b)
		return ok
	}
	if _, ok := a.(string); ok {
		_, ok = b.(string)
		return ok
	}
	return false
}

// Compare implements domain.Comparer.
func (c *Comparer) Compare(a any, b any) (int, error) {

	// [domain.Getter]. Equivalent to js undefined
	if !c.isSet(a) || !c.isSet(b) {
		return cmp.Compare(c.rank(a), c.rank(b)), nil
	}

	a, b = c.getVal(a), c.getVal(b)

	ra, rb := c.rank(a), c.rank(b)
	if ra < 0 || rb < 0 {
		return 0, fmt.Errorf("cannot compare unexpected types %T and %T", a, b)
	}
	if ra != rb {
		return cmp.Compare(ra, rb), nil
	}

	switch t := a.(type) {
	case nil:
		return 0, nil
	case string:
		return cmp.Compare(t, b.(string)), nil
	case bool:
		return c.compareBool(t, b.(bool)), nil
	case []any:
		return c.compareArray(t, b.([]any))
	case domain.Document:
		return c.compareDoc(t, b.(domain.Document))
	}

	na, _ := c.asNumber(a)
	nb, _ := c.asNumber(b)
	return na.Cmp(nb), nil
}

// rank returns the position of the value type in the type order, or -1 for
// unsupported types.
func (c *Comparer) rank(v any) int {
	if !c.isSet(v) {
		return 0
	}
	v = c.getVal(v)
	switch v.(type) {
	case nil:
		return 1
	case string:
		return 3
	case bool:
		return 4
	case []any:
		return 5
	case domain.Document:
		return 6
	}
	if _, ok := c.asNumber(v); ok {
		return 2
	}
	return -1
}

func (c *Comparer) compareArray(a, b []any) (int, error) {
	for i := range min(len(a), len(b)) {
		comp, err := c.Compare(a[i], b[i])
		if err != nil || comp != 0 {
			return comp, err
		}
	}

	// Common section was identical, longest one wins
	return cmp.Compare(len(a), len(b)), nil
}

func (c *Comparer) compareBool(a, b bool) int {
	if a == b {
		return 0
	}
	if a {
		return 1
	}
	return -1
}

// compareDoc walks both documents in key order, comparing key names first and
// values second.
func (c *Comparer) compareDoc(a domain.Document, b domain.Document) (int, error) {
	aKeys := slices.Sorted(a.Keys())
	bKeys := slices.Sorted(b.Keys())

	for i := range min(len(aKeys), len(bKeys)) {
		if comp := cmp.Compare(aKeys[i], bKeys[i]); comp != 0 {
			return comp, nil
		}
		comp, err := c.Compare(a.Get(aKeys[i]), b.Get(bKeys[i]))
		if err != nil || comp != 0 {
			return comp, err
		}
	}

	return cmp.Compare(len(aKeys), len(bKeys)), nil
}

func (c *Comparer) asNumber(v any) (*big.Float, bool) {
	r := new(big.Float)
	switch n := v.(type) {
	case int:
		r.SetInt64(int64(n))
	case int8:
		r.SetInt64(int64(n))
	case int16:
		r.SetInt64(int64(n))
	case int32:
		r.SetInt64(int64(n))
	case int64:
		r.SetInt64(n)
	case uint:
		r.SetUint64(uint64(n))
	case uint8:
		r.SetUint64(uint64(n))
	case uint16:
		r.SetUint64(uint64(n))
	case uint32:
		r.SetUint64(uint64(n))
	case uint64:
		r.SetUint64(n)
	case float32:
		return c.asNumber(float64(n))
	case float64:
		// big.Float panics on NaN
		if math.IsNaN(n) {
			return nil, false
		}
		r.SetFloat64(n)
	default:
		return nil, false
	}
	return r, true
}

func (c *Comparer) isSet(v any) bool {
	if g, ok := v.(domain.Getter); ok {
		_, isSet := g.Get()
		return isSet
	}
	return true
}

func (c *Comparer) getVal(v any) any {
	if g, ok := v.(domain.Getter); ok {
		val, _ := g.Get()
		return val
	}
	return v
}
