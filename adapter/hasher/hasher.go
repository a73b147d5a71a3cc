// Package hasher contains a json based implementation of [domain.Hasher].
// Values are hashed through their JSON text, in which object keys are sorted.
// Numbers are first rewritten from their exact value, so 1, 1.0 and uint8(1)
// hash alike, -0 hashes as 0 and a float32 hashes as the float64 it widens
// to. Values the default comparer reports as equal share a hash.
package hasher

import (
	"encoding/json"
	"hash/fnv"
	"math"
	"math/big"
	"strconv"

	"github.com/vinicius-lino-figueiredo/jsongo/domain"
)

// Hasher implements [domain.Hasher].
type Hasher struct{}

// NewHasher returns a new implementation of [domain.Hasher].
func NewHasher() domain.Hasher {
	return &Hasher{}
}

// Hash implements domain.Hasher.
func (h *Hasher) Hash(value any) (uint64, error) {
	if g, ok := value.(domain.Getter); ok {
		v, defined := g.Get()
		if !defined {
			return 0, nil
		}
		value = v
	}

	b, err := json.Marshal(h.canonicalize(value))
	if err != nil {
		return 0, err
	}

	hasher := fnv.New64a()

	_, _ = hasher.Write(b) // fnv.sum64a.Write never returns error

	return hasher.Sum64(), nil
}

// canonicalize turns documents that are not plain maps into maps, so
// json.Marshal sorts their keys, and numbers into their exact text.
func (h *Hasher) canonicalize(a any) any {
	if n, ok := h.number(a); ok {
		return n
	}
	switch t := a.(type) {
	case domain.Document:
		m := make(map[string]any, t.Len())
		for k, v := range t.Iter() {
			m[k] = h.canonicalize(v)
		}
		return m
	case []any:
		res := make([]any, len(t))
		for n, v := range t {
			res[n] = h.canonicalize(v)
		}
		return res
	default:
		return a
	}
}

// number returns the text of numeric values. Integral values are written as
// decimal integers of any size and the rest as the shortest float64 text.
func (h *Hasher) number(v any) (any, bool) {
	f := new(big.Float)
	switch n := v.(type) {
	case int:
		f.SetInt64(int64(n))
	case int8:
		f.SetInt64(int64(n))
	case int16:
		f.SetInt64(int64(n))
	case int32:
		f.SetInt64(int64(n))
	case int64:
		f.SetInt64(n)
	case uint:
		f.SetUint64(uint64(n))
	case uint8:
		f.SetUint64(uint64(n))
	case uint16:
		f.SetUint64(uint64(n))
	case uint32:
		f.SetUint64(uint64(n))
	case uint64:
		f.SetUint64(n)
	case float32:
		return h.number(float64(n))
	case float64:
		// left for json.Marshal to reject
		if math.IsNaN(n) {
			return v, false
		}
		if math.IsInf(n, 0) {
			return strconv.FormatFloat(n, 'g', -1, 64), true
		}
		f.SetFloat64(n)
	default:
		return nil, false
	}

	if f.IsInt() {
		i, _ := f.Int(nil)
		return json.Number(i.String()), true
	}
	x, _ := f.Float64()
	return json.Number(strconv.FormatFloat(x, 'g', -1, 64)), true
}
