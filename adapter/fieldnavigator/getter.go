package fieldnavigator

import "github.com/vinicius-lino-figueiredo/jsongo/domain"

// Value is a defined [domain.Getter]. Explicit nil values are defined.
type Value struct {
	V any
}

// NewGetter returns a new defined [domain.Getter] holding v.
func NewGetter(v any) domain.Getter {
	return Value{V: v}
}

// Get implements [domain.Getter].
func (v Value) Get() (any, bool) {
	return v.V, true
}

// Undefined is a [domain.Getter] of an address that does not exist.
type Undefined struct{}

// NewUndefined returns a new undefined [domain.Getter].
func NewUndefined() domain.Getter {
	return Undefined{}
}

// Get implements [domain.Getter].
func (Undefined) Get() (any, bool) {
	return nil, false
}
