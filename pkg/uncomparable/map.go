// Package uncomparable contains a map whose keys can be of any type, such as
// documents and lists, using a [domain.Hasher] to pick a bucket and a
// [domain.Comparer] to find the key inside it. Failures are returned as
// errors instead of panicking.
package uncomparable

import (
	"iter"
	"slices"

	"github.com/vinicius-lino-figueiredo/jsongo/domain"
)

// Map represents a map[K]T, where K does not need to be [comparable].
type Map[T any] struct {
	buckets  map[uint64][]kv[T]
	hasher   domain.Hasher
	comparer domain.Comparer
	length   int
}

// New returns a new instance of [Map] with the given [domain.Hasher] and
// [domain.Comparer].
func New[T any](hasher domain.Hasher, comparer domain.Comparer) *Map[T] {
	return &Map[T]{
		buckets:  make(map[uint64][]kv[T]),
		hasher:   hasher,
		comparer: comparer,
	}
}

// Delete removes a given key from the map, if it exists.
func (m *Map[T]) Delete(key any) error {
	h, n, err := m.find(key)
	if err != nil || n < 0 {
		return err
	}
	m.buckets[h] = slices.Delete(m.buckets[h], n, n+1)
	if len(m.buckets[h]) == 0 {
		delete(m.buckets, h)
	}
	m.length--
	return nil
}

// Get returns the value for the given key with a bool to indicate whether it
// exists in the map or not.
func (m *Map[T]) Get(key any) (T, bool, error) {
	h, n, err := m.find(key)
	if err != nil || n < 0 {
		return *new(T), false, err
	}
	return m.buckets[h][n].value, true, nil
}

// Set adds or replaces the given key in the map.
func (m *Map[T]) Set(key any, value T) error {
	h, n, err := m.find(key)
	if err != nil {
		return err
	}
	if n >= 0 {
		m.buckets[h][n].value = value
		return nil
	}
	m.buckets[h] = append(m.buckets[h], kv[T]{key: key, value: value})
	m.length++
	return nil
}

// Len returns the amount of stored values.
func (m *Map[T]) Len() int {
	return m.length
}

// Keys returns an unordered [iter.Seq] containing all the stored keys.
func (m *Map[T]) Keys() iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, bucket := range m.buckets {
			for _, v := range bucket {
				if !yield(v.key) {
					return
				}
			}
		}
	}
}

// find returns the bucket of key and its position there, or -1.
func (m *Map[T]) find(key any) (uint64, int, error) {
	h, err := m.hasher.Hash(key)
	if err != nil {
		return 0, -1, err
	}
	for n, v := range m.buckets[h] {
		c, err := m.comparer.Compare(key, v.key)
		if err != nil {
			return 0, -1, err
		}
		if c == 0 {
			return h, n, nil
		}
	}
	return h, -1, nil
}

type kv[T any] struct {
	key   any
	value T
}
