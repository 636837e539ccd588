// Package bytemap provides a map from fixed-size byte keys
// to fixed-size byte values.
//
// The map owns copies of every key and value added to it.
// Buffers are obtained from the configured allocator and are
// returned to it when the entry is removed or the map is freed.
//
// Adding an existing key replaces its value (upsert), keys are
// therefore unique. A Map isn't safe for concurrent use and must
// not be mutated while it's being visited.
package bytemap

import (
	"bytes"

	"github.com/mamkit/mamkit/pkg/alloc"
	"github.com/mamkit/mamkit/pkg/container"
	"github.com/pkg/errors"
)

var (
	ErrKeySize   = errors.New("invalid key size")
	ErrValueSize = errors.New("invalid value size")
)

// Entry is a key-value pair owned by a Map.
// Value may be modified in place, Key must never be modified.
// An entry remains valid until it's removed or the map is freed.
type Entry[K, V container.Bytes] struct {
	Key   K
	Value V
}

// Map maps keys of KeySize bytes to values of ValueSize bytes.
type Map[K, V container.Bytes] struct {
	keySize   int
	valueSize int
	table     container.Table[*Entry[K, V]]
	alloc     alloc.Allocator
}

// New creates an empty map.
func New[K, V container.Bytes](
	keySize, valueSize int,
	o container.Options,
) *Map[K, V] {
	return &Map[K, V]{
		keySize:   keySize,
		valueSize: valueSize,
		table:     container.NewTable[*Entry[K, V]](o),
		alloc:     o.AllocatorOrHeap(),
	}
}

func (m *Map[K, V]) KeySize() int   { return m.keySize }
func (m *Map[K, V]) ValueSize() int { return m.valueSize }

// Len returns the number of entries. A nil map is empty.
func (m *Map[K, V]) Len() int {
	if m == nil {
		return 0
	}
	return m.table.Len()
}

// Add copies key and value into the map.
// If the key already exists its value is overwritten in place
// and no allocation is made.
//
// Either both buffers of a new entry are allocated and the entry is
// linked, or nothing is: on allocation failure any buffer already
// obtained is freed and an error wrapping alloc.ErrOutOfMemory
// is returned.
func (m *Map[K, V]) Add(key K, value V) error {
	if len(key) != m.keySize {
		return errors.Wrapf(
			ErrKeySize, "got %d bytes, expected %d", len(key), m.keySize,
		)
	}
	if len(value) != m.valueSize {
		return errors.Wrapf(
			ErrValueSize, "got %d bytes, expected %d", len(value), m.valueSize,
		)
	}

	if e, ok := m.table.Get([]byte(key)); ok {
		copy(e.Value, value)
		return nil
	}

	k, err := m.alloc.Alloc(m.keySize)
	if err != nil {
		return errors.Wrap(err, "allocating key")
	}
	v, err := m.alloc.Alloc(m.valueSize)
	if err != nil {
		m.alloc.Free(k)
		return errors.Wrap(err, "allocating value")
	}
	copy(k, key)
	copy(v, value)

	m.table.Set(k, &Entry[K, V]{Key: K(k), Value: V(v)})
	return nil
}

// Find returns the entry associated with key.
// Returns (nil, false) for nil and empty maps
// and for keys of the wrong size.
func (m *Map[K, V]) Find(key K) (*Entry[K, V], bool) {
	if m.Len() < 1 || len(key) != m.keySize {
		return nil, false
	}
	return m.table.Get([]byte(key))
}

// Contains returns true if key exists.
func (m *Map[K, V]) Contains(key K) bool {
	_, ok := m.Find(key)
	return ok
}

// Remove removes the entry associated with key
// and returns false if there was none.
func (m *Map[K, V]) Remove(key K) bool {
	e, ok := m.Find(key)
	if !ok {
		return false
	}
	m.unlink(e)
	return true
}

// RemoveEntry removes e, which must have been obtained
// from this map through Find or Visit.
// Returns false and leaves the map untouched if e
// isn't linked in this map.
func (m *Map[K, V]) RemoveEntry(e *Entry[K, V]) bool {
	if e == nil {
		return false
	}
	if linked, ok := m.Find(e.Key); !ok || linked != e {
		return false
	}
	m.unlink(e)
	return true
}

func (m *Map[K, V]) unlink(e *Entry[K, V]) {
	m.table.Delete([]byte(e.Key))
	m.release(e)
}

func (m *Map[K, V]) release(e *Entry[K, V]) {
	m.alloc.Free([]byte(e.Key))
	m.alloc.Free([]byte(e.Value))
	*e = Entry[K, V]{}
}

// Free removes all entries returning their buffers to the allocator.
// Key and value sizes are retained and the map remains usable.
func (m *Map[K, V]) Free() {
	if m.Len() < 1 {
		return
	}
	m.table.Visit(func(_ []byte, e *Entry[K, V]) (stop bool) {
		m.release(e)
		return false
	})
	m.table.Reset()
}

// Visit calls fn for every entry in an unspecified order.
// Returns immediately if fn returns true.
// fn must not mutate the map.
func (m *Map[K, V]) Visit(fn func(*Entry[K, V]) (stop bool)) {
	if m.Len() < 1 {
		return
	}
	m.table.Visit(func(_ []byte, e *Entry[K, V]) (stop bool) {
		return fn(e)
	})
}

// Compare returns true if lhs and rhs contain the same set of keys.
// Values aren't compared, see Equal.
func Compare[K, V container.Bytes](lhs, rhs *Map[K, V]) bool {
	if lhs.Len() != rhs.Len() {
		return false
	}
	equal := true
	lhs.Visit(func(e *Entry[K, V]) (stop bool) {
		equal = rhs.Contains(e.Key)
		return !equal
	})
	return equal
}

// Equal returns true if lhs and rhs contain the same
// keys associated with the same values.
func Equal[K, V container.Bytes](lhs, rhs *Map[K, V]) bool {
	if lhs.Len() != rhs.Len() {
		return false
	}
	equal := true
	lhs.Visit(func(e *Entry[K, V]) (stop bool) {
		r, ok := rhs.Find(e.Key)
		equal = ok && bytes.Equal([]byte(e.Value), []byte(r.Value))
		return !equal
	})
	return equal
}
