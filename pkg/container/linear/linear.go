// package linear provides a container.Table implementation
// backed by a slice and linear search.
// It outperforms hashing for a handful of short keys only.
package linear

type KeyInterface interface {
	string | []byte
}

type bucket[K KeyInterface, V any] struct {
	Key   K
	Value V
}

type Linear[K KeyInterface, V any] struct {
	d []bucket[K, V]
}

func New[K KeyInterface, V any](capacity int) *Linear[K, V] {
	return &Linear[K, V]{
		d: make([]bucket[K, V], 0, capacity),
	}
}

func (m *Linear[K, V]) index(key K) int {
	for i := 0; i < len(m.d); i++ {
		if string(m.d[i].Key) == string(key) {
			return i
		}
	}
	return -1
}

func (m *Linear[K, V]) Set(key K, value V) {
	if i := m.index(key); i > -1 {
		m.d[i].Value = value
		return
	}
	m.d = append(m.d, bucket[K, V]{
		Key:   key,
		Value: value,
	})
}

// Delete swaps the last pair into the freed slot.
func (m *Linear[K, V]) Delete(key K) {
	if i := m.index(key); i > -1 {
		l := len(m.d) - 1
		m.d[i] = m.d[l]
		m.d[l] = bucket[K, V]{}
		m.d = m.d[:l]
	}
}

func (m *Linear[K, V]) Get(key K) (v V, ok bool) {
	if i := m.index(key); i > -1 {
		return m.d[i].Value, true
	}
	return v, false
}

func (m *Linear[K, V]) Reset() {
	for i := range m.d {
		m.d[i] = bucket[K, V]{}
	}
	m.d = m.d[:0]
}

func (m *Linear[K, V]) Len() int {
	return len(m.d)
}

// Visit calls fn for every pair in insertion order
// unless pairs were deleted.
// Returns immediately if fn returns true.
func (m *Linear[K, V]) Visit(fn func(K, V) (stop bool)) {
	for i := 0; i < len(m.d); i++ {
		if fn(m.d[i].Key, m.d[i].Value) {
			break
		}
	}
}
