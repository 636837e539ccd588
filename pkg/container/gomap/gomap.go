// package gomap provides a container.Table implementation
// backed by Go's native map.
package gomap

type KeyInterface interface {
	string | []byte
}

type Gomap[K KeyInterface, V any] struct {
	m map[string]V
}

func New[K KeyInterface, V any](capacity int) *Gomap[K, V] {
	return &Gomap[K, V]{
		m: make(map[string]V, capacity),
	}
}

// Set associates key with value. The key is copied by the conversion
// to string, so unlike hamap the key isn't aliased.
func (m *Gomap[K, V]) Set(key K, value V) {
	m.m[string(key)] = value
}

func (m *Gomap[K, V]) Delete(key K) {
	delete(m.m, string(key))
}

func (m *Gomap[K, V]) Get(key K) (v V, ok bool) {
	v, ok = m.m[string(key)]
	return v, ok
}

// Reset deletes all keys keeping the allocated map.
func (m *Gomap[K, V]) Reset() {
	for k := range m.m {
		delete(m.m, k)
	}
}

func (m *Gomap[K, V]) Len() int {
	return len(m.m)
}

// Visit calls fn for every pair in Go's randomized map order.
// Returns immediately if fn returns true.
func (m *Gomap[K, V]) Visit(fn func(K, V) (stop bool)) {
	for k, v := range m.m {
		if fn(K(k), v) {
			break
		}
	}
}
