// package hamap provides a collision-safe chained hash table.
// Buckets are a power-of-two sized slice of singly linked chains and
// the table doubles once the number of pairs exceeds the number of
// buckets, keeping point operations O(1) on average.
// Reset is allocation-free and keeps the bucket slice for reuse.
// Any custom hasher can be provided during initialization.
// By default, XXH3 from github.com/zeebo/xxh3 is used with seed 0.
package hamap

import (
	"fmt"

	"github.com/mamkit/mamkit/pkg/math"
	"github.com/pierrec/xxHash/xxHash64"
	"github.com/zeebo/xxh3"
)

type KeyInterface interface{ string | []byte }

type pair[K KeyInterface, V any] struct {
	KeyHash uint64
	Key     K
	Value   V
	Next    *pair[K, V]
}

type Hasher[K KeyInterface] interface{ Hash(K) uint64 }

// MinBuckets is the smallest number of buckets a map is created with.
const MinBuckets = 8

// Map is a chained hash table.
//
// WARNING: In case of []byte typed keys the keys will
// be aliased and must remain immutable until they're deleted
// or the map is reset!
type Map[K KeyInterface, V any] struct {
	size    int
	buckets []*pair[K, V]
	hasher  Hasher[K]
}

// HasherXXH3 can be used to provide custom seeds during initialization.
type HasherXXH3[K KeyInterface] struct {
	Seed uint64
}

// Hash hashes k to a 64-bit hash value.
func (h *HasherXXH3[K]) Hash(k K) uint64 {
	return xxh3.HashSeed([]byte(k), h.Seed)
}

// HasherXXH64 hashes keys using XXH64 from github.com/pierrec/xxHash.
type HasherXXH64[K KeyInterface] struct {
	Seed uint64
}

// Hash hashes k to a 64-bit hash value.
func (h *HasherXXH64[K]) Hash(k K) uint64 {
	return xxHash64.Checksum([]byte(k), h.Seed)
}

const (
	HasherNameXXH3  = "xxh3"
	HasherNameXXH64 = "xxh64"
)

// NewHasher returns the hasher registered under name.
// An empty name selects XXH3.
func NewHasher(name string, seed uint64) (Hasher[[]byte], error) {
	switch name {
	case "", HasherNameXXH3:
		return &HasherXXH3[[]byte]{Seed: seed}, nil
	case HasherNameXXH64:
		return &HasherXXH64[[]byte]{Seed: seed}, nil
	}
	return nil, fmt.Errorf("unknown hasher: %q", name)
}

var (
	defaultHasherS = &HasherXXH3[string]{}
	defaultHasherB = &HasherXXH3[[]byte]{}
)

// New creates a new map instance with room for
// at least capacity pairs before the first rehash.
func New[K KeyInterface, V any](
	capacity int,
	hasher Hasher[K],
) *Map[K, V] {
	if hasher == nil {
		var zeroKey K
		switch any(zeroKey).(type) {
		case string:
			hasher = (*HasherXXH3[K])(defaultHasherS)
		case []byte:
			hasher = (*HasherXXH3[K])(defaultHasherB)
		}
	}
	return &Map[K, V]{
		buckets: make([]*pair[K, V], math.NextPow2(
			math.Max(capacity, MinBuckets),
		)),
		hasher:  hasher,
	}
}

// Reset removes all pairs keeping the bucket slice.
func (m *Map[K, V]) Reset() {
	for i := range m.buckets {
		m.buckets[i] = nil
	}
	m.size = 0
}

func (m *Map[K, V]) bucket(hash uint64) int {
	return int(hash & uint64(len(m.buckets)-1))
}

// Set associates key with value overwriting any existing associations.
//
// WARNING: In case of []byte typed keys the map will alias keys!
// Make sure key remains immutable during the life-time of the map
// or until the map is reset.
func (m *Map[K, V]) Set(key K, value V) {
	hash := m.hasher.Hash(key)
	i := m.bucket(hash)
	for p := m.buckets[i]; p != nil; p = p.Next {
		if p.KeyHash == hash && string(p.Key) == string(key) {
			p.Value = value
			return
		}
	}

	m.buckets[i] = &pair[K, V]{
		KeyHash: hash, Key: key, Value: value, Next: m.buckets[i],
	}
	m.size++
	if m.size > len(m.buckets) {
		m.grow()
	}
}

// grow doubles the number of buckets relinking the existing pairs.
func (m *Map[K, V]) grow() {
	old := m.buckets
	m.buckets = make([]*pair[K, V], len(old)<<1)
	for _, p := range old {
		for p != nil {
			next := p.Next
			i := m.bucket(p.KeyHash)
			p.Next, m.buckets[i] = m.buckets[i], p
			p = next
		}
	}
}

// Get returns (value, true) if key exists,
// otherwise returns (zeroValue, false).
func (m *Map[K, V]) Get(key K) (value V, ok bool) {
	if m.size < 1 {
		return value, false
	}
	hash := m.hasher.Hash(key)
	for p := m.buckets[m.bucket(hash)]; p != nil; p = p.Next {
		if p.KeyHash == hash && string(p.Key) == string(key) {
			return p.Value, true
		}
	}
	return value, false
}

// Delete deletes the key if it exists.
// Noop if the key doesn't exist.
func (m *Map[K, V]) Delete(key K) {
	if m.size < 1 {
		return
	}
	hash := m.hasher.Hash(key)
	i := m.bucket(hash)
	var prev *pair[K, V]
	for p := m.buckets[i]; p != nil; prev, p = p, p.Next {
		if p.KeyHash != hash || string(p.Key) != string(key) {
			continue
		}
		if prev == nil {
			m.buckets[i] = p.Next
		} else {
			prev.Next = p.Next
		}
		m.size--
		return
	}
}

// Len returns the number of stored key-value pairs.
func (m *Map[K, V]) Len() int {
	return m.size
}

// Visit calls fn for every stored key-value pair in bucket order.
// Returns immediately if fn returns true.
// The map must not be mutated by fn.
func (m *Map[K, V]) Visit(fn func(key K, value V) (stop bool)) {
	for _, p := range m.buckets {
		for ; p != nil; p = p.Next {
			if fn(p.Key, p.Value) {
				return
			}
		}
	}
}
