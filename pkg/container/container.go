// Package container defines what the byte containers share:
// the hash table substrate contract and the options selecting
// a substrate, a hasher and an allocator.
package container

import (
	"fmt"

	"github.com/mamkit/mamkit/pkg/alloc"
	"github.com/mamkit/mamkit/pkg/container/gomap"
	"github.com/mamkit/mamkit/pkg/container/hamap"
	"github.com/mamkit/mamkit/pkg/container/linear"
)

// Bytes is satisfied by any named or unnamed byte slice type.
type Bytes interface{ ~[]byte }

// Table is a byte-keyed hash table.
// Implementations may alias keys passed to Set, those must remain
// immutable until deleted or until the table is reset.
type Table[V any] interface {
	Set(key []byte, value V)
	Get(key []byte) (value V, ok bool)
	Delete(key []byte)
	Reset()
	Len() int

	// Visit calls fn for every stored pair in an unspecified order
	// and returns immediately if fn returns true.
	Visit(fn func(key []byte, value V) (stop bool))
}

// Kind identifies a Table implementation.
type Kind string

const (
	KindHamap  Kind = "hamap"
	KindGomap  Kind = "gomap"
	KindLinear Kind = "linear"
)

// ParseKind returns an error for unknown kinds.
// An empty string selects KindHamap.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case "":
		return KindHamap, nil
	case KindHamap, KindGomap, KindLinear:
		return k, nil
	}
	return "", fmt.Errorf("unknown table kind: %q", s)
}

// Options configures a container.
// The zero value selects a hamap table hashing with XXH3
// and allocating from the Go heap.
type Options struct {
	Table    Kind
	Capacity int

	// Hasher is used by KindHamap only.
	Hasher hamap.Hasher[[]byte]

	Allocator alloc.Allocator
}

// NewTable creates an empty table of the configured kind.
func NewTable[V any](o Options) Table[V] {
	switch o.Table {
	case KindGomap:
		return gomap.New[[]byte, V](o.Capacity)
	case KindLinear:
		return linear.New[[]byte, V](o.Capacity)
	}
	return hamap.New[[]byte, V](o.Capacity, o.Hasher)
}

// AllocatorOrHeap returns the configured allocator or alloc.Heap.
func (o Options) AllocatorOrHeap() alloc.Allocator {
	if o.Allocator == nil {
		return alloc.Heap{}
	}
	return o.Allocator
}
