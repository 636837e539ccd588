// Package alloc provides the byte buffer allocators containers
// copy keys, values and records into.
//
// Go's heap never reports allocation failure, so out-of-memory
// conditions are modeled by Budget, an allocator that refuses
// requests exceeding a fixed quota.
package alloc

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/mamkit/mamkit/pkg/math"
	"github.com/pkg/errors"
)

// ErrOutOfMemory is returned when an allocation can't be satisfied.
var ErrOutOfMemory = errors.New("out of memory")

// Allocator hands out zeroed byte buffers of the requested length
// and takes them back once their owner is done with them.
// Free must only be called with buffers returned by Alloc of
// the same allocator, each at most once.
type Allocator interface {
	Alloc(n int) ([]byte, error)
	Free(b []byte)
}

// Heap allocates from the Go heap and never fails.
type Heap struct{}

func (Heap) Alloc(n int) ([]byte, error) { return make([]byte, n), nil }

func (Heap) Free([]byte) {}

// Stats is a snapshot of the counters of a Budget.
type Stats struct {
	Limit    uint64
	InUse    uint64
	Peak     uint64
	Allocs   int
	Frees    int
	Failures int
}

func (s Stats) String() string {
	return fmt.Sprintf(
		"%s of %s in use (peak %s), %d allocs, %d frees, %d failures",
		humanize.IBytes(s.InUse), humanize.IBytes(s.Limit),
		humanize.IBytes(s.Peak), s.Allocs, s.Frees, s.Failures,
	)
}

// Budget is a heap allocator limited to a total number of bytes
// in use at any time. It's not safe for concurrent use.
type Budget struct{ s Stats }

// NewBudget creates a budget of limit bytes.
func NewBudget(limit uint64) *Budget {
	return &Budget{s: Stats{Limit: limit}}
}

// ParseBudget creates a budget from a human readable size
// such as "64 MiB" or "512kB".
func ParseBudget(limit string) (*Budget, error) {
	n, err := humanize.ParseBytes(limit)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing memory limit %q", limit)
	}
	return NewBudget(n), nil
}

// Alloc returns ErrOutOfMemory if n more bytes would exceed the limit.
func (b *Budget) Alloc(n int) ([]byte, error) {
	if n < 0 {
		return nil, errors.Errorf("negative allocation size: %d", n)
	}
	if b.s.Limit-b.s.InUse < uint64(n) {
		b.s.Failures++
		return nil, errors.Wrapf(
			ErrOutOfMemory, "allocating %s with %s of %s in use",
			humanize.IBytes(uint64(n)),
			humanize.IBytes(b.s.InUse),
			humanize.IBytes(b.s.Limit),
		)
	}
	b.s.InUse += uint64(n)
	b.s.Peak = math.Max(b.s.Peak, b.s.InUse)
	b.s.Allocs++
	return make([]byte, n), nil
}

// Free returns len(p) bytes to the budget.
func (b *Budget) Free(p []byte) {
	b.s.InUse -= math.Min(uint64(len(p)), b.s.InUse)
	b.s.Frees++
}

// Stats returns the current counters.
func (b *Budget) Stats() Stats { return b.s }
