// Package byteset provides a set of fixed-size byte records
// deduplicated by byte equality.
//
// The zero value is an empty set ready to use, adopting the size of
// the first record added. A Set isn't safe for concurrent use and
// must not be mutated while it's being visited.
package byteset

import (
	"github.com/mamkit/mamkit/pkg/container"
	"github.com/pkg/errors"
)

var ErrRecordSize = errors.New("invalid record size")

// Entry is a record owned by a Set. Value must never be modified.
// An entry remains valid until it's removed or the set is freed.
type Entry[T container.Bytes] struct {
	Value T
}

// Set is a set of records of RecordSize bytes.
type Set[T container.Bytes] struct {
	recordSize int
	opts       container.Options
	table      container.Table[*Entry[T]]
}

// New creates an empty set of records of recordSize bytes.
// A recordSize of 0 adopts the size of the first record added.
func New[T container.Bytes](recordSize int, o container.Options) *Set[T] {
	return &Set[T]{recordSize: recordSize, opts: o}
}

func (s *Set[T]) RecordSize() int { return s.recordSize }

// Len returns the number of records. A nil set is empty.
func (s *Set[T]) Len() int {
	if s == nil || s.table == nil {
		return 0
	}
	return s.table.Len()
}

// Add copies v into the set unless an identical record exists.
// Returns an error wrapping alloc.ErrOutOfMemory if the record
// can't be allocated, in which case the set is left unchanged.
func (s *Set[T]) Add(v T) error {
	size := s.recordSize
	if size == 0 {
		if len(v) == 0 {
			return errors.Wrap(ErrRecordSize, "empty record")
		}
		size = len(v)
	}
	if len(v) != size {
		return errors.Wrapf(
			ErrRecordSize, "got %d bytes, expected %d", len(v), size,
		)
	}
	if s.Contains(v) {
		return nil
	}

	r, err := s.opts.AllocatorOrHeap().Alloc(size)
	if err != nil {
		return errors.Wrap(err, "allocating record")
	}
	// The size of a zero value set is fixed by its first stored record.
	s.recordSize = size
	if s.table == nil {
		s.table = container.NewTable[*Entry[T]](s.opts)
	}
	copy(r, v)
	s.table.Set(r, &Entry[T]{Value: T(r)})
	return nil
}

// Find returns the entry holding a record identical to v.
func (s *Set[T]) Find(v T) (*Entry[T], bool) {
	if s.Len() < 1 || len(v) != s.recordSize {
		return nil, false
	}
	return s.table.Get([]byte(v))
}

// Contains returns true if a record identical to v exists.
func (s *Set[T]) Contains(v T) bool {
	_, ok := s.Find(v)
	return ok
}

// Remove removes the record identical to v
// and returns false if there was none.
func (s *Set[T]) Remove(v T) bool {
	e, ok := s.Find(v)
	if !ok {
		return false
	}
	s.unlink(e)
	return true
}

// RemoveEntry removes e, which must have been obtained
// from this set through Find.
// Returns false and leaves the set untouched if e
// isn't linked in this set.
func (s *Set[T]) RemoveEntry(e *Entry[T]) bool {
	if e == nil {
		return false
	}
	if linked, ok := s.Find(e.Value); !ok || linked != e {
		return false
	}
	s.unlink(e)
	return true
}

func (s *Set[T]) unlink(e *Entry[T]) {
	s.table.Delete([]byte(e.Value))
	s.release(e)
}

func (s *Set[T]) release(e *Entry[T]) {
	s.opts.AllocatorOrHeap().Free([]byte(e.Value))
	*e = Entry[T]{}
}

// Free removes all records returning their buffers to the allocator.
// The set becomes empty and keeps its record size.
func (s *Set[T]) Free() {
	if s.Len() < 1 {
		return
	}
	s.table.Visit(func(_ []byte, e *Entry[T]) (stop bool) {
		s.release(e)
		return false
	})
	s.table.Reset()
}

// Visit calls fn for every record in an unspecified order.
// Returns immediately if fn returns true.
// fn must neither modify the record nor mutate the set.
func (s *Set[T]) Visit(fn func(T) (stop bool)) {
	if s.Len() < 1 {
		return
	}
	s.table.Visit(func(_ []byte, e *Entry[T]) (stop bool) {
		return fn(e.Value)
	})
}

// ForEach calls fn for every record in an unspecified order.
// Iteration stops at the first error returned by fn
// and that error is returned as is.
// fn must neither modify the record nor mutate the set.
func (s *Set[T]) ForEach(fn func(T) error) (err error) {
	s.Visit(func(v T) (stop bool) {
		err = fn(v)
		return err != nil
	})
	return err
}

// Records returns copies of all records in an unspecified order.
func (s *Set[T]) Records() []T {
	r := make([]T, 0, s.Len())
	s.Visit(func(v T) (stop bool) {
		c := make([]byte, len(v))
		copy(c, v)
		r = append(r, T(c))
		return false
	})
	return r
}

// Append adds every record of src to dst.
// Append isn't atomic: it stops at the first failing Add,
// records merged up to that point remain in dst.
func Append[T container.Bytes](src, dst *Set[T]) error {
	if src == dst {
		return nil
	}
	merged := 0
	err := src.ForEach(func(v T) error {
		if err := dst.Add(v); err != nil {
			return err
		}
		merged++
		return nil
	})
	if err != nil {
		return errors.Wrapf(
			err, "appending record %d of %d", merged+1, src.Len(),
		)
	}
	return nil
}

// Equal returns true if lhs and rhs contain identical records.
func Equal[T container.Bytes](lhs, rhs *Set[T]) bool {
	if lhs.Len() != rhs.Len() {
		return false
	}
	equal := true
	lhs.Visit(func(v T) (stop bool) {
		equal = rhs.Contains(v)
		return !equal
	})
	return equal
}
