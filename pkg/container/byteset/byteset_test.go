package byteset_test

import (
	"bytes"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mamkit/mamkit/pkg/alloc"
	"github.com/mamkit/mamkit/pkg/container"
	"github.com/mamkit/mamkit/pkg/container/byteset"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type Record []byte

var (
	A = Record{0xa, 0xa, 0xa, 0xa}
	B = Record{0xb, 0xb, 0xb, 0xb}
	C = Record{0xc, 0xc, 0xc, 0xc}
	D = Record{0xd, 0xd, 0xd, 0xd}
	E = Record{0xe, 0xe, 0xe, 0xe}
)

func forEachKindT(
	t *testing.T,
	fn func(t *testing.T, newSet func() *byteset.Set[Record]),
) {
	for _, k := range []container.Kind{
		container.KindHamap, container.KindGomap, container.KindLinear,
	} {
		t.Run(string(k), func(t *testing.T) {
			fn(t, func() *byteset.Set[Record] {
				return byteset.New[Record](4, container.Options{Table: k})
			})
		})
	}
}

func TestAddIdempotent(t *testing.T) {
	forEachKindT(t, func(t *testing.T, newSet func() *byteset.Set[Record]) {
		s := newSet()
		require.NoError(t, s.Add(A))
		require.NoError(t, s.Add(A))
		require.Equal(t, 1, s.Len())

		require.NoError(t, s.Add(B))
		require.Equal(t, 2, s.Len())

		r := newSet()
		require.NoError(t, r.Add(B))
		require.NoError(t, r.Add(A))
		require.True(t, byteset.Equal(s, r))
		require.True(t, byteset.Equal(r, s))
	})
}

func TestAddCopies(t *testing.T) {
	s := byteset.New[Record](4, container.Options{})
	r := Record{1, 2, 3, 4}
	require.NoError(t, s.Add(r))
	r[0] = 9
	require.False(t, s.Contains(r))
	require.True(t, s.Contains(Record{1, 2, 3, 4}))
}

func TestZeroValue(t *testing.T) {
	var s byteset.Set[Record]
	require.Zero(t, s.Len())
	require.False(t, s.Contains(A))
	require.False(t, s.Remove(A))

	require.NoError(t, s.Add(Record{1, 2, 3}))
	require.Equal(t, 3, s.RecordSize())
	require.True(t, s.Contains(Record{1, 2, 3}))

	err := s.Add(A)
	require.True(t, errors.Is(err, byteset.ErrRecordSize))
	require.Equal(t, 1, s.Len())
}

func TestAddEmptyRecord(t *testing.T) {
	var s byteset.Set[Record]
	err := s.Add(Record{})
	require.True(t, errors.Is(err, byteset.ErrRecordSize))
	require.Zero(t, s.RecordSize())
}

func TestZeroValueAddOutOfMemory(t *testing.T) {
	b := alloc.NewBudget(2)
	s := byteset.New[Record](0, container.Options{Allocator: b})

	err := s.Add(A)
	require.True(t, errors.Is(err, alloc.ErrOutOfMemory))
	require.Zero(t, s.RecordSize())
	require.Zero(t, s.Len())

	require.NoError(t, s.Add(Record{1, 2}))
	require.Equal(t, 2, s.RecordSize())
	require.True(t, s.Contains(Record{1, 2}))
	require.Equal(t, uint64(2), b.Stats().InUse)
}

func TestAddSizeMismatch(t *testing.T) {
	s := byteset.New[Record](4, container.Options{})
	err := s.Add(Record{1})
	require.True(t, errors.Is(err, byteset.ErrRecordSize))
	require.Equal(t, "got 1 bytes, expected 4: invalid record size", err.Error())
	require.False(t, s.Contains(Record{1}))
}

func TestRemove(t *testing.T) {
	forEachKindT(t, func(t *testing.T, newSet func() *byteset.Set[Record]) {
		s := newSet()
		require.False(t, s.Remove(A))

		require.NoError(t, s.Add(A))
		require.NoError(t, s.Add(B))
		require.False(t, s.Remove(C))
		require.Equal(t, 2, s.Len())

		require.True(t, s.Remove(A))
		require.False(t, s.Contains(A))
		require.True(t, s.Contains(B))
		require.Equal(t, 1, s.Len())

		require.True(t, s.Remove(B))
		require.Zero(t, s.Len())
	})
}

func TestFindRemoveEntry(t *testing.T) {
	forEachKindT(t, func(t *testing.T, newSet func() *byteset.Set[Record]) {
		s := newSet()
		require.NoError(t, s.Add(A))
		require.NoError(t, s.Add(B))

		e, ok := s.Find(A)
		require.True(t, ok)
		require.Equal(t, A, e.Value)

		other := newSet()
		require.NoError(t, other.Add(A))
		foreign, ok := other.Find(A)
		require.True(t, ok)
		require.False(t, s.RemoveEntry(foreign))
		require.Equal(t, 2, s.Len())

		require.True(t, s.RemoveEntry(e))
		require.False(t, s.RemoveEntry(e))
		require.False(t, s.RemoveEntry(nil))
		require.Equal(t, 1, s.Len())
		require.False(t, s.Contains(A))

		e, ok = s.Find(C)
		require.False(t, ok)
		require.Nil(t, e)
	})
}

func TestFree(t *testing.T) {
	forEachKindT(t, func(t *testing.T, newSet func() *byteset.Set[Record]) {
		s := newSet()
		for _, r := range []Record{A, B, C} {
			require.NoError(t, s.Add(r))
		}
		s.Free()
		require.Zero(t, s.Len())
		require.False(t, s.Contains(A))

		require.NoError(t, s.Add(D))
		require.Equal(t, 1, s.Len())
		require.Equal(t, 4, s.RecordSize())
	})
}

func TestNilSet(t *testing.T) {
	var s *byteset.Set[Record]
	require.Zero(t, s.Len())
	require.False(t, s.Contains(A))
	require.False(t, s.Remove(A))
	require.False(t, s.RemoveEntry(&byteset.Entry[Record]{Value: A}))
	s.Free()
	require.NoError(t, s.ForEach(func(Record) error {
		t.Fatal("this function is expected not to be called!")
		return nil
	}))
	require.Empty(t, s.Records())
	require.True(t, byteset.Equal(s, byteset.New[Record](4, container.Options{})))
}

var errStop = errors.New("stop")

func TestForEachStops(t *testing.T) {
	forEachKindT(t, func(t *testing.T, newSet func() *byteset.Set[Record]) {
		s := newSet()
		for _, r := range []Record{A, B, C} {
			require.NoError(t, s.Add(r))
		}
		var visited []Record
		err := s.ForEach(func(r Record) error {
			visited = append(visited, r)
			if len(visited) == 2 {
				return errStop
			}
			return nil
		})
		require.Equal(t, errStop, err)
		require.Len(t, visited, 2)
		for _, r := range visited {
			require.True(t, s.Contains(r))
		}
	})
}

func TestForEachAll(t *testing.T) {
	forEachKindT(t, func(t *testing.T, newSet func() *byteset.Set[Record]) {
		s := newSet()
		for _, r := range []Record{A, B, C, D} {
			require.NoError(t, s.Add(r))
		}
		var visited []Record
		require.NoError(t, s.ForEach(func(r Record) error {
			visited = append(visited, r)
			return nil
		}))
		ExpectRecords(t, visited, A, B, C, D)
	})
}

func TestRecords(t *testing.T) {
	s := byteset.New[Record](4, container.Options{})
	for _, r := range []Record{C, A, B} {
		require.NoError(t, s.Add(r))
	}
	records := s.Records()
	ExpectRecords(t, records, A, B, C)

	// Copies
	records[0][0] = 0xff
	ExpectRecords(t, s.Records(), A, B, C)
}

func TestAppend(t *testing.T) {
	forEachKindT(t, func(t *testing.T, newSet func() *byteset.Set[Record]) {
		src, dst := newSet(), newSet()
		for _, r := range []Record{A, B, C} {
			require.NoError(t, src.Add(r))
		}
		for _, r := range []Record{C, D} {
			require.NoError(t, dst.Add(r))
		}

		require.NoError(t, byteset.Append(src, dst))
		require.Equal(t, 4, dst.Len())
		require.NoError(t, src.ForEach(func(r Record) error {
			require.True(t, dst.Contains(r))
			return nil
		}))
		ExpectRecords(t, dst.Records(), A, B, C, D)

		// src is untouched
		require.Equal(t, 3, src.Len())

		require.NoError(t, byteset.Append(dst, dst))
		require.Equal(t, 4, dst.Len())
	})
}

func TestAppendEmpty(t *testing.T) {
	var src, dst byteset.Set[Record]
	require.NoError(t, byteset.Append(&src, &dst))
	require.Zero(t, dst.Len())

	require.NoError(t, dst.Add(A))
	require.NoError(t, byteset.Append(&src, &dst))
	require.Equal(t, 1, dst.Len())

	require.NoError(t, byteset.Append(&dst, &src))
	require.True(t, byteset.Equal(&src, &dst))
}

// TestAppendPartial makes sure records merged before an
// allocation failure remain in the destination set.
func TestAppendPartial(t *testing.T) {
	src := byteset.New[Record](4, container.Options{})
	for _, r := range []Record{A, B, C, D, E} {
		require.NoError(t, src.Add(r))
	}

	b := alloc.NewBudget(3 * 4)
	dst := byteset.New[Record](4, container.Options{Allocator: b})

	err := byteset.Append(src, dst)
	require.True(t, errors.Is(err, alloc.ErrOutOfMemory))
	require.Contains(t, err.Error(), "appending record 4 of 5")
	require.Equal(t, 3, dst.Len())
	require.NoError(t, dst.ForEach(func(r Record) error {
		require.True(t, src.Contains(r))
		return nil
	}))
	require.Equal(t, uint64(12), b.Stats().InUse)
	require.Equal(t, 1, b.Stats().Failures)
}

func TestEqual(t *testing.T) {
	forEachKindT(t, func(t *testing.T, newSet func() *byteset.Set[Record]) {
		s, r := newSet(), newSet()
		require.True(t, byteset.Equal(s, s))
		require.True(t, byteset.Equal(s, r))

		for _, x := range []Record{A, B, C} {
			require.NoError(t, s.Add(x))
		}
		require.True(t, byteset.Equal(s, s))
		require.False(t, byteset.Equal(s, r))

		for _, x := range []Record{C, B, A} {
			require.NoError(t, r.Add(x))
		}
		require.True(t, byteset.Equal(s, r))
		require.True(t, byteset.Equal(r, s))

		// Same cardinality, different records
		require.True(t, r.Remove(A))
		require.NoError(t, r.Add(D))
		require.False(t, byteset.Equal(s, r))
		require.False(t, byteset.Equal(r, s))
	})
}

func TestBudgetReleased(t *testing.T) {
	b := alloc.NewBudget(64)
	s := byteset.New[Record](4, container.Options{Allocator: b})
	for _, r := range []Record{A, B, C, D} {
		require.NoError(t, s.Add(r))
	}
	require.NoError(t, s.Add(A))
	require.Equal(t, uint64(16), b.Stats().InUse)
	require.Equal(t, 4, b.Stats().Allocs)

	require.True(t, s.Remove(A))
	require.Equal(t, uint64(12), b.Stats().InUse)

	s.Free()
	require.Zero(t, b.Stats().InUse)
}

func ExpectRecords(t *testing.T, actual []Record, expect ...Record) {
	t.Helper()
	sorted := append([]Record(nil), actual...)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i], sorted[j]) < 0
	})
	if d := cmp.Diff(expect, sorted); d != "" {
		t.Fatal(d)
	}
}
