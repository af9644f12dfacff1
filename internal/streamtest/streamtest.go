// Package streamtest provides a harness of representative mutations and
// reader assertions shared by the mutation streaming tests.
package streamtest

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jianlirong/scylla/internal/mutation"
	"github.com/jianlirong/scylla/internal/reader"
	"github.com/jianlirong/scylla/internal/schema"
)

// Column IDs of the harness schema, in builder registration order.
const (
	ColPK schema.ColumnID = iota
	ColCK1
	ColCK2
	ColStatic
	ColValue
	ColCount
)

// Schema returns the harness schema: one partition key, two clustering
// columns, one static column, two regular columns.
func Schema() *schema.Schema {
	return schema.NewBuilder("ks", "streams").
		WithPartitionKey("pk", schema.BytesType).
		WithClusteringColumn("ck1", schema.TextType).
		WithClusteringColumn("ck2", schema.Int64Type).
		WithStaticColumn("s", schema.TextType).
		WithRegularColumn("v", schema.TextType).
		WithRegularColumn("n", schema.Int64Type).
		Build()
}

func ck(c1 string, c2 int64) mutation.ClusteringKey {
	return mutation.ClusteringKey{[]byte(c1), schema.EncodeInt64(c2)}
}

// Mutations returns a set of representative mutations on distinct keys:
// tombstone-only, static-only, single-row, multi-row with static content,
// rows interleaved with range tombstones, and a row tombstone.
func Mutations(s *schema.Schema) []*mutation.Mutation {
	var ms []*mutation.Mutation

	m := mutation.New(s, mutation.NewKey([]byte("p-tombstone")))
	m.SetTombstone(mutation.Tombstone{Timestamp: 100, DeletedAt: 10})
	ms = append(ms, m)

	m = mutation.New(s, mutation.NewKey([]byte("p-static")))
	m.SetStaticCell(ColStatic, 101, []byte("static-only"))
	ms = append(ms, m)

	m = mutation.New(s, mutation.NewKey([]byte("p-one-row")))
	m.SetCell(ck("a", 1), ColValue, 102, []byte("va"))
	ms = append(ms, m)

	m = mutation.New(s, mutation.NewKey([]byte("p-many-rows")))
	m.SetStaticCell(ColStatic, 103, []byte("st"))
	m.SetCell(ck("a", 1), ColValue, 103, []byte("a1"))
	m.SetCell(ck("a", 2), ColValue, 104, []byte("a2"))
	m.SetCell(ck("a", 2), ColCount, 104, schema.EncodeInt64(7))
	m.SetCell(ck("b", 1), ColValue, 105, []byte("b1"))
	ms = append(ms, m)

	m = mutation.New(s, mutation.NewKey([]byte("p-ranges")))
	m.SetTombstone(mutation.Tombstone{Timestamp: 90, DeletedAt: 9})
	m.SetCell(ck("a", 1), ColValue, 106, []byte("a1"))
	m.DeleteRange(
		mutation.Bound{Prefix: mutation.ClusteringKey{[]byte("b")}, Inclusive: true},
		mutation.Bound{Prefix: mutation.ClusteringKey{[]byte("c")}, Inclusive: false},
		mutation.Tombstone{Timestamp: 107, DeletedAt: 11},
	)
	m.SetCell(ck("b", 5), ColValue, 108, []byte("b5"))
	m.DeleteRange(
		mutation.Bound{Prefix: ck("d", 1)},
		mutation.Bound{Prefix: ck("d", 9), Inclusive: true},
		mutation.Tombstone{Timestamp: 109, DeletedAt: 12},
	)
	ms = append(ms, m)

	m = mutation.New(s, mutation.NewKey([]byte("p-row-tombstone")))
	m.DeleteRow(ck("x", 1), mutation.Tombstone{Timestamp: 110, DeletedAt: 13})
	m.SetCell(ck("x", 2), ColValue, 111, []byte("x2"))
	ms = append(ms, m)

	return ms
}

// Sort orders mutations by decorated key, the order NewFromMutations needs.
func Sort(ms []*mutation.Mutation) []*mutation.Mutation {
	sort.Slice(ms, func(i, j int) bool { return ms[i].Key().Compare(ms[j].Key()) < 0 })
	return ms
}

// ForEachMutation runs fn once per representative mutation.
func ForEachMutation(s *schema.Schema, fn func(m *mutation.Mutation)) {
	for _, m := range Mutations(s) {
		fn(m)
	}
}

// ForEachMutationPair runs fn once per representative pair with m1's key
// strictly before m2's.
func ForEachMutationPair(s *schema.Schema, fn func(m1, m2 *mutation.Mutation)) {
	ms := Mutations(s)
	for _, a := range ms {
		for _, b := range ms {
			if a.Key().Compare(b.Key()) < 0 {
				fn(a, b)
			}
		}
	}
}

// Fragments flattens mutations into the exact fragment sequence a flat
// reader over them must yield.
func Fragments(ms ...*mutation.Mutation) []*mutation.Fragment {
	var out []*mutation.Fragment
	for _, m := range ms {
		out = append(out, m.Fragments()...)
	}
	return out
}

// RequireReaderYields drains r and compares every fragment against want,
// then checks that end of stream is repeatable.
func RequireReaderYields(t *testing.T, r reader.FlatReader, want []*mutation.Fragment) {
	t.Helper()

	s := r.Schema()
	for i, w := range want {
		f, err := r.Next()
		require.NoError(t, err)
		require.NotNilf(t, f, "reader exhausted at fragment %d, want %s", i, w.Kind())
		require.Truef(t, w.Equal(s, f), "fragment %d mismatch: got %s, want %s", i, f.Kind(), w.Kind())
	}
	RequireEndOfStream(t, r)
}

// RequireEndOfStream checks that the reader is exhausted and stays so.
func RequireEndOfStream(t *testing.T, r reader.FlatReader) {
	t.Helper()

	for i := 0; i < 2; i++ {
		f, err := r.Next()
		require.NoError(t, err)
		require.Nil(t, f, "expected end of stream")
	}
}

// RequireSameMutations compares two mutation lists schema-relatively.
func RequireSameMutations(t *testing.T, want, got []*mutation.Mutation) {
	t.Helper()

	require.Len(t, got, len(want))
	for i := range want {
		require.Truef(t, want[i].Equal(got[i]), "mutation %d (key %s) differs", i, want[i].Key())
	}
}
