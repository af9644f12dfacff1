package reader_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jianlirong/scylla/internal/mutation"
	"github.com/jianlirong/scylla/internal/reader"
	"github.com/jianlirong/scylla/internal/schema"
	"github.com/jianlirong/scylla/internal/streamtest"
)

func flatOver(t *testing.T, ms []*mutation.Mutation) reader.FlatReader {
	t.Helper()
	r, err := reader.NewFromMutations(ms[0].Schema(), ms, reader.NoForwarding)
	require.NoError(t, err)
	return r
}

func TestFlatToNestedExposesPartitionMetadata(t *testing.T) {
	s := streamtest.Schema()
	streamtest.ForEachMutation(s, func(m *mutation.Mutation) {
		nested, err := reader.ToNested(s, flatOver(t, []*mutation.Mutation{m}))
		require.NoError(t, err)

		h, err := nested.NextPartition()
		require.NoError(t, err)
		require.NotNil(t, h)
		require.True(t, h.Key().Equal(m.Key()))
		require.Equal(t, m.PartitionTombstone(), h.PartitionTombstone())

		// The inner stream carries content only: no start/end markers.
		for _, want := range m.ContentFragments() {
			f, err := h.Next()
			require.NoError(t, err)
			require.NotNil(t, f)
			require.False(t, f.IsPartitionStart())
			require.False(t, f.IsPartitionEnd())
			require.True(t, want.Equal(s, f))
		}
		f, err := h.Next()
		require.NoError(t, err)
		require.Nil(t, f)

		h2, err := nested.NextPartition()
		require.NoError(t, err)
		require.Nil(t, h2)
		h2, err = nested.NextPartition()
		require.NoError(t, err)
		require.Nil(t, h2)
	})
}

func TestDoubleConversionRoundTrip(t *testing.T) {
	s := streamtest.Schema()
	ms := streamtest.Sort(streamtest.Mutations(s))

	nested, err := reader.ToNested(s, flatOver(t, ms))
	require.NoError(t, err)
	flat, err := reader.NewFromNested(s, nested, reader.NoForwarding)
	require.NoError(t, err)

	got, err := reader.ReadAll(flat)
	require.NoError(t, err)
	streamtest.RequireSameMutations(t, ms, got)
	streamtest.RequireEndOfStream(t, flat)
}

func TestDoubleConversionRoundTripPairs(t *testing.T) {
	s := streamtest.Schema()
	streamtest.ForEachMutationPair(s, func(m1, m2 *mutation.Mutation) {
		ms := []*mutation.Mutation{m1, m2}
		nested, err := reader.ToNested(s, flatOver(t, ms))
		require.NoError(t, err)
		flat, err := reader.NewFromNested(s, nested, reader.NoForwarding)
		require.NoError(t, err)

		got, err := reader.ReadAll(flat)
		require.NoError(t, err)
		streamtest.RequireSameMutations(t, ms, got)
	})
}

func TestNestedDrainOnRelease(t *testing.T) {
	s := streamtest.Schema()
	ms := streamtest.Sort(streamtest.Mutations(s))

	nested, err := reader.ToNested(s, flatOver(t, ms))
	require.NoError(t, err)

	// Abandon every partition after a single (or zero) inner pull; the
	// adapter must still position the cursor at each next partition-start.
	for _, want := range ms {
		h, err := nested.NextPartition()
		require.NoError(t, err)
		require.NotNil(t, h)
		require.True(t, h.Key().Equal(want.Key()), "expected partition %s", want.Key())
		if len(want.ContentFragments()) > 0 {
			_, err := h.Next()
			require.NoError(t, err)
		}
	}
	h, err := nested.NextPartition()
	require.NoError(t, err)
	require.Nil(t, h)
}

func TestNestedHandleCloseDrains(t *testing.T) {
	s := streamtest.Schema()
	ms := streamtest.Sort(streamtest.Mutations(s))

	nested, err := reader.ToNested(s, flatOver(t, ms))
	require.NoError(t, err)

	h, err := nested.NextPartition()
	require.NoError(t, err)
	require.NoError(t, h.Close())

	f, err := h.Next()
	require.NoError(t, err)
	require.Nil(t, f, "closed handle must not yield fragments")

	h, err = nested.NextPartition()
	require.NoError(t, err)
	require.NotNil(t, h)
	require.True(t, h.Key().Equal(ms[1].Key()))
}

func TestReadPartitionMaterializesHandle(t *testing.T) {
	s := streamtest.Schema()
	streamtest.ForEachMutation(s, func(m *mutation.Mutation) {
		nested, err := reader.ToNested(s, flatOver(t, []*mutation.Mutation{m}))
		require.NoError(t, err)

		h, err := nested.NextPartition()
		require.NoError(t, err)
		got, err := reader.ReadPartition(s, h)
		require.NoError(t, err)
		require.True(t, m.Equal(got))
	})
}

func TestToNestedDetectsTruncatedPartition(t *testing.T) {
	s := streamtest.Schema()
	m := streamtest.Mutations(s)[3] // multi-row partition
	full := m.Fragments()

	// Drop the partition-end marker: end of stream arrives mid-partition.
	truncated := &scriptedReader{schema: s, frags: full[:len(full)-1]}
	nested, err := reader.ToNested(s, truncated)
	require.NoError(t, err)

	h, err := nested.NextPartition()
	require.NoError(t, err)
	for {
		f, err := h.Next()
		if err != nil {
			require.ErrorIs(t, err, reader.ErrMalformedStream)
			break
		}
		require.NotNil(t, f, "stream ended without surfacing corruption")
	}
}

func TestToNestedDetectsMissingPartitionStart(t *testing.T) {
	s := streamtest.Schema()
	m := streamtest.Mutations(s)[2]
	frags := m.Fragments()

	headless := &scriptedReader{schema: s, frags: frags[1:]}
	nested, err := reader.ToNested(s, headless)
	require.NoError(t, err)

	_, err = nested.NextPartition()
	require.ErrorIs(t, err, reader.ErrMalformedStream)
}

func TestToNestedDetectsNestedPartitionStart(t *testing.T) {
	s := streamtest.Schema()
	m := streamtest.Mutations(s)[2]
	frags := m.Fragments()

	// Replace the end marker with another start: unmatched framing.
	bad := append(append([]*mutation.Fragment{}, frags[:len(frags)-1]...),
		mutation.NewPartitionStart(mutation.NewKey([]byte("zzz")), mutation.Tombstone{}))
	nested, err := reader.ToNested(s, &scriptedReader{schema: s, frags: bad})
	require.NoError(t, err)

	h, err := nested.NextPartition()
	require.NoError(t, err)
	for {
		f, err := h.Next()
		if err != nil {
			require.ErrorIs(t, err, reader.ErrMalformedStream)
			break
		}
		require.NotNil(t, f)
	}
}

func TestNestedAdapterPropagatesSourceFailure(t *testing.T) {
	s := streamtest.Schema()
	m := streamtest.Mutations(s)[3]
	srcErr := errors.New("socket reset")

	r := &scriptedReader{schema: s, frags: m.Fragments()[:2], err: srcErr}
	nested, err := reader.ToNested(s, r)
	require.NoError(t, err)
	flat, err := reader.NewFromNested(s, nested, reader.NoForwarding)
	require.NoError(t, err)

	for {
		f, err := flat.Next()
		if err != nil {
			require.ErrorIs(t, err, srcErr)
			return
		}
		require.NotNil(t, f, "failure was swallowed")
	}
}

func TestAdaptersRejectForeignSchema(t *testing.T) {
	s := streamtest.Schema()
	other := streamtest.Schema()
	ms := streamtest.Sort(streamtest.Mutations(s))

	_, err := reader.ToNested(other, flatOver(t, ms))
	require.ErrorIs(t, err, reader.ErrSchemaMismatch)

	nested, err := reader.ToNested(s, flatOver(t, ms))
	require.NoError(t, err)
	_, err = reader.NewFromNested(other, nested, reader.NoForwarding)
	require.ErrorIs(t, err, reader.ErrSchemaMismatch)
}

// reentrantHandle pulls its own enclosing flat reader from inside an inner
// pull, which the flat adapter must reject as a concurrent pull.
type reentrantHandle struct {
	flat reader.FlatReader
}

func (h *reentrantHandle) Key() mutation.Key                      { return mutation.NewKey([]byte("p")) }
func (h *reentrantHandle) PartitionTombstone() mutation.Tombstone { return mutation.Tombstone{} }
func (h *reentrantHandle) Close() error                           { return nil }

func (h *reentrantHandle) Next() (*mutation.Fragment, error) {
	_, err := h.flat.Next()
	return nil, err
}

type singlePartitionNested struct {
	schema *schema.Schema
	handle reader.PartitionHandle
	served bool
}

func (n *singlePartitionNested) Schema() *schema.Schema { return n.schema }
func (n *singlePartitionNested) Close() error           { return nil }

func (n *singlePartitionNested) NextPartition() (reader.PartitionHandle, error) {
	if n.served {
		return nil, nil
	}
	n.served = true
	return n.handle, nil
}

func TestConcurrentPullIsRejected(t *testing.T) {
	s := streamtest.Schema()
	h := &reentrantHandle{}
	nested := &singlePartitionNested{schema: s, handle: h}

	flat, err := reader.NewFromNested(s, nested, reader.NoForwarding)
	require.NoError(t, err)
	h.flat = flat

	// First pull emits the partition start without touching the handle.
	f, err := flat.Next()
	require.NoError(t, err)
	require.True(t, f.IsPartitionStart())

	// Second pull reaches the handle, which pulls the flat reader again.
	_, err = flat.Next()
	require.ErrorIs(t, err, reader.ErrConcurrentPull)
}
