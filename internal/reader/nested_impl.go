package reader

import (
	"github.com/jianlirong/scylla/internal/mutation"
	"github.com/jianlirong/scylla/internal/schema"
)

// nestedFlatReader flattens a nested reader without materializing it. It is
// a two-state machine: outside a partition it pulls the next handle from the
// outer cursor and emits a partition-start carrying the handle's key and
// tombstone; inside a partition it relays the handle's content fragments and
// emits a partition-end once the handle is exhausted.
type nestedFlatReader struct {
	schema  *schema.Schema
	fwd     Forwarding
	inner   NestedReader
	cur     PartitionHandle // nil when not in a partition
	pulling bool
}

var _ FlatReader = (*nestedFlatReader)(nil)

// NewFromNested adapts a nested reader into a flat reader. Ownership of the
// nested reader transfers to the returned reader.
func NewFromNested(s *schema.Schema, inner NestedReader, fwd Forwarding) (FlatReader, error) {
	if inner.Schema() != s {
		return nil, ErrSchemaMismatch
	}
	return &nestedFlatReader{schema: s, fwd: fwd, inner: inner}, nil
}

func (r *nestedFlatReader) Schema() *schema.Schema { return r.schema }
func (r *nestedFlatReader) Forwarding() Forwarding { return r.fwd }

func (r *nestedFlatReader) Next() (*mutation.Fragment, error) {
	if r.pulling {
		return nil, ErrConcurrentPull
	}
	r.pulling = true
	defer func() { r.pulling = false }()

	if r.cur == nil {
		h, err := r.inner.NextPartition()
		if err != nil {
			return nil, err
		}
		if h == nil {
			return nil, nil
		}
		r.cur = h
		return mutation.NewPartitionStart(h.Key(), h.PartitionTombstone()), nil
	}
	f, err := r.cur.Next()
	if err != nil {
		return nil, err
	}
	if f != nil {
		return f, nil
	}
	if err := r.cur.Close(); err != nil {
		return nil, err
	}
	r.cur = nil
	return mutation.NewPartitionEnd(), nil
}

func (r *nestedFlatReader) Close() error {
	if r.cur != nil {
		if err := r.cur.Close(); err != nil {
			return err
		}
		r.cur = nil
	}
	return r.inner.Close()
}

// flatNestedReader is the inverse adapter: it presents a flat reader as a
// nested one, buffering no more than the current position. Producing the
// next handle first drains whatever is left of the previous partition so the
// flat cursor lands exactly on the next partition-start.
type flatNestedReader struct {
	schema *schema.Schema
	flat   FlatReader
	cur    *flatPartitionHandle
}

var _ NestedReader = (*flatNestedReader)(nil)

// ToNested adapts a flat reader into a nested reader. Ownership of the flat
// reader transfers to the returned reader.
func ToNested(s *schema.Schema, flat FlatReader) (NestedReader, error) {
	if flat.Schema() != s {
		return nil, ErrSchemaMismatch
	}
	return &flatNestedReader{schema: s, flat: flat}, nil
}

func (r *flatNestedReader) Schema() *schema.Schema { return r.schema }

func (r *flatNestedReader) NextPartition() (PartitionHandle, error) {
	if r.cur != nil {
		if err := r.cur.Close(); err != nil {
			return nil, err
		}
		r.cur = nil
	}
	f, err := r.flat.Next()
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, nil
	}
	if !f.IsPartitionStart() {
		return nil, ErrMalformedStream
	}
	ps := f.AsPartitionStart()
	r.cur = &flatPartitionHandle{
		key:       ps.Key,
		tombstone: ps.Tombstone,
		flat:      r.flat,
	}
	return r.cur, nil
}

func (r *flatNestedReader) Close() error {
	r.cur = nil
	return r.flat.Close()
}

// flatPartitionHandle lazily pulls one partition's content fragments from
// the shared flat cursor, never looking past the matching partition-end.
type flatPartitionHandle struct {
	key       mutation.Key
	tombstone mutation.Tombstone
	flat      FlatReader
	done      bool
}

var _ PartitionHandle = (*flatPartitionHandle)(nil)

func (h *flatPartitionHandle) Key() mutation.Key { return h.key }

func (h *flatPartitionHandle) PartitionTombstone() mutation.Tombstone { return h.tombstone }

func (h *flatPartitionHandle) Next() (*mutation.Fragment, error) {
	if h.done {
		return nil, nil
	}
	f, err := h.flat.Next()
	if err != nil {
		return nil, err
	}
	if f == nil {
		// End of stream inside a partition: upstream corruption.
		h.done = true
		return nil, ErrMalformedStream
	}
	switch {
	case f.IsPartitionEnd():
		h.done = true
		return nil, nil
	case f.IsPartitionStart():
		h.done = true
		return nil, ErrMalformedStream
	}
	return f, nil
}

// Close discards the rest of the partition, leaving the flat cursor
// positioned at the next partition-start.
func (h *flatPartitionHandle) Close() error {
	for !h.done {
		if _, err := h.Next(); err != nil {
			return err
		}
	}
	return nil
}
