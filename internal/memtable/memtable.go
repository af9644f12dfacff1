// Package memtable is the in-memory write buffer mutation source: it absorbs
// mutations and serves them back through the nested reader contract.
package memtable

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/zhangyunhao116/skipmap"

	"github.com/jianlirong/scylla/internal/common"
	"github.com/jianlirong/scylla/internal/mutation"
	"github.com/jianlirong/scylla/internal/reader"
	"github.com/jianlirong/scylla/internal/schema"
)

// Memtable buffers partition mutations in token order. Writes merge by
// timestamp precedence; readers see a point-in-time snapshot.
type Memtable struct {
	schema *schema.Schema
	log    zerolog.Logger

	// mu serializes merges into a partition; lookups and ordered iteration
	// go through the skipmap lock-free.
	mu    sync.Mutex
	parts *skipmap.FuncMap[mutation.Key, *mutation.Mutation]
}

// New returns an empty memtable for the given schema.
func New(s *schema.Schema) *Memtable {
	return &Memtable{
		schema: s,
		log:    common.NewLogger().With().Str("component", "memtable").Logger(),
		parts: skipmap.NewFunc[mutation.Key, *mutation.Mutation](func(a, b mutation.Key) bool {
			return a.Compare(b) < 0
		}),
	}
}

func (mt *Memtable) Schema() *schema.Schema { return mt.schema }

// Len returns the number of buffered partitions.
func (mt *Memtable) Len() int { return mt.parts.Len() }

// Apply merges a mutation into the buffer. The caller keeps ownership of m;
// its content is copied into the buffered partition.
func (mt *Memtable) Apply(m *mutation.Mutation) error {
	if m.Schema() != mt.schema {
		return mutation.ErrSchemaMismatch
	}
	mt.mu.Lock()
	defer mt.mu.Unlock()

	cur, ok := mt.parts.Load(m.Key())
	if !ok {
		cur = mutation.New(mt.schema, m.Key())
		mt.parts.Store(m.Key(), cur)
	}
	if err := cur.Apply(m); err != nil {
		return err
	}
	mt.log.Debug().Stringer("key", m.Key()).Int("partitions", mt.parts.Len()).Msg("applied mutation")
	return nil
}

// snapshot materializes the buffered partitions in key order, detached from
// later writes.
func (mt *Memtable) snapshot() []*mutation.Mutation {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	out := make([]*mutation.Mutation, 0, mt.parts.Len())
	mt.parts.Range(func(key mutation.Key, m *mutation.Mutation) bool {
		frozen := mutation.New(mt.schema, key)
		if err := frozen.Apply(m); err != nil {
			// Buffered partitions share the memtable's schema handle.
			panic(err)
		}
		out = append(out, frozen)
		return true
	})
	return out
}

// Reader returns a nested reader over a snapshot of the buffer.
func (mt *Memtable) Reader() reader.NestedReader {
	return &nestedReader{schema: mt.schema, parts: mt.snapshot()}
}

// FlatReader returns a flat reader over a snapshot of the buffer.
func (mt *Memtable) FlatReader(fwd reader.Forwarding) (reader.FlatReader, error) {
	return reader.NewFromNested(mt.schema, mt.Reader(), fwd)
}

// nestedReader walks a memtable snapshot partition by partition.
type nestedReader struct {
	schema *schema.Schema
	parts  []*mutation.Mutation
}

var _ reader.NestedReader = (*nestedReader)(nil)

func (r *nestedReader) Schema() *schema.Schema { return r.schema }

func (r *nestedReader) NextPartition() (reader.PartitionHandle, error) {
	if len(r.parts) == 0 {
		return nil, nil
	}
	m := r.parts[0]
	r.parts = r.parts[1:]
	return &partitionHandle{m: m}, nil
}

func (r *nestedReader) Close() error {
	r.parts = nil
	return nil
}

// partitionHandle serves one snapshot partition's content fragments. The
// fragment list is built on first pull.
type partitionHandle struct {
	m       *mutation.Mutation
	content []*mutation.Fragment
	started bool
}

var _ reader.PartitionHandle = (*partitionHandle)(nil)

func (h *partitionHandle) Key() mutation.Key { return h.m.Key() }

func (h *partitionHandle) PartitionTombstone() mutation.Tombstone {
	return h.m.PartitionTombstone()
}

func (h *partitionHandle) Next() (*mutation.Fragment, error) {
	if !h.started {
		h.content = h.m.ContentFragments()
		h.started = true
	}
	if len(h.content) == 0 {
		return nil, nil
	}
	f := h.content[0]
	h.content = h.content[1:]
	return f, nil
}

func (h *partitionHandle) Close() error {
	h.content = nil
	h.started = true
	return nil
}
