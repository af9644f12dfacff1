package mutation

import (
	"errors"
	"sort"

	"github.com/jianlirong/scylla/internal/schema"
)

// ErrSchemaMismatch is returned when mutations built against different schema
// handles are combined.
var ErrSchemaMismatch = errors.New("mutation: schema mismatch")

// Mutation is the fully materialized content of one partition: key, optional
// partition tombstone, optional static row, and clustering content in
// clustering order. A mutation is exclusively owned by its creator; finish
// building it before handing it to a reader or source.
type Mutation struct {
	schema    *schema.Schema
	key       Key
	tombstone Tombstone
	static    *StaticRow
	rows      []*ClusteringRow
	rts       []*RangeTombstone
}

// New starts an empty mutation for the given partition key.
func New(s *schema.Schema, key Key) *Mutation {
	return &Mutation{schema: s, key: key}
}

func (m *Mutation) Schema() *schema.Schema { return m.schema }
func (m *Mutation) Key() Key               { return m.key }

// PartitionTombstone returns the partition-wide tombstone, zero if none.
func (m *Mutation) PartitionTombstone() Tombstone { return m.tombstone }

// StaticRow returns the static row, or nil if the mutation has none.
func (m *Mutation) StaticRow() *StaticRow { return m.static }

// ClusteringRows returns the rows in clustering order.
func (m *Mutation) ClusteringRows() []*ClusteringRow { return m.rows }

// RangeTombstones returns the range tombstones ordered by start position.
func (m *Mutation) RangeTombstones() []*RangeTombstone { return m.rts }

// SetTombstone applies a partition tombstone, keeping deletion precedence.
func (m *Mutation) SetTombstone(t Tombstone) {
	m.tombstone.Apply(t)
}

// SetStaticCell writes one static cell.
func (m *Mutation) SetStaticCell(id schema.ColumnID, ts int64, value []byte) {
	if m.static == nil {
		m.static = &StaticRow{}
	}
	m.static.Row.Set(id, ts, value)
}

// SetCell writes one cell of the row at the given clustering key, creating
// the row if needed.
func (m *Mutation) SetCell(ck ClusteringKey, id schema.ColumnID, ts int64, value []byte) {
	m.rowAt(ck).Row.Set(id, ts, value)
}

// DeleteRow installs a row tombstone at the given clustering key.
func (m *Mutation) DeleteRow(ck ClusteringKey, t Tombstone) {
	r := m.rowAt(ck)
	r.Tombstone.Apply(t)
}

// DeleteRange installs a range tombstone over a clustering interval.
func (m *Mutation) DeleteRange(start, end Bound, t Tombstone) {
	m.AddRangeTombstone(&RangeTombstone{Start: start, End: end, Tombstone: t})
}

func (m *Mutation) rowAt(ck ClusteringKey) *ClusteringRow {
	i := sort.Search(len(m.rows), func(i int) bool {
		return m.schema.CompareClustering(m.rows[i].Key, ck) >= 0
	})
	if i < len(m.rows) && m.schema.CompareClustering(m.rows[i].Key, ck) == 0 {
		return m.rows[i]
	}
	row := &ClusteringRow{Key: ck}
	m.rows = append(m.rows, nil)
	copy(m.rows[i+1:], m.rows[i:])
	m.rows[i] = row
	return row
}

// AddClusteringRow folds a whole row in, merging with an existing row at the
// same clustering key.
func (m *Mutation) AddClusteringRow(cr *ClusteringRow) {
	row := m.rowAt(cr.Key)
	row.Tombstone.Apply(cr.Tombstone)
	row.Row.Merge(&cr.Row)
}

// AddRangeTombstone inserts a range tombstone, keeping start-position order.
func (m *Mutation) AddRangeTombstone(rt *RangeTombstone) {
	i := sort.Search(len(m.rts), func(i int) bool {
		return comparePositions(m.schema,
			m.rts[i].Start.Prefix, m.rts[i].startWeight(),
			rt.Start.Prefix, rt.startWeight()) >= 0
	})
	m.rts = append(m.rts, nil)
	copy(m.rts[i+1:], m.rts[i:])
	m.rts[i] = rt
}

// Apply merges another mutation for the same partition into this one. Cell
// and tombstone conflicts resolve by timestamp precedence.
func (m *Mutation) Apply(other *Mutation) error {
	if m.schema != other.schema {
		return ErrSchemaMismatch
	}
	if !m.key.Equal(other.key) {
		return errors.New("mutation: applying mutation for a different partition")
	}
	m.tombstone.Apply(other.tombstone)
	if other.static != nil {
		if m.static == nil {
			m.static = &StaticRow{}
		}
		m.static.Row.Merge(&other.static.Row)
	}
	for _, cr := range other.rows {
		m.AddClusteringRow(cr)
	}
	for _, rt := range other.rts {
		m.AddRangeTombstone(rt)
	}
	return nil
}

// ContentFragments returns the mutation's body in stream order: static row
// first, then clustering rows and range tombstones interleaved by clustering
// position. Partition start/end markers are not included.
func (m *Mutation) ContentFragments() []*Fragment {
	out := make([]*Fragment, 0, 1+len(m.rows)+len(m.rts))
	if m.static != nil {
		out = append(out, NewStaticRow(m.static))
	}
	ri, ti := 0, 0
	for ri < len(m.rows) && ti < len(m.rts) {
		rt := m.rts[ti]
		if comparePositions(m.schema, rt.Start.Prefix, rt.startWeight(), m.rows[ri].Key, 0) <= 0 {
			out = append(out, NewRangeTombstone(rt))
			ti++
		} else {
			out = append(out, NewClusteringRow(m.rows[ri]))
			ri++
		}
	}
	for ; ti < len(m.rts); ti++ {
		out = append(out, NewRangeTombstone(m.rts[ti]))
	}
	for ; ri < len(m.rows); ri++ {
		out = append(out, NewClusteringRow(m.rows[ri]))
	}
	return out
}

// Fragments returns the complete flattened form of the mutation, bounded by
// partition-start and partition-end markers.
func (m *Mutation) Fragments() []*Fragment {
	content := m.ContentFragments()
	out := make([]*Fragment, 0, len(content)+2)
	out = append(out, NewPartitionStart(m.key, m.tombstone))
	out = append(out, content...)
	out = append(out, NewPartitionEnd())
	return out
}

// Equal compares mutations schema-relatively. Mutations on different schema
// handles are never equal.
func (m *Mutation) Equal(other *Mutation) bool {
	if m.schema != other.schema {
		return false
	}
	if !m.key.Equal(other.key) || m.tombstone != other.tombstone {
		return false
	}
	if (m.static == nil) != (other.static == nil) {
		return false
	}
	if m.static != nil && !m.static.Equal(m.schema, other.static) {
		return false
	}
	if len(m.rows) != len(other.rows) || len(m.rts) != len(other.rts) {
		return false
	}
	for i, cr := range m.rows {
		if !cr.Equal(m.schema, other.rows[i]) {
			return false
		}
	}
	for i, rt := range m.rts {
		if !rt.Equal(m.schema, other.rts[i]) {
			return false
		}
	}
	return true
}
