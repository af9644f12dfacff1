package mutation

import (
	"bytes"
	"sort"

	"github.com/jianlirong/scylla/internal/schema"
)

// Cell is one column value with its write timestamp.
type Cell struct {
	Column    schema.ColumnID
	Timestamp int64
	Value     []byte
}

// Row is a set of cells kept sorted by column ID.
type Row struct {
	cells []Cell
}

// Cells returns the cells in column-ID order.
func (r *Row) Cells() []Cell { return r.cells }

// IsEmpty reports whether the row carries no cells.
func (r *Row) IsEmpty() bool { return len(r.cells) == 0 }

// Get returns the cell for a column, if set.
func (r *Row) Get(id schema.ColumnID) (Cell, bool) {
	i := sort.Search(len(r.cells), func(i int) bool { return r.cells[i].Column >= id })
	if i < len(r.cells) && r.cells[i].Column == id {
		return r.cells[i], true
	}
	return Cell{}, false
}

// Set writes a cell. An existing cell for the column is replaced only if the
// new timestamp is not older.
func (r *Row) Set(id schema.ColumnID, ts int64, value []byte) {
	i := sort.Search(len(r.cells), func(i int) bool { return r.cells[i].Column >= id })
	if i < len(r.cells) && r.cells[i].Column == id {
		if ts >= r.cells[i].Timestamp {
			r.cells[i] = Cell{Column: id, Timestamp: ts, Value: value}
		}
		return
	}
	r.cells = append(r.cells, Cell{})
	copy(r.cells[i+1:], r.cells[i:])
	r.cells[i] = Cell{Column: id, Timestamp: ts, Value: value}
}

// Merge folds another row into this one, newest timestamp winning per column.
func (r *Row) Merge(other *Row) {
	for _, c := range other.cells {
		r.Set(c.Column, c.Timestamp, c.Value)
	}
}

// Equal compares rows by column identity, timestamp, and value.
func (r *Row) Equal(other *Row) bool {
	if len(r.cells) != len(other.cells) {
		return false
	}
	for i, c := range r.cells {
		o := other.cells[i]
		if c.Column != o.Column || c.Timestamp != o.Timestamp || !bytes.Equal(c.Value, o.Value) {
			return false
		}
	}
	return true
}

// StaticRow holds the partition's static cells.
type StaticRow struct {
	Row Row
}

// Equal compares static rows schema-relatively.
func (sr *StaticRow) Equal(s *schema.Schema, other *StaticRow) bool {
	return sr.Row.Equal(&other.Row)
}

// ClusteringKey is a clustering prefix: one serialized component per
// clustering column, possibly fewer for range tombstone bounds.
type ClusteringKey [][]byte

// ClusteringRow is one row of a partition, addressed by its clustering key.
type ClusteringRow struct {
	Key       ClusteringKey
	Tombstone Tombstone
	Row       Row
}

// Equal compares clustering rows schema-relatively.
func (cr *ClusteringRow) Equal(s *schema.Schema, other *ClusteringRow) bool {
	return s.CompareClustering(cr.Key, other.Key) == 0 &&
		cr.Tombstone == other.Tombstone &&
		cr.Row.Equal(&other.Row)
}
