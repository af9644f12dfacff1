package schema

import (
	"bytes"
	"encoding/binary"
)

// ColumnID identifies a column within a schema. IDs are stable for the
// lifetime of the schema handle and are what cell-level equality keys on.
type ColumnID uint32

// ColumnKind places a column within the table layout.
type ColumnKind uint8

const (
	PartitionKeyColumn ColumnKind = iota
	ClusteringColumn
	StaticColumn
	RegularColumn
)

// ColumnType selects the comparator used for values of a column.
type ColumnType uint8

const (
	BytesType ColumnType = iota
	TextType
	Int64Type
)

// Compare orders two serialized values of this type.
func (t ColumnType) Compare(a, b []byte) int {
	switch t {
	case Int64Type:
		// Fixed 8-byte big-endian encoding compares bytewise for unsigned
		// values; flip the sign bit so negative numbers sort first.
		av := decodeInt64(a)
		bv := decodeInt64(b)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	default:
		return bytes.Compare(a, b)
	}
}

func decodeInt64(v []byte) int64 {
	if len(v) != 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(v))
}

// EncodeInt64 serializes an int64 value for an Int64Type column.
func EncodeInt64(v int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(v))
	return buf
}

// Column describes one column of a schema.
type Column struct {
	ID   ColumnID
	Name string
	Kind ColumnKind
	Type ColumnType
}

// Schema is an immutable description of a table: column identities and the
// comparators derived from them. A schema is shared by handle; two mutations
// belong to the same schema iff they hold the same *Schema pointer.
type Schema struct {
	keyspace string
	table    string

	partitionKey []Column
	clustering   []Column
	static       []Column
	regular      []Column
	byID         map[ColumnID]Column
}

func (s *Schema) Keyspace() string { return s.keyspace }
func (s *Schema) Table() string    { return s.table }

// PartitionKeyColumns returns the partition key columns in declaration order.
func (s *Schema) PartitionKeyColumns() []Column { return s.partitionKey }

// ClusteringColumns returns the clustering columns in declaration order.
func (s *Schema) ClusteringColumns() []Column { return s.clustering }

// StaticColumns returns the static columns in declaration order.
func (s *Schema) StaticColumns() []Column { return s.static }

// RegularColumns returns the regular columns in declaration order.
func (s *Schema) RegularColumns() []Column { return s.regular }

// Column looks up a column by ID.
func (s *Schema) Column(id ColumnID) (Column, bool) {
	c, ok := s.byID[id]
	return c, ok
}

// CompareClustering orders two clustering prefixes component-wise using the
// clustering columns' typed comparators. A shorter prefix that matches the
// longer one on every shared component sorts first. Prefixes longer than the
// clustering column count are truncated.
func (s *Schema) CompareClustering(a, b [][]byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if len(s.clustering) < n {
		n = len(s.clustering)
	}
	for i := 0; i < n; i++ {
		if c := s.clustering[i].Type.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}
