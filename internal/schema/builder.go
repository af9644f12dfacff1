package schema

// Builder assembles an immutable Schema. Column IDs are assigned in
// registration order and never reused.
type Builder struct {
	s      Schema
	nextID ColumnID
}

// NewBuilder starts a schema for the given keyspace and table.
func NewBuilder(keyspace, table string) *Builder {
	return &Builder{
		s: Schema{
			keyspace: keyspace,
			table:    table,
			byID:     make(map[ColumnID]Column),
		},
	}
}

func (b *Builder) add(name string, kind ColumnKind, typ ColumnType) *Builder {
	col := Column{ID: b.nextID, Name: name, Kind: kind, Type: typ}
	b.nextID++
	b.s.byID[col.ID] = col
	switch kind {
	case PartitionKeyColumn:
		b.s.partitionKey = append(b.s.partitionKey, col)
	case ClusteringColumn:
		b.s.clustering = append(b.s.clustering, col)
	case StaticColumn:
		b.s.static = append(b.s.static, col)
	case RegularColumn:
		b.s.regular = append(b.s.regular, col)
	}
	return b
}

// WithPartitionKey appends a partition key column.
func (b *Builder) WithPartitionKey(name string, typ ColumnType) *Builder {
	return b.add(name, PartitionKeyColumn, typ)
}

// WithClusteringColumn appends a clustering column.
func (b *Builder) WithClusteringColumn(name string, typ ColumnType) *Builder {
	return b.add(name, ClusteringColumn, typ)
}

// WithStaticColumn appends a static column.
func (b *Builder) WithStaticColumn(name string, typ ColumnType) *Builder {
	return b.add(name, StaticColumn, typ)
}

// WithRegularColumn appends a regular column.
func (b *Builder) WithRegularColumn(name string, typ ColumnType) *Builder {
	return b.add(name, RegularColumn, typ)
}

// Build returns the finished schema handle. The builder must not be reused.
func (b *Builder) Build() *Schema {
	return &b.s
}
