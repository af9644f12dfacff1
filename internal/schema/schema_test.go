package schema_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jianlirong/scylla/internal/schema"
)

func testSchema() *schema.Schema {
	return schema.NewBuilder("ks", "t").
		WithPartitionKey("pk", schema.BytesType).
		WithClusteringColumn("ck1", schema.TextType).
		WithClusteringColumn("ck2", schema.Int64Type).
		WithStaticColumn("s", schema.TextType).
		WithRegularColumn("v", schema.BytesType).
		Build()
}

func TestBuilderAssignsStableIDs(t *testing.T) {
	s := testSchema()

	require.Len(t, s.PartitionKeyColumns(), 1)
	require.Len(t, s.ClusteringColumns(), 2)
	require.Len(t, s.StaticColumns(), 1)
	require.Len(t, s.RegularColumns(), 1)

	ck1 := s.ClusteringColumns()[0]
	require.Equal(t, "ck1", ck1.Name)
	got, ok := s.Column(ck1.ID)
	require.True(t, ok)
	require.Equal(t, ck1, got)

	_, ok = s.Column(schema.ColumnID(99))
	require.False(t, ok)
}

func TestInt64CompareOrdersNegatives(t *testing.T) {
	typ := schema.Int64Type

	require.Negative(t, typ.Compare(schema.EncodeInt64(-5), schema.EncodeInt64(3)))
	require.Positive(t, typ.Compare(schema.EncodeInt64(10), schema.EncodeInt64(-10)))
	require.Zero(t, typ.Compare(schema.EncodeInt64(7), schema.EncodeInt64(7)))
}

func TestCompareClustering(t *testing.T) {
	s := testSchema()

	a := [][]byte{[]byte("a"), schema.EncodeInt64(1)}
	b := [][]byte{[]byte("a"), schema.EncodeInt64(2)}
	c := [][]byte{[]byte("b"), schema.EncodeInt64(0)}

	require.Negative(t, s.CompareClustering(a, b))
	require.Negative(t, s.CompareClustering(b, c))
	require.Positive(t, s.CompareClustering(c, a))
	require.Zero(t, s.CompareClustering(a, a))

	// A matching shorter prefix sorts first.
	prefix := [][]byte{[]byte("a")}
	require.Negative(t, s.CompareClustering(prefix, a))
	require.Positive(t, s.CompareClustering(a, prefix))
	require.Zero(t, s.CompareClustering(prefix, prefix))
}
