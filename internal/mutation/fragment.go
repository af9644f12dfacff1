package mutation

import (
	"fmt"

	"github.com/jianlirong/scylla/internal/schema"
)

// FragmentKind tags the variant a Fragment holds.
type FragmentKind uint8

const (
	FragmentPartitionStart FragmentKind = iota
	FragmentStaticRow
	FragmentClusteringRow
	FragmentRangeTombstone
	FragmentPartitionEnd
)

func (k FragmentKind) String() string {
	switch k {
	case FragmentPartitionStart:
		return "partition-start"
	case FragmentStaticRow:
		return "static-row"
	case FragmentClusteringRow:
		return "clustering-row"
	case FragmentRangeTombstone:
		return "range-tombstone"
	case FragmentPartitionEnd:
		return "partition-end"
	}
	return fmt.Sprintf("fragment(%d)", uint8(k))
}

// PartitionStart opens a partition in a flat stream. The partition tombstone
// travels with it and is never delivered as a separate fragment.
type PartitionStart struct {
	Key       Key
	Tombstone Tombstone
}

// PartitionEnd closes a partition in a flat stream.
type PartitionEnd struct{}

// Fragment is one atomic unit of a flattened partition stream: a closed
// variant over partition-start, static-row, clustering-row, range-tombstone,
// and partition-end. The As* accessors panic on a kind mismatch; callers
// dispatch on Kind first.
type Fragment struct {
	kind   FragmentKind
	start  *PartitionStart
	static *StaticRow
	row    *ClusteringRow
	rt     *RangeTombstone
}

// NewPartitionStart builds a partition-start fragment.
func NewPartitionStart(key Key, t Tombstone) *Fragment {
	return &Fragment{kind: FragmentPartitionStart, start: &PartitionStart{Key: key, Tombstone: t}}
}

// NewStaticRow builds a static-row fragment.
func NewStaticRow(sr *StaticRow) *Fragment {
	return &Fragment{kind: FragmentStaticRow, static: sr}
}

// NewClusteringRow builds a clustering-row fragment.
func NewClusteringRow(cr *ClusteringRow) *Fragment {
	return &Fragment{kind: FragmentClusteringRow, row: cr}
}

// NewRangeTombstone builds a range-tombstone fragment.
func NewRangeTombstone(rt *RangeTombstone) *Fragment {
	return &Fragment{kind: FragmentRangeTombstone, rt: rt}
}

// NewPartitionEnd builds a partition-end fragment.
func NewPartitionEnd() *Fragment {
	return &Fragment{kind: FragmentPartitionEnd}
}

func (f *Fragment) Kind() FragmentKind { return f.kind }

func (f *Fragment) IsPartitionStart() bool { return f.kind == FragmentPartitionStart }
func (f *Fragment) IsStaticRow() bool      { return f.kind == FragmentStaticRow }
func (f *Fragment) IsClusteringRow() bool  { return f.kind == FragmentClusteringRow }
func (f *Fragment) IsRangeTombstone() bool { return f.kind == FragmentRangeTombstone }
func (f *Fragment) IsPartitionEnd() bool   { return f.kind == FragmentPartitionEnd }

func (f *Fragment) mustBe(k FragmentKind) {
	if f.kind != k {
		panic(fmt.Sprintf("mutation: fragment is %s, not %s", f.kind, k))
	}
}

// AsPartitionStart returns the partition-start payload.
func (f *Fragment) AsPartitionStart() *PartitionStart {
	f.mustBe(FragmentPartitionStart)
	return f.start
}

// AsStaticRow returns the static-row payload.
func (f *Fragment) AsStaticRow() *StaticRow {
	f.mustBe(FragmentStaticRow)
	return f.static
}

// AsClusteringRow returns the clustering-row payload.
func (f *Fragment) AsClusteringRow() *ClusteringRow {
	f.mustBe(FragmentClusteringRow)
	return f.row
}

// AsRangeTombstone returns the range-tombstone payload.
func (f *Fragment) AsRangeTombstone() *RangeTombstone {
	f.mustBe(FragmentRangeTombstone)
	return f.rt
}

// Equal compares fragments schema-relatively: same kind, and payloads equal
// under the schema's comparators.
func (f *Fragment) Equal(s *schema.Schema, other *Fragment) bool {
	if f.kind != other.kind {
		return false
	}
	switch f.kind {
	case FragmentPartitionStart:
		return f.start.Key.Equal(other.start.Key) && f.start.Tombstone == other.start.Tombstone
	case FragmentStaticRow:
		return f.static.Equal(s, other.static)
	case FragmentClusteringRow:
		return f.row.Equal(s, other.row)
	case FragmentRangeTombstone:
		return f.rt.Equal(s, other.rt)
	case FragmentPartitionEnd:
		return true
	}
	return false
}
