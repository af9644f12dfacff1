package mutation

import "github.com/jianlirong/scylla/internal/schema"

// Bound is one end of a clustering interval. The prefix may cover fewer
// components than the schema has clustering columns, in which case it bounds
// every key extending it.
type Bound struct {
	Prefix    ClusteringKey
	Inclusive bool
}

// RangeTombstone deletes the clustering interval [Start, End] (subject to
// bound inclusivity) with the given tombstone's precedence.
type RangeTombstone struct {
	Start     Bound
	End       Bound
	Tombstone Tombstone
}

// Equal compares range tombstones schema-relatively.
func (rt *RangeTombstone) Equal(s *schema.Schema, other *RangeTombstone) bool {
	return boundEqual(s, rt.Start, other.Start) &&
		boundEqual(s, rt.End, other.End) &&
		rt.Tombstone == other.Tombstone
}

func boundEqual(s *schema.Schema, a, b Bound) bool {
	return a.Inclusive == b.Inclusive && s.CompareClustering(a.Prefix, b.Prefix) == 0
}

// startWeight positions a range tombstone relative to rows in the flattened
// stream: an inclusive start sorts just before any row at its prefix, an
// exclusive start just after.
func (rt *RangeTombstone) startWeight() int {
	if rt.Start.Inclusive {
		return -1
	}
	return 1
}

// comparePositions orders two positions within a partition. A position is a
// clustering prefix plus a weight: -1 sorts before every key extending the
// prefix, 0 at exactly the key, +1 after every extension.
func comparePositions(s *schema.Schema, a ClusteringKey, aw int, b ClusteringKey, bw int) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if c := compareComponents(s, a[:n], b[:n]); c != 0 {
		return c
	}
	switch {
	case len(a) < len(b):
		if aw != 0 {
			return aw
		}
		return -1
	case len(a) > len(b):
		if bw != 0 {
			return -bw
		}
		return 1
	}
	switch {
	case aw < bw:
		return -1
	case aw > bw:
		return 1
	}
	return 0
}

func compareComponents(s *schema.Schema, a, b ClusteringKey) int {
	cols := s.ClusteringColumns()
	for i := range a {
		if i >= len(cols) {
			break
		}
		if c := cols[i].Type.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}
