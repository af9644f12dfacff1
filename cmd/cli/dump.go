package main

import (
	"fmt"
	"strings"

	"github.com/jianlirong/scylla/internal/mutation"
	"github.com/jianlirong/scylla/internal/reader"
)

// dumpReader drains a flat reader and prints one line per fragment.
func dumpReader(r reader.FlatReader) {
	fmt.Printf("%-16s %-24s %s\n", "FRAGMENT", "POSITION", "DETAIL")
	fmt.Println()

	count := 0
	for {
		f, err := r.Next()
		if err != nil {
			fmt.Printf("error reading fragment: %v\n", err)
			return
		}
		if f == nil {
			break
		}
		count++
		fmt.Printf("%-16s %-24s %s\n", f.Kind(), fragmentPosition(f), fragmentDetail(f))
	}

	fmt.Println()
	fmt.Printf("Total fragments: %d\n", count)
}

func fragmentPosition(f *mutation.Fragment) string {
	switch f.Kind() {
	case mutation.FragmentPartitionStart:
		return truncate(string(f.AsPartitionStart().Key.Raw()), 24)
	case mutation.FragmentClusteringRow:
		return truncate(clusteringString(f.AsClusteringRow().Key), 24)
	case mutation.FragmentRangeTombstone:
		rt := f.AsRangeTombstone()
		return truncate(clusteringString(rt.Start.Prefix)+".."+clusteringString(rt.End.Prefix), 24)
	}
	return "-"
}

func fragmentDetail(f *mutation.Fragment) string {
	switch f.Kind() {
	case mutation.FragmentPartitionStart:
		ps := f.AsPartitionStart()
		if ps.Tombstone.Present() {
			return fmt.Sprintf("tombstone ts=%d", ps.Tombstone.Timestamp)
		}
		return "live"
	case mutation.FragmentStaticRow:
		return fmt.Sprintf("%d cells", len(f.AsStaticRow().Row.Cells()))
	case mutation.FragmentClusteringRow:
		cr := f.AsClusteringRow()
		if cr.Tombstone.Present() {
			return fmt.Sprintf("deleted ts=%d", cr.Tombstone.Timestamp)
		}
		return fmt.Sprintf("%d cells", len(cr.Row.Cells()))
	case mutation.FragmentRangeTombstone:
		return fmt.Sprintf("ts=%d", f.AsRangeTombstone().Tombstone.Timestamp)
	}
	return ""
}

func clusteringString(ck mutation.ClusteringKey) string {
	comps := make([]string, len(ck))
	for i, c := range ck {
		comps[i] = fmt.Sprintf("%q", c)
	}
	return "(" + strings.Join(comps, ",") + ")"
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
