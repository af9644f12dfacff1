package reader

import (
	"github.com/jianlirong/scylla/internal/mutation"
	"github.com/jianlirong/scylla/internal/schema"
)

// mutationAssembler is a consumer that rebuilds materialized mutations from
// a fragment stream. It never stops early.
type mutationAssembler struct {
	schema *schema.Schema
	cur    *mutation.Mutation
	out    []*mutation.Mutation
}

var _ Consumer[[]*mutation.Mutation] = (*mutationAssembler)(nil)

func (a *mutationAssembler) ConsumeNewPartition(key mutation.Key) {
	a.cur = mutation.New(a.schema, key)
}

func (a *mutationAssembler) ConsumePartitionTombstone(t mutation.Tombstone) Stop {
	a.cur.SetTombstone(t)
	return Continue
}

func (a *mutationAssembler) ConsumeStaticRow(sr *mutation.StaticRow) Stop {
	for _, c := range sr.Row.Cells() {
		a.cur.SetStaticCell(c.Column, c.Timestamp, c.Value)
	}
	return Continue
}

func (a *mutationAssembler) ConsumeClusteringRow(cr *mutation.ClusteringRow) Stop {
	a.cur.AddClusteringRow(cr)
	return Continue
}

func (a *mutationAssembler) ConsumeRangeTombstone(rt *mutation.RangeTombstone) Stop {
	a.cur.AddRangeTombstone(rt)
	return Continue
}

func (a *mutationAssembler) ConsumeEndOfPartition() Stop {
	a.out = append(a.out, a.cur)
	a.cur = nil
	return Continue
}

func (a *mutationAssembler) ConsumeEndOfStream() []*mutation.Mutation {
	return a.out
}

// ReadAll folds the remainder of a flat reader back into materialized
// mutations, one per partition, in key order.
func ReadAll(r FlatReader) ([]*mutation.Mutation, error) {
	return Consume[[]*mutation.Mutation](r, &mutationAssembler{schema: r.Schema()})
}

// ReadPartition materializes one partition from a nested reader's handle.
func ReadPartition(s *schema.Schema, h PartitionHandle) (*mutation.Mutation, error) {
	m := mutation.New(s, h.Key())
	m.SetTombstone(h.PartitionTombstone())
	for {
		f, err := h.Next()
		if err != nil {
			return nil, err
		}
		if f == nil {
			return m, nil
		}
		switch f.Kind() {
		case mutation.FragmentStaticRow:
			for _, c := range f.AsStaticRow().Row.Cells() {
				m.SetStaticCell(c.Column, c.Timestamp, c.Value)
			}
		case mutation.FragmentClusteringRow:
			m.AddClusteringRow(f.AsClusteringRow())
		case mutation.FragmentRangeTombstone:
			m.AddRangeTombstone(f.AsRangeTombstone())
		default:
			return nil, ErrMalformedStream
		}
	}
}
