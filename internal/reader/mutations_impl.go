package reader

import (
	"github.com/jianlirong/scylla/internal/mutation"
	"github.com/jianlirong/scylla/internal/schema"
)

// mutationsReader serves the flattened form of an explicit mutation list,
// one partition's fragments at a time.
type mutationsReader struct {
	schema  *schema.Schema
	fwd     Forwarding
	pending []*mutation.Fragment
	rest    []*mutation.Mutation
	pulling bool
}

var _ FlatReader = (*mutationsReader)(nil)

// NewFromMutations builds a flat reader over mutations already in strictly
// increasing key order, all on the given schema handle. Each mutation is
// emitted as partition-start, static row if present, clustering content in
// clustering order, partition-end.
func NewFromMutations(s *schema.Schema, mutations []*mutation.Mutation, fwd Forwarding) (FlatReader, error) {
	for i, m := range mutations {
		if m.Schema() != s {
			return nil, ErrSchemaMismatch
		}
		if i > 0 && mutations[i-1].Key().Compare(m.Key()) >= 0 {
			return nil, ErrUnorderedMutations
		}
	}
	return &mutationsReader{
		schema: s,
		fwd:    fwd,
		rest:   mutations,
	}, nil
}

func (r *mutationsReader) Schema() *schema.Schema { return r.schema }
func (r *mutationsReader) Forwarding() Forwarding { return r.fwd }

func (r *mutationsReader) Next() (*mutation.Fragment, error) {
	if r.pulling {
		return nil, ErrConcurrentPull
	}
	r.pulling = true
	defer func() { r.pulling = false }()

	if len(r.pending) == 0 {
		if len(r.rest) == 0 {
			return nil, nil
		}
		r.pending = r.rest[0].Fragments()
		r.rest = r.rest[1:]
	}
	f := r.pending[0]
	r.pending = r.pending[1:]
	return f, nil
}

func (r *mutationsReader) Close() error {
	r.pending = nil
	r.rest = nil
	return nil
}
