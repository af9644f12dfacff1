// Package reader implements the flat mutation reader abstraction: a pull
// cursor producing mutation fragments one at a time under strict ordering
// invariants, lossless adapters between the flat form and the nested
// cursor-of-cursors form, and a consume driver folding a flat stream into a
// consumer-supplied result.
package reader

import (
	"errors"

	"github.com/jianlirong/scylla/internal/mutation"
	"github.com/jianlirong/scylla/internal/schema"
)

var (
	// ErrSchemaMismatch means mutations or readers built against different
	// schema handles were mixed.
	ErrSchemaMismatch = errors.New("reader: schema mismatch")
	// ErrUnorderedMutations means the input mutations were not in strictly
	// increasing key order (duplicates included).
	ErrUnorderedMutations = errors.New("reader: mutations out of order or duplicated")
	// ErrMalformedStream means a fragment stream violated partition framing:
	// unmatched start/end markers or end-of-stream inside a partition. It
	// signals corruption in the underlying source.
	ErrMalformedStream = errors.New("reader: malformed fragment stream")
	// ErrConcurrentPull means a pull was issued while another pull on the
	// same reader was still outstanding. Pulls are not reentrant.
	ErrConcurrentPull = errors.New("reader: concurrent pull on reader")
)

// Forwarding is a construction-time capability: whether the reader supports
// restricting consumption to a clustering window. It is carried opaquely;
// fast-forward semantics are not defined by this package.
type Forwarding bool

const (
	NoForwarding   Forwarding = false
	WithForwarding Forwarding = true
)

// FlatReader is a single ordered fragment stream over zero or more
// partitions: partitions in key order, fragments within a partition bounded
// by exactly one partition-start/partition-end pair with the static row and
// clustering content strictly between them.
//
// Next returns (nil, nil) at end of stream and keeps doing so on subsequent
// pulls. A reader owns its cursor state exclusively; it must not be shared,
// and at most one pull may be outstanding at a time. Abandoning a reader
// before end of stream is always safe.
type FlatReader interface {
	Schema() *schema.Schema
	Next() (*mutation.Fragment, error)
	Forwarding() Forwarding
	Close() error
}

// PartitionHandle is the per-partition cursor of a nested reader. Its key
// and partition tombstone are available up front; Next yields only the
// partition's content fragments (static row and clustering content — never
// start/end markers, which are implicit) and returns (nil, nil) when the
// partition is exhausted.
type PartitionHandle interface {
	Key() mutation.Key
	PartitionTombstone() mutation.Tombstone
	Next() (*mutation.Fragment, error)
	Close() error
}

// NestedReader is the legacy cursor-of-cursors representation: an outer
// stream of per-partition handles in key order. NextPartition returns
// (nil, nil) at end of stream.
type NestedReader interface {
	Schema() *schema.Schema
	NextPartition() (PartitionHandle, error)
	Close() error
}
