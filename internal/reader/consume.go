package reader

import "github.com/jianlirong/scylla/internal/mutation"

// Stop is the flow-control decision returned by per-fragment consumer
// callbacks: true stops further fragment delivery.
type Stop bool

const (
	Continue      Stop = false
	StopIteration Stop = true
)

// Consumer folds a flat fragment stream into a result of type R. The driver
// calls it in strict stream order:
//
//   - ConsumeNewPartition exactly once per partition, before anything else of
//     that partition; it carries no flow-control signal.
//   - ConsumePartitionTombstone exactly once per partition, immediately after
//     ConsumeNewPartition, iff the partition tombstone is present.
//   - ConsumeStaticRow at most once per partition; ConsumeClusteringRow and
//     ConsumeRangeTombstone once per fragment in clustering order.
//   - ConsumeEndOfPartition exactly once per entered partition, after its
//     other fragments, even when an earlier callback stopped.
//   - ConsumeEndOfStream exactly once at the end; its value is the result.
type Consumer[R any] interface {
	ConsumeNewPartition(key mutation.Key)
	ConsumePartitionTombstone(t mutation.Tombstone) Stop
	ConsumeStaticRow(sr *mutation.StaticRow) Stop
	ConsumeClusteringRow(cr *mutation.ClusteringRow) Stop
	ConsumeRangeTombstone(rt *mutation.RangeTombstone) Stop
	ConsumeEndOfPartition() Stop
	ConsumeEndOfStream() R
}

// Consume drives the consumer over the reader until exhaustion or a stop.
//
// A stop from any per-fragment callback suppresses the remaining fragments of
// the current partition; ConsumeEndOfPartition still fires for it, and the
// drive ends. A stop from ConsumeEndOfPartition ends the drive immediately.
// Either way ConsumeEndOfStream is called exactly once and its value
// returned. A pull failure aborts the drive and propagates the error without
// calling ConsumeEndOfStream — the only path with no result.
func Consume[R any](r FlatReader, c Consumer[R]) (R, error) {
	var zero R
	inPartition := false
	for {
		f, err := r.Next()
		if err != nil {
			return zero, err
		}
		if f == nil {
			if inPartition {
				return zero, ErrMalformedStream
			}
			return c.ConsumeEndOfStream(), nil
		}

		if !inPartition && !f.IsPartitionStart() {
			return zero, ErrMalformedStream
		}

		var stop Stop
		switch f.Kind() {
		case mutation.FragmentPartitionStart:
			if inPartition {
				return zero, ErrMalformedStream
			}
			inPartition = true
			ps := f.AsPartitionStart()
			c.ConsumeNewPartition(ps.Key)
			if ps.Tombstone.Present() {
				stop = c.ConsumePartitionTombstone(ps.Tombstone)
			}
		case mutation.FragmentStaticRow:
			stop = c.ConsumeStaticRow(f.AsStaticRow())
		case mutation.FragmentClusteringRow:
			stop = c.ConsumeClusteringRow(f.AsClusteringRow())
		case mutation.FragmentRangeTombstone:
			stop = c.ConsumeRangeTombstone(f.AsRangeTombstone())
		case mutation.FragmentPartitionEnd:
			inPartition = false
			if c.ConsumeEndOfPartition() {
				return c.ConsumeEndOfStream(), nil
			}
			continue
		}

		if stop {
			if err := skipToPartitionEnd(r); err != nil {
				return zero, err
			}
			c.ConsumeEndOfPartition()
			return c.ConsumeEndOfStream(), nil
		}
	}
}

// skipToPartitionEnd discards fragments up to and including the current
// partition's end marker.
func skipToPartitionEnd(r FlatReader) error {
	for {
		f, err := r.Next()
		if err != nil {
			return err
		}
		if f == nil || f.IsPartitionStart() {
			return ErrMalformedStream
		}
		if f.IsPartitionEnd() {
			return nil
		}
	}
}
