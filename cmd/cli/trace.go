package main

import (
	"fmt"

	"github.com/jianlirong/scylla/internal/mutation"
	"github.com/jianlirong/scylla/internal/reader"
)

// printingConsumer prints every callback as it fires and stops after its
// depth budget is spent, the way a paging query execution would.
type printingConsumer struct {
	depth int
	calls int
}

var _ reader.Consumer[int] = (*printingConsumer)(nil)

func (c *printingConsumer) emit(format string, args ...any) {
	c.calls++
	fmt.Printf("  "+format+"\n", args...)
}

func (c *printingConsumer) spend() reader.Stop {
	c.depth--
	return reader.Stop(c.depth < 1)
}

func (c *printingConsumer) ConsumeNewPartition(key mutation.Key) {
	c.emit("new-partition %q", key.Raw())
}

func (c *printingConsumer) ConsumePartitionTombstone(t mutation.Tombstone) reader.Stop {
	c.emit("partition-tombstone ts=%d", t.Timestamp)
	return reader.Continue
}

func (c *printingConsumer) ConsumeStaticRow(sr *mutation.StaticRow) reader.Stop {
	c.emit("static-row %d cells", len(sr.Row.Cells()))
	return c.spend()
}

func (c *printingConsumer) ConsumeClusteringRow(cr *mutation.ClusteringRow) reader.Stop {
	c.emit("clustering-row %s", clusteringString(cr.Key))
	return c.spend()
}

func (c *printingConsumer) ConsumeRangeTombstone(rt *mutation.RangeTombstone) reader.Stop {
	c.emit("range-tombstone %s..%s", clusteringString(rt.Start.Prefix), clusteringString(rt.End.Prefix))
	return c.spend()
}

func (c *printingConsumer) ConsumeEndOfPartition() reader.Stop {
	c.emit("end-of-partition")
	return c.spend()
}

func (c *printingConsumer) ConsumeEndOfStream() int {
	c.emit("end-of-stream")
	return c.calls
}

// traceConsume drives a depth-limited consumer over the reader, printing
// the callback sequence.
func traceConsume(r reader.FlatReader, depth int) error {
	n, err := reader.Consume[int](r, &printingConsumer{depth: depth})
	if err != nil {
		return err
	}
	fmt.Printf("%d callbacks\n", n)
	return nil
}
