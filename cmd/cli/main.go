package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jianlirong/scylla/internal/cache"
	"github.com/jianlirong/scylla/internal/common"
	"github.com/jianlirong/scylla/internal/memtable"
	"github.com/jianlirong/scylla/internal/mutation"
	"github.com/jianlirong/scylla/internal/reader"
	"github.com/jianlirong/scylla/internal/schema"
)

// Column IDs of the workbench schema, in builder registration order.
const (
	colPK schema.ColumnID = iota
	colCK1
	colCK2
	colStatic
	colValue
	colCount
)

func workbenchSchema() *schema.Schema {
	return schema.NewBuilder("workbench", "streams").
		WithPartitionKey("pk", schema.BytesType).
		WithClusteringColumn("ck1", schema.TextType).
		WithClusteringColumn("ck2", schema.Int64Type).
		WithStaticColumn("s", schema.TextType).
		WithRegularColumn("v", schema.TextType).
		WithRegularColumn("n", schema.Int64Type).
		Build()
}

func main() {
	log := common.NewLogger().With().Str("component", "cli").Logger()

	sch := workbenchSchema()
	mt := memtable.New(sch)
	rc, err := cache.New(sch, cache.WithCapacity(32))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create row cache")
	}

	fmt.Println("mstream - mutation stream workbench")
	fmt.Println("commands: seed | load <file.yaml> | dump | trace <depth> | fill-cache | get <key> | stats | exit")

	seq := int64(1)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])

		switch cmd {
		case "seed":
			n, err := seedSamples(mt, &seq)
			if err != nil {
				fmt.Printf("seed error: %v\n", err)
				continue
			}
			fmt.Printf("seeded %d mutations (%d partitions buffered)\n", n, mt.Len())

		case "load":
			if len(parts) != 2 {
				fmt.Println("usage: load <file.yaml>")
				continue
			}
			n, err := loadFixture(mt, parts[1], &seq)
			if err != nil {
				fmt.Printf("load error: %v\n", err)
				continue
			}
			fmt.Printf("loaded %d mutations from %s\n", n, parts[1])

		case "dump":
			flat, err := mt.FlatReader(reader.NoForwarding)
			if err != nil {
				fmt.Printf("dump error: %v\n", err)
				continue
			}
			dumpReader(flat)

		case "trace":
			if len(parts) != 2 {
				fmt.Println("usage: trace <depth>")
				continue
			}
			depth, err := strconv.Atoi(parts[1])
			if err != nil || depth < 1 {
				fmt.Println("depth must be a positive integer")
				continue
			}
			flat, err := mt.FlatReader(reader.NoForwarding)
			if err != nil {
				fmt.Printf("trace error: %v\n", err)
				continue
			}
			if err := traceConsume(flat, depth); err != nil {
				fmt.Printf("trace error: %v\n", err)
			}

		case "fill-cache":
			flat, err := mt.FlatReader(reader.NoForwarding)
			if err != nil {
				fmt.Printf("fill-cache error: %v\n", err)
				continue
			}
			n, err := rc.Populate(flat)
			if err != nil {
				fmt.Printf("fill-cache error: %v\n", err)
				continue
			}
			fmt.Printf("cached %d partitions\n", n)

		case "get":
			if len(parts) != 2 {
				fmt.Println("usage: get <key>")
				continue
			}
			m, ok := rc.Get(mutation.NewKey([]byte(parts[1])))
			if !ok {
				fmt.Println("cache miss")
				continue
			}
			fmt.Printf("cache hit: %d rows, %d range tombstones\n",
				len(m.ClusteringRows()), len(m.RangeTombstones()))

		case "stats":
			hits, misses := rc.Stats()
			fmt.Printf("cache: %d entries, %d hits, %d misses\n", rc.Len(), hits, misses)

		case "exit", "quit":
			return

		default:
			fmt.Printf("unknown command: %s\n", cmd)
		}
	}
}
