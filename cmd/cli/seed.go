package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/jianlirong/scylla/internal/memtable"
	"github.com/jianlirong/scylla/internal/mutation"
	"github.com/jianlirong/scylla/internal/schema"
)

var samplePartitions = []string{
	"apple", "banana", "cherry", "durian", "elderberry",
	"fig", "grapefruit", "honeydew",
}

// seedSamples buffers one mutation per sample partition: a static cell plus
// a few clustering rows, and a tombstone on every fourth partition.
func seedSamples(mt *memtable.Memtable, seq *int64) (int, error) {
	sch := mt.Schema()
	for i, name := range samplePartitions {
		m := mutation.New(sch, mutation.NewKey([]byte(name)))
		m.SetStaticCell(colStatic, next(seq), []byte(fmt.Sprintf("%s-static", name)))
		for r := int64(0); r < 3; r++ {
			ckey := mutation.ClusteringKey{[]byte("row"), schema.EncodeInt64(r)}
			m.SetCell(ckey, colValue, next(seq), []byte(fmt.Sprintf("%s-%d", name, r)))
			m.SetCell(ckey, colCount, next(seq), schema.EncodeInt64(r*10))
		}
		if i%4 == 3 {
			m.SetTombstone(mutation.Tombstone{Timestamp: next(seq), DeletedAt: int64(i)})
		}
		if err := mt.Apply(m); err != nil {
			return i, err
		}
	}
	return len(samplePartitions), nil
}

func next(seq *int64) int64 {
	v := *seq
	*seq++
	return v
}

type fixture struct {
	Mutations []fixtureMutation `yaml:"mutations"`
}

type fixtureMutation struct {
	Key       string         `yaml:"key"`
	Tombstone int64          `yaml:"tombstone"`
	Static    string         `yaml:"static"`
	Rows      []fixtureRow   `yaml:"rows"`
	Ranges    []fixtureRange `yaml:"ranges"`
}

type fixtureRow struct {
	CK1    string `yaml:"ck1"`
	CK2    int64  `yaml:"ck2"`
	V      string `yaml:"v"`
	N      *int64 `yaml:"n"`
	Delete bool   `yaml:"delete"`
}

type fixtureRange struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
	TS    int64  `yaml:"ts"`
}

// loadFixture buffers mutations described by a YAML fixture file. Explicit
// timestamps are honored; everything else takes the next sequence value.
func loadFixture(mt *memtable.Memtable, path string, seq *int64) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var fx fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return 0, fmt.Errorf("parsing %s: %w", path, err)
	}

	sch := mt.Schema()
	for i, fm := range fx.Mutations {
		if fm.Key == "" {
			return i, fmt.Errorf("mutation %d: missing key", i)
		}
		m := mutation.New(sch, mutation.NewKey([]byte(fm.Key)))
		if fm.Tombstone != 0 {
			m.SetTombstone(mutation.Tombstone{Timestamp: fm.Tombstone, DeletedAt: next(seq)})
		}
		if fm.Static != "" {
			m.SetStaticCell(colStatic, next(seq), []byte(fm.Static))
		}
		for _, fr := range fm.Rows {
			ckey := mutation.ClusteringKey{[]byte(fr.CK1), schema.EncodeInt64(fr.CK2)}
			if fr.Delete {
				m.DeleteRow(ckey, mutation.Tombstone{Timestamp: next(seq), DeletedAt: next(seq)})
				continue
			}
			if fr.V != "" {
				m.SetCell(ckey, colValue, next(seq), []byte(fr.V))
			}
			if fr.N != nil {
				m.SetCell(ckey, colCount, next(seq), schema.EncodeInt64(*fr.N))
			}
		}
		for _, rg := range fm.Ranges {
			ts := rg.TS
			if ts == 0 {
				ts = next(seq)
			}
			m.DeleteRange(
				mutation.Bound{Prefix: mutation.ClusteringKey{[]byte(rg.Start)}, Inclusive: true},
				mutation.Bound{Prefix: mutation.ClusteringKey{[]byte(rg.End)}, Inclusive: true},
				mutation.Tombstone{Timestamp: ts, DeletedAt: next(seq)},
			)
		}
		if err := mt.Apply(m); err != nil {
			return i, err
		}
	}
	return len(fx.Mutations), nil
}
