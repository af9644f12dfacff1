// Package cache is the row cache mutation source: an LRU of materialized
// partitions that can serve its contents back as a flat reader.
package cache

import (
	"sort"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog"

	"github.com/jianlirong/scylla/internal/common"
	"github.com/jianlirong/scylla/internal/mutation"
	"github.com/jianlirong/scylla/internal/reader"
	"github.com/jianlirong/scylla/internal/schema"
)

// Cache holds whole partitions keyed by raw partition key, evicting least
// recently used ones beyond its capacity.
type Cache struct {
	schema *schema.Schema
	lru    *lru.Cache
	log    zerolog.Logger

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New returns an empty cache. Capacity defaults to DefaultOptions.Capacity.
func New(s *schema.Schema, opts ...Option) (*Cache, error) {
	o := DefaultOptions
	for _, opt := range opts {
		opt(&o)
	}
	l, err := lru.New(o.Capacity)
	if err != nil {
		return nil, err
	}
	return &Cache{
		schema: s,
		lru:    l,
		log:    common.NewLogger().With().Str("component", "row-cache").Logger(),
	}, nil
}

func (c *Cache) Schema() *schema.Schema { return c.schema }

// Len returns the number of cached partitions.
func (c *Cache) Len() int { return c.lru.Len() }

// Put caches a partition, replacing any cached version of it.
func (c *Cache) Put(m *mutation.Mutation) error {
	if m.Schema() != c.schema {
		return mutation.ErrSchemaMismatch
	}
	c.lru.Add(string(m.Key().Raw()), m)
	return nil
}

// Get returns the cached partition for a key, bumping its recency.
func (c *Cache) Get(key mutation.Key) (*mutation.Mutation, bool) {
	v, ok := c.lru.Get(string(key.Raw()))
	if !ok {
		c.misses.Add(1)
		c.log.Debug().Stringer("key", key).Msg("cache miss")
		return nil, false
	}
	c.hits.Add(1)
	return v.(*mutation.Mutation), true
}

// Stats returns cumulative hit and miss counts.
func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// Populate folds a flat reader into the cache, one partition per entry, and
// returns the number of partitions read.
func (c *Cache) Populate(r reader.FlatReader) (int, error) {
	ms, err := reader.ReadAll(r)
	if err != nil {
		return 0, err
	}
	for _, m := range ms {
		if err := c.Put(m); err != nil {
			return 0, err
		}
	}
	c.log.Debug().Int("partitions", len(ms)).Msg("populated cache")
	return len(ms), nil
}

// Reader returns a flat reader over the currently cached partitions in key
// order. Recency is not perturbed.
func (c *Cache) Reader(fwd reader.Forwarding) (reader.FlatReader, error) {
	keys := c.lru.Keys()
	ms := make([]*mutation.Mutation, 0, len(keys))
	for _, k := range keys {
		if v, ok := c.lru.Peek(k); ok {
			ms = append(ms, v.(*mutation.Mutation))
		}
	}
	sort.Slice(ms, func(i, j int) bool { return ms[i].Key().Compare(ms[j].Key()) < 0 })
	return reader.NewFromMutations(c.schema, ms, fwd)
}
