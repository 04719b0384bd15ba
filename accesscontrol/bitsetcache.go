package accesscontrol

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/openeuler-mirror/poissonsearch-oss-sub006/index"
	"github.com/openeuler-mirror/poissonsearch-oss-sub006/internal/bitset"
	"github.com/openeuler-mirror/poissonsearch-oss-sub006/search"
)

// BitsetCache holds the per-segment visibility bitsets produced by role
// queries. Entries are keyed on segment core identity and query cache key, so
// every request sharing a role query shares one bitset per segment and the
// cache survives deletions within the same core.
//
// Safe for concurrent use. Concurrent misses for the same key are collapsed
// into a single computation.
type BitsetCache struct {
	mu      sync.RWMutex
	entries map[bitsetKey]bitset.BitSet
	group   singleflight.Group
	metrics MetricsCollector
}

type bitsetKey struct {
	core  index.CoreKey
	query string
}

// NewBitsetCache returns an empty cache reporting to the given collector.
// A nil collector disables metrics.
func NewBitsetCache(metrics MetricsCollector) *BitsetCache {
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}
	return &BitsetCache{
		entries: make(map[bitsetKey]bitset.BitSet),
		metrics: metrics,
	}
}

// BitsFor returns the visibility bitset of a role query on one segment,
// computing and caching it on first use. A nil bitset with a nil error means
// the query matches nothing in the segment.
func (c *BitsetCache) BitsFor(top index.DirectoryReader, leaf index.LeafReaderContext, query search.Query) (bitset.BitSet, error) {
	key := bitsetKey{core: leaf.Reader.CoreKey(), query: query.CacheKey()}

	c.mu.RLock()
	bits, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.metrics.RecordBitsetCacheHit()
		return bits, nil
	}

	flightKey := fmt.Sprintf("%v\x00%s", key.core, key.query)
	v, err, _ := c.group.Do(flightKey, func() (any, error) {
		c.mu.RLock()
		bits, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return bits, nil
		}
		bits, err := c.compute(top, leaf, query)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = bits
		c.mu.Unlock()
		return bits, nil
	})
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return v.(bitset.BitSet), nil
}

func (c *BitsetCache) compute(top index.DirectoryReader, leaf index.LeafReaderContext, query search.Query) (bitset.BitSet, error) {
	start := time.Now()
	weight, err := query.Weight(top)
	if err != nil {
		return nil, &FilterConstructionError{Index: top.IndexName(), cause: err}
	}
	scorer, err := weight.Scorer(leaf)
	if err != nil {
		return nil, &ResourceError{Index: top.IndexName(), cause: err}
	}
	if scorer == nil {
		c.metrics.RecordBitsetBuild(time.Since(start), 0)
		return nil, nil
	}
	bits, err := bitset.FromIterator(scorer, leaf.Reader.MaxDoc())
	if err != nil {
		return nil, &ResourceError{Index: top.IndexName(), cause: err}
	}
	c.metrics.RecordBitsetBuild(time.Since(start), bits.Cardinality())
	return bits, nil
}

// EvictCore drops every cached bitset belonging to a segment core, typically
// when the segment is closed.
func (c *BitsetCache) EvictCore(core index.CoreKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if key.core == core {
			delete(c.entries, key)
		}
	}
}

// Clear drops every cached bitset, typically when role mappings change.
func (c *BitsetCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[bitsetKey]bitset.BitSet)
}

// Len returns the number of cached per-segment bitsets.
func (c *BitsetCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
