package search

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/openeuler-mirror/poissonsearch-oss-sub006/index"
	"github.com/openeuler-mirror/poissonsearch-oss-sub006/internal/bitset"
)

// CachingPolicy decides whether a query's per-segment match set is worth
// caching.
type CachingPolicy interface {
	ShouldCache(q Query) bool
}

// AlwaysCachePolicy caches every query.
type AlwaysCachePolicy struct{}

func (AlwaysCachePolicy) ShouldCache(Query) bool { return true }

// FrequencyCachingPolicy caches a query once it has been seen MinFrequency
// times, approximating the usage-tracking policy of the surrounding engine.
type FrequencyCachingPolicy struct {
	MinFrequency int

	mu     sync.Mutex
	counts map[string]int
}

func (p *FrequencyCachingPolicy) ShouldCache(q Query) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.counts == nil {
		p.counts = make(map[string]int)
	}
	key := q.CacheKey()
	p.counts[key]++
	return p.counts[key] >= p.MinFrequency
}

// QueryCache caches per-segment match sets of compiled queries.
//
// Cached sets are match sets only: liveness is applied at collection time, so
// a cached entry stays valid across deletions within the same segment core.
type QueryCache interface {
	// DoCache wraps a weight so its per-segment match sets are served from
	// and inserted into the cache, subject to the policy.
	DoCache(indexName string, w Weight, policy CachingPolicy) Weight

	// ClearIndex drops every cached entry belonging to the index.
	ClearIndex(indexName string)
}

// LRUQueryCache is a bounded, shared QueryCache with LRU eviction.
type LRUQueryCache struct {
	mu         sync.Mutex
	maxEntries int
	items      map[cacheKey]*list.Element
	evictList  *list.List

	hits   atomic.Int64
	misses atomic.Int64
}

// cacheKey holds the segment core identity itself, not a rendering of it.
// Keeping the CoreKey value in the map pins the allocation, so a recycled
// address can never alias a dead segment's entry.
type cacheKey struct {
	index string
	core  index.CoreKey
	query string
}

type cacheEntry struct {
	key cacheKey
	// bits is nil when the query matched nothing in the segment.
	bits bitset.BitSet
}

// NewLRUQueryCache returns a cache holding at most maxEntries per-segment
// match sets.
func NewLRUQueryCache(maxEntries int) *LRUQueryCache {
	return &LRUQueryCache{
		maxEntries: maxEntries,
		items:      make(map[cacheKey]*list.Element),
		evictList:  list.New(),
	}
}

// Stats returns cumulative hit and miss counts.
func (c *LRUQueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *LRUQueryCache) DoCache(indexName string, w Weight, policy CachingPolicy) Weight {
	return &cachingWeight{cache: c, index: indexName, in: w, policy: policy}
}

func (c *LRUQueryCache) ClearIndex(indexName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, elem := range c.items {
		if key.index == indexName {
			c.evictList.Remove(elem)
			delete(c.items, key)
		}
	}
}

// EvictCore drops every cached match set belonging to a segment core,
// typically when the segment is closed.
func (c *LRUQueryCache) EvictCore(core index.CoreKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, elem := range c.items {
		if key.core == core {
			c.evictList.Remove(elem)
			delete(c.items, key)
		}
	}
}

func (c *LRUQueryCache) get(key cacheKey) (bitset.BitSet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(elem)
		return elem.Value.(*cacheEntry).bits, true
	}
	c.misses.Add(1)
	return nil, false
}

func (c *LRUQueryCache) put(key cacheKey, bits bitset.BitSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		c.evictList.MoveToFront(elem)
		elem.Value.(*cacheEntry).bits = bits
		return
	}
	elem := c.evictList.PushFront(&cacheEntry{key: key, bits: bits})
	c.items[key] = elem
	for len(c.items) > c.maxEntries {
		oldest := c.evictList.Back()
		if oldest == nil {
			break
		}
		c.evictList.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
}

type cachingWeight struct {
	cache  *LRUQueryCache
	index  string
	in     Weight
	policy CachingPolicy
}

func (w *cachingWeight) Query() Query { return w.in.Query() }

func (w *cachingWeight) Scorer(leaf index.LeafReaderContext) (Scorer, error) {
	query := w.in.Query()
	if !w.policy.ShouldCache(query) {
		return w.in.Scorer(leaf)
	}
	key := cacheKey{
		index: w.index,
		core:  leaf.Reader.CoreKey(),
		query: query.CacheKey(),
	}
	if bits, ok := w.cache.get(key); ok {
		if bits == nil {
			return nil, nil
		}
		return &iteratorScorer{DocIDIterator: bits.Iterator()}, nil
	}
	scorer, err := w.in.Scorer(leaf)
	if err != nil {
		return nil, err
	}
	if scorer == nil {
		w.cache.put(key, nil)
		return nil, nil
	}
	bits, err := bitset.FromIterator(scorer, leaf.Reader.MaxDoc())
	if err != nil {
		return nil, err
	}
	w.cache.put(key, bits)
	return &iteratorScorer{DocIDIterator: bits.Iterator()}, nil
}
