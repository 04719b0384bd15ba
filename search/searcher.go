package search

import (
	"context"
	"errors"

	"github.com/openeuler-mirror/poissonsearch-oss-sub006/index"
)

// Searcher executes queries against a directory reader.
type Searcher interface {
	// Reader returns the reader being searched.
	Reader() index.DirectoryReader

	// Search executes a query and streams matches to the collector.
	Search(ctx context.Context, q Query, c Collector) error
}

// IndexSearcher is the default Searcher: it scores each segment in order and
// honors the segment's live-document set.
type IndexSearcher struct {
	reader        index.DirectoryReader
	queryCache    QueryCache
	cachingPolicy CachingPolicy
}

// NewIndexSearcher returns a searcher over the reader with caching disabled.
func NewIndexSearcher(r index.DirectoryReader) *IndexSearcher {
	return &IndexSearcher{reader: r}
}

// SetQueryCache installs a shared query cache. A nil cache disables caching.
func (s *IndexSearcher) SetQueryCache(qc QueryCache) { s.queryCache = qc }

// SetCachingPolicy installs the policy consulted before caching a query.
func (s *IndexSearcher) SetCachingPolicy(p CachingPolicy) { s.cachingPolicy = p }

func (s *IndexSearcher) Reader() index.DirectoryReader { return s.reader }

// CreateWeight compiles a query, routing it through the query cache when one
// is installed.
func (s *IndexSearcher) CreateWeight(q Query) (Weight, error) {
	w, err := q.Weight(s.reader)
	if err != nil {
		return nil, err
	}
	if s.queryCache != nil {
		policy := s.cachingPolicy
		if policy == nil {
			policy = AlwaysCachePolicy{}
		}
		w = s.queryCache.DoCache(s.reader.IndexName(), w, policy)
	}
	return w, nil
}

func (s *IndexSearcher) Search(ctx context.Context, q Query, c Collector) error {
	weight, err := s.CreateWeight(q)
	if err != nil {
		return err
	}
	return SearchLeaves(ctx, s.reader.Leaves(), weight, c)
}

// SearchLeaves runs the default per-leaf collection loop: one scorer per
// segment, matches gated by the segment's live-document set.
func SearchLeaves(ctx context.Context, leaves []index.LeafReaderContext, weight Weight, c Collector) error {
	for _, leaf := range leaves {
		if err := ctx.Err(); err != nil {
			return err
		}
		leafCollector, err := c.LeafCollector(leaf)
		if err != nil {
			if errors.Is(err, ErrCollectionTerminated) {
				continue
			}
			return err
		}
		scorer, err := weight.Scorer(leaf)
		if err != nil {
			return err
		}
		if scorer == nil {
			continue
		}
		liveDocs, err := leaf.Reader.LiveDocs()
		if err != nil {
			return err
		}
		if err := ScoreAll(scorer, leafCollector, liveDocs); err != nil {
			if errors.Is(err, ErrCollectionTerminated) {
				continue
			}
			return err
		}
	}
	return nil
}

// ScoreAll drains a scorer into a leaf collector, skipping documents the
// accept bits reject. Nil accept bits accept everything.
func ScoreAll(scorer Scorer, c LeafCollector, acceptDocs index.Bits) error {
	for {
		doc, err := scorer.NextDoc()
		if err != nil {
			return err
		}
		if doc == index.NoMoreDocs {
			return nil
		}
		if acceptDocs != nil && !acceptDocs.Get(doc) {
			continue
		}
		if err := c.Collect(doc); err != nil {
			return err
		}
	}
}
