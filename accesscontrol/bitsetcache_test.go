package accesscontrol

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openeuler-mirror/poissonsearch-oss-sub006/index"
	"github.com/openeuler-mirror/poissonsearch-oss-sub006/search"
)

var errBadField = errors.New("unknown field in stored query")

// compileFailQuery fails to compile against any reader, standing in for a
// stored role query referencing a field the mapping no longer has.
type compileFailQuery struct{}

func (compileFailQuery) String() string { return "compile-fail" }

func (compileFailQuery) CacheKey() string { return "compile-fail" }

func (compileFailQuery) Weight(index.DirectoryReader) (search.Weight, error) {
	return nil, errBadField
}

var errSegmentRead = errors.New("segment read failed")

// readFailQuery compiles but fails while reading postings.
type readFailQuery struct{}

func (readFailQuery) String() string { return "read-fail" }

func (readFailQuery) CacheKey() string { return "read-fail" }

func (readFailQuery) Weight(index.DirectoryReader) (search.Weight, error) {
	return readFailWeight{}, nil
}

type readFailWeight struct{}

func (readFailWeight) Query() search.Query { return readFailQuery{} }

func (readFailWeight) Scorer(index.LeafReaderContext) (search.Scorer, error) {
	return nil, errSegmentRead
}

func TestRoleQueryCompileErrorPropagates(t *testing.T) {
	r := buildReader(t, "docs", termDoc("field", "value1"))
	cache := NewBitsetCache(nil)

	wrapped, err := WrapDocumentSubset(r, cache, compileFailQuery{})
	require.NoError(t, err)
	ds := wrapped.Leaves()[0].Reader.(*DocumentSubsetReader)

	_, err = ds.RoleQueryBits()
	require.Error(t, err)
	var cerr *FilterConstructionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "docs", cerr.Index)
	assert.ErrorIs(t, err, errBadField)

	// the failure must surface through every visibility accessor, never
	// degrade into an unfiltered view
	_, err = ds.LiveDocs()
	assert.ErrorAs(t, err, &cerr)
	_, err = ds.NumDocs()
	assert.ErrorAs(t, err, &cerr)
}

func TestRoleQueryReadErrorPropagates(t *testing.T) {
	r := buildReader(t, "docs", termDoc("field", "value1"))
	cache := NewBitsetCache(nil)

	wrapped, err := WrapDocumentSubset(r, cache, readFailQuery{})
	require.NoError(t, err)
	ds := wrapped.Leaves()[0].Reader.(*DocumentSubsetReader)

	_, err = ds.RoleQueryBits()
	require.Error(t, err)
	var rerr *ResourceError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "docs", rerr.Index)
	assert.ErrorIs(t, err, errSegmentRead)
}

func TestSecuritySearcherFilterErrorCollectsNothing(t *testing.T) {
	r := buildReader(t, "docs",
		termDoc("field", "value1"),
		termDoc("field", "value2"),
	)
	w := NewWrapper(Config{})
	perms := NewPermissions(map[string]IndexPermissions{
		"docs": {RoleQueries: []search.Query{compileFailQuery{}}},
	})

	wrapped, err := w.Wrap(r, perms)
	require.NoError(t, err)

	c := &search.DocIDCollector{}
	err = w.NewSearcher(wrapped, perms).Search(context.Background(), &search.MatchAllQuery{}, c)
	require.Error(t, err)
	var cerr *FilterConstructionError
	assert.ErrorAs(t, err, &cerr)
	assert.Empty(t, c.Docs, "a failed filter must grant access to nothing")
}

func TestSecuritySearcherReadErrorCollectsNothing(t *testing.T) {
	r := buildReader(t, "docs", termDoc("field", "value1"))
	w := NewWrapper(Config{})
	perms := NewPermissions(map[string]IndexPermissions{
		"docs": {RoleQueries: []search.Query{readFailQuery{}}},
	})

	wrapped, err := w.Wrap(r, perms)
	require.NoError(t, err)

	c := &search.DocIDCollector{}
	err = w.NewSearcher(wrapped, perms).Search(context.Background(), &search.MatchAllQuery{}, c)
	require.Error(t, err)
	var rerr *ResourceError
	assert.ErrorAs(t, err, &rerr)
	assert.Empty(t, c.Docs)
}

func TestBitsetCacheFailedBuildIsNotCached(t *testing.T) {
	r := buildReader(t, "docs", termDoc("field", "value1"))
	cache := NewBitsetCache(nil)

	wrapped, err := WrapDocumentSubset(r, cache, compileFailQuery{})
	require.NoError(t, err)
	_, err = wrapped.Leaves()[0].Reader.(*DocumentSubsetReader).RoleQueryBits()
	require.Error(t, err)

	assert.Equal(t, 0, cache.Len())
}

func TestBitsetCacheConcurrentComputeOnce(t *testing.T) {
	r := buildReader(t, "docs", termDoc("field", "value1"))
	metrics := &BasicMetricsCollector{}
	cache := NewBitsetCache(metrics)
	q := &search.TermQuery{Field: "field", Term: "value1"}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wrapped, err := WrapDocumentSubset(r, cache, q)
		require.NoError(t, err)
		ds := wrapped.Leaves()[0].Reader.(*DocumentSubsetReader)
		wg.Add(1)
		go func() {
			defer wg.Done()
			bits, err := ds.RoleQueryBits()
			assert.NoError(t, err)
			assert.NotNil(t, bits)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), metrics.BitsetBuilds.Load(), "one build per segment core, regardless of contention")
	assert.Equal(t, 1, cache.Len())
}

func TestBitsetCacheEvictCore(t *testing.T) {
	r := buildReader(t, "docs", termDoc("field", "value1"))
	metrics := &BasicMetricsCollector{}
	cache := NewBitsetCache(metrics)
	q := &search.TermQuery{Field: "field", Term: "value1"}

	leaf := r.Leaves()[0]
	_, err := cache.BitsFor(r, leaf, q)
	require.NoError(t, err)
	require.Equal(t, 1, cache.Len())

	cache.EvictCore(leaf.Reader.CoreKey())
	assert.Equal(t, 0, cache.Len())

	_, err = cache.BitsFor(r, leaf, q)
	require.NoError(t, err)
	assert.Equal(t, int64(2), metrics.BitsetBuilds.Load(), "evicted core must be recomputed")
}

func TestBitsetCacheClear(t *testing.T) {
	r := buildReader(t, "docs", termDoc("field", "value1"))
	cache := NewBitsetCache(nil)

	_, err := cache.BitsFor(r, r.Leaves()[0], &search.TermQuery{Field: "field", Term: "value1"})
	require.NoError(t, err)
	_, err = cache.BitsFor(r, r.Leaves()[0], &search.TermQuery{Field: "field", Term: "other"})
	require.NoError(t, err)
	require.Equal(t, 2, cache.Len())

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
}
