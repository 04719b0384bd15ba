package bitset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openeuler-mirror/poissonsearch-oss-sub006/index"
)

type sliceIterator struct {
	docs []int
	idx  int
}

func (it *sliceIterator) NextDoc() (int, error) {
	if it.idx >= len(it.docs) {
		return index.NoMoreDocs, nil
	}
	doc := it.docs[it.idx]
	it.idx++
	return doc, nil
}

func TestFromIteratorSparse(t *testing.T) {
	// 2 of 1024 documents is well under the density threshold
	bs, err := FromIterator(&sliceIterator{docs: []int{3, 500}}, 1024)
	require.NoError(t, err)

	assert.True(t, bs.Sparse())
	assert.Equal(t, 2, bs.Cardinality())
	assert.Equal(t, 1024, bs.Len())
	assert.True(t, bs.Get(3))
	assert.True(t, bs.Get(500))
	assert.False(t, bs.Get(4))
}

func TestFromIteratorDense(t *testing.T) {
	docs := make([]int, 0, 512)
	for i := 0; i < 1024; i += 2 {
		docs = append(docs, i)
	}
	bs, err := FromIterator(&sliceIterator{docs: docs}, 1024)
	require.NoError(t, err)

	assert.False(t, bs.Sparse())
	assert.Equal(t, 512, bs.Cardinality())
	assert.True(t, bs.Get(0))
	assert.False(t, bs.Get(1))
	assert.True(t, bs.Get(1022))
}

func TestFromIteratorEmpty(t *testing.T) {
	bs, err := FromIterator(&sliceIterator{}, 128)
	require.NoError(t, err)

	assert.True(t, bs.Sparse())
	assert.Equal(t, 0, bs.Cardinality())
}

func drain(t *testing.T, it index.DocIDIterator) []int {
	t.Helper()
	var docs []int
	for {
		doc, err := it.NextDoc()
		require.NoError(t, err)
		if doc == index.NoMoreDocs {
			return docs
		}
		docs = append(docs, doc)
	}
}

func TestFixedIterator(t *testing.T) {
	f := NewFixed(200)
	for _, d := range []int{0, 63, 64, 65, 130, 199} {
		f.Set(d)
	}

	assert.Equal(t, []int{0, 63, 64, 65, 130, 199}, drain(t, f.Iterator()))
	assert.Equal(t, 6, f.Cardinality())
}

func TestFixedSetIdempotent(t *testing.T) {
	f := NewFixed(64)
	f.Set(7)
	f.Set(7)

	assert.Equal(t, 1, f.Cardinality())
}

func TestFixedIteratorAdvance(t *testing.T) {
	f := NewFixed(300)
	for _, d := range []int{10, 100, 250} {
		f.Set(d)
	}

	it := f.Iterator()
	doc, err := it.Advance(50)
	require.NoError(t, err)
	assert.Equal(t, 100, doc)
	doc, err = it.Advance(251)
	require.NoError(t, err)
	assert.Equal(t, index.NoMoreDocs, doc)
}

func TestSparseIteratorAdvance(t *testing.T) {
	bs, err := FromIterator(&sliceIterator{docs: []int{5, 900}}, 4096)
	require.NoError(t, err)
	require.True(t, bs.Sparse())

	it := bs.Iterator()
	doc, err := it.NextDoc()
	require.NoError(t, err)
	assert.Equal(t, 5, doc)
	doc, err = it.Advance(800)
	require.NoError(t, err)
	assert.Equal(t, 900, doc)
	doc, err = it.NextDoc()
	require.NoError(t, err)
	assert.Equal(t, index.NoMoreDocs, doc)
}

func TestIteratorCost(t *testing.T) {
	f := NewFixed(100)
	f.Set(1)
	f.Set(2)
	assert.Equal(t, int64(2), f.Iterator().Cost())

	bs, err := FromIterator(&sliceIterator{docs: []int{1}}, 1024)
	require.NoError(t, err)
	assert.Equal(t, int64(1), bs.Iterator().Cost())
}
