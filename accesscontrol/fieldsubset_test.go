package accesscontrol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openeuler-mirror/poissonsearch-oss-sub006/index"
	"github.com/openeuler-mirror/poissonsearch-oss-sub006/index/memory"
)

func buildReader(t *testing.T, indexName string, docs ...memory.Document) index.DirectoryReader {
	t.Helper()
	w := memory.NewWriter(memory.Config{Index: indexName})
	for _, doc := range docs {
		require.NoError(t, w.Add(doc))
	}
	r, err := w.Reader()
	require.NoError(t, err)
	return r
}

func allowOnly(fields ...string) map[string]struct{} {
	allowed := MetaFieldSet()
	for _, f := range fields {
		allowed[f] = struct{}{}
	}
	return allowed
}

func TestFieldSubsetReaderFieldInfos(t *testing.T) {
	r := buildReader(t, "docs", memory.Document{Fields: []memory.Field{
		{Name: "title", Terms: []string{"hello"}},
		{Name: "secret", Terms: []string{"classified"}},
	}})

	wrapped := WrapFieldSubset(r, allowOnly("title"))
	leaf := wrapped.Leaves()[0].Reader

	infos := leaf.FieldInfos()
	assert.True(t, infos.Has("title"))
	assert.False(t, infos.Has("secret"))
}

func TestFieldSubsetReaderTerms(t *testing.T) {
	r := buildReader(t, "docs", memory.Document{Fields: []memory.Field{
		{Name: "title", Terms: []string{"hello"}},
		{Name: "secret", Terms: []string{"classified"}},
	}})

	wrapped := WrapFieldSubset(r, allowOnly("title"))
	leaf := wrapped.Leaves()[0].Reader

	terms, err := leaf.Terms("title")
	require.NoError(t, err)
	require.NotNil(t, terms)
	enum, err := terms.Iterator()
	require.NoError(t, err)
	found, err := enum.SeekExact([]byte("hello"))
	require.NoError(t, err)
	assert.True(t, found)

	terms, err = leaf.Terms("secret")
	require.NoError(t, err)
	assert.Nil(t, terms, "hidden field must have no visible terms")
}

func TestFieldSubsetReaderFieldsNames(t *testing.T) {
	r := buildReader(t, "docs", memory.Document{Fields: []memory.Field{
		{Name: "title", Terms: []string{"hello"}},
		{Name: "secret", Terms: []string{"classified"}},
	}})

	wrapped := WrapFieldSubset(r, allowOnly("title"))
	leaf := wrapped.Leaves()[0].Reader

	fields, err := leaf.Fields()
	require.NoError(t, err)
	require.NotNil(t, fields)
	names := fields.Names()
	assert.Contains(t, names, "title")
	assert.Contains(t, names, index.FieldNamesFieldName)
	assert.NotContains(t, names, "secret")

	terms, err := fields.Terms("secret")
	require.NoError(t, err)
	assert.Nil(t, terms)
}

func TestFieldSubsetReaderFieldNamesFiltering(t *testing.T) {
	r := buildReader(t, "docs", memory.Document{Fields: []memory.Field{
		{Name: "title", Terms: []string{"hello"}},
		{Name: "secret", Terms: []string{"classified"}},
	}})

	wrapped := WrapFieldSubset(r, allowOnly("title"))
	leaf := wrapped.Leaves()[0].Reader

	terms, err := leaf.Terms(index.FieldNamesFieldName)
	require.NoError(t, err)
	require.NotNil(t, terms)

	enum, err := terms.Iterator()
	require.NoError(t, err)
	var seen []string
	for enum.Next() {
		seen = append(seen, string(enum.Term()))
	}
	require.NoError(t, enum.Err())
	assert.Contains(t, seen, "title")
	assert.NotContains(t, seen, "secret")

	enum, err = terms.Iterator()
	require.NoError(t, err)
	found, err := enum.SeekExact([]byte("secret"))
	require.NoError(t, err)
	assert.False(t, found, "seek to a hidden field name must miss")
	found, err = enum.SeekExact([]byte("title"))
	require.NoError(t, err)
	assert.True(t, found)
}

func TestFieldSubsetReaderFieldNamesStatsUnknown(t *testing.T) {
	r := buildReader(t, "docs", memory.Document{Fields: []memory.Field{
		{Name: "title", Terms: []string{"hello"}},
		{Name: "secret", Terms: []string{"classified"}},
	}})

	wrapped := WrapFieldSubset(r, allowOnly("title"))
	leaf := wrapped.Leaves()[0].Reader

	terms, err := leaf.Terms(index.FieldNamesFieldName)
	require.NoError(t, err)
	require.NotNil(t, terms)

	size, err := terms.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(-1), size)
	docCount, err := terms.DocCount()
	require.NoError(t, err)
	assert.Equal(t, -1, docCount)
	sumDocFreq, err := terms.SumDocFreq()
	require.NoError(t, err)
	assert.Equal(t, int64(-1), sumDocFreq)
	sumTTF, err := terms.SumTotalTermFreq()
	require.NoError(t, err)
	assert.Equal(t, int64(-1), sumTTF)
}

func TestFieldSubsetReaderStoredFields(t *testing.T) {
	r := buildReader(t, "docs", memory.Document{Fields: []memory.Field{
		{Name: "title", Terms: []string{"hello"}, Stored: "hello"},
		{Name: "secret", Terms: []string{"classified"}, Stored: "classified"},
	}})

	wrapped := WrapFieldSubset(r, allowOnly("title"))
	leaf := wrapped.Leaves()[0].Reader

	doc := index.NewStoredDocument()
	require.NoError(t, leaf.Document(0, doc))
	assert.Equal(t, []any{"hello"}, doc.Values["title"])
	assert.NotContains(t, doc.Values, "secret")
}

func TestFieldSubsetReaderSourceFiltering(t *testing.T) {
	source := []byte(`{"title":"hello","secret":"classified","user":{"name":"kim","ssn":"x"}}`)
	r := buildReader(t, "docs", memory.Document{
		Source: source,
		Fields: []memory.Field{
			{Name: "title", Terms: []string{"hello"}},
			{Name: "secret", Terms: []string{"classified"}},
			{Name: "user.name", Terms: []string{"kim"}},
			{Name: "user.ssn", Terms: []string{"x"}},
		},
	})

	wrapped := WrapFieldSubset(r, allowOnly("title", "user.name"))
	leaf := wrapped.Leaves()[0].Reader

	doc := index.NewStoredDocument()
	require.NoError(t, leaf.Document(0, doc))
	raw := doc.Binary(index.SourceFieldName)
	require.NotNil(t, raw)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, map[string]any{
		"title": "hello",
		"user":  map[string]any{"name": "kim"},
	}, got)
}

func TestFieldSubsetReaderDocValues(t *testing.T) {
	price := int64(42)
	cost := int64(7)
	r := buildReader(t, "docs", memory.Document{Fields: []memory.Field{
		{Name: "price", Numeric: &price},
		{Name: "cost", Numeric: &cost},
		{Name: "tag", Sorted: []byte("red")},
	}})

	wrapped := WrapFieldSubset(r, allowOnly("price"))
	leaf := wrapped.Leaves()[0].Reader

	dv, err := leaf.NumericDocValues("price")
	require.NoError(t, err)
	require.NotNil(t, dv)
	v, ok, err := dv.Value(0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(42), v)

	dv, err = leaf.NumericDocValues("cost")
	require.NoError(t, err)
	assert.Nil(t, dv)

	sorted, err := leaf.SortedDocValues("tag")
	require.NoError(t, err)
	assert.Nil(t, sorted)

	bits, err := leaf.DocsWithField("cost")
	require.NoError(t, err)
	assert.Nil(t, bits)
	bits, err = leaf.DocsWithField("price")
	require.NoError(t, err)
	assert.NotNil(t, bits)
}

func TestFieldSubsetReaderNorms(t *testing.T) {
	r := buildReader(t, "docs", memory.Document{Fields: []memory.Field{
		{Name: "title", Terms: []string{"hello", "world"}},
		{Name: "secret", Terms: []string{"classified"}},
	}})

	wrapped := WrapFieldSubset(r, allowOnly("title"))
	leaf := wrapped.Leaves()[0].Reader

	norms, err := leaf.NormValues("title")
	require.NoError(t, err)
	assert.NotNil(t, norms)

	norms, err = leaf.NormValues("secret")
	require.NoError(t, err)
	assert.Nil(t, norms)
}

func TestFieldSubsetReaderTermVectors(t *testing.T) {
	r := buildReader(t, "docs", memory.Document{Fields: []memory.Field{
		{Name: "title", Terms: []string{"hello"}, TermVector: true},
		{Name: "secret", Terms: []string{"classified"}, TermVector: true},
	}})

	wrapped := WrapFieldSubset(r, allowOnly("title"))
	leaf := wrapped.Leaves()[0].Reader

	vectors, err := leaf.TermVectors(0)
	require.NoError(t, err)
	require.NotNil(t, vectors)
	assert.Equal(t, []string{"title"}, vectors.Names())
}

func TestFieldSubsetReaderTermVectorsAllHidden(t *testing.T) {
	r := buildReader(t, "docs", memory.Document{Fields: []memory.Field{
		{Name: "secret", Terms: []string{"classified"}, TermVector: true},
	}})

	wrapped := WrapFieldSubset(r, allowOnly("title"))
	leaf := wrapped.Leaves()[0].Reader

	vectors, err := leaf.TermVectors(0)
	require.NoError(t, err)
	assert.Nil(t, vectors, "a document whose vectors are all hidden has no visible vectors")
}

func TestFieldSubsetReaderCoreKeyPassthrough(t *testing.T) {
	r := buildReader(t, "docs", memory.Document{Fields: []memory.Field{
		{Name: "title", Terms: []string{"hello"}},
	}})

	inner := r.Leaves()[0].Reader
	wrapped := WrapFieldSubset(r, allowOnly("title"))
	leaf := wrapped.Leaves()[0].Reader

	assert.True(t, leaf.CoreKey() == inner.CoreKey(), "core key must be shared with the wrapped reader")
	assert.Equal(t, inner.CombinedKey(), leaf.CombinedKey())
}

func TestFieldSubsetReaderWrapTwiceSameSet(t *testing.T) {
	r := buildReader(t, "docs", memory.Document{Fields: []memory.Field{
		{Name: "title", Terms: []string{"hello"}},
		{Name: "secret", Terms: []string{"classified"}},
	}})

	allowed := allowOnly("title")
	once := WrapFieldSubset(r, allowed)
	twice := WrapFieldSubset(once, allowed)

	leaf := twice.Leaves()[0].Reader
	assert.True(t, leaf.FieldInfos().Has("title"))
	assert.False(t, leaf.FieldInfos().Has("secret"))

	terms, err := leaf.Terms("title")
	require.NoError(t, err)
	assert.NotNil(t, terms)
	terms, err = leaf.Terms("secret")
	require.NoError(t, err)
	assert.Nil(t, terms)
}

func TestFieldSubsetReaderLivenessPassthrough(t *testing.T) {
	w := memory.NewWriter(memory.Config{Index: "docs"})
	require.NoError(t, w.Add(memory.Document{Fields: []memory.Field{
		{Name: "title", Terms: []string{"hello"}},
	}}))
	require.NoError(t, w.Add(memory.Document{Fields: []memory.Field{
		{Name: "title", Terms: []string{"bye"}},
	}}))
	w.Flush()
	require.Equal(t, 1, w.DeleteByTerm("title", "bye"))

	r, err := w.Reader()
	require.NoError(t, err)
	wrapped := WrapFieldSubset(r, allowOnly("title"))

	n, err := wrapped.NumDocs()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	live, err := wrapped.Leaves()[0].Reader.LiveDocs()
	require.NoError(t, err)
	require.NotNil(t, live)
	assert.True(t, live.Get(0))
	assert.False(t, live.Get(1))
}
