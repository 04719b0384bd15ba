package search

import (
	"fmt"
	"strings"

	"github.com/openeuler-mirror/poissonsearch-oss-sub006/index"
)

// Query is a compiled, immutable description of matching documents.
type Query interface {
	fmt.Stringer

	// CacheKey returns a stable identity for result caching. Two queries
	// with equal cache keys match the same documents.
	CacheKey() string

	// Weight compiles the query against a directory reader.
	Weight(r index.DirectoryReader) (Weight, error)
}

// Weight is a query compiled against one directory reader.
type Weight interface {
	// Query returns the query this weight was compiled from.
	Query() Query

	// Scorer returns an iterator over matching documents of a segment, or
	// (nil, nil) when the segment cannot match.
	Scorer(leaf index.LeafReaderContext) (Scorer, error)
}

// Scorer iterates the matching documents of one segment.
type Scorer interface {
	index.DocIDIterator

	// Score returns the score of the current document.
	Score() (float32, error)
}

// TermQuery matches documents containing an exact term in a field.
type TermQuery struct {
	Field string
	Term  string
}

func (q *TermQuery) String() string { return fmt.Sprintf("%s:%s", q.Field, q.Term) }

func (q *TermQuery) CacheKey() string { return "term{" + q.Field + ":" + q.Term + "}" }

func (q *TermQuery) Weight(r index.DirectoryReader) (Weight, error) {
	return &termWeight{query: q}, nil
}

type termWeight struct {
	query *TermQuery
}

func (w *termWeight) Query() Query { return w.query }

func (w *termWeight) Scorer(leaf index.LeafReaderContext) (Scorer, error) {
	terms, err := leaf.Reader.Terms(w.query.Field)
	if err != nil {
		return nil, err
	}
	if terms == nil {
		return nil, nil
	}
	enum, err := terms.Iterator()
	if err != nil {
		return nil, err
	}
	found, err := enum.SeekExact([]byte(w.query.Term))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	postings, err := enum.Postings()
	if err != nil {
		return nil, err
	}
	return &iteratorScorer{DocIDIterator: postings}, nil
}

// MatchAllQuery matches every document.
type MatchAllQuery struct{}

func (q *MatchAllQuery) String() string { return "*:*" }

func (q *MatchAllQuery) CacheKey() string { return "match_all" }

func (q *MatchAllQuery) Weight(r index.DirectoryReader) (Weight, error) {
	return &matchAllWeight{query: q}, nil
}

type matchAllWeight struct {
	query *MatchAllQuery
}

func (w *matchAllWeight) Query() Query { return w.query }

func (w *matchAllWeight) Scorer(leaf index.LeafReaderContext) (Scorer, error) {
	return &iteratorScorer{DocIDIterator: NewAllDocsIterator(leaf.Reader.MaxDoc())}, nil
}

// BooleanFilterQuery is the conjunction of its clauses with filter semantics:
// every clause must match and no clause contributes to scoring.
type BooleanFilterQuery struct {
	Filters []Query
}

// NewBooleanFilterQuery builds a filter conjunction over the given clauses.
func NewBooleanFilterQuery(filters ...Query) *BooleanFilterQuery {
	return &BooleanFilterQuery{Filters: filters}
}

func (q *BooleanFilterQuery) String() string {
	parts := make([]string, len(q.Filters))
	for i, f := range q.Filters {
		parts[i] = "#" + f.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (q *BooleanFilterQuery) CacheKey() string {
	parts := make([]string, len(q.Filters))
	for i, f := range q.Filters {
		parts[i] = f.CacheKey()
	}
	return "bool_filter{" + strings.Join(parts, ",") + "}"
}

func (q *BooleanFilterQuery) Weight(r index.DirectoryReader) (Weight, error) {
	sub := make([]Weight, len(q.Filters))
	for i, f := range q.Filters {
		w, err := f.Weight(r)
		if err != nil {
			return nil, err
		}
		sub[i] = w
	}
	return &booleanFilterWeight{query: q, sub: sub}, nil
}

type booleanFilterWeight struct {
	query *BooleanFilterQuery
	sub   []Weight
}

func (w *booleanFilterWeight) Query() Query { return w.query }

func (w *booleanFilterWeight) Scorer(leaf index.LeafReaderContext) (Scorer, error) {
	if len(w.sub) == 0 {
		return nil, nil
	}
	iterators := make([]index.DocIDIterator, 0, len(w.sub))
	for _, sw := range w.sub {
		s, err := sw.Scorer(leaf)
		if err != nil {
			return nil, err
		}
		if s == nil {
			return nil, nil
		}
		iterators = append(iterators, s)
	}
	if len(iterators) == 1 {
		return &iteratorScorer{DocIDIterator: iterators[0]}, nil
	}
	return &iteratorScorer{DocIDIterator: NewConjunction(iterators...)}, nil
}

// iteratorScorer adapts a document iterator into a constant-score scorer.
type iteratorScorer struct {
	index.DocIDIterator
}

func (s *iteratorScorer) Score() (float32, error) { return 1, nil }
