package search

import (
	"sort"

	"github.com/openeuler-mirror/poissonsearch-oss-sub006/index"
)

// NewAllDocsIterator iterates every ordinal in [0, maxDoc).
func NewAllDocsIterator(maxDoc int) index.DocIDIterator {
	return &allDocsIterator{maxDoc: maxDoc, doc: -1}
}

type allDocsIterator struct {
	maxDoc int
	doc    int
}

func (it *allDocsIterator) DocID() int { return it.doc }

func (it *allDocsIterator) NextDoc() (int, error) { return it.Advance(it.doc + 1) }

func (it *allDocsIterator) Advance(target int) (int, error) {
	if target >= it.maxDoc {
		it.doc = index.NoMoreDocs
	} else {
		it.doc = target
	}
	return it.doc, nil
}

func (it *allDocsIterator) Cost() int64 { return int64(it.maxDoc) }

// NewConjunction intersects the given iterators. The cheapest iterator by
// Cost leads the intersection, so a sparse clause keeps the advance work on
// the other clauses low.
func NewConjunction(iterators ...index.DocIDIterator) index.DocIDIterator {
	sorted := make([]index.DocIDIterator, len(iterators))
	copy(sorted, iterators)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Cost() < sorted[j].Cost() })
	return &conjunctionIterator{lead: sorted[0], others: sorted[1:], doc: -1}
}

type conjunctionIterator struct {
	lead   index.DocIDIterator
	others []index.DocIDIterator
	doc    int
}

func (it *conjunctionIterator) DocID() int { return it.doc }

func (it *conjunctionIterator) NextDoc() (int, error) {
	doc, err := it.lead.NextDoc()
	if err != nil {
		return 0, err
	}
	return it.doNext(doc)
}

func (it *conjunctionIterator) Advance(target int) (int, error) {
	doc, err := it.lead.Advance(target)
	if err != nil {
		return 0, err
	}
	return it.doNext(doc)
}

// doNext aligns all iterators on the same document, restarting from the lead
// whenever a follower overshoots.
func (it *conjunctionIterator) doNext(doc int) (int, error) {
align:
	for doc != index.NoMoreDocs {
		for _, other := range it.others {
			next := other.DocID()
			if next < doc {
				var err error
				next, err = other.Advance(doc)
				if err != nil {
					return 0, err
				}
			}
			if next > doc {
				var err error
				doc, err = it.lead.Advance(next)
				if err != nil {
					return 0, err
				}
				continue align
			}
		}
		break
	}
	it.doc = doc
	return doc, nil
}

func (it *conjunctionIterator) Cost() int64 { return it.lead.Cost() }
