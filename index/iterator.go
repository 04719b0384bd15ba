package index

import "math"

// NoMoreDocs is returned by iterators once they are exhausted.
const NoMoreDocs = math.MaxInt32

// DocIDIterator iterates over document ordinals in ascending order.
//
// Implementations start positioned before the first document: DocID returns
// -1 until NextDoc or Advance has been called, and NoMoreDocs once exhausted.
type DocIDIterator interface {
	// DocID returns the current document ordinal.
	DocID() int

	// NextDoc advances to the next document and returns it.
	NextDoc() (int, error)

	// Advance moves to the first document >= target and returns it.
	Advance(target int) (int, error)

	// Cost returns an estimate of the number of documents the iterator will
	// visit, used to order intersections cheapest-first.
	Cost() int64
}

// PostingsIterator iterates the documents of one term and exposes the term's
// within-document frequency.
type PostingsIterator interface {
	DocIDIterator

	// Freq returns the term frequency within the current document.
	Freq() (int, error)
}
