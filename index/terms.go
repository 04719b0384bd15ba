package index

// Terms is the term dictionary of one field within a segment.
//
// The aggregate statistics may return -1, meaning "unknown". Readers that
// filter the term dictionary report -1 rather than over- or under-counting.
type Terms interface {
	// Iterator returns a new enumerator positioned before the first term.
	Iterator() (TermsEnum, error)

	// Size returns the number of terms, or -1 if unknown.
	Size() (int64, error)

	// DocCount returns the number of documents with at least one term for
	// this field, or -1 if unknown.
	DocCount() (int, error)

	// SumDocFreq returns the sum of DocFreq over all terms, or -1 if unknown.
	SumDocFreq() (int64, error)

	// SumTotalTermFreq returns the sum of total term frequencies over all
	// terms, or -1 if unknown.
	SumTotalTermFreq() (int64, error)
}

// TermsEnum enumerates the terms of a field in byte order.
//
// Usage follows the scanner pattern:
//
//	for enum.Next() {
//	    term := enum.Term()
//	    ...
//	}
//	if err := enum.Err(); err != nil { ... }
type TermsEnum interface {
	// Next advances to the next term, returning false at the end of the
	// enumeration or on error.
	Next() bool

	// Term returns the current term. The returned bytes are only valid until
	// the next call to Next or SeekExact.
	Term() []byte

	// SeekExact positions the enumerator on the given term if present.
	SeekExact(term []byte) (bool, error)

	// DocFreq returns the number of documents containing the current term.
	DocFreq() (int, error)

	// Postings returns an iterator over the documents of the current term.
	Postings() (PostingsIterator, error)

	// Err returns the error that terminated enumeration, if any.
	Err() error
}
