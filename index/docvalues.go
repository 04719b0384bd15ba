package index

// NumericDocValues exposes a per-document int64 column. Also used for norms.
type NumericDocValues interface {
	// Value returns the value for a document. ok is false when the document
	// has no value for this field.
	Value(docID int) (value int64, ok bool, err error)
}

// BinaryDocValues exposes a per-document byte-slice column.
type BinaryDocValues interface {
	Value(docID int) (value []byte, ok bool, err error)
}

// SortedDocValues exposes a per-document ordinal into a sorted dictionary of
// byte values.
type SortedDocValues interface {
	// Ord returns the dictionary ordinal for a document. ok is false when the
	// document has no value.
	Ord(docID int) (ord int, ok bool, err error)

	// LookupOrd resolves a dictionary ordinal to its value.
	LookupOrd(ord int) ([]byte, error)

	// ValueCount returns the dictionary size.
	ValueCount() int
}

// SortedNumericDocValues exposes zero or more sorted int64 values per
// document.
type SortedNumericDocValues interface {
	// Values returns the sorted values for a document; empty when the
	// document has none.
	Values(docID int) ([]int64, error)
}

// SortedSetDocValues exposes zero or more dictionary ordinals per document.
type SortedSetDocValues interface {
	// Ords returns the sorted dictionary ordinals for a document; empty when
	// the document has none.
	Ords(docID int) ([]int64, error)

	// LookupOrd resolves a dictionary ordinal to its value.
	LookupOrd(ord int64) ([]byte, error)

	// ValueCount returns the dictionary size.
	ValueCount() int64
}
