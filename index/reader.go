package index

// CoreKey identifies the immutable core data of a segment reader. Two leaf
// readers over the same segment core compare equal with ==, regardless of how
// many filtering wrappers sit in between. Caches below the wrapping layer
// (field data, cached filters) key on it.
type CoreKey any

// LeafReader is a point-in-time view over one immutable segment.
type LeafReader interface {
	// FieldInfos returns the field catalog of the segment.
	FieldInfos() FieldInfos

	// Terms returns the term dictionary of a field, or (nil, nil) when the
	// field has no visible terms.
	Terms(field string) (Terms, error)

	// Fields returns the postings view over all visible indexed fields.
	Fields() (Fields, error)

	// TermVectors returns the per-field term vectors of a document, or
	// (nil, nil) when the document has none visible.
	TermVectors(docID int) (Fields, error)

	// Document visits the stored fields of a document.
	Document(docID int, visitor StoredFieldVisitor) error

	NumericDocValues(field string) (NumericDocValues, error)
	BinaryDocValues(field string) (BinaryDocValues, error)
	SortedDocValues(field string) (SortedDocValues, error)
	SortedNumericDocValues(field string) (SortedNumericDocValues, error)
	SortedSetDocValues(field string) (SortedSetDocValues, error)

	// NormValues returns the per-document norms of an indexed field, or
	// (nil, nil) when absent.
	NormValues(field string) (NumericDocValues, error)

	// DocsWithField returns the has-value bitmap of a doc-values field, or
	// (nil, nil) when absent.
	DocsWithField(field string) (Bits, error)

	// LiveDocs returns the live-document set, or (nil, nil) when every
	// document is live.
	LiveDocs() (Bits, error)

	// MaxDoc returns one past the highest document ordinal.
	MaxDoc() int

	// NumDocs returns the number of live documents.
	NumDocs() (int, error)

	// CoreKey identifies the segment core, shared across wrappers.
	CoreKey() CoreKey

	// CombinedKey identifies core plus deletions generation.
	CombinedKey() CoreKey
}

// LeafReaderContext places a leaf reader within its directory reader.
type LeafReaderContext struct {
	// Ord is the position of the leaf within the directory reader.
	Ord int
	// DocBase is the global ordinal of the leaf's document 0.
	DocBase int
	// Reader is the segment reader.
	Reader LeafReader
}

// DirectoryReader is a point-in-time view over all segments of an index.
type DirectoryReader interface {
	// IndexName returns the name of the index this reader belongs to.
	IndexName() string

	// Leaves returns the segment readers in document order.
	Leaves() []LeafReaderContext

	// MaxDoc returns the total document capacity across segments.
	MaxDoc() int

	// NumDocs returns the total number of live documents.
	NumDocs() (int, error)
}
