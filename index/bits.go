package index

// Bits is a random-access view over per-document flags, most prominently the
// live-document set of a segment.
type Bits interface {
	// Get reports whether the bit for the given document ordinal is set.
	Get(docID int) bool

	// Len returns the number of bits, which equals the segment's MaxDoc.
	Len() int
}

// MatchNoBits reports every document as unset.
type MatchNoBits int

func (b MatchNoBits) Get(docID int) bool { return false }

func (b MatchNoBits) Len() int { return int(b) }
