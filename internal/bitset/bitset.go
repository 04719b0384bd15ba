package bitset

import (
	"math/bits"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/openeuler-mirror/poissonsearch-oss-sub006/index"
)

// BitSet is an immutable set of document ordinals within one segment.
// Implementations are safe for concurrent readers.
type BitSet interface {
	index.Bits

	// Cardinality returns the number of set bits.
	Cardinality() int

	// Sparse reports whether the set uses the sparse representation, meaning
	// iteration over set bits is cheap relative to random access over the
	// whole ordinal range.
	Sparse() bool

	// Iterator returns an iterator over the set bits in ascending order.
	Iterator() index.DocIDIterator
}

// sparseThresholdShift mirrors the density heuristic of the read path this
// package serves: a set is sparse when fewer than maxDoc>>7 bits are set.
const sparseThresholdShift = 7

// docIterator is the minimal consumption contract for FromIterator. It is
// satisfied by index.DocIDIterator.
type docIterator interface {
	NextDoc() (int, error)
}

// FromIterator drains an iterator of document ordinals into a BitSet sized
// for maxDoc, choosing the sparse representation for low-density sets.
func FromIterator(it docIterator, maxDoc int) (BitSet, error) {
	rb := roaring.New()
	for {
		doc, err := it.NextDoc()
		if err != nil {
			return nil, err
		}
		if doc == index.NoMoreDocs {
			break
		}
		rb.Add(uint32(doc))
	}
	card := int(rb.GetCardinality())
	if card < maxDoc>>sparseThresholdShift {
		return NewSparse(rb, maxDoc), nil
	}
	dense := NewFixed(maxDoc)
	iter := rb.Iterator()
	for iter.HasNext() {
		dense.Set(int(iter.Next()))
	}
	return dense, nil
}

// Fixed is a dense word-backed bitset.
type Fixed struct {
	words   []uint64
	numBits int
	card    int
}

// NewFixed returns an empty dense bitset with capacity for numBits bits.
func NewFixed(numBits int) *Fixed {
	return &Fixed{
		words:   make([]uint64, (numBits+63)/64),
		numBits: numBits,
	}
}

// Set sets the bit for a document ordinal. Not safe for concurrent use with
// readers; populate before publishing.
func (f *Fixed) Set(docID int) {
	word, bit := docID>>6, uint(docID&63)
	if f.words[word]&(1<<bit) == 0 {
		f.words[word] |= 1 << bit
		f.card++
	}
}

func (f *Fixed) Get(docID int) bool {
	if docID < 0 || docID >= f.numBits {
		return false
	}
	return f.words[docID>>6]&(1<<uint(docID&63)) != 0
}

func (f *Fixed) Len() int { return f.numBits }

func (f *Fixed) Cardinality() int { return f.card }

func (f *Fixed) Sparse() bool { return false }

func (f *Fixed) Iterator() index.DocIDIterator {
	return &fixedIterator{set: f, doc: -1}
}

type fixedIterator struct {
	set *Fixed
	doc int
}

func (it *fixedIterator) DocID() int { return it.doc }

func (it *fixedIterator) NextDoc() (int, error) { return it.Advance(it.doc + 1) }

func (it *fixedIterator) Advance(target int) (int, error) {
	if target < 0 {
		target = 0
	}
	for i := target; i < it.set.numBits; {
		word := it.set.words[i>>6] >> uint(i&63)
		if word != 0 {
			it.doc = i + bits.TrailingZeros64(word)
			if it.doc >= it.set.numBits {
				break
			}
			return it.doc, nil
		}
		i = (i>>6 + 1) << 6
	}
	it.doc = index.NoMoreDocs
	return it.doc, nil
}

func (it *fixedIterator) Cost() int64 { return int64(it.set.card) }

// Sparse is a roaring-backed bitset for low-density sets.
type Sparse struct {
	rb      *roaring.Bitmap
	numBits int
}

// NewSparse wraps a roaring bitmap as a sparse BitSet sized for numBits.
func NewSparse(rb *roaring.Bitmap, numBits int) *Sparse {
	return &Sparse{rb: rb, numBits: numBits}
}

func (s *Sparse) Get(docID int) bool {
	if docID < 0 || docID >= s.numBits {
		return false
	}
	return s.rb.Contains(uint32(docID))
}

func (s *Sparse) Len() int { return s.numBits }

func (s *Sparse) Cardinality() int { return int(s.rb.GetCardinality()) }

func (s *Sparse) Sparse() bool { return true }

func (s *Sparse) Iterator() index.DocIDIterator {
	return &sparseIterator{it: s.rb.Iterator(), cost: int64(s.rb.GetCardinality()), doc: -1}
}

type sparseIterator struct {
	it   roaring.IntPeekable
	cost int64
	doc  int
}

func (it *sparseIterator) DocID() int { return it.doc }

func (it *sparseIterator) NextDoc() (int, error) {
	if !it.it.HasNext() {
		it.doc = index.NoMoreDocs
		return it.doc, nil
	}
	it.doc = int(it.it.Next())
	return it.doc, nil
}

func (it *sparseIterator) Advance(target int) (int, error) {
	it.it.AdvanceIfNeeded(uint32(target))
	return it.NextDoc()
}

func (it *sparseIterator) Cost() int64 { return it.cost }
