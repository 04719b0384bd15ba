package accesscontrol

import (
	"sync"

	"github.com/openeuler-mirror/poissonsearch-oss-sub006/index"
	"github.com/openeuler-mirror/poissonsearch-oss-sub006/internal/bitset"
	"github.com/openeuler-mirror/poissonsearch-oss-sub006/search"
)

// WrapDocumentSubset wraps a directory reader so only documents matching the
// role query are visible. The visibility bitset of each segment is computed
// lazily on first access and cached in the shared cache under the segment's
// core key.
//
// Wrapping an already document-filtered reader is rejected: stacking filters
// would silently widen or narrow visibility depending on evaluation order.
func WrapDocumentSubset(in index.DirectoryReader, cache *BitsetCache, roleQuery search.Query) (index.DirectoryReader, error) {
	if _, ok := in.(*documentSubsetDirectoryReader); ok {
		return nil, ErrAlreadyWrapped
	}
	r := &documentSubsetDirectoryReader{in: in}
	r.leaves = make([]index.LeafReaderContext, len(in.Leaves()))
	for i, leaf := range in.Leaves() {
		r.leaves[i] = index.LeafReaderContext{
			Ord:     leaf.Ord,
			DocBase: leaf.DocBase,
			Reader: &DocumentSubsetReader{
				in:    leaf.Reader,
				top:   in,
				leaf:  leaf,
				cache: cache,
				query: roleQuery,
			},
		}
	}
	return r, nil
}

type documentSubsetDirectoryReader struct {
	in     index.DirectoryReader
	leaves []index.LeafReaderContext
}

func (r *documentSubsetDirectoryReader) IndexName() string { return r.in.IndexName() }

func (r *documentSubsetDirectoryReader) Leaves() []index.LeafReaderContext { return r.leaves }

func (r *documentSubsetDirectoryReader) MaxDoc() int { return r.in.MaxDoc() }

func (r *documentSubsetDirectoryReader) NumDocs() (int, error) {
	total := 0
	for _, leaf := range r.leaves {
		n, err := leaf.Reader.NumDocs()
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// DocumentSubsetReader restricts one segment to the documents matching a role
// query. All field-level accessors delegate unchanged; only liveness is
// narrowed.
type DocumentSubsetReader struct {
	in    index.LeafReader
	top   index.DirectoryReader
	leaf  index.LeafReaderContext
	cache *BitsetCache
	query search.Query

	once     sync.Once
	roleBits bitset.BitSet
	roleErr  error

	numOnce sync.Once
	numDocs int
	numErr  error
}

// RoleQueryBits returns the visibility bitset of this segment. A nil bitset
// with nil error means the role query matches nothing here and the whole
// segment is invisible.
func (r *DocumentSubsetReader) RoleQueryBits() (bitset.BitSet, error) {
	r.once.Do(func() {
		r.roleBits, r.roleErr = r.cache.BitsFor(r.top, r.leaf, r.query)
	})
	return r.roleBits, r.roleErr
}

// WrappedLiveDocs returns the live-document set of the wrapped reader,
// without the role-query restriction.
func (r *DocumentSubsetReader) WrappedLiveDocs() (index.Bits, error) {
	return r.in.LiveDocs()
}

func (r *DocumentSubsetReader) LiveDocs() (index.Bits, error) {
	roleBits, err := r.RoleQueryBits()
	if err != nil {
		return nil, err
	}
	if roleBits == nil {
		return index.MatchNoBits(r.in.MaxDoc()), nil
	}
	actualLive, err := r.in.LiveDocs()
	if err != nil {
		return nil, err
	}
	if actualLive == nil {
		return roleBits, nil
	}
	return &intersectionBits{a: roleBits, b: actualLive}, nil
}

func (r *DocumentSubsetReader) NumDocs() (int, error) {
	r.numOnce.Do(func() {
		r.numDocs, r.numErr = r.countDocs()
	})
	return r.numDocs, r.numErr
}

func (r *DocumentSubsetReader) countDocs() (int, error) {
	roleBits, err := r.RoleQueryBits()
	if err != nil {
		return 0, err
	}
	if roleBits == nil {
		return 0, nil
	}
	actualLive, err := r.in.LiveDocs()
	if err != nil {
		return 0, err
	}
	if actualLive == nil {
		return roleBits.Cardinality(), nil
	}
	count := 0
	it := roleBits.Iterator()
	for {
		doc, err := it.NextDoc()
		if err != nil {
			return 0, err
		}
		if doc == index.NoMoreDocs {
			break
		}
		if actualLive.Get(doc) {
			count++
		}
	}
	return count, nil
}

func (r *DocumentSubsetReader) FieldInfos() index.FieldInfos { return r.in.FieldInfos() }

func (r *DocumentSubsetReader) Terms(field string) (index.Terms, error) { return r.in.Terms(field) }

func (r *DocumentSubsetReader) Fields() (index.Fields, error) { return r.in.Fields() }

func (r *DocumentSubsetReader) TermVectors(docID int) (index.Fields, error) {
	return r.in.TermVectors(docID)
}

func (r *DocumentSubsetReader) Document(docID int, visitor index.StoredFieldVisitor) error {
	return r.in.Document(docID, visitor)
}

func (r *DocumentSubsetReader) NumericDocValues(field string) (index.NumericDocValues, error) {
	return r.in.NumericDocValues(field)
}

func (r *DocumentSubsetReader) BinaryDocValues(field string) (index.BinaryDocValues, error) {
	return r.in.BinaryDocValues(field)
}

func (r *DocumentSubsetReader) SortedDocValues(field string) (index.SortedDocValues, error) {
	return r.in.SortedDocValues(field)
}

func (r *DocumentSubsetReader) SortedNumericDocValues(field string) (index.SortedNumericDocValues, error) {
	return r.in.SortedNumericDocValues(field)
}

func (r *DocumentSubsetReader) SortedSetDocValues(field string) (index.SortedSetDocValues, error) {
	return r.in.SortedSetDocValues(field)
}

func (r *DocumentSubsetReader) NormValues(field string) (index.NumericDocValues, error) {
	return r.in.NormValues(field)
}

func (r *DocumentSubsetReader) DocsWithField(field string) (index.Bits, error) {
	return r.in.DocsWithField(field)
}

func (r *DocumentSubsetReader) MaxDoc() int { return r.in.MaxDoc() }

func (r *DocumentSubsetReader) CoreKey() index.CoreKey { return r.in.CoreKey() }

func (r *DocumentSubsetReader) CombinedKey() index.CoreKey { return r.in.CombinedKey() }

// intersectionBits is the conjunction of two bit sets of equal length.
type intersectionBits struct {
	a index.Bits
	b index.Bits
}

func (b *intersectionBits) Get(docID int) bool { return b.a.Get(docID) && b.b.Get(docID) }

func (b *intersectionBits) Len() int { return b.a.Len() }
