package memory

import (
	"fmt"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/openeuler-mirror/poissonsearch-oss-sub006/index"
)

// segmentReader is the point-in-time LeafReader over a sealed segment.
type segmentReader struct {
	seg      *segment
	deleted  *roaring.Bitmap
	combined combinedKey
}

func (r *segmentReader) FieldInfos() index.FieldInfos { return r.seg.infos }

func (r *segmentReader) Terms(field string) (index.Terms, error) {
	byTerm, ok := r.seg.postings[field]
	if !ok {
		return nil, nil
	}
	return &segmentTerms{seg: r.seg, field: field, byTerm: byTerm, terms: r.seg.sortedTerms[field]}, nil
}

func (r *segmentReader) Fields() (index.Fields, error) {
	return &segmentFields{reader: r, names: sortedKeys(r.seg.postings)}, nil
}

func (r *segmentReader) TermVectors(docID int) (index.Fields, error) {
	byField, ok := r.seg.vectors[docID]
	if !ok || len(byField) == 0 {
		return nil, nil
	}
	return &vectorFields{byField: byField, names: sortedKeys(byField)}, nil
}

func (r *segmentReader) Document(docID int, visitor index.StoredFieldVisitor) error {
	for _, sf := range r.seg.stored[docID] {
		fi, _ := r.seg.infos.FieldInfo(sf.name)
		status, err := visitor.NeedsField(fi)
		if err != nil {
			return err
		}
		switch status {
		case index.VisitStop:
			return nil
		case index.VisitNo:
			continue
		}
		if sf.source {
			raw, err := r.seg.decoder.DecodeAll(sf.value.([]byte), nil)
			if err != nil {
				return fmt.Errorf("memory: decompress stored source of doc %d: %w", docID, err)
			}
			if err := visitor.BinaryField(fi, raw); err != nil {
				return err
			}
			continue
		}
		switch v := sf.value.(type) {
		case []byte:
			err = visitor.BinaryField(fi, v)
		case string:
			err = visitor.StringField(fi, v)
		case int64:
			err = visitor.Int64Field(fi, v)
		case float64:
			err = visitor.Float64Field(fi, v)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *segmentReader) NumericDocValues(field string) (index.NumericDocValues, error) {
	byDoc, ok := r.seg.numeric[field]
	if !ok {
		return nil, nil
	}
	return numericValues(byDoc), nil
}

func (r *segmentReader) BinaryDocValues(field string) (index.BinaryDocValues, error) {
	byDoc, ok := r.seg.binary[field]
	if !ok {
		return nil, nil
	}
	return binaryValues(byDoc), nil
}

func (r *segmentReader) SortedDocValues(field string) (index.SortedDocValues, error) {
	ords, ok := r.seg.sortedOrds[field]
	if !ok {
		return nil, nil
	}
	return &sortedValues{ords: ords, dict: r.seg.sortedDict[field]}, nil
}

func (r *segmentReader) SortedNumericDocValues(field string) (index.SortedNumericDocValues, error) {
	byDoc, ok := r.seg.sortedNumeric[field]
	if !ok {
		return nil, nil
	}
	return sortedNumericValues(byDoc), nil
}

func (r *segmentReader) SortedSetDocValues(field string) (index.SortedSetDocValues, error) {
	ords, ok := r.seg.setOrds[field]
	if !ok {
		return nil, nil
	}
	return &sortedSetValues{ords: ords, dict: r.seg.setDict[field]}, nil
}

func (r *segmentReader) NormValues(field string) (index.NumericDocValues, error) {
	byDoc, ok := r.seg.norms[field]
	if !ok {
		return nil, nil
	}
	return numericValues(byDoc), nil
}

func (r *segmentReader) DocsWithField(field string) (index.Bits, error) {
	bm, ok := r.seg.docsWith[field]
	if !ok {
		return nil, nil
	}
	return &bitmapBits{bm: bm, n: r.seg.maxDoc}, nil
}

func (r *segmentReader) LiveDocs() (index.Bits, error) {
	if r.deleted.IsEmpty() {
		return nil, nil
	}
	return &invertedBits{deleted: r.deleted, n: r.seg.maxDoc}, nil
}

func (r *segmentReader) MaxDoc() int { return r.seg.maxDoc }

func (r *segmentReader) NumDocs() (int, error) {
	return r.seg.maxDoc - int(r.deleted.GetCardinality()), nil
}

func (r *segmentReader) CoreKey() index.CoreKey { return r.seg.coreKey }

func (r *segmentReader) CombinedKey() index.CoreKey { return r.combined }

type bitmapBits struct {
	bm *roaring.Bitmap
	n  int
}

func (b *bitmapBits) Get(docID int) bool {
	return docID >= 0 && docID < b.n && b.bm.Contains(uint32(docID))
}

func (b *bitmapBits) Len() int { return b.n }

type invertedBits struct {
	deleted *roaring.Bitmap
	n       int
}

func (b *invertedBits) Get(docID int) bool {
	return docID >= 0 && docID < b.n && !b.deleted.Contains(uint32(docID))
}

func (b *invertedBits) Len() int { return b.n }

// segmentFields is the postings catalog over all indexed fields.
type segmentFields struct {
	reader *segmentReader
	names  []string
}

func (f *segmentFields) Names() []string { return f.names }

func (f *segmentFields) Terms(field string) (index.Terms, error) { return f.reader.Terms(field) }

// segmentTerms is the term dictionary of one field.
type segmentTerms struct {
	seg    *segment
	field  string
	byTerm map[string]*posting
	terms  []string
}

func (t *segmentTerms) Iterator() (index.TermsEnum, error) {
	return &segmentTermsEnum{terms: t, idx: -1}, nil
}

func (t *segmentTerms) Size() (int64, error) { return int64(len(t.terms)), nil }

func (t *segmentTerms) DocCount() (int, error) {
	if bm, ok := t.seg.docsWith[t.field]; ok {
		return int(bm.GetCardinality()), nil
	}
	docs := roaring.New()
	for _, p := range t.byTerm {
		for _, d := range p.docs {
			docs.Add(uint32(d))
		}
	}
	return int(docs.GetCardinality()), nil
}

func (t *segmentTerms) SumDocFreq() (int64, error) {
	var sum int64
	for _, p := range t.byTerm {
		sum += int64(len(p.docs))
	}
	return sum, nil
}

func (t *segmentTerms) SumTotalTermFreq() (int64, error) {
	var sum int64
	for _, p := range t.byTerm {
		for _, f := range p.freqs {
			sum += int64(f)
		}
	}
	return sum, nil
}

type segmentTermsEnum struct {
	terms *segmentTerms
	idx   int
}

func (e *segmentTermsEnum) Next() bool {
	if e.idx+1 >= len(e.terms.terms) {
		e.idx = len(e.terms.terms)
		return false
	}
	e.idx++
	return true
}

func (e *segmentTermsEnum) Term() []byte {
	if e.idx < 0 || e.idx >= len(e.terms.terms) {
		return nil
	}
	return []byte(e.terms.terms[e.idx])
}

func (e *segmentTermsEnum) SeekExact(term []byte) (bool, error) {
	i := sort.SearchStrings(e.terms.terms, string(term))
	if i < len(e.terms.terms) && e.terms.terms[i] == string(term) {
		e.idx = i
		return true, nil
	}
	return false, nil
}

func (e *segmentTermsEnum) DocFreq() (int, error) {
	p, err := e.current()
	if err != nil {
		return 0, err
	}
	return len(p.docs), nil
}

func (e *segmentTermsEnum) Postings() (index.PostingsIterator, error) {
	p, err := e.current()
	if err != nil {
		return nil, err
	}
	return &postingsIterator{posting: p, idx: -1}, nil
}

func (e *segmentTermsEnum) current() (*posting, error) {
	if e.idx < 0 || e.idx >= len(e.terms.terms) {
		return nil, fmt.Errorf("memory: terms enum not positioned on a term")
	}
	return e.terms.byTerm[e.terms.terms[e.idx]], nil
}

func (e *segmentTermsEnum) Err() error { return nil }

type postingsIterator struct {
	posting *posting
	idx     int
}

func (it *postingsIterator) DocID() int {
	if it.idx < 0 {
		return -1
	}
	if it.idx >= len(it.posting.docs) {
		return index.NoMoreDocs
	}
	return it.posting.docs[it.idx]
}

func (it *postingsIterator) NextDoc() (int, error) {
	it.idx++
	return it.DocID(), nil
}

func (it *postingsIterator) Advance(target int) (int, error) {
	docs := it.posting.docs
	start := it.idx
	if start < 0 {
		start = 0
	}
	i := start + sort.SearchInts(docs[start:], target)
	it.idx = i
	return it.DocID(), nil
}

func (it *postingsIterator) Cost() int64 { return int64(len(it.posting.docs)) }

func (it *postingsIterator) Freq() (int, error) {
	if it.idx < 0 || it.idx >= len(it.posting.freqs) {
		return 0, fmt.Errorf("memory: postings iterator not positioned on a document")
	}
	return it.posting.freqs[it.idx], nil
}

// vectorFields exposes the term vectors of one document.
type vectorFields struct {
	byField map[string]map[string]int
	names   []string
}

func (f *vectorFields) Names() []string { return f.names }

func (f *vectorFields) Terms(field string) (index.Terms, error) {
	freqs, ok := f.byField[field]
	if !ok {
		return nil, nil
	}
	return newVectorTerms(freqs), nil
}

// vectorTerms is a single-document term dictionary built from a frequency
// map.
type vectorTerms struct {
	terms []string
	freqs map[string]int
}

func newVectorTerms(freqs map[string]int) *vectorTerms {
	return &vectorTerms{terms: sortedKeys(freqs), freqs: freqs}
}

func (t *vectorTerms) Iterator() (index.TermsEnum, error) {
	return &vectorTermsEnum{terms: t, idx: -1}, nil
}

func (t *vectorTerms) Size() (int64, error) { return int64(len(t.terms)), nil }

func (t *vectorTerms) DocCount() (int, error) { return 1, nil }

func (t *vectorTerms) SumDocFreq() (int64, error) { return int64(len(t.terms)), nil }

func (t *vectorTerms) SumTotalTermFreq() (int64, error) {
	var sum int64
	for _, f := range t.freqs {
		sum += int64(f)
	}
	return sum, nil
}

type vectorTermsEnum struct {
	terms *vectorTerms
	idx   int
}

func (e *vectorTermsEnum) Next() bool {
	if e.idx+1 >= len(e.terms.terms) {
		e.idx = len(e.terms.terms)
		return false
	}
	e.idx++
	return true
}

func (e *vectorTermsEnum) Term() []byte {
	if e.idx < 0 || e.idx >= len(e.terms.terms) {
		return nil
	}
	return []byte(e.terms.terms[e.idx])
}

func (e *vectorTermsEnum) SeekExact(term []byte) (bool, error) {
	i := sort.SearchStrings(e.terms.terms, string(term))
	if i < len(e.terms.terms) && e.terms.terms[i] == string(term) {
		e.idx = i
		return true, nil
	}
	return false, nil
}

func (e *vectorTermsEnum) DocFreq() (int, error) { return 1, nil }

func (e *vectorTermsEnum) Postings() (index.PostingsIterator, error) {
	if e.idx < 0 || e.idx >= len(e.terms.terms) {
		return nil, fmt.Errorf("memory: terms enum not positioned on a term")
	}
	freq := e.terms.freqs[e.terms.terms[e.idx]]
	return &postingsIterator{posting: &posting{docs: []int{0}, freqs: []int{freq}}, idx: -1}, nil
}

func (e *vectorTermsEnum) Err() error { return nil }

type numericValues map[int]int64

func (v numericValues) Value(docID int) (int64, bool, error) {
	val, ok := v[docID]
	return val, ok, nil
}

type binaryValues map[int][]byte

func (v binaryValues) Value(docID int) ([]byte, bool, error) {
	val, ok := v[docID]
	return val, ok, nil
}

type sortedValues struct {
	ords map[int]int
	dict [][]byte
}

func (v *sortedValues) Ord(docID int) (int, bool, error) {
	ord, ok := v.ords[docID]
	return ord, ok, nil
}

func (v *sortedValues) LookupOrd(ord int) ([]byte, error) {
	if ord < 0 || ord >= len(v.dict) {
		return nil, fmt.Errorf("memory: sorted ord %d out of range", ord)
	}
	return v.dict[ord], nil
}

func (v *sortedValues) ValueCount() int { return len(v.dict) }

type sortedNumericValues map[int][]int64

func (v sortedNumericValues) Values(docID int) ([]int64, error) { return v[docID], nil }

type sortedSetValues struct {
	ords map[int][]int64
	dict [][]byte
}

func (v *sortedSetValues) Ords(docID int) ([]int64, error) { return v.ords[docID], nil }

func (v *sortedSetValues) LookupOrd(ord int64) ([]byte, error) {
	if ord < 0 || ord >= int64(len(v.dict)) {
		return nil, fmt.Errorf("memory: sorted set ord %d out of range", ord)
	}
	return v.dict[ord], nil
}

func (v *sortedSetValues) ValueCount() int64 { return int64(len(v.dict)) }
