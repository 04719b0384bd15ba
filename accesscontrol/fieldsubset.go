package accesscontrol

import (
	"encoding/json"
	"fmt"

	"github.com/openeuler-mirror/poissonsearch-oss-sub006/index"
	"github.com/openeuler-mirror/poissonsearch-oss-sub006/internal/sourcefilter"
)

// WrapFieldSubset wraps a directory reader so only the allowed fields are
// observable through any accessor. Wrapping is a view: segment core identity
// is passed through unchanged so field-data caches keyed on it stay valid.
func WrapFieldSubset(in index.DirectoryReader, allowed map[string]struct{}) index.DirectoryReader {
	leaves := make([]index.LeafReaderContext, len(in.Leaves()))
	for i, leaf := range in.Leaves() {
		leaves[i] = index.LeafReaderContext{
			Ord:     leaf.Ord,
			DocBase: leaf.DocBase,
			Reader:  NewFieldSubsetReader(leaf.Reader, allowed),
		}
	}
	return &fieldSubsetDirectoryReader{in: in, leaves: leaves}
}

type fieldSubsetDirectoryReader struct {
	in     index.DirectoryReader
	leaves []index.LeafReaderContext
}

func (r *fieldSubsetDirectoryReader) IndexName() string { return r.in.IndexName() }

func (r *fieldSubsetDirectoryReader) Leaves() []index.LeafReaderContext { return r.leaves }

func (r *fieldSubsetDirectoryReader) MaxDoc() int { return r.in.MaxDoc() }

func (r *fieldSubsetDirectoryReader) NumDocs() (int, error) { return r.in.NumDocs() }

// FieldSubsetReader exposes only a subset of fields from the wrapped segment
// reader.
type FieldSubsetReader struct {
	in      index.LeafReader
	infos   index.FieldInfos
	allowed map[string]struct{}
}

// NewFieldSubsetReader wraps one segment, exposing only the allowed fields.
func NewFieldSubsetReader(in index.LeafReader, allowed map[string]struct{}) *FieldSubsetReader {
	var filtered []index.FieldInfo
	for _, fi := range in.FieldInfos().All() {
		if _, ok := allowed[fi.Name]; ok {
			filtered = append(filtered, fi)
		}
	}
	return &FieldSubsetReader{
		in:      in,
		infos:   index.NewFieldInfos(filtered),
		allowed: allowed,
	}
}

// hasField reports whether the field is visible through this reader.
func (r *FieldSubsetReader) hasField(field string) bool {
	return r.infos.Has(field)
}

func (r *FieldSubsetReader) FieldInfos() index.FieldInfos { return r.infos }

func (r *FieldSubsetReader) Terms(field string) (index.Terms, error) {
	if !r.hasField(field) {
		return nil, nil
	}
	terms, err := r.in.Terms(field)
	if err != nil || terms == nil {
		return nil, err
	}
	if field == index.FieldNamesFieldName {
		// terms of the field-names field are field names; hide the ones
		// filtered out of this reader
		return &fieldNamesTerms{in: terms, reader: r}, nil
	}
	return terms, nil
}

func (r *FieldSubsetReader) Fields() (index.Fields, error) {
	fields, err := r.in.Fields()
	if err != nil || fields == nil {
		return nil, err
	}
	return &fieldFilterFields{in: fields, reader: r}, nil
}

func (r *FieldSubsetReader) TermVectors(docID int) (index.Fields, error) {
	fields, err := r.in.TermVectors(docID)
	if err != nil || fields == nil {
		return nil, err
	}
	filtered := &fieldFilterFields{in: fields, reader: r}
	// distinguish "no vectors" from "vectors exist but all hidden"
	if len(filtered.Names()) == 0 {
		return nil, nil
	}
	return filtered, nil
}

func (r *FieldSubsetReader) Document(docID int, visitor index.StoredFieldVisitor) error {
	return r.in.Document(docID, &subsetVisitor{in: visitor, reader: r})
}

func (r *FieldSubsetReader) NumericDocValues(field string) (index.NumericDocValues, error) {
	if !r.hasField(field) {
		return nil, nil
	}
	return r.in.NumericDocValues(field)
}

func (r *FieldSubsetReader) BinaryDocValues(field string) (index.BinaryDocValues, error) {
	if !r.hasField(field) {
		return nil, nil
	}
	return r.in.BinaryDocValues(field)
}

func (r *FieldSubsetReader) SortedDocValues(field string) (index.SortedDocValues, error) {
	if !r.hasField(field) {
		return nil, nil
	}
	return r.in.SortedDocValues(field)
}

func (r *FieldSubsetReader) SortedNumericDocValues(field string) (index.SortedNumericDocValues, error) {
	if !r.hasField(field) {
		return nil, nil
	}
	return r.in.SortedNumericDocValues(field)
}

func (r *FieldSubsetReader) SortedSetDocValues(field string) (index.SortedSetDocValues, error) {
	if !r.hasField(field) {
		return nil, nil
	}
	return r.in.SortedSetDocValues(field)
}

func (r *FieldSubsetReader) NormValues(field string) (index.NumericDocValues, error) {
	if !r.hasField(field) {
		return nil, nil
	}
	return r.in.NormValues(field)
}

func (r *FieldSubsetReader) DocsWithField(field string) (index.Bits, error) {
	if !r.hasField(field) {
		return nil, nil
	}
	return r.in.DocsWithField(field)
}

func (r *FieldSubsetReader) LiveDocs() (index.Bits, error) { return r.in.LiveDocs() }

func (r *FieldSubsetReader) MaxDoc() int { return r.in.MaxDoc() }

func (r *FieldSubsetReader) NumDocs() (int, error) { return r.in.NumDocs() }

// core identity is shared with the delegate so caches keyed on it (e.g.
// field data) remain valid across wrapping

func (r *FieldSubsetReader) CoreKey() index.CoreKey { return r.in.CoreKey() }

func (r *FieldSubsetReader) CombinedKey() index.CoreKey { return r.in.CombinedKey() }

// subsetVisitor gates stored-field visitation. Hidden fields are answered
// with VisitNo before their values are materialized; the stored source is
// parsed, filtered by the allowed set and re-serialized before delivery.
type subsetVisitor struct {
	in     index.StoredFieldVisitor
	reader *FieldSubsetReader
}

func (v *subsetVisitor) NeedsField(fi index.FieldInfo) (index.VisitStatus, error) {
	if !v.reader.hasField(fi.Name) {
		return index.VisitNo, nil
	}
	return v.in.NeedsField(fi)
}

func (v *subsetVisitor) BinaryField(fi index.FieldInfo, value []byte) error {
	if fi.Name != index.SourceFieldName {
		return v.in.BinaryField(fi, value)
	}
	var source map[string]any
	if err := json.Unmarshal(value, &source); err != nil {
		return fmt.Errorf("accesscontrol: parse stored source: %w", err)
	}
	filtered := sourcefilter.Filter(source, v.reader.allowed)
	out, err := json.Marshal(filtered)
	if err != nil {
		return fmt.Errorf("accesscontrol: serialize filtered source: %w", err)
	}
	return v.in.BinaryField(fi, out)
}

func (v *subsetVisitor) StringField(fi index.FieldInfo, value string) error {
	return v.in.StringField(fi, value)
}

func (v *subsetVisitor) Int64Field(fi index.FieldInfo, value int64) error {
	return v.in.Int64Field(fi, value)
}

func (v *subsetVisitor) Float64Field(fi index.FieldInfo, value float64) error {
	return v.in.Float64Field(fi, value)
}

// fieldFilterFields filters a postings or term-vector view down to the
// allowed fields.
type fieldFilterFields struct {
	in     index.Fields
	reader *FieldSubsetReader
}

func (f *fieldFilterFields) Names() []string {
	var names []string
	for _, name := range f.in.Names() {
		if f.reader.hasField(name) {
			names = append(names, name)
		}
	}
	return names
}

func (f *fieldFilterFields) Terms(field string) (index.Terms, error) {
	if !f.reader.hasField(field) {
		return nil, nil
	}
	terms, err := f.in.Terms(field)
	if err != nil || terms == nil {
		return nil, err
	}
	if field == index.FieldNamesFieldName {
		return &fieldNamesTerms{in: terms, reader: f.reader}, nil
	}
	return terms, nil
}

// fieldNamesTerms filters the terms of the field-names field, hiding terms
// that name fields invisible in this reader.
//
// Aggregate statistics report -1 ("unknown") because correct counts after
// filtering would require a full re-scan. The field-names field is not used
// for ranking, so downstream scoring is unaffected; this mirrors the known
// limitation of the original read path rather than guessing corrected
// semantics.
type fieldNamesTerms struct {
	in     index.Terms
	reader *FieldSubsetReader
}

func (t *fieldNamesTerms) Iterator() (index.TermsEnum, error) {
	enum, err := t.in.Iterator()
	if err != nil {
		return nil, err
	}
	return &fieldNamesTermsEnum{in: enum, reader: t.reader}, nil
}

func (t *fieldNamesTerms) Size() (int64, error) { return -1, nil }

func (t *fieldNamesTerms) DocCount() (int, error) { return -1, nil }

func (t *fieldNamesTerms) SumDocFreq() (int64, error) { return -1, nil }

func (t *fieldNamesTerms) SumTotalTermFreq() (int64, error) { return -1, nil }

type fieldNamesTermsEnum struct {
	in     index.TermsEnum
	reader *FieldSubsetReader
}

// accept reports whether the term names a field visible in this reader.
func (e *fieldNamesTermsEnum) accept(term []byte) bool {
	return e.reader.hasField(string(term))
}

func (e *fieldNamesTermsEnum) Next() bool {
	for e.in.Next() {
		if e.accept(e.in.Term()) {
			return true
		}
	}
	return false
}

func (e *fieldNamesTermsEnum) Term() []byte { return e.in.Term() }

func (e *fieldNamesTermsEnum) SeekExact(term []byte) (bool, error) {
	if !e.accept(term) {
		return false, nil
	}
	return e.in.SeekExact(term)
}

func (e *fieldNamesTermsEnum) DocFreq() (int, error) { return e.in.DocFreq() }

func (e *fieldNamesTermsEnum) Postings() (index.PostingsIterator, error) { return e.in.Postings() }

func (e *fieldNamesTermsEnum) Err() error { return e.in.Err() }
