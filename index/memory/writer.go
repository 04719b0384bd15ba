package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/openeuler-mirror/poissonsearch-oss-sub006/index"
)

// Config configures a Writer.
type Config struct {
	// Index is the name of the index, reported by readers.
	Index string
}

// Field carries the values of one field of a document. Any combination of
// value kinds may be set; unset kinds are simply absent.
type Field struct {
	Name string

	// Terms are indexed; a repeated term raises its frequency.
	Terms []string

	// Stored is delivered through stored-field visitation. Supported types:
	// string, int64, float64, []byte.
	Stored any

	// TermVector records a per-document term vector from Terms.
	TermVector bool

	Numeric       *int64
	Binary        []byte
	Sorted        []byte
	SortedNumeric []int64
	SortedSet     [][]byte
}

// Document is one document to index. Source, when non-nil, is stored as the
// serialized body under the reserved source field.
type Document struct {
	Source []byte
	Fields []Field
}

// Writer builds an in-memory index. Safe for concurrent use.
type Writer struct {
	mu      sync.Mutex
	cfg     Config
	sealed  []*segment
	current *segment
	nextOrd int
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewWriter returns an empty writer for the named index.
func NewWriter(cfg Config) *Writer {
	enc, _ := zstd.NewWriter(nil)
	dec, _ := zstd.NewReader(nil)
	w := &Writer{cfg: cfg, encoder: enc, decoder: dec}
	w.current = w.newSegment()
	return w
}

func (w *Writer) newSegment() *segment {
	seg := newSegment(w.nextOrd, w.decoder)
	w.nextOrd++
	return seg
}

// Add indexes one document into the current segment.
func (w *Writer) Add(doc Document) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	seg := w.current
	docID := seg.maxDoc
	seg.maxDoc++

	for _, f := range doc.Fields {
		if f.Name == "" {
			return fmt.Errorf("memory: field with empty name in document %d", docID)
		}
		if err := seg.addField(docID, f); err != nil {
			return err
		}
		// one term per populated field backs existence queries
		seg.addTerm(docID, index.FieldNamesFieldName, f.Name, 1)
		seg.fieldInfo(index.FieldNamesFieldName).Indexed = true
	}
	if doc.Source != nil {
		compressed := w.encoder.EncodeAll(doc.Source, nil)
		seg.addStored(docID, index.SourceFieldName, compressed, true)
		seg.fieldInfo(index.SourceFieldName).Stored = true
	}
	return nil
}

// Flush seals the current segment so subsequent documents start a new one.
func (w *Writer) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.flushLocked()
}

func (w *Writer) flushLocked() {
	if w.current.maxDoc > 0 {
		w.current.seal()
		w.sealed = append(w.sealed, w.current)
		w.current = w.newSegment()
	}
}

// DeleteByTerm marks every document containing the term as deleted and
// returns the number of newly deleted documents.
func (w *Writer) DeleteByTerm(field, term string) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	deleted := 0
	segments := append(append([]*segment(nil), w.sealed...), w.current)
	for _, seg := range segments {
		byTerm, ok := seg.postings[field]
		if !ok {
			continue
		}
		p, ok := byTerm[term]
		if !ok {
			continue
		}
		changed := false
		for _, docID := range p.docs {
			if seg.deleted.CheckedAdd(uint32(docID)) {
				deleted++
				changed = true
			}
		}
		if changed {
			seg.delGen++
		}
	}
	return deleted
}

// Reader seals the current segment and returns a point-in-time snapshot of
// the whole index.
func (w *Writer) Reader() (index.DirectoryReader, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.flushLocked()
	leaves := make([]index.LeafReaderContext, 0, len(w.sealed))
	docBase := 0
	for i, seg := range w.sealed {
		reader := &segmentReader{
			seg:      seg,
			deleted:  seg.deleted.Clone(),
			combined: combinedKey{core: seg.coreKey, gen: seg.delGen},
		}
		leaves = append(leaves, index.LeafReaderContext{Ord: i, DocBase: docBase, Reader: reader})
		docBase += seg.maxDoc
	}
	return &directoryReader{name: w.cfg.Index, leaves: leaves, maxDoc: docBase}, nil
}

type directoryReader struct {
	name   string
	leaves []index.LeafReaderContext
	maxDoc int
}

func (r *directoryReader) IndexName() string { return r.name }

func (r *directoryReader) Leaves() []index.LeafReaderContext { return r.leaves }

func (r *directoryReader) MaxDoc() int { return r.maxDoc }

func (r *directoryReader) NumDocs() (int, error) {
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

// sortedKeys returns the sorted keys of a string-keyed map.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
