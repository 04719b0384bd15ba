package memory

import (
	"fmt"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/openeuler-mirror/poissonsearch-oss-sub006/index"
)

// posting holds the documents of one term in ascending order with parallel
// frequencies.
type posting struct {
	docs  []int
	freqs []int
}

type storedField struct {
	name   string
	value  any
	source bool
}

// segment accumulates documents until sealed. After seal, only the deletion
// state changes, guarded by the writer's mutex; snapshots clone it.
type segment struct {
	ord     int
	coreKey index.CoreKey
	maxDoc  int
	decoder *zstd.Decoder

	infoList []*index.FieldInfo
	infoIdx  map[string]int

	postings    map[string]map[string]*posting
	sortedTerms map[string][]string
	docsWith    map[string]*roaring.Bitmap
	stored      map[int][]storedField
	vectors     map[int]map[string]map[string]int

	numeric       map[string]map[int]int64
	binary        map[string]map[int][]byte
	sorted        map[string]map[int][]byte
	sortedNumeric map[string]map[int][]int64
	sortedSet     map[string]map[int][][]byte
	norms         map[string]map[int]int64

	sortedDict map[string][][]byte
	sortedOrds map[string]map[int]int
	setDict    map[string][][]byte
	setOrds    map[string]map[int][]int64

	infos  index.FieldInfos
	sealed bool

	deleted *roaring.Bitmap
	delGen  int
}

func newSegment(ord int, decoder *zstd.Decoder) *segment {
	return &segment{
		ord:           ord,
		coreKey:       new(int),
		decoder:       decoder,
		infoIdx:       make(map[string]int),
		postings:      make(map[string]map[string]*posting),
		docsWith:      make(map[string]*roaring.Bitmap),
		stored:        make(map[int][]storedField),
		vectors:       make(map[int]map[string]map[string]int),
		numeric:       make(map[string]map[int]int64),
		binary:        make(map[string]map[int][]byte),
		sorted:        make(map[string]map[int][]byte),
		sortedNumeric: make(map[string]map[int][]int64),
		sortedSet:     make(map[string]map[int][][]byte),
		norms:         make(map[string]map[int]int64),
		deleted:       roaring.New(),
	}
}

// fieldInfo returns the mutable catalog entry for a field, creating it on
// first use.
func (s *segment) fieldInfo(name string) *index.FieldInfo {
	if idx, ok := s.infoIdx[name]; ok {
		return s.infoList[idx]
	}
	fi := &index.FieldInfo{Name: name, Number: len(s.infoList)}
	s.infoIdx[name] = len(s.infoList)
	s.infoList = append(s.infoList, fi)
	return fi
}

func (s *segment) addTerm(docID int, field, term string, freq int) {
	byTerm, ok := s.postings[field]
	if !ok {
		byTerm = make(map[string]*posting)
		s.postings[field] = byTerm
	}
	p, ok := byTerm[term]
	if !ok {
		p = &posting{}
		byTerm[term] = p
	}
	if n := len(p.docs); n > 0 && p.docs[n-1] == docID {
		p.freqs[n-1] += freq
	} else {
		p.docs = append(p.docs, docID)
		p.freqs = append(p.freqs, freq)
	}
}

func (s *segment) markDocsWith(docID int, field string) {
	bm, ok := s.docsWith[field]
	if !ok {
		bm = roaring.New()
		s.docsWith[field] = bm
	}
	bm.Add(uint32(docID))
}

func (s *segment) addStored(docID int, field string, value any, source bool) {
	s.stored[docID] = append(s.stored[docID], storedField{name: field, value: value, source: source})
	s.markDocsWith(docID, field)
}

func (s *segment) addField(docID int, f Field) error {
	fi := s.fieldInfo(f.Name)

	if len(f.Terms) > 0 {
		fi.Indexed = true
		fi.HasNorms = true
		for _, term := range f.Terms {
			s.addTerm(docID, f.Name, term, 1)
		}
		if s.norms[f.Name] == nil {
			s.norms[f.Name] = make(map[int]int64)
		}
		s.norms[f.Name][docID] = int64(len(f.Terms))
		s.markDocsWith(docID, f.Name)
	}
	if f.TermVector {
		fi.HasTermVectors = true
		byField, ok := s.vectors[docID]
		if !ok {
			byField = make(map[string]map[string]int)
			s.vectors[docID] = byField
		}
		freqs := make(map[string]int, len(f.Terms))
		for _, term := range f.Terms {
			freqs[term]++
		}
		byField[f.Name] = freqs
	}
	if f.Stored != nil {
		switch f.Stored.(type) {
		case string, int64, float64, []byte:
		default:
			return fmt.Errorf("memory: unsupported stored type %T for field %q", f.Stored, f.Name)
		}
		fi.Stored = true
		s.addStored(docID, f.Name, f.Stored, false)
	}
	if f.Numeric != nil {
		fi.DocValues = index.DocValuesNumeric
		if s.numeric[f.Name] == nil {
			s.numeric[f.Name] = make(map[int]int64)
		}
		s.numeric[f.Name][docID] = *f.Numeric
		s.markDocsWith(docID, f.Name)
	}
	if f.Binary != nil {
		fi.DocValues = index.DocValuesBinary
		if s.binary[f.Name] == nil {
			s.binary[f.Name] = make(map[int][]byte)
		}
		s.binary[f.Name][docID] = f.Binary
		s.markDocsWith(docID, f.Name)
	}
	if f.Sorted != nil {
		fi.DocValues = index.DocValuesSorted
		if s.sorted[f.Name] == nil {
			s.sorted[f.Name] = make(map[int][]byte)
		}
		s.sorted[f.Name][docID] = f.Sorted
		s.markDocsWith(docID, f.Name)
	}
	if f.SortedNumeric != nil {
		fi.DocValues = index.DocValuesSortedNumeric
		if s.sortedNumeric[f.Name] == nil {
			s.sortedNumeric[f.Name] = make(map[int][]int64)
		}
		vals := append([]int64(nil), f.SortedNumeric...)
		sort.Slice(vals, func(i, j int) bool { return vals[i] < vals[j] })
		s.sortedNumeric[f.Name][docID] = vals
		s.markDocsWith(docID, f.Name)
	}
	if f.SortedSet != nil {
		fi.DocValues = index.DocValuesSortedSet
		if s.sortedSet[f.Name] == nil {
			s.sortedSet[f.Name] = make(map[int][][]byte)
		}
		s.sortedSet[f.Name][docID] = f.SortedSet
		s.markDocsWith(docID, f.Name)
	}
	return nil
}

// seal freezes the segment: term dictionaries are sorted and doc-value
// ordinal dictionaries are built.
func (s *segment) seal() {
	s.sortedTerms = make(map[string][]string, len(s.postings))
	for field, byTerm := range s.postings {
		s.sortedTerms[field] = sortedKeys(byTerm)
	}

	s.sortedDict = make(map[string][][]byte, len(s.sorted))
	s.sortedOrds = make(map[string]map[int]int, len(s.sorted))
	for field, byDoc := range s.sorted {
		dict, ordOf := buildDict(byDoc)
		s.sortedDict[field] = dict
		ords := make(map[int]int, len(byDoc))
		for docID, val := range byDoc {
			ords[docID] = ordOf[string(val)]
		}
		s.sortedOrds[field] = ords
	}

	s.setDict = make(map[string][][]byte, len(s.sortedSet))
	s.setOrds = make(map[string]map[int][]int64, len(s.sortedSet))
	for field, byDoc := range s.sortedSet {
		seen := make(map[string]struct{})
		var flat [][]byte
		for _, vals := range byDoc {
			for _, v := range vals {
				if _, ok := seen[string(v)]; !ok {
					seen[string(v)] = struct{}{}
					flat = append(flat, v)
				}
			}
		}
		sort.Slice(flat, func(i, j int) bool { return string(flat[i]) < string(flat[j]) })
		ordOf := make(map[string]int64, len(flat))
		for i, v := range flat {
			ordOf[string(v)] = int64(i)
		}
		s.setDict[field] = flat
		ords := make(map[int][]int64, len(byDoc))
		for docID, vals := range byDoc {
			docOrds := make([]int64, 0, len(vals))
			for _, v := range vals {
				docOrds = append(docOrds, ordOf[string(v)])
			}
			sort.Slice(docOrds, func(i, j int) bool { return docOrds[i] < docOrds[j] })
			ords[docID] = docOrds
		}
		s.setOrds[field] = ords
	}

	infos := make([]index.FieldInfo, len(s.infoList))
	for i, fi := range s.infoList {
		infos[i] = *fi
	}
	s.infos = index.NewFieldInfos(infos)
	s.sealed = true
}

func buildDict(byDoc map[int][]byte) (dict [][]byte, ordOf map[string]int) {
	seen := make(map[string]struct{}, len(byDoc))
	for _, v := range byDoc {
		seen[string(v)] = struct{}{}
	}
	dict = make([][]byte, 0, len(seen))
	for v := range seen {
		dict = append(dict, []byte(v))
	}
	sort.Slice(dict, func(i, j int) bool { return string(dict[i]) < string(dict[j]) })
	ordOf = make(map[string]int, len(dict))
	for i, v := range dict {
		ordOf[string(v)] = i
	}
	return dict, ordOf
}

// combinedKey pairs the segment core with its deletion generation.
type combinedKey struct {
	core index.CoreKey
	gen  int
}
