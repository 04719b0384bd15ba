package index

import "sort"

// DocValuesType enumerates the columnar value kinds a field may carry.
type DocValuesType int

const (
	DocValuesNone DocValuesType = iota
	DocValuesNumeric
	DocValuesBinary
	DocValuesSorted
	DocValuesSortedNumeric
	DocValuesSortedSet
)

// FieldInfo is the per-field metadata of a segment: whether the field is
// indexed, stored, carries doc values, norms or term vectors.
type FieldInfo struct {
	Name           string
	Number         int
	Indexed        bool
	Stored         bool
	DocValues      DocValuesType
	HasNorms       bool
	HasTermVectors bool
}

// FieldInfos is the immutable field catalog of a segment.
type FieldInfos struct {
	byName  map[string]FieldInfo
	ordered []FieldInfo
}

// NewFieldInfos builds a catalog from the given infos. Field order is kept.
func NewFieldInfos(infos []FieldInfo) FieldInfos {
	byName := make(map[string]FieldInfo, len(infos))
	ordered := make([]FieldInfo, len(infos))
	copy(ordered, infos)
	for _, fi := range ordered {
		byName[fi.Name] = fi
	}
	return FieldInfos{byName: byName, ordered: ordered}
}

// FieldInfo returns the metadata for a field name.
func (f FieldInfos) FieldInfo(name string) (FieldInfo, bool) {
	fi, ok := f.byName[name]
	return fi, ok
}

// Has reports whether the catalog contains the field.
func (f FieldInfos) Has(name string) bool {
	_, ok := f.byName[name]
	return ok
}

// Len returns the number of fields in the catalog.
func (f FieldInfos) Len() int { return len(f.ordered) }

// All returns the catalog entries in their stable order. The returned slice
// must not be mutated.
func (f FieldInfos) All() []FieldInfo { return f.ordered }

// Names returns the sorted field names of the catalog.
func (f FieldInfos) Names() []string {
	names := make([]string, 0, len(f.ordered))
	for _, fi := range f.ordered {
		names = append(names, fi.Name)
	}
	sort.Strings(names)
	return names
}

// Fields is a read-only view over the postings of multiple fields, used both
// for the per-segment postings catalog and for per-document term vectors.
type Fields interface {
	// Names returns the visible field names in sorted order.
	Names() []string

	// Terms returns the terms of a field, or (nil, nil) if the field has
	// none visible.
	Terms(field string) (Terms, error)
}
