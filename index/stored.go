package index

// VisitStatus controls stored-field visitation.
type VisitStatus int

const (
	// VisitYes materializes the field and delivers it to the visitor.
	VisitYes VisitStatus = iota
	// VisitNo skips the field without materializing its value.
	VisitNo
	// VisitStop skips the field and ends visitation of the document.
	VisitStop
)

// StoredFieldVisitor receives the stored fields of one document.
//
// NeedsField is consulted before a value is decoded, so answering VisitNo
// avoids the decode cost entirely.
type StoredFieldVisitor interface {
	NeedsField(fi FieldInfo) (VisitStatus, error)
	BinaryField(fi FieldInfo, value []byte) error
	StringField(fi FieldInfo, value string) error
	Int64Field(fi FieldInfo, value int64) error
	Float64Field(fi FieldInfo, value float64) error
}

// StoredDocument is a StoredFieldVisitor that materializes every visible
// field, keyed by field name.
type StoredDocument struct {
	Values map[string][]any
}

// NewStoredDocument returns an empty collecting visitor.
func NewStoredDocument() *StoredDocument {
	return &StoredDocument{Values: make(map[string][]any)}
}

func (d *StoredDocument) add(name string, v any) {
	d.Values[name] = append(d.Values[name], v)
}

// Binary returns the first binary value stored under the field, or nil.
func (d *StoredDocument) Binary(field string) []byte {
	for _, v := range d.Values[field] {
		if b, ok := v.([]byte); ok {
			return b
		}
	}
	return nil
}

func (d *StoredDocument) NeedsField(fi FieldInfo) (VisitStatus, error) { return VisitYes, nil }

func (d *StoredDocument) BinaryField(fi FieldInfo, value []byte) error {
	cp := make([]byte, len(value))
	copy(cp, value)
	d.add(fi.Name, cp)
	return nil
}

func (d *StoredDocument) StringField(fi FieldInfo, value string) error {
	d.add(fi.Name, value)
	return nil
}

func (d *StoredDocument) Int64Field(fi FieldInfo, value int64) error {
	d.add(fi.Name, value)
	return nil
}

func (d *StoredDocument) Float64Field(fi FieldInfo, value float64) error {
	d.add(fi.Name, value)
	return nil
}
