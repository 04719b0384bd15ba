package index

// Engine-reserved field names. Meta fields are defined by the engine rather
// than by user mappings; the access-control layer treats most of them as
// always visible.
const (
	IDFieldName        = "_id"
	UIDFieldName       = "_uid"
	TypeFieldName      = "_type"
	VersionFieldName   = "_version"
	RoutingFieldName   = "_routing"
	ParentFieldName    = "_parent"
	TimestampFieldName = "_timestamp"
	TTLFieldName       = "_ttl"
	SizeFieldName      = "_size"
	IndexFieldName     = "_index"

	// SourceFieldName stores the serialized document body.
	SourceFieldName = "_source"

	// FieldNamesFieldName indexes one term per field a document has a value
	// for; it backs existence queries.
	FieldNamesFieldName = "_field_names"

	// AllFieldName aggregates the content of every field. It carries user
	// data, so it is never implicitly visible.
	AllFieldName = "_all"
)

// ParentJoinFieldName returns the synthesized join field backing parent/child
// queries for a child type.
func ParentJoinFieldName(childType string) string {
	return ParentFieldName + "#" + childType
}
