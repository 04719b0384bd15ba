package accesscontrol

import (
	"github.com/openeuler-mirror/poissonsearch-oss-sub006/search"
)

// IndexPermissions is the resolved grant of one request on one index.
//
// A nil FieldPatterns slice means field access is unrestricted; a non-nil
// (possibly empty) slice restricts visibility to the matching fields plus the
// always-visible meta fields. RoleQueries behaves the same way for document
// visibility: nil means every document, non-nil means only documents matching
// the conjunction of the queries.
type IndexPermissions struct {
	FieldPatterns []string
	RoleQueries   []search.Query
}

// HasFieldRestrictions reports whether field-level security applies.
func (p IndexPermissions) HasFieldRestrictions() bool { return p.FieldPatterns != nil }

// HasDocumentRestrictions reports whether document-level security applies.
func (p IndexPermissions) HasDocumentRestrictions() bool { return p.RoleQueries != nil }

// IsTotal reports whether the grant is unrestricted, in which case readers
// are passed through unwrapped.
func (p IndexPermissions) IsTotal() bool {
	return !p.HasFieldRestrictions() && !p.HasDocumentRestrictions()
}

// Permissions is a request's resolved permission set, keyed by index name.
// It is produced by the authorization layer once per request and passed
// explicitly into every wrapping call. Immutable after construction.
type Permissions struct {
	indices map[string]IndexPermissions
}

// NewPermissions builds a permission set from per-index grants.
func NewPermissions(indices map[string]IndexPermissions) *Permissions {
	cp := make(map[string]IndexPermissions, len(indices))
	for name, p := range indices {
		cp[name] = p
	}
	return &Permissions{indices: cp}
}

// Index returns the grant for an index. ok is false when the set carries no
// decision for the index.
func (p *Permissions) Index(name string) (IndexPermissions, bool) {
	perm, ok := p.indices[name]
	return perm, ok
}
