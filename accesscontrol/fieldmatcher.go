package accesscontrol

import (
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/openeuler-mirror/poissonsearch-oss-sub006/index"
)

// metaFields are always visible regardless of granted field patterns. The
// _all field is deliberately absent: it aggregates raw user content and must
// be granted explicitly.
var metaFields = []string{
	index.UIDFieldName,
	index.IDFieldName,
	index.TypeFieldName,
	index.VersionFieldName,
	index.RoutingFieldName,
	index.ParentFieldName,
	index.TimestampFieldName,
	index.TTLFieldName,
	index.SizeFieldName,
	index.IndexFieldName,
	index.SourceFieldName,
	index.FieldNamesFieldName,
}

// MetaFieldSet returns the always-visible meta fields as a fresh set.
func MetaFieldSet() map[string]struct{} {
	set := make(map[string]struct{}, len(metaFields))
	for _, f := range metaFields {
		set[f] = struct{}{}
	}
	return set
}

// ResolveAllowedFields expands granted field patterns against the field
// catalog of an index into the concrete allowed-field set.
//
// A pattern without glob metacharacters is granted literally, whether or not
// the catalog currently contains it: absence from the allow-list is a
// property of the name, not of current content. Glob patterns are matched
// against every catalog field with standard glob semantics; dotted paths are
// plain name characters, so "foo.*" covers "foo.bar" and "foo.baz".
//
// The meta fields are always included, and for every declared parent/child
// join type the synthesized join field is added so join queries keep working
// for authorized users.
func ResolveAllowedFields(patterns []string, catalog []string, joinTypes []string) map[string]struct{} {
	allowed := MetaFieldSet()
	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[") {
			allowed[pattern] = struct{}{}
			continue
		}
		for _, field := range catalog {
			if ok, err := doublestar.Match(pattern, field); err == nil && ok {
				allowed[field] = struct{}{}
			}
		}
	}
	for _, childType := range joinTypes {
		allowed[index.ParentJoinFieldName(childType)] = struct{}{}
	}
	return allowed
}

// CatalogNames collects the union of all leaf field catalogs of a reader in
// sorted order.
func CatalogNames(r index.DirectoryReader) []string {
	seen := make(map[string]struct{})
	for _, leaf := range r.Leaves() {
		for _, fi := range leaf.Reader.FieldInfos().All() {
			seen[fi.Name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
