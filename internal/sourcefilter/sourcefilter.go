// Package sourcefilter filters a decoded document body down to an allowed
// set of dotted-path field names. It is used to rewrite the stored source of
// a document before it is handed to a stored-field visitor.
package sourcefilter

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter returns a copy of source containing only the entries whose dotted
// path is covered by the include set. A name in the include set admits the
// value under that exact path, including a whole object subtree. Names with
// glob metacharacters match paths with standard glob semantics. Nested
// objects and arrays of objects are filtered recursively; empty objects left
// over after filtering are dropped.
func Filter(source map[string]any, include map[string]struct{}) map[string]any {
	return filterObject(source, include, "")
}

func filterObject(obj map[string]any, include map[string]struct{}, prefix string) map[string]any {
	out := make(map[string]any, len(obj))
	for key, value := range obj {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if includesPath(include, path) {
			out[key] = value
			continue
		}
		if !includesDescendant(include, path) {
			continue
		}
		switch v := value.(type) {
		case map[string]any:
			if filtered := filterObject(v, include, path); len(filtered) > 0 {
				out[key] = filtered
			}
		case []any:
			if filtered := filterArray(v, include, path); len(filtered) > 0 {
				out[key] = filtered
			}
		}
	}
	return out
}

func filterArray(arr []any, include map[string]struct{}, path string) []any {
	var out []any
	for _, elem := range arr {
		if obj, ok := elem.(map[string]any); ok {
			if filtered := filterObject(obj, include, path); len(filtered) > 0 {
				out = append(out, filtered)
			}
		}
	}
	return out
}

// includesPath reports whether the path itself is admitted.
func includesPath(include map[string]struct{}, path string) bool {
	if _, ok := include[path]; ok {
		return true
	}
	for name := range include {
		if strings.ContainsAny(name, "*?[") {
			if ok, err := doublestar.Match(name, path); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// includesDescendant reports whether some admitted name lies below the path,
// so filtering must descend into the object rather than drop it.
func includesDescendant(include map[string]struct{}, path string) bool {
	prefix := path + "."
	for name := range include {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
