// Package accesscontrol implements field- and document-level security on the
// index read path.
//
// A Wrapper rewrites a directory reader according to a request's resolved
// permissions: field restrictions wrap each segment in a FieldSubsetReader
// that hides postings, doc values, stored fields and term vectors of
// unauthorized fields; document restrictions wrap each segment in a
// DocumentSubsetReader whose live-document set is the intersection of the
// underlying live docs and the role query's match set. The wrapped reader is
// a drop-in replacement for the original, preserving segment core identity
// for caches below this layer. A per-request OptOutQueryCache keeps weights
// of field-restricted requests out of the shared query cache.
//
// Permissions are passed explicitly through every call; nothing in this
// package consults ambient request state.
package accesscontrol
