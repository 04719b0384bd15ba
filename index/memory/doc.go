// Package memory provides an in-memory inverted index with the full read
// surface of the index package: multi-segment readers, postings, doc values,
// norms, term vectors, zstd-compressed stored source and per-segment
// deletions.
//
// A Writer accumulates documents into a current segment; taking a Reader
// seals the current segment and returns a point-in-time snapshot, so segment
// cores stay stable across snapshots while deletions advance the combined
// key, matching the cache-identity expectations of the wrapping layer.
package memory
