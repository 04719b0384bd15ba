// Package index defines the read-side abstractions of an inverted index:
// per-segment leaf readers, multi-segment directory readers, field metadata,
// terms/postings enumeration, per-document column values and stored-field
// visitation.
//
// The interfaces mirror what a query-execution engine already calls, so a
// wrapped (filtered) reader is a drop-in replacement for an unwrapped one.
// Implementations must be safe for concurrent readers; all mutation happens
// before a reader is published.
package index
