// Package bitset provides per-segment document bitsets in two
// representations: a dense word-backed set and a sparse roaring-backed set.
// Construction from an iterator picks the representation by match density, so
// callers can branch on Sparse to choose the cheaper intersection order.
package bitset
