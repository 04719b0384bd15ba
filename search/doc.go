// Package search contains the minimal query-execution contracts the
// filtering layer plugs into: queries compile to weights, weights produce
// per-segment scorers, and collectors consume matching documents. It also
// provides the shared LRU query cache and the caching policy hooks the
// access-control guard wraps.
package search
