package search

import (
	"errors"

	"github.com/openeuler-mirror/poissonsearch-oss-sub006/index"
)

// ErrCollectionTerminated signals early termination of collection. Returned
// from LeafCollector creation it skips the leaf; returned from Collect it
// ends collection for the current leaf. It is never surfaced to callers as a
// failure.
var ErrCollectionTerminated = errors.New("collection terminated")

// Collector receives matching documents during query execution.
type Collector interface {
	// LeafCollector returns the collector for one segment.
	LeafCollector(leaf index.LeafReaderContext) (LeafCollector, error)
}

// LeafCollector receives the matching documents of one segment.
type LeafCollector interface {
	// Collect is invoked once per matching document ordinal.
	Collect(docID int) error
}

// DocIDCollector accumulates global document ordinals across segments.
type DocIDCollector struct {
	Docs []int
}

func (c *DocIDCollector) LeafCollector(leaf index.LeafReaderContext) (LeafCollector, error) {
	return &docIDLeafCollector{collector: c, docBase: leaf.DocBase}, nil
}

type docIDLeafCollector struct {
	collector *DocIDCollector
	docBase   int
}

func (c *docIDLeafCollector) Collect(docID int) error {
	c.collector.Docs = append(c.collector.Docs, c.docBase+docID)
	return nil
}

// TotalHitCountCollector counts matching documents.
type TotalHitCountCollector struct {
	Hits int
}

func (c *TotalHitCountCollector) LeafCollector(leaf index.LeafReaderContext) (LeafCollector, error) {
	return (*hitCountLeafCollector)(c), nil
}

type hitCountLeafCollector TotalHitCountCollector

func (c *hitCountLeafCollector) Collect(docID int) error {
	c.Hits++
	return nil
}
