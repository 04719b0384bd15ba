package accesscontrol

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives operational events from the filtering layer.
// Implement this interface to integrate with monitoring systems.
type MetricsCollector interface {
	// RecordWrap is called after a reader has been wrapped.
	// fieldFiltered/documentFiltered report which filters were applied.
	RecordWrap(fieldFiltered, documentFiltered bool)

	// RecordFailClosed is called when a reader is wrapped without any
	// permission set and falls back to meta-fields-only visibility.
	RecordFailClosed()

	// RecordCacheOptOut is called when a request's weight is kept out of the
	// shared query cache.
	RecordCacheOptOut()

	// RecordBitsetBuild is called after a role-query visibility bitset has
	// been computed for a segment.
	RecordBitsetBuild(duration time.Duration, cardinality int)

	// RecordBitsetCacheHit is called when a visibility bitset is served from
	// cache.
	RecordBitsetCacheHit()
}

// NoopMetricsCollector discards all events.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordWrap(bool, bool)                {}
func (NoopMetricsCollector) RecordFailClosed()                    {}
func (NoopMetricsCollector) RecordCacheOptOut()                   {}
func (NoopMetricsCollector) RecordBitsetBuild(time.Duration, int) {}
func (NoopMetricsCollector) RecordBitsetCacheHit()                {}

// BasicMetricsCollector provides in-memory counters, useful for tests and
// basic monitoring.
type BasicMetricsCollector struct {
	Wraps            atomic.Int64
	FieldWraps       atomic.Int64
	DocumentWraps    atomic.Int64
	FailClosedWraps  atomic.Int64
	CacheOptOuts     atomic.Int64
	BitsetBuilds     atomic.Int64
	BitsetBuildNanos atomic.Int64
	BitsetCacheHits  atomic.Int64
}

func (b *BasicMetricsCollector) RecordWrap(fieldFiltered, documentFiltered bool) {
	b.Wraps.Add(1)
	if fieldFiltered {
		b.FieldWraps.Add(1)
	}
	if documentFiltered {
		b.DocumentWraps.Add(1)
	}
}

func (b *BasicMetricsCollector) RecordFailClosed() {
	b.FailClosedWraps.Add(1)
}

func (b *BasicMetricsCollector) RecordCacheOptOut() {
	b.CacheOptOuts.Add(1)
}

func (b *BasicMetricsCollector) RecordBitsetBuild(duration time.Duration, cardinality int) {
	b.BitsetBuilds.Add(1)
	b.BitsetBuildNanos.Add(duration.Nanoseconds())
}

func (b *BasicMetricsCollector) RecordBitsetCacheHit() {
	b.BitsetCacheHits.Add(1)
}
