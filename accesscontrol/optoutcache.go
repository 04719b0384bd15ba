package accesscontrol

import (
	"github.com/openeuler-mirror/poissonsearch-oss-sub006/search"
)

// OptOutQueryCache guards a shared query cache against cross-permission
// leakage. Cached match sets are keyed per segment and query only, with no
// notion of who asked, so a set inserted by a privileged request could be
// served to a restricted one. The cache therefore opts out whenever the
// current request carries field-level restrictions on the index, or no
// permission information at all.
//
// Document-level restrictions do not require opting out: role queries are
// rewritten into the executed query itself, giving restricted and
// unrestricted variants distinct cache keys.
type OptOutQueryCache struct {
	indexName string
	inner     search.QueryCache
	perms     *Permissions
	logger    *Logger
	metrics   MetricsCollector
}

// NewOptOutQueryCache scopes a shared cache to one index and one request's
// permission set. perms may be nil, in which case caching is always skipped.
func NewOptOutQueryCache(indexName string, inner search.QueryCache, perms *Permissions, logger *Logger, metrics MetricsCollector) *OptOutQueryCache {
	if logger == nil {
		logger = NoopLogger()
	}
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}
	return &OptOutQueryCache{
		indexName: indexName,
		inner:     inner,
		perms:     perms,
		logger:    logger.WithIndex(indexName),
		metrics:   metrics,
	}
}

func (c *OptOutQueryCache) DoCache(indexName string, w search.Weight, policy search.CachingPolicy) search.Weight {
	if c.perms == nil {
		c.logger.Debug("not caching, request carries no permission set")
		c.metrics.RecordCacheOptOut()
		return w
	}
	perm, ok := c.perms.Index(c.indexName)
	if ok && perm.HasFieldRestrictions() {
		c.logger.Debug("not caching, field level security is enabled")
		c.metrics.RecordCacheOptOut()
		return w
	}
	return c.inner.DoCache(c.indexName, w, policy)
}

// ClearIndex clears the inner cache's entries for this cache's own index.
// The argument is ignored so a caller holding the scoped cache cannot reach
// another index's entries.
func (c *OptOutQueryCache) ClearIndex(string) {
	c.inner.ClearIndex(c.indexName)
}
