package accesscontrol

import (
	"context"
	"errors"
	"fmt"

	"github.com/openeuler-mirror/poissonsearch-oss-sub006/index"
	"github.com/openeuler-mirror/poissonsearch-oss-sub006/search"
)

// Config carries the collaborators of a Wrapper. Zero values select noop
// logging and metrics and a private bitset cache.
type Config struct {
	// JoinTypes lists the child types of parent/child mappings. For each one
	// the synthesized join field is added to every allowed-field set so join
	// queries keep working under field-level security.
	JoinTypes []string

	// BitsetCache holds role-query visibility bitsets. Share one cache across
	// wrappers of the same node so concurrent requests with the same role
	// share bitsets.
	BitsetCache *BitsetCache

	// QueryCache is the node's shared query cache. When set, searchers built
	// by NewSearcher route weights through it behind the opt-out guard.
	QueryCache search.QueryCache

	// CachingPolicy is consulted before inserting into QueryCache. Nil means
	// cache everything.
	CachingPolicy search.CachingPolicy

	Logger  *Logger
	Metrics MetricsCollector
}

// Wrapper applies a request's permissions to index readers and searchers.
// It is stateless between calls and safe for concurrent use.
type Wrapper struct {
	cfg Config
}

// NewWrapper builds a Wrapper, filling unset collaborators with defaults.
func NewWrapper(cfg Config) *Wrapper {
	if cfg.Logger == nil {
		cfg.Logger = NoopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NoopMetricsCollector{}
	}
	if cfg.BitsetCache == nil {
		cfg.BitsetCache = NewBitsetCache(cfg.Metrics)
	}
	return &Wrapper{cfg: cfg}
}

// Wrap applies the permission set to a reader.
//
// A nil permission set fails closed: the reader is restricted to meta fields
// only, so an unauthorized code path can resolve documents by identity but
// never observe user content. A permission set without an entry for the
// reader's index is a configuration error and is rejected. An unrestricted
// grant returns the reader unwrapped.
//
// Document restrictions are applied before field restrictions so role
// queries compile against the unfiltered field catalog.
func (w *Wrapper) Wrap(reader index.DirectoryReader, perms *Permissions) (index.DirectoryReader, error) {
	if perms == nil {
		w.cfg.Logger.WithIndex(reader.IndexName()).
			Debug("no permission set for request, restricting reader to meta fields")
		w.cfg.Metrics.RecordFailClosed()
		return WrapFieldSubset(reader, MetaFieldSet()), nil
	}

	indexName := reader.IndexName()
	if indexName == "" {
		return nil, ErrNoIndexName
	}
	perm, ok := perms.Index(indexName)
	if !ok {
		return nil, fmt.Errorf("index %q: %w", indexName, ErrNoIndexPermissions)
	}
	if perm.IsTotal() {
		w.cfg.Metrics.RecordWrap(false, false)
		return reader, nil
	}

	wrapped := reader
	if perm.HasDocumentRestrictions() {
		roleQuery := search.NewBooleanFilterQuery(perm.RoleQueries...)
		var err error
		wrapped, err = WrapDocumentSubset(wrapped, w.cfg.BitsetCache, roleQuery)
		if err != nil {
			return nil, err
		}
	}
	if perm.HasFieldRestrictions() {
		allowed := ResolveAllowedFields(perm.FieldPatterns, CatalogNames(reader), w.cfg.JoinTypes)
		wrapped = WrapFieldSubset(wrapped, allowed)
	}
	w.cfg.Metrics.RecordWrap(perm.HasFieldRestrictions(), perm.HasDocumentRestrictions())
	return wrapped, nil
}

// NewSearcher builds a searcher over a reader returned by Wrap. The searcher
// understands document-filtered segments and picks a collection strategy per
// segment based on the density of the visibility bitset. perms is the same
// permission set passed to Wrap; it controls query-cache participation.
func (w *Wrapper) NewSearcher(reader index.DirectoryReader, perms *Permissions) *SecuritySearcher {
	inner := search.NewIndexSearcher(reader)
	if w.cfg.QueryCache != nil {
		guard := NewOptOutQueryCache(reader.IndexName(), w.cfg.QueryCache, perms, w.cfg.Logger, w.cfg.Metrics)
		inner.SetQueryCache(guard)
	}
	if w.cfg.CachingPolicy != nil {
		inner.SetCachingPolicy(w.cfg.CachingPolicy)
	}
	return &SecuritySearcher{IndexSearcher: inner}
}

// SecuritySearcher executes queries over document-filtered readers.
//
// For each segment the visibility bitset picks the strategy: a sparse bitset
// drives collection through a conjunction of the query iterator and the
// bitset iterator, so cost scales with visible documents rather than matching
// ones; a dense bitset leaves the query iterator in charge and rejects
// invisible documents through the accept bits.
type SecuritySearcher struct {
	*search.IndexSearcher
}

func (s *SecuritySearcher) Search(ctx context.Context, q search.Query, c search.Collector) error {
	weight, err := s.CreateWeight(q)
	if err != nil {
		return err
	}
	for _, leaf := range s.Reader().Leaves() {
		if err := ctx.Err(); err != nil {
			return err
		}
		ds := documentSubsetLeaf(leaf.Reader)
		if ds == nil {
			if err := s.searchLeaf(leaf, weight, c, nil); err != nil {
				return err
			}
			continue
		}
		roleBits, err := ds.RoleQueryBits()
		if err != nil {
			return err
		}
		if roleBits == nil {
			// role query matches nothing in this segment
			continue
		}
		if !roleBits.Sparse() {
			// dense: the leaf's live docs already intersect visibility
			if err := s.searchLeaf(leaf, weight, c, nil); err != nil {
				return err
			}
			continue
		}
		live, err := ds.WrappedLiveDocs()
		if err != nil {
			return err
		}
		if err := s.searchSparseLeaf(leaf, weight, c, roleBits.Iterator(), live); err != nil {
			return err
		}
	}
	return nil
}

// searchLeaf is the default per-segment collection path.
func (s *SecuritySearcher) searchLeaf(leaf index.LeafReaderContext, weight search.Weight, c search.Collector, acceptDocs index.Bits) error {
	leafCollector, err := c.LeafCollector(leaf)
	if err != nil {
		if errors.Is(err, search.ErrCollectionTerminated) {
			return nil
		}
		return err
	}
	scorer, err := weight.Scorer(leaf)
	if err != nil {
		return err
	}
	if scorer == nil {
		return nil
	}
	if acceptDocs == nil {
		acceptDocs, err = leaf.Reader.LiveDocs()
		if err != nil {
			return err
		}
	}
	if err := search.ScoreAll(scorer, leafCollector, acceptDocs); err != nil {
		if errors.Is(err, search.ErrCollectionTerminated) {
			return nil
		}
		return err
	}
	return nil
}

// searchSparseLeaf aligns the query iterator with the sparse visibility
// iterator and gates survivors on the segment's real live docs.
func (s *SecuritySearcher) searchSparseLeaf(leaf index.LeafReaderContext, weight search.Weight, c search.Collector, visible index.DocIDIterator, live index.Bits) error {
	leafCollector, err := c.LeafCollector(leaf)
	if err != nil {
		if errors.Is(err, search.ErrCollectionTerminated) {
			return nil
		}
		return err
	}
	scorer, err := weight.Scorer(leaf)
	if err != nil {
		return err
	}
	if scorer == nil {
		return nil
	}
	it := search.NewConjunction(scorer, visible)
	for {
		doc, err := it.NextDoc()
		if err != nil {
			return err
		}
		if doc == index.NoMoreDocs {
			return nil
		}
		if live != nil && !live.Get(doc) {
			continue
		}
		if err := leafCollector.Collect(doc); err != nil {
			if errors.Is(err, search.ErrCollectionTerminated) {
				return nil
			}
			return err
		}
	}
}

// documentSubsetLeaf unwraps filtering layers down to the document-subset
// reader of a leaf, or nil when the leaf is not document filtered.
func documentSubsetLeaf(r index.LeafReader) *DocumentSubsetReader {
	for {
		switch v := r.(type) {
		case *DocumentSubsetReader:
			return v
		case *FieldSubsetReader:
			r = v.in
		default:
			return nil
		}
	}
}
