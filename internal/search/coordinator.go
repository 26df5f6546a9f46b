// Package search ranks index entries for a query.
//
// Results come in two tiers separated by a hard cutoff: every entry with a
// word starting with the query (prefix tier, scores >= 1000) ranks above
// every entry that only matches as a subsequence (fuzzy tier, scores in
// [10, 500)). Usage history orders entries within a tier but can never
// lift a fuzzy match over a prefix match.
package search

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Aman-CERP/nexus/internal/entry"
	"github.com/Aman-CERP/nexus/internal/index"
	"github.com/Aman-CERP/nexus/internal/mru"
)

// ErrNilDependency is returned when a required dependency is nil.
var ErrNilDependency = errors.New("nil dependency")

// Prefix-tier match quality, added to PrefixFloor.
const (
	qualityWholeName = 300
	qualityWord      = 200
	qualityInitials  = 100
)

// SnapshotSource provides the current index snapshot.
type SnapshotSource interface {
	Current() *index.Snapshot
}

// UsageSource provides the current MRU snapshot.
type UsageSource interface {
	Snapshot() *mru.Snapshot
}

// Options are the hot-reloadable ranking settings.
type Options struct {
	MaxResults int
	Fuzzy      bool
	CacheSize  int
	CacheTTL   time.Duration
}

// DefaultOptions returns the launcher defaults.
func DefaultOptions() Options {
	return Options{
		MaxResults: 6,
		Fuzzy:      true,
		CacheSize:  256,
		CacheTTL:   30 * time.Second,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxResults <= 0 {
		o.MaxResults = d.MaxResults
	}
	if o.CacheSize <= 0 {
		o.CacheSize = d.CacheSize
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = d.CacheTTL
	}
	return o
}

// Coordinator answers queries. It owns the ResultSet cache; nothing else
// reads or writes it.
type Coordinator struct {
	index     SnapshotSource
	usage     UsageSource
	scorer    *Scorer
	providers []Provider
	logger    *slog.Logger

	mu    sync.RWMutex
	opts  Options
	cache *expirable.LRU[string, []MatchResult]
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithScorer replaces the default single-threaded scorer.
func WithScorer(s *Scorer) CoordinatorOption {
	return func(c *Coordinator) {
		if s != nil {
			c.scorer = s
		}
	}
}

// WithProviders sets the computed-result providers. By default the
// calculator and web search providers are enabled.
func WithProviders(p ...Provider) CoordinatorOption {
	return func(c *Coordinator) { c.providers = p }
}

// WithOptions sets the initial ranking options.
func WithOptions(o Options) CoordinatorOption {
	return func(c *Coordinator) { c.opts = o.withDefaults() }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCoordinator creates a Coordinator over an index and usage history.
func NewCoordinator(idx SnapshotSource, usage UsageSource, opts ...CoordinatorOption) (*Coordinator, error) {
	if idx == nil {
		return nil, fmt.Errorf("%w: index is required", ErrNilDependency)
	}
	if usage == nil {
		return nil, fmt.Errorf("%w: mru store is required", ErrNilDependency)
	}
	c := &Coordinator{
		index:     idx,
		usage:     usage,
		scorer:    NewScorer(DefaultWeights(), nil),
		providers: []Provider{Calculator{}, WebSearch{}},
		logger:    slog.Default(),
		opts:      DefaultOptions(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cache = expirable.NewLRU[string, []MatchResult](c.opts.CacheSize, nil, c.opts.CacheTTL)
	return c, nil
}

// Options returns the current ranking options.
func (c *Coordinator) Options() Options {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.opts
}

// SetOptions applies new ranking options and drops cached results.
func (c *Coordinator) SetOptions(o Options) {
	o = o.withDefaults()
	c.mu.Lock()
	defer c.mu.Unlock()
	if o.CacheSize != c.opts.CacheSize || o.CacheTTL != c.opts.CacheTTL {
		c.cache = expirable.NewLRU[string, []MatchResult](o.CacheSize, nil, o.CacheTTL)
	} else {
		c.cache.Purge()
	}
	c.opts = o
}

// Invalidate drops every cached ResultSet. Called on index swaps, MRU
// changes, show transitions and config reloads.
func (c *Coordinator) Invalidate() {
	c.mu.RLock()
	cache := c.cache
	c.mu.RUnlock()
	cache.Purge()
}

// Search returns the ranked results for text. Seq is left zero.
func (c *Coordinator) Search(ctx context.Context, text string) ResultSet {
	raw := strings.TrimSpace(text)
	norm := entry.Normalize(raw)

	c.mu.RLock()
	opts, cache := c.opts, c.cache
	c.mu.RUnlock()

	snap := c.index.Current()
	usage := c.usage.Snapshot()

	if norm == "" {
		return ResultSet{Query: norm, Results: c.recent(snap, usage, opts.MaxResults)}
	}

	computed := c.compute(raw, norm)
	if len(computed) == 0 {
		if hit, ok := cache.Get(norm); ok {
			return ResultSet{Query: norm, Results: slices.Clone(hit)}
		}
	}

	results := computed
	prefix, inPrefix := c.prefixTier(snap, usage, norm)
	results = append(results, prefix...)

	if opts.Fuzzy && len(results) < opts.MaxResults {
		results = append(results, c.fuzzyTier(ctx, snap, usage, norm, inPrefix)...)
	}
	if len(results) > opts.MaxResults {
		results = results[:opts.MaxResults]
	}

	// Computed results depend on the raw casing, so only pure index answers are cached.
	if len(computed) == 0 && ctx.Err() == nil {
		cache.Add(norm, slices.Clone(results))
	}
	return ResultSet{Query: norm, Results: results}
}

func (c *Coordinator) compute(raw, norm string) []MatchResult {
	var out []MatchResult
	for _, p := range c.providers {
		if r, ok := p.Provide(raw, norm); ok {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b MatchResult) int { return cmp.Compare(b.Score, a.Score) })
	return out
}

func (c *Coordinator) prefixTier(snap *index.Snapshot, usage *mru.Snapshot, norm string) ([]MatchResult, map[entry.ID]struct{}) {
	ids := snap.Lookup(norm)
	seen := make(map[entry.ID]struct{}, len(ids))
	out := make([]MatchResult, 0, len(ids))
	for _, id := range ids {
		e, ok := snap.Get(id)
		if !ok {
			continue
		}
		seen[id] = struct{}{}
		e = stamp(e, usage)
		score, positions := prefixQuality(e, norm)
		out = append(out, MatchResult{Entry: e, Score: PrefixFloor + score, Tier: TierPrefix, Positions: positions})
	}
	slices.SortFunc(out, compareResults)
	return out, seen
}

// prefixQuality grades how the query matched: the whole name, a later
// word, or only the initials.
func prefixQuality(e entry.Entry, norm string) (int, []int) {
	if strings.HasPrefix(e.Folded, norm) {
		n := len([]rune(norm))
		positions := make([]int, n)
		for i := range positions {
			positions[i] = i
		}
		return qualityWholeName, positions
	}
	for _, q := range entry.QueryWords(norm) {
		for _, w := range e.Words {
			if strings.HasPrefix(w, q) {
				return qualityWord, nil
			}
		}
	}
	return qualityInitials, nil
}

func (c *Coordinator) fuzzyTier(ctx context.Context, snap *index.Snapshot, usage *mru.Snapshot, norm string, exclude map[entry.ID]struct{}) []MatchResult {
	all := snap.Entries()
	candidates := make([]entry.Entry, 0, len(all))
	for _, e := range all {
		if _, ok := exclude[e.ID]; !ok {
			candidates = append(candidates, e)
		}
	}

	matches := c.scorer.ScoreAll(ctx, norm, candidates, usage)
	out := make([]MatchResult, 0, len(matches))
	for _, m := range matches {
		out = append(out, MatchResult{Entry: stamp(m.Entry, usage), Score: m.Score, Tier: TierFuzzy, Positions: m.Positions})
	}
	slices.SortFunc(out, compareResults)
	return out
}

// recent answers the empty query with the most recently launched entries
// that still exist in the index.
func (c *Coordinator) recent(snap *index.Snapshot, usage *mru.Snapshot, limit int) []MatchResult {
	var out []MatchResult
	for _, r := range usage.Recent(-1) {
		if len(out) == limit {
			break
		}
		e, ok := snap.Get(r.ID)
		if !ok {
			continue
		}
		out = append(out, MatchResult{Entry: stamp(e, usage), Tier: TierRecent})
	}
	return out
}

func stamp(e entry.Entry, usage *mru.Snapshot) entry.Entry {
	u := usage.Get(e.ID)
	e.LastUsed = u.LastUsed
	e.UseCount = u.UseCount
	return e
}

// compareResults orders by score, then recency, then use count, then
// name, then id, giving a total order.
func compareResults(a, b MatchResult) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	if c := b.Entry.LastUsed.Compare(a.Entry.LastUsed); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Entry.UseCount, a.Entry.UseCount); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Entry.Folded, b.Entry.Folded); c != 0 {
		return c
	}
	return cmp.Compare(a.Entry.ID.String(), b.Entry.ID.String())
}
