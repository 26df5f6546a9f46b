// Package index builds immutable entry snapshots from index sources and
// keeps the current one available for lock-free reads.
package index

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Aman-CERP/nexus/internal/entry"
	nxerrors "github.com/Aman-CERP/nexus/internal/errors"
	"github.com/Aman-CERP/nexus/internal/source"
)

// DefaultParallelism bounds how many sources are scanned at once.
const DefaultParallelism = 4

// Builder scans sources into snapshots off the interactive path.
type Builder struct {
	parallelism int
	logger      *slog.Logger

	mu          sync.Mutex
	sources     []source.Source
	subscribers []func(*Snapshot)

	current    atomic.Pointer[Snapshot]
	generation atomic.Uint64
	flight     singleflight.Group

	ready     chan struct{}
	readyOnce sync.Once
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithParallelism sets the number of sources scanned concurrently.
func WithParallelism(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.parallelism = n
		}
	}
}

// WithLogger sets the logger used for source failures.
func WithLogger(l *slog.Logger) BuilderOption {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder creates a Builder. Current returns an empty snapshot until
// the first Refresh completes.
func NewBuilder(sources []source.Source, opts ...BuilderOption) *Builder {
	b := &Builder{
		parallelism: DefaultParallelism,
		logger:      slog.Default(),
		sources:     sources,
		ready:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.current.Store(Empty())
	return b
}

// SetSources replaces the source list used by the next build.
func (b *Builder) SetSources(sources []source.Source) {
	b.mu.Lock()
	b.sources = sources
	b.mu.Unlock()
}

// OnSwap registers fn to run after every snapshot swap.
func (b *Builder) OnSwap(fn func(*Snapshot)) {
	b.mu.Lock()
	b.subscribers = append(b.subscribers, fn)
	b.mu.Unlock()
}

// Current returns the snapshot readers should use.
func (b *Builder) Current() *Snapshot {
	return b.current.Load()
}

// Ready is closed once the first snapshot has been swapped in.
func (b *Builder) Ready() <-chan struct{} {
	return b.ready
}

// Build scans every source and returns a new snapshot without swapping it
// in. Unreadable sources are logged and skipped; only context
// cancellation fails the build.
func (b *Builder) Build(ctx context.Context) (*Snapshot, error) {
	b.mu.Lock()
	sources := slices.Clone(b.sources)
	b.mu.Unlock()

	results := make([][]entry.Entry, len(sources))
	statuses := make([]SourceStatus, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.parallelism)
	for i, src := range sources {
		g.Go(func() error {
			entries, err := b.pull(gctx, src)
			statuses[i] = SourceStatus{Name: src.Name(), Entries: len(entries)}
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				statuses[i].Error = err.Error()
				b.logger.Warn("index source skipped",
					nxerrors.FormatForLog(nxerrors.SourceUnavailable(src.Name(), err))...)
				return nil
			}
			results[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []entry.Entry
	for _, r := range results {
		all = append(all, r...)
	}
	snap := NewSnapshot(b.generation.Add(1), all)
	snap.Sources = statuses
	return snap, nil
}

// pull drains one source. A failing source contributes nothing.
func (b *Builder) pull(ctx context.Context, src source.Source) ([]entry.Entry, error) {
	var out []entry.Entry
	for raw, err := range src.Entries(ctx) {
		if err != nil {
			return nil, err
		}
		e, err := entry.New(raw)
		if err != nil {
			b.logger.Debug("invalid raw entry dropped", "source", src.Name(), "error", err)
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Refresh builds a snapshot and atomically swaps it in. Concurrent calls
// share one build.
func (b *Builder) Refresh(ctx context.Context) (*Snapshot, error) {
	v, err, _ := b.flight.Do("refresh", func() (any, error) {
		start := time.Now()
		snap, err := b.Build(ctx)
		if err != nil {
			return nil, err
		}
		b.current.Store(snap)
		b.readyOnce.Do(func() { close(b.ready) })

		b.mu.Lock()
		subs := slices.Clone(b.subscribers)
		b.mu.Unlock()
		for _, fn := range subs {
			fn(snap)
		}

		b.logger.Info("index refreshed",
			"generation", snap.Generation,
			"entries", snap.Len(),
			"duration_ms", time.Since(start).Milliseconds())
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Start runs the first refresh in the background and then refreshes every
// interval until ctx is done. A zero interval disables periodic refresh.
func (b *Builder) Start(ctx context.Context, interval time.Duration) {
	go func() {
		if _, err := b.Refresh(ctx); err != nil {
			b.logger.Warn("initial index build failed", "error", err)
		}
		if interval <= 0 {
			return
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := b.Refresh(ctx); err != nil && ctx.Err() == nil {
					b.logger.Warn("periodic index refresh failed", "error", err)
				}
			}
		}
	}()
}
