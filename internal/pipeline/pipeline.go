// Package pipeline turns keystrokes into delivered result sets.
//
// Every Submit gets a sequence number. Submissions inside the debounce
// window are coalesced, the survivor is searched on a worker goroutine,
// and its result is delivered only if no newer query has been submitted
// in the meantime. Delivery is push-based through the callback given to
// New and is monotonic in sequence number.
package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	nxerrors "github.com/Aman-CERP/nexus/internal/errors"
	"github.com/Aman-CERP/nexus/internal/search"
)

// DefaultDebounce is the keystroke coalescing window.
const DefaultDebounce = 50 * time.Millisecond

// Searcher answers one query. search.Coordinator implements it.
type Searcher interface {
	Search(ctx context.Context, text string) search.ResultSet
}

// Deliver receives the result set of the latest query.
type Deliver func(search.ResultSet)

type query struct {
	seq  uint64
	text string
}

// Pipeline is the query dispatch loop. Submit, Reset and SetDebounce are
// safe to call from any goroutine; Run must be called exactly once.
type Pipeline struct {
	searcher Searcher
	deliver  Deliver
	logger   *slog.Logger

	seq      atomic.Uint64
	debounce atomic.Int64

	mu      sync.Mutex
	pending *query

	wake    chan struct{}
	results chan search.ResultSet
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDebounce sets the initial debounce window.
func WithDebounce(d time.Duration) Option {
	return func(p *Pipeline) { p.debounce.Store(int64(max(d, 0))) }
}

// WithLogger sets the logger used for stale-result diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// New creates a Pipeline that searches with s and pushes results to deliver.
func New(s Searcher, deliver Deliver, opts ...Option) *Pipeline {
	p := &Pipeline{
		searcher: s,
		deliver:  deliver,
		logger:   slog.Default(),
		wake:     make(chan struct{}, 1),
		results:  make(chan search.ResultSet),
	}
	p.debounce.Store(int64(DefaultDebounce))
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Submit records text as the latest query and returns its sequence number.
// Any earlier query that has not been delivered yet is superseded.
func (p *Pipeline) Submit(text string) uint64 {
	p.mu.Lock()
	seq := p.seq.Add(1)
	p.pending = &query{seq: seq, text: text}
	p.mu.Unlock()
	p.notify()
	return seq
}

// Reset drops the pending query and invalidates work in flight.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	p.seq.Add(1)
	p.pending = nil
	p.mu.Unlock()
	p.notify()
}

// SetDebounce changes the debounce window for subsequent submissions.
func (p *Pipeline) SetDebounce(d time.Duration) {
	p.debounce.Store(int64(max(d, 0)))
}

// Debounce returns the current debounce window.
func (p *Pipeline) Debounce() time.Duration {
	return time.Duration(p.debounce.Load())
}

// Latest returns the most recently issued sequence number.
func (p *Pipeline) Latest() uint64 {
	return p.seq.Load()
}

func (p *Pipeline) notify() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Pipeline) takePending() (query, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		return query{}, false
	}
	q := *p.pending
	p.pending = nil
	return q, q.seq == p.seq.Load()
}

func (p *Pipeline) hasPending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending != nil
}

// Run is the dispatch loop. It returns when ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context) {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	var (
		cancelInFlight context.CancelFunc = func() {}
		inFlight       int
		delivered      uint64
	)
	defer cancelInFlight()

	// Workers block on p.results, so drain them before returning.
	defer func() {
		for ; inFlight > 0; inFlight-- {
			<-p.results
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case <-p.wake:
			if !p.hasPending() {
				// Reset: nothing to dispatch, and whatever is in flight is now stale.
				timer.Stop()
				cancelInFlight()
				continue
			}
			timer.Reset(p.Debounce())

		case <-timer.C:
			q, current := p.takePending()
			if !current {
				continue
			}
			cancelInFlight()
			var workCtx context.Context
			workCtx, cancelInFlight = context.WithCancel(ctx)
			inFlight++
			go p.work(workCtx, q)

		case rs := <-p.results:
			inFlight--
			if rs.Seq != p.seq.Load() || rs.Seq <= delivered {
				p.logger.Debug("discarding stale result",
					nxerrors.FormatForLog(nxerrors.New(nxerrors.ErrCodeQueryStale, "result superseded", nil).
						WithDetail("query", rs.Query))...)
				continue
			}
			delivered = rs.Seq
			p.deliver(rs)
		}
	}
}

func (p *Pipeline) work(ctx context.Context, q query) {
	rs := p.searcher.Search(ctx, q.text)
	rs.Seq = q.seq
	p.results <- rs
}
