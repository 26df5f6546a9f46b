package lifecycle

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Fault describes why the watchdog fired.
type Fault struct {
	Reason string
	At     time.Time
}

// Watchdog detects a stalled or crashed event loop and rations restarts.
// The event loop calls Beat on every iteration; Check compares the last
// beat against the stall timeout. Restarts draw from a token bucket that
// holds maxRestarts tokens and refills one per window, so no span shorter
// than window ever sees more than maxRestarts restarts.
type Watchdog struct {
	stall   time.Duration
	limiter *rate.Limiter
	now     func() time.Time

	lastBeat atomic.Int64
	used     atomic.Int32

	mu      sync.Mutex
	stalled bool
}

// NewWatchdog creates a Watchdog allowing maxRestarts per window.
func NewWatchdog(maxRestarts int, window, stall time.Duration) *Watchdog {
	var limiter *rate.Limiter
	if maxRestarts <= 0 || window <= 0 {
		limiter = rate.NewLimiter(0, 0)
	} else {
		limiter = rate.NewLimiter(rate.Every(window), maxRestarts)
	}
	w := &Watchdog{stall: stall, limiter: limiter, now: time.Now}
	w.Beat()
	return w
}

// Beat records that the event loop is alive.
func (w *Watchdog) Beat() {
	w.lastBeat.Store(w.now().UnixNano())
	w.mu.Lock()
	w.stalled = false
	w.mu.Unlock()
}

// Check returns a fault the first time the loop is found stalled. It
// reports once per stall; the next Beat re-arms it.
func (w *Watchdog) Check() (Fault, bool) {
	now := w.now()
	last := time.Unix(0, w.lastBeat.Load())
	if now.Sub(last) < w.stall {
		return Fault{}, false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stalled {
		return Fault{}, false
	}
	w.stalled = true
	return Fault{Reason: "event loop stalled for " + now.Sub(last).Round(time.Millisecond).String(), At: now}, true
}

// AllowRestart consumes one restart from the budget. False means the
// budget is exhausted and the process should exit.
func (w *Watchdog) AllowRestart() bool {
	if !w.limiter.AllowN(w.now(), 1) {
		return false
	}
	w.used.Add(1)
	return true
}

// RestartsUsed returns the number of restarts granted so far.
func (w *Watchdog) RestartsUsed() int {
	return int(w.used.Load())
}

// Run calls Check every interval and passes faults to onFault until ctx
// is done.
func (w *Watchdog) Run(ctx context.Context, interval time.Duration, onFault func(Fault)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if f, ok := w.Check(); ok {
				onFault(f)
			}
		}
	}
}
