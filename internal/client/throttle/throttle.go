// Package throttle limits how often an event is let through: at most once
// per interval, leading edge. The first event of an interval passes, the
// rest of that interval is dropped.
package throttle

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/time/rate"
)

type Throttle struct {
	clock    clock.Clock
	interval time.Duration

	mu      sync.Mutex
	limiter *rate.Limiter
}

// New returns a Throttle for interval. A non-positive interval lets every
// event through. A nil clock means the wall clock.
func New(interval time.Duration, c clock.Clock) *Throttle {
	if c == nil {
		c = clock.New()
	}
	t := &Throttle{clock: c, interval: interval}
	t.limiter = t.newLimiter()
	return t
}

func (t *Throttle) newLimiter() *rate.Limiter {
	if t.interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(t.interval), 1)
}

// Allow reports whether an event happening now passes.
func (t *Throttle) Allow() bool {
	t.mu.Lock()
	l := t.limiter
	t.mu.Unlock()
	return l.AllowN(t.clock.Now(), 1)
}

// Reset forgets past events so the next one passes immediately.
func (t *Throttle) Reset() {
	t.mu.Lock()
	t.limiter = t.newLimiter()
	t.mu.Unlock()
}

func (t *Throttle) Interval() time.Duration {
	return t.interval
}
