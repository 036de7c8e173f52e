package ratelimit

import (
	"context"
	"math/rand"
	"sync/atomic"
	"time"
)

// Limiter enforces a minimum delay between consecutive operations,
// incorporating optional jitter. It is safe for concurrent use by multiple
// goroutines.
type Limiter struct {
	ticker *time.Ticker
	jitter float64 // 0.0 to 1.0
	delay  time.Duration
	ch     <-chan time.Time
	first  atomic.Bool
}

// NewLimiter creates a limiter that spaces operations at least delay apart,
// with a jitter factor between 0.0 and 1.0. If delay is <= 0, the limiter
// does not block. The first Wait call never blocks so a run starts promptly.
func NewLimiter(delay time.Duration, jitter float64) *Limiter {
	l := &Limiter{
		jitter: jitter,
	}
	l.first.Store(true)

	if delay <= 0 {
		return l
	}

	if jitter < 0 {
		l.jitter = 0
	} else if jitter > 1 {
		l.jitter = 1
	}

	l.delay = delay
	l.ticker = time.NewTicker(delay)
	l.ch = l.ticker.C
	return l
}

// Wait blocks until the configured delay since the previous operation has
// elapsed, or until the context is canceled. It applies jitter to the sleep
// time if configured.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.ch == nil {
		return nil
	}
	if l.first.CompareAndSwap(true, false) {
		l.ticker.Reset(l.delay)
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.ch:
		if l.jitter > 0 {
			// Calculate random jitter between +/- (jitter * delay)
			jitterFactor := (rand.Float64() * 2) - 1.0 // -1.0 to 1.0
			jitterDuration := time.Duration(float64(l.delay) * l.jitter * jitterFactor)

			// If jitter duration is positive, sleep for the extra time
			if jitterDuration > 0 {
				select {
				case <-time.After(jitterDuration):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			// If jitter duration is negative, we could ideally run earlier,
			// but a Ticker enforces minimum wait time natively. So negative
			// jitter just means "run immediately when ticker ticks". This gives
			// a slight bias toward exactly delay or later, but achieves randomization.
		}
	}
	return nil
}

// Stop releases any resources associated with the limiter.
func (l *Limiter) Stop() {
	if l.ticker != nil {
		l.ticker.Stop()
	}
}
