package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter is a blocking token bucket. One instance is shared by every
// worker talking to EDGAR; callers must Acquire before each request.
// On limit the caller is delayed, never rejected.
type Limiter struct {
	mu         sync.Mutex
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
	last       time.Time
}

// New creates a limiter admitting refillPerSec requests per second with
// burst capacity of one (requests are spaced evenly).
func New(refillPerSec float64) *Limiter {
	if refillPerSec <= 0 {
		refillPerSec = 10
	}
	return &Limiter{
		tokens:     1,
		capacity:   1,
		refillRate: refillPerSec,
		last:       time.Now(),
	}
}

// Acquire blocks until one token is available or ctx is done.
func (l *Limiter) Acquire(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := time.Now()
		elapsed := now.Sub(l.last).Seconds()
		if elapsed > 0 {
			l.tokens += elapsed * l.refillRate
			if l.tokens > l.capacity {
				l.tokens = l.capacity
			}
			l.last = now
		}
		if l.tokens >= 1 {
			l.tokens -= 1
			l.mu.Unlock()
			return nil
		}
		wait := time.Duration((1 - l.tokens) / l.refillRate * float64(time.Second))
		l.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
