package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	bucketIdleTTL = 5 * time.Minute
	sweepEvery    = time.Minute
)

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// Memory keeps one token bucket per key in process. Idle buckets are dropped after a few
// minutes.
type Memory struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	perSecond float64
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

// NewMemory returns a limiter refilling perSecond tokens up to burst.
func NewMemory(perSecond float64, burst int) *Memory {
	if burst <= 0 {
		burst = 1
	}
	return &Memory{
		buckets:   make(map[string]*bucket),
		perSecond: perSecond,
		burst:     burst,
		now:       time.Now,
	}
}

func (m *Memory) Allow(_ context.Context, key string) (Result, error) {
	if key == "" {
		key = "unknown"
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastSweep) > sweepEvery {
		for k, b := range m.buckets {
			if now.Sub(b.seen) > bucketIdleTTL {
				delete(m.buckets, k)
			}
		}
		m.lastSweep = now
	}

	b, ok := m.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rate.Limit(m.perSecond), m.burst)}
		m.buckets[key] = b
	}
	b.seen = now

	r := b.lim.ReserveN(now, 1)
	if !r.OK() {
		return Result{Allowed: false, RetryAfter: time.Minute}, nil
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return Result{Allowed: false, RetryAfter: delay}, nil
	}
	return Result{Allowed: true, Remaining: int(b.lim.TokensAt(now))}, nil
}
