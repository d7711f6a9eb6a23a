// Package ratelimit throttles requests per key with a token bucket, either in process or
// shared through Redis.
package ratelimit

import (
	"context"
	"time"
)

// Result is the outcome of a single Allow call.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether one more request for key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// PerMinute converts a per-minute budget into a per-second refill rate.
func PerMinute(n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(n) / 60
}
