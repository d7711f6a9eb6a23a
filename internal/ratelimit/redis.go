package ratelimit

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// bucketScript refills KEYS[1] from the server clock and tries to take one token.
// ARGV: refill per second, capacity, idle expiry in ms.
// Reply: {taken (0|1), tokens left as a string, ms until a token is available}.
const bucketScript = `
local per_sec, capacity, expiry_ms = tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3])

local clock = redis.call("TIME")
local now_ms = clock[1] * 1000 + math.floor(clock[2] / 1000)

local saved = redis.call("HMGET", KEYS[1], "level", "at")
local level = capacity
if saved[1] then
  local elapsed_ms = math.max(0, now_ms - tonumber(saved[2]))
  level = math.min(capacity, tonumber(saved[1]) + elapsed_ms * per_sec / 1000)
end

local taken, wait_ms = 0, 0
if level >= 1 then
  taken = 1
  level = level - 1
else
  wait_ms = math.ceil((1 - level) * 1000 / per_sec)
end

redis.call("HSET", KEYS[1], "level", level, "at", now_ms)
redis.call("PEXPIRE", KEYS[1], expiry_ms)
return {taken, tostring(level), wait_ms}
`

// Redis is a token bucket shared by every instance through a Lua script.
type Redis struct {
	client    redis.Scripter
	script    *redis.Script
	prefix    string
	perSecond float64
	burst     int
}

// NewRedis returns a shared limiter. Keys are namespaced with prefix.
func NewRedis(client redis.Scripter, prefix string, perSecond float64, burst int) *Redis {
	if burst <= 0 {
		burst = 1
	}
	return &Redis{
		client:    client,
		script:    redis.NewScript(bucketScript),
		prefix:    prefix,
		perSecond: perSecond,
		burst:     burst,
	}
}

func (r *Redis) Allow(ctx context.Context, key string) (Result, error) {
	if r == nil || r.client == nil {
		return Result{}, errors.New("rate limiter not configured")
	}
	if r.perSecond <= 0 {
		return Result{}, errors.New("rate limiter rate must be positive")
	}
	if key == "" {
		key = "unknown"
	}

	expiry := bucketTTL(r.perSecond, r.burst)
	reply, err := r.script.Run(ctx, r.client, []string{r.prefix + key}, r.perSecond, r.burst, expiry.Milliseconds()).Slice()
	if err != nil {
		return Result{}, err
	}
	if len(reply) != 3 {
		return Result{}, errors.New("unexpected rate limit script reply")
	}

	taken, _ := reply[0].(int64)
	if taken == 1 {
		return Result{Allowed: true, Remaining: int(parseFloat(reply[1]))}, nil
	}
	waitMS, _ := reply[2].(int64)
	return Result{RetryAfter: time.Duration(waitMS) * time.Millisecond}, nil
}

func bucketTTL(perSecond float64, burst int) time.Duration {
	seconds := math.Ceil((float64(burst) / perSecond) * 2)
	if seconds < 1 {
		seconds = 1
	}
	return time.Duration(seconds) * time.Second
}

func parseFloat(v any) float64 {
	switch val := v.(type) {
	case int64:
		return float64(val)
	case string:
		f, _ := strconv.ParseFloat(val, 64)
		return f
	default:
		return 0
	}
}
