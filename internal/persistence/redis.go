package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/lead-lens/internal/config"
)

const redisStartupPing = 3 * time.Second

// Redis holds the shared client used by the login limiter and readiness probe.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds the client. An unreachable server is logged but not fatal; the memory
// limiter does not need it and readiness reports the outage.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	r := &Redis{Client: redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})}

	ctx, cancel := context.WithTimeout(context.Background(), redisStartupPing)
	defer cancel()
	fields := []zap.Field{zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB)}
	if err := r.Ping(ctx); err != nil {
		logger.Warn("redis unreachable at startup", append(fields, zap.Error(err))...)
	} else {
		logger.Info("redis ready", fields...)
	}
	return r
}

// Ping is used by /health/ready.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

func (r *Redis) Close() {
	if r == nil || r.Client == nil {
		return
	}
	_ = r.Client.Close()
}
