package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scripterStub struct {
	redis.Scripter
	reply []any
	err   error
	keys  []string
	args  []any
}

func (s *scripterStub) EvalSha(_ context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	s.keys = keys
	s.args = args
	return redis.NewCmdResult(s.reply, s.err)
}

func TestRedisAllowTakesToken(t *testing.T) {
	stub := &scripterStub{reply: []any{int64(1), "3.5", int64(0)}}
	lim := NewRedis(stub, "lead-lens:ratelimit:", PerMinute(60), 5)

	res, err := lim.Allow(context.Background(), "login:10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 3, res.Remaining)
	assert.Equal(t, []string{"lead-lens:ratelimit:login:10.0.0.1"}, stub.keys)
	assert.Equal(t, []any{float64(1), 5, int64(10000)}, stub.args)
}

func TestRedisDeniedUsesScriptWait(t *testing.T) {
	stub := &scripterStub{reply: []any{int64(0), "0.25", int64(750)}}
	lim := NewRedis(stub, "p:", 1, 1)

	res, err := lim.Allow(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 750*time.Millisecond, res.RetryAfter)
	assert.Equal(t, []string{"p:unknown"}, stub.keys)
}

func TestRedisAllowErrors(t *testing.T) {
	_, err := NewRedis(nil, "p:", 1, 1).Allow(context.Background(), "k")
	assert.Error(t, err)

	_, err = NewRedis(&scripterStub{}, "p:", 0, 1).Allow(context.Background(), "k")
	assert.Error(t, err)

	_, err = NewRedis(&scripterStub{err: errors.New("connection refused")}, "p:", 1, 1).Allow(context.Background(), "k")
	assert.EqualError(t, err, "connection refused")

	_, err = NewRedis(&scripterStub{reply: []any{int64(1)}}, "p:", 1, 1).Allow(context.Background(), "k")
	assert.Error(t, err)
}
