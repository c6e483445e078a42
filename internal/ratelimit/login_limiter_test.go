package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterFailsOpenWithoutRedis(t *testing.T) {
	limiter := NewLoginLimiter(nil, 3, time.Minute, nil)

	assert.True(t, limiter.Allow(context.Background(), "ops@example.com"))
	limiter.RecordFailure(context.Background(), "ops@example.com")
	limiter.Reset(context.Background(), "ops@example.com")
	assert.True(t, limiter.Allow(context.Background(), "ops@example.com"))
}

func TestNilLimiterIsSafe(t *testing.T) {
	var limiter *LoginLimiter

	assert.True(t, limiter.Allow(context.Background(), "ops@example.com"))
	limiter.RecordFailure(context.Background(), "ops@example.com")
	limiter.Reset(context.Background(), "ops@example.com")
}

func TestConstructorDefaultsLogger(t *testing.T) {
	limiter := NewLoginLimiter(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), 3, time.Minute, nil)
	require.NotNil(t, limiter.logger)

	// The unreachable client forces the warn path; it must not panic.
	assert.True(t, limiter.Allow(context.Background(), "ops@example.com"))
	limiter.RecordFailure(context.Background(), "ops@example.com")
	limiter.Reset(context.Background(), "ops@example.com")
}

func TestKeyNormalizesEmail(t *testing.T) {
	limiter := NewLoginLimiter(nil, 3, time.Minute, nil)

	assert.Equal(t, limiter.key("Ops@Example.com "), limiter.key("ops@example.com"))
}
