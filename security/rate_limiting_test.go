package security

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_FirstRequestSetsWindow(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(client)

	mock.ExpectIncr("ratelimit:reccomendation:1.2.3.4").SetVal(1)
	mock.ExpectExpire("ratelimit:reccomendation:1.2.3.4", time.Minute).SetVal(true)

	ok, err := limiter.Allow(context.Background(), "reccomendation:1.2.3.4", 10, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_WithinLimit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(client)

	mock.ExpectIncr("ratelimit:client-a").SetVal(10)

	ok, err := limiter.Allow(context.Background(), "client-a", 10, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRateLimiter_OverLimit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(client)

	mock.ExpectIncr("ratelimit:client-a").SetVal(11)

	ok, err := limiter.Allow(context.Background(), "client-a", 10, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRateLimiter_FailsOpenOnRedisError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(client)

	mock.ExpectIncr("ratelimit:client-a").SetErr(errors.New("connection refused"))

	ok, err := limiter.Allow(context.Background(), "client-a", 10, time.Minute)
	assert.Error(t, err)
	assert.True(t, ok)
}
