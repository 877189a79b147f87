package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/config"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/models"
)

func TestRedisProjectionCache(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := NewRedisClient(config.RedisConfig{Address: s.Addr()})
	defer client.Close()

	cache := NewRedisProjectionCache(client, "test:projection")
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		summary := models.DashboardSummary{
			Date:          models.MustDate("2025-06-01"),
			TodayCheckIns: 3,
			TotalRooms:    10,
			RoomsByStatus: map[models.RoomStatus]int{models.RoomAvailable: 10},
		}
		require.NoError(t, cache.Set(ctx, "dashboard:2025-06-01", 0, summary, time.Hour))

		var got models.DashboardSummary
		ok, gen, err := cache.Get(ctx, "dashboard:2025-06-01", &got)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Zero(t, gen)
		assert.Equal(t, 3, got.TodayCheckIns)
		assert.Equal(t, "2025-06-01", got.Date.String())
		assert.Equal(t, 10, got.RoomsByStatus[models.RoomAvailable])
	})

	t.Run("Miss", func(t *testing.T) {
		var got models.DashboardSummary
		ok, _, err := cache.Get(ctx, "missing", &got)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("InvalidateBumpsGeneration", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "calendar:2025-06", 0, map[string]int{"a": 1}, time.Hour))
		require.NoError(t, cache.Invalidate(ctx))

		var got map[string]int
		ok, gen, err := cache.Get(ctx, "calendar:2025-06", &got)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, int64(1), gen)

		rawGen, err := s.Get("test:projection:gen")
		require.NoError(t, err)
		assert.Equal(t, "1", rawGen)
	})

	t.Run("StaleGenerationNotServed", func(t *testing.T) {
		var got string
		hit, gen, err := cache.Get(ctx, "dashboard:2025-06-03", &got)
		require.NoError(t, err)
		require.False(t, hit)

		require.NoError(t, cache.Invalidate(ctx))
		require.NoError(t, cache.Set(ctx, "dashboard:2025-06-03", gen, "occupied=0", time.Hour))

		hit, _, err = cache.Get(ctx, "dashboard:2025-06-03", &got)
		require.NoError(t, err)
		assert.False(t, hit)
	})

	t.Run("TTL", func(t *testing.T) {
		_, gen, err := cache.Get(ctx, "short", new(int))
		require.NoError(t, err)
		require.NoError(t, cache.Set(ctx, "short", gen, 1, time.Second))
		s.FastForward(2 * time.Second)

		var got int
		ok, _, err := cache.Get(ctx, "short", &got)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestRedisProjectionCache_ServerDown(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: s.Addr(), MaxRetries: -1})
	defer client.Close()
	s.Close()

	cache := NewRedisProjectionCache(client, "")
	ctx := context.Background()

	var got int
	_, _, err = cache.Get(ctx, "k", &got)
	assert.Error(t, err)
	assert.Error(t, cache.Set(ctx, "k", 0, 1, time.Minute))
	assert.Error(t, cache.Invalidate(ctx))
	assert.Error(t, Ping(ctx, client))
}

func TestRedisProjectionCache_NilClient(t *testing.T) {
	cache := &RedisProjectionCache{}
	ctx := context.Background()

	var got int
	_, _, err := cache.Get(ctx, "k", &got)
	assert.Error(t, err)
	assert.Error(t, cache.Set(ctx, "k", 0, 1, 0))
	assert.Error(t, cache.Invalidate(ctx))
	assert.NoError(t, Close(nil))
}
