package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string, dest any) (bool, int64, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Get(1).(int64), args.Error(2)
}

func (m *mockCache) Set(ctx context.Context, key string, gen int64, value any, ttl time.Duration) error {
	return m.Called(ctx, key, gen, value, ttl).Error(0)
}

func (m *mockCache) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestFailoverProjectionCache(t *testing.T) {
	primary := new(mockCache)
	fallback := new(mockCache)
	logger := zerolog.New(io.Discard)
	cache := NewFailoverProjectionCache(primary, fallback, &logger)
	ctx := context.Background()

	t.Run("PrimarySuccess", func(t *testing.T) {
		primary.On("Get", ctx, "a", mock.Anything).Return(true, int64(3), nil).Once()

		ok, gen, err := cache.Get(ctx, "a", new(int))
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(6), gen)
		primary.AssertExpectations(t)
	})

	t.Run("PrimarySetWithPrimaryGeneration", func(t *testing.T) {
		primary.On("Set", ctx, "a", int64(3), 1, time.Minute).Return(nil).Once()

		assert.NoError(t, cache.Set(ctx, "a", 6, 1, time.Minute))
		primary.AssertExpectations(t)
	})

	t.Run("PrimarySetFailureMarksDownAndDropsValue", func(t *testing.T) {
		primary.On("Set", ctx, "b", int64(0), 1, time.Minute).Return(errors.New("fail")).Once()

		assert.NoError(t, cache.Set(ctx, "b", 0, 1, time.Minute))
		assert.True(t, cache.down)
		primary.AssertExpectations(t)
		fallback.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("AlreadyDownSkipsPrimary", func(t *testing.T) {
		fallback.On("Get", ctx, "c", mock.Anything).Return(false, int64(2), nil).Once()

		ok, gen, err := cache.Get(ctx, "c", new(int))
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, int64(5), gen)
		fallback.AssertExpectations(t)
	})

	t.Run("FallbackGenerationGoesToFallback", func(t *testing.T) {
		fallback.On("Set", ctx, "c", int64(2), 1, time.Minute).Return(nil).Once()

		assert.NoError(t, cache.Set(ctx, "c", 5, 1, time.Minute))
		fallback.AssertExpectations(t)
	})

	t.Run("PrimaryGenerationDroppedWhileDown", func(t *testing.T) {
		assert.NoError(t, cache.Set(ctx, "c", 4, 1, time.Minute))
		primary.AssertNotCalled(t, "Set", ctx, "c", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("InvalidateWhileDownMarksStale", func(t *testing.T) {
		fallback.On("Invalidate", ctx).Return(nil).Once()

		assert.NoError(t, cache.Invalidate(ctx))
		assert.True(t, cache.stale)
		fallback.AssertExpectations(t)
	})

	t.Run("RecoveryReplaysInvalidation", func(t *testing.T) {
		cache.lastCheck = time.Now().Add(-2 * time.Minute)
		primary.On("Invalidate", ctx).Return(nil).Once()
		primary.On("Get", ctx, "d", mock.Anything).Return(true, int64(4), nil).Once()

		ok, _, err := cache.Get(ctx, "d", new(int))
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.False(t, cache.down)
		assert.False(t, cache.stale)
		primary.AssertExpectations(t)
	})

	t.Run("RecoveryAttemptFail", func(t *testing.T) {
		cache.down = true
		cache.stale = true
		cache.lastCheck = time.Now().Add(-2 * time.Minute)
		primary.On("Invalidate", ctx).Return(errors.New("still down")).Once()
		fallback.On("Get", ctx, "e", mock.Anything).Return(false, int64(0), nil).Once()

		_, _, err := cache.Get(ctx, "e", new(int))
		assert.NoError(t, err)
		assert.True(t, cache.down)
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("InvalidateBothWhenHealthy", func(t *testing.T) {
		cache.down = false
		cache.stale = false
		fallback.On("Invalidate", ctx).Return(nil).Once()
		primary.On("Invalidate", ctx).Return(nil).Once()

		assert.NoError(t, cache.Invalidate(ctx))
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})
}

func TestFailoverProjectionCache_InvalidateBetweenReadAndWrite(t *testing.T) {
	logger := zerolog.New(io.Discard)
	cache := NewFailoverProjectionCache(NewMemoryProjectionCache(), NewMemoryProjectionCache(), &logger)
	ctx := context.Background()

	var got string
	hit, gen, err := cache.Get(ctx, "dashboard", &got)
	require.NoError(t, err)
	require.False(t, hit)

	require.NoError(t, cache.Invalidate(ctx))
	require.NoError(t, cache.Set(ctx, "dashboard", gen, "before check-in", time.Minute))

	hit, _, err = cache.Get(ctx, "dashboard", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}
