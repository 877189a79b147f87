package repository

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/domain"
)

const recoveryInterval = time.Minute

// FailoverProjectionCache serves from primary until it fails, then from fallback.
// The primary is probed again after recoveryInterval. Invalidations seen while
// the primary was down are replayed on it before it is trusted again.
type FailoverProjectionCache struct {
	primary  domain.ProjectionCache
	fallback domain.ProjectionCache
	logger   *zerolog.Logger

	mu        sync.Mutex
	down      bool
	stale     bool
	lastCheck time.Time
	now       func() time.Time
}

func NewFailoverProjectionCache(primary, fallback domain.ProjectionCache, logger *zerolog.Logger) *FailoverProjectionCache {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &FailoverProjectionCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

// usePrimary reports whether the primary should be tried, probing it if due.
func (c *FailoverProjectionCache) usePrimary(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.down {
		return true
	}
	if c.now().Sub(c.lastCheck) < recoveryInterval {
		return false
	}

	c.lastCheck = c.now()
	if c.stale {
		if err := c.primary.Invalidate(ctx); err != nil {
			return false
		}
		c.stale = false
	}
	c.down = false
	c.logger.Info().Msg("primary projection cache recovered")
	return true
}

func (c *FailoverProjectionCache) markDown(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.down {
		c.logger.Error().Err(err).Msg("primary projection cache failed, falling back to memory")
	}
	c.down = true
	c.lastCheck = c.now()
}

// Generations handed out by Get carry the backend that issued them in the low
// bit: even for primary, odd for fallback.
func primaryGen(gen int64) int64 { return gen << 1 }
func fallbackGen(gen int64) int64 { return gen<<1 | 1 }

func (c *FailoverProjectionCache) Get(ctx context.Context, key string, dest any) (bool, int64, error) {
	if c.usePrimary(ctx) {
		ok, gen, err := c.primary.Get(ctx, key, dest)
		if err == nil {
			return ok, primaryGen(gen), nil
		}
		c.markDown(err)
	}
	ok, gen, err := c.fallback.Get(ctx, key, dest)
	return ok, fallbackGen(gen), err
}

// Set stores into the backend that issued gen. A value read from one backend is
// never written into the other; when that backend is unavailable the value is dropped.
func (c *FailoverProjectionCache) Set(ctx context.Context, key string, gen int64, value any, ttl time.Duration) error {
	if gen&1 == 1 {
		return c.fallback.Set(ctx, key, gen>>1, value, ttl)
	}
	if !c.usePrimary(ctx) {
		return nil
	}
	if err := c.primary.Set(ctx, key, gen>>1, value, ttl); err != nil {
		c.markDown(err)
	}
	return nil
}

// Invalidate always clears the fallback so it never serves data older than the primary.
func (c *FailoverProjectionCache) Invalidate(ctx context.Context) error {
	if err := c.fallback.Invalidate(ctx); err != nil {
		return err
	}
	if c.usePrimary(ctx) {
		err := c.primary.Invalidate(ctx)
		if err == nil {
			return nil
		}
		c.markDown(err)
	}

	c.mu.Lock()
	c.stale = true
	c.mu.Unlock()
	return nil
}
