package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nikhilbhutani/cretahub/internal/cache"
)

// loadTimeout bounds a shared inner load.
const loadTimeout = 30 * time.Second

// CachedProvider memoizes snapshots of a slower provider in Redis.
// Cache failures are logged and the inner provider answers instead.
// Concurrent misses for the same window share one inner load.
type CachedProvider struct {
	inner Provider
	cache *cache.Cache
	ttl   time.Duration
	group singleflight.Group
}

func NewCachedProvider(inner Provider, c *cache.Cache, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedProvider{inner: inner, cache: c, ttl: ttl}
}

func (p *CachedProvider) Snapshot(ctx context.Context, w Window) (Snapshot, error) {
	key := fmt.Sprintf("snapshot:%d:%d", w.Offset, w.Limit)

	var snap Snapshot
	err := p.cache.Get(ctx, key, &snap)
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		slog.Warn("dataset cache read failed", "key", key, "error", err)
	}

	ch := p.group.DoChan(key, func() (interface{}, error) {
		// Shared by every waiter, so one caller going away must not fail the rest.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		snap, err := p.inner.Snapshot(loadCtx, w)
		if err != nil {
			return Snapshot{}, err
		}
		if err := p.cache.Set(loadCtx, key, snap, p.ttl); err != nil {
			slog.Warn("dataset cache write failed", "key", key, "error", err)
		}
		return snap, nil
	})
	select {
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Snapshot{}, res.Err
		}
		return res.Val.(Snapshot), nil
	}
}

// Invalidate drops the cached snapshot for a window.
func (p *CachedProvider) Invalidate(ctx context.Context, w Window) error {
	return p.cache.Delete(ctx, fmt.Sprintf("snapshot:%d:%d", w.Offset, w.Limit))
}
