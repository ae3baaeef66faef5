package dataset_test

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/cretahub/internal/cache"
	"github.com/nikhilbhutani/cretahub/internal/dataset"
)

func TestSeedIdentifiersUnique(t *testing.T) {
	p, err := dataset.NewMemoryProvider(dataset.Seed())
	require.NoError(t, err)

	snap, err := p.Snapshot(context.Background(), dataset.Window{})
	require.NoError(t, err)
	assert.Len(t, snap.Records, 5)
	assert.Equal(t, 5, snap.Total)
	assert.False(t, snap.Partial())

	nikos, ok := snap.Lookup(101)
	require.True(t, ok)
	assert.Equal(t, "450.50", dataset.FormatBalance(nikos.Balance))
	assert.Equal(t, dataset.StatusOverdue, nikos.Status)
}

func TestMemoryProviderRejectsDuplicateID(t *testing.T) {
	records := dataset.Seed()
	records = append(records, dataset.Record{ID: 101, Name: "dup"})

	_, err := dataset.NewMemoryProvider(records)
	assert.ErrorIs(t, err, dataset.ErrDuplicateID)
}

func TestMemoryProviderWindow(t *testing.T) {
	p, err := dataset.NewMemoryProvider(dataset.Seed())
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		name string
		w    dataset.Window
		ids  []int
	}{
		{name: "first page", w: dataset.Window{Limit: 2}, ids: []int{101, 102}},
		{name: "middle page", w: dataset.Window{Offset: 2, Limit: 2}, ids: []int{103, 104}},
		{name: "tail", w: dataset.Window{Offset: 4, Limit: 2}, ids: []int{105}},
		{name: "past end", w: dataset.Window{Offset: 9, Limit: 2}, ids: nil},
		{name: "offset only", w: dataset.Window{Offset: 3}, ids: []int{104, 105}},
		{name: "limit near max int", w: dataset.Window{Offset: 1, Limit: math.MaxInt}, ids: []int{102, 103, 104, 105}},
		{name: "negative offset", w: dataset.Window{Offset: -3, Limit: 1}, ids: []int{101}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := p.Snapshot(ctx, tt.w)
			require.NoError(t, err)
			var ids []int
			for _, r := range snap.Records {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.ids, ids)
			assert.Equal(t, 5, snap.Total)
		})
	}
}

func TestMemoryProviderSnapshotIsCopy(t *testing.T) {
	p, err := dataset.NewMemoryProvider(dataset.Seed())
	require.NoError(t, err)
	ctx := context.Background()

	snap, err := p.Snapshot(ctx, dataset.Window{})
	require.NoError(t, err)
	snap.Records[0].Balance = 1

	again, err := p.Snapshot(ctx, dataset.Window{})
	require.NoError(t, err)
	assert.InDelta(t, 450.50, again.Records[0].Balance, 1e-9)
}

type countingProvider struct {
	inner dataset.Provider
	calls int
}

func (c *countingProvider) Snapshot(ctx context.Context, w dataset.Window) (dataset.Snapshot, error) {
	c.calls++
	return c.inner.Snapshot(ctx, w)
}

func TestCachedProvider(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	mem, err := dataset.NewMemoryProvider(dataset.Seed())
	require.NoError(t, err)
	inner := &countingProvider{inner: mem}
	p := dataset.NewCachedProvider(inner, cache.NewCache(rdb, "test"), time.Minute)
	ctx := context.Background()

	first, err := p.Snapshot(ctx, dataset.Window{})
	require.NoError(t, err)
	second, err := p.Snapshot(ctx, dataset.Window{})
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first, second)

	require.NoError(t, p.Invalidate(ctx, dataset.Window{}))
	_, err = p.Snapshot(ctx, dataset.Window{})
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedProviderFallsBackWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	mem, err := dataset.NewMemoryProvider(dataset.Seed())
	require.NoError(t, err)
	p := dataset.NewCachedProvider(mem, cache.NewCache(rdb, "test"), time.Minute)

	snap, err := p.Snapshot(context.Background(), dataset.Window{})
	require.NoError(t, err)
	assert.Len(t, snap.Records, 5)
}

type gatedProvider struct {
	inner   dataset.Provider
	release chan struct{}
	calls   atomic.Int32
}

func (g *gatedProvider) Snapshot(ctx context.Context, w dataset.Window) (dataset.Snapshot, error) {
	g.calls.Add(1)
	<-g.release
	return g.inner.Snapshot(ctx, w)
}

func TestCachedProviderCollapsesConcurrentMisses(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	mem, err := dataset.NewMemoryProvider(dataset.Seed())
	require.NoError(t, err)
	inner := &gatedProvider{inner: mem, release: make(chan struct{})}
	p := dataset.NewCachedProvider(inner, cache.NewCache(rdb, "test"), time.Minute)

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snap, err := p.Snapshot(context.Background(), dataset.Window{})
			if assert.NoError(t, err) {
				results[i] = len(snap.Records)
			}
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(inner.release)
	wg.Wait()

	assert.Equal(t, int32(1), inner.calls.Load())
	for _, n := range results {
		assert.Equal(t, 5, n)
	}
}

type slowProvider struct {
	inner dataset.Provider
	delay time.Duration
	calls atomic.Int32
}

func (s *slowProvider) Snapshot(ctx context.Context, w dataset.Window) (dataset.Snapshot, error) {
	s.calls.Add(1)
	select {
	case <-ctx.Done():
		return dataset.Snapshot{}, ctx.Err()
	case <-time.After(s.delay):
	}
	return s.inner.Snapshot(ctx, w)
}

func TestCachedProviderLeaderCancelDoesNotFailFollowers(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	mem, err := dataset.NewMemoryProvider(dataset.Seed())
	require.NoError(t, err)
	inner := &slowProvider{inner: mem, delay: 100 * time.Millisecond}
	p := dataset.NewCachedProvider(inner, cache.NewCache(rdb, "test"), time.Minute)

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := p.Snapshot(leaderCtx, dataset.Window{})
		leaderErr <- err
	}()
	time.Sleep(10 * time.Millisecond)

	followerErr := make(chan error, 1)
	var followerLen int
	go func() {
		snap, err := p.Snapshot(context.Background(), dataset.Window{})
		followerLen = len(snap.Records)
		followerErr <- err
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	assert.ErrorIs(t, <-leaderErr, context.Canceled)
	require.NoError(t, <-followerErr)
	assert.Equal(t, 5, followerLen)
	assert.Equal(t, int32(1), inner.calls.Load())
}
