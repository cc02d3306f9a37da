package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

// countingLoader returns value and counts how often it ran
func countingLoader(value string, calls *int32) Loader {
	return func(ctx context.Context) (string, error) {
		atomic.AddInt32(calls, 1)
		return value, nil
	}
}

func newTestCache(t *testing.T, opts ...Option) (*Cache, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	return New(append([]Option{WithClock(clock.Now)}, opts...)...), clock
}

func TestNewDefaults(t *testing.T) {
	c := New()

	assert.Equal(t, DefaultMaxEntries, c.MaxEntries())
	assert.Equal(t, DefaultTTL, c.DefaultTTL())
	assert.Equal(t, 0, c.Len())
}

func TestNewIgnoresInvalidOptions(t *testing.T) {
	c := New(WithMaxEntries(0), WithDefaultTTL(-time.Second), WithClock(nil), WithLogger(nil))

	assert.Equal(t, DefaultMaxEntries, c.MaxEntries())
	assert.Equal(t, DefaultTTL, c.DefaultTTL())
	assert.NotNil(t, c.now)
	assert.NotNil(t, c.logger)
}

func TestGetOrLoad_HitReturnsCachedValue(t *testing.T) {
	c, clock := newTestCache(t)
	ctx := context.Background()
	var calls int32

	v, err := c.GetOrLoad(ctx, "A", countingLoader("x", &calls))
	require.NoError(t, err)
	assert.Equal(t, "x", v)

	clock.Advance(time.Minute)
	v, err = c.GetOrLoad(ctx, "A", countingLoader("y", &calls))
	require.NoError(t, err)
	assert.Equal(t, "x", v, "hit must return the originally cached string")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetOrLoad_ExpiredEntryReloads(t *testing.T) {
	c, clock := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.CacheProcessedTTL("A", "x", time.Second))
	clock.Advance(1500 * time.Millisecond)

	var calls int32
	v, err := c.GetOrLoad(ctx, "A", countingLoader("y", &calls))
	require.NoError(t, err)
	assert.Equal(t, "y", v)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetOrLoad_EntryFreshUntilExpiryInstant(t *testing.T) {
	c, clock := newTestCache(t)
	ctx := context.Background()
	var calls int32

	_, err := c.GetOrLoadTTL(ctx, "A", time.Second, countingLoader("x", &calls))
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = c.GetOrLoadTTL(ctx, "A", time.Second, countingLoader("x", &calls))
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "entry at exactly now == expiry is still fresh")

	clock.Advance(time.Nanosecond)
	_, err = c.GetOrLoadTTL(ctx, "A", time.Second, countingLoader("x", &calls))
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGetOrLoad_LoaderErrorNotCached(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	boom := errors.New("boom")
	var calls int32

	failing := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "", boom
	}

	for i := 0; i < 2; i++ {
		v, err := c.GetOrLoad(ctx, "A", failing)
		assert.Same(t, boom, err, "loader error must propagate unchanged")
		assert.Empty(t, v)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "each miss makes exactly one attempt")
	assert.Equal(t, 0, c.Len())
}

func TestGetOrLoad_InvalidArguments(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	var calls int32

	_, err := c.GetOrLoad(ctx, "", countingLoader("x", &calls))
	assert.ErrorIs(t, err, ErrEmptyKey)

	_, err = c.GetOrLoad(ctx, "A", nil)
	assert.ErrorIs(t, err, ErrNilLoader)

	assert.ErrorIs(t, c.CacheProcessed("", "x"), ErrEmptyKey)
	assert.Zero(t, calls)
}

func TestGetOrLoad_PassesContextToLoader(t *testing.T) {
	c, _ := newTestCache(t)
	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "marker")

	v, err := c.GetOrLoad(ctx, "A", func(ctx context.Context) (string, error) {
		return ctx.Value(ctxKey{}).(string), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "marker", v)
}

func TestEviction_LeastRecentlyUsed(t *testing.T) {
	c, clock := newTestCache(t, WithMaxEntries(2))
	ctx := context.Background()
	var calls int32

	_, err := c.GetOrLoad(ctx, "A", countingLoader("a", &calls))
	require.NoError(t, err)
	clock.Advance(time.Second)
	_, err = c.GetOrLoad(ctx, "B", countingLoader("b", &calls))
	require.NoError(t, err)
	clock.Advance(time.Second)

	// Refresh A so B becomes the least recently used entry
	_, err = c.GetOrLoad(ctx, "A", countingLoader("a", &calls))
	require.NoError(t, err)
	clock.Advance(time.Second)

	_, err = c.GetOrLoad(ctx, "C", countingLoader("c", &calls))
	require.NoError(t, err)

	assert.True(t, c.Contains("A"))
	assert.False(t, c.Contains("B"))
	assert.True(t, c.Contains("C"))
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestEviction_ExpiredEntriesReapedFirst(t *testing.T) {
	c, clock := newTestCache(t, WithMaxEntries(3))

	require.NoError(t, c.CacheProcessedTTL("A", "a", 0))
	clock.Advance(time.Second)
	require.NoError(t, c.CacheProcessed("B", "b"))
	clock.Advance(time.Second)
	require.NoError(t, c.CacheProcessed("C", "c"))
	clock.Advance(time.Second)

	require.NoError(t, c.CacheProcessed("D", "d"))

	stats := c.Stats()
	assert.Equal(t, []string{"B", "C", "D"}, stats.Keys)
	assert.Equal(t, uint64(0), stats.Evictions, "cleanup alone made room, no LRU victim expected")
}

func TestEviction_ReapsAllExpiredBeforeChoosingVictim(t *testing.T) {
	c, clock := newTestCache(t, WithMaxEntries(3))

	require.NoError(t, c.CacheProcessedTTL("A", "a", time.Second))
	require.NoError(t, c.CacheProcessedTTL("B", "b", time.Second))
	clock.Advance(time.Second)
	require.NoError(t, c.CacheProcessed("C", "c"))
	clock.Advance(2 * time.Second)

	require.NoError(t, c.CacheProcessed("D", "d"))

	stats := c.Stats()
	assert.Equal(t, []string{"C", "D"}, stats.Keys)
	assert.Equal(t, uint64(0), stats.Evictions)
}

func TestEviction_ReinsertExistingKeyDoesNotEvict(t *testing.T) {
	c, clock := newTestCache(t, WithMaxEntries(2))

	require.NoError(t, c.CacheProcessed("A", "a"))
	clock.Advance(time.Second)
	require.NoError(t, c.CacheProcessed("B", "b"))
	clock.Advance(time.Second)
	require.NoError(t, c.CacheProcessed("A", "a2"))

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, uint64(0), c.Stats().Evictions)

	v, err := c.GetOrLoad(context.Background(), "A", func(ctx context.Context) (string, error) {
		t.Fatal("loader must not run on a hit")
		return "", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "a2", v)
}

func TestSizeBoundHoldsAfterEveryInsert(t *testing.T) {
	const limit = 5
	c, clock := newTestCache(t, WithMaxEntries(limit))
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		clock.Advance(time.Millisecond)
		key := fmt.Sprintf("k%d", i%17)
		_, err := c.GetOrLoad(ctx, key, func(ctx context.Context) (string, error) {
			return key, nil
		})
		require.NoError(t, err)
		require.LessOrEqual(t, c.Len(), limit, "after insert %d", i)
	}
}

func TestRemove(t *testing.T) {
	c, _ := newTestCache(t)

	require.NoError(t, c.CacheProcessed("A", "a"))

	assert.True(t, c.Remove("A"))
	assert.False(t, c.Remove("A"), "second removal reports absence")
	assert.False(t, c.Remove("never-added"))
	assert.Equal(t, 0, c.Len())
}

func TestClear(t *testing.T) {
	c, _ := newTestCache(t)

	for i := 0; i < 10; i++ {
		require.NoError(t, c.CacheProcessed(fmt.Sprintf("k%d", i), "v"))
	}

	c.Clear()
	assert.Equal(t, 0, c.Stats().TotalEntries)

	c.Clear()
	assert.Equal(t, 0, c.Stats().TotalEntries)
}

func TestCleanupExpired(t *testing.T) {
	c, clock := newTestCache(t)

	require.NoError(t, c.CacheProcessedTTL("short1", "x", time.Second))
	require.NoError(t, c.CacheProcessedTTL("short2", "x", time.Second))
	require.NoError(t, c.CacheProcessedTTL("long", "x", time.Hour))

	assert.Equal(t, 0, c.CleanupExpired())

	clock.Advance(2 * time.Second)
	assert.Equal(t, 2, c.CleanupExpired())
	assert.Equal(t, []string{"long"}, c.Stats().Keys)
}

func TestStats(t *testing.T) {
	c, clock := newTestCache(t)
	ctx := context.Background()
	var calls int32

	empty := c.Stats()
	assert.Zero(t, empty.TotalEntries)
	assert.Zero(t, empty.FreshnessRatio())
	assert.Zero(t, empty.HitRatio())
	assert.Empty(t, empty.Keys)

	_, err := c.GetOrLoadTTL(ctx, "old", time.Second, countingLoader("o", &calls))
	require.NoError(t, err)
	clock.Advance(10 * time.Second)
	_, err = c.GetOrLoad(ctx, "new", countingLoader("n", &calls))
	require.NoError(t, err)
	clock.Advance(2 * time.Second)
	_, err = c.GetOrLoad(ctx, "new", countingLoader("n", &calls))
	require.NoError(t, err)
	clock.Advance(3 * time.Second)

	s := c.Stats()
	assert.Equal(t, 2, s.TotalEntries)
	assert.Equal(t, 1, s.ValidEntries)
	assert.Equal(t, 1, s.ExpiredEntries)
	assert.Equal(t, 15*time.Second, s.OldestAccess)
	assert.Equal(t, 3*time.Second, s.NewestAccess)
	assert.Equal(t, []string{"new", "old"}, s.Keys)
	assert.InDelta(t, 0.5, s.FreshnessRatio(), 1e-9)
	assert.Equal(t, uint64(1), s.Hits)
	assert.Equal(t, uint64(2), s.Misses)
	assert.InDelta(t, 1.0/3.0, s.HitRatio(), 1e-9)
}

func TestConcurrentAccess(t *testing.T) {
	const limit = 8
	c := New(WithMaxEntries(limit))
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*7+i)%20)
				v, err := c.GetOrLoadTTL(ctx, key, time.Minute, func(ctx context.Context) (string, error) {
					return "v-" + key, nil
				})
				if err != nil || v != "v-"+key {
					t.Errorf("unexpected result for %s: %q, %v", key, v, err)
					return
				}
				switch i % 50 {
				case 10:
					c.Remove(key)
				case 20:
					c.CleanupExpired()
				case 30:
					_ = c.Stats()
				case 49:
					if g == 0 {
						c.Clear()
					}
				}
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), limit)
}

func TestConcurrentMissesWithoutSingleFlight(t *testing.T) {
	c := New()
	ctx := context.Background()
	var calls int32

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrLoad(ctx, "shared", countingLoader("value", &calls))
			assert.NoError(t, err)
			assert.Equal(t, "value", v)
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
	assert.Equal(t, 1, c.Len(), "racing inserts must leave exactly one entry")
}

func TestSingleFlightSharesLoad(t *testing.T) {
	c := New(WithSingleFlight(true))
	ctx := context.Background()
	var calls int32
	release := make(chan struct{})

	loader := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "value", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 10)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrLoad(ctx, "shared", loader)
			assert.NoError(t, err)
			results[i] = v
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, v := range results {
		assert.Equal(t, "value", v)
	}
}

func TestSingleFlightCancelledLeaderDoesNotFailFollowers(t *testing.T) {
	c := New(WithSingleFlight(true))
	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})

	loader := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		close(started)
		select {
		case <-release:
			return "value", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := c.GetOrLoad(leaderCtx, "shared", loader)
		leaderErr <- err
	}()
	<-started

	type result struct {
		v   string
		err error
	}
	follower := make(chan result, 1)
	go func() {
		v, err := c.GetOrLoad(context.Background(), "shared", loader)
		follower <- result{v, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	select {
	case err := <-leaderErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting on the shared load")
	}

	select {
	case r := <-follower:
		t.Fatalf("follower returned before the load finished: %q, %v", r.v, r.err)
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case r := <-follower:
		require.NoError(t, r.err)
		assert.Equal(t, "value", r.v)
	case <-time.After(time.Second):
		t.Fatal("follower never received the shared result")
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.True(t, c.Contains("shared"), "the shared load still fills the cache")
}

func TestSingleFlightCallerCancelledWhileWaiting(t *testing.T) {
	c := New(WithSingleFlight(true))
	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.GetOrLoad(ctx, "slow", func(ctx context.Context) (string, error) {
		<-release
		return "late", nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSingleFlightPropagatesError(t *testing.T) {
	c := New(WithSingleFlight(true))
	boom := errors.New("boom")

	_, err := c.GetOrLoad(context.Background(), "A", func(ctx context.Context) (string, error) {
		return "", boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())
}

func TestStartJanitor(t *testing.T) {
	c, clock := newTestCache(t)

	require.NoError(t, c.CacheProcessedTTL("A", "a", time.Second))
	require.NoError(t, c.CacheProcessedTTL("B", "b", time.Hour))
	clock.Advance(2 * time.Second)

	stop := c.StartJanitor(5 * time.Millisecond)
	defer stop()

	assert.Eventually(t, func() bool { return c.Len() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, c.Contains("B"))

	stop()
	stop() // idempotent
}

func TestStartJanitorDisabled(t *testing.T) {
	c := New()
	stop := c.StartJanitor(0)
	stop()
}
