package provider

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/langowen/converter/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

type memoryCache struct {
	mu    sync.Mutex
	snap  *entities.RateSnapshot
	saves int
	err   error
}

func (c *memoryCache) Load(context.Context) (*entities.RateSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return nil, c.err
	}
	if c.snap == nil {
		return nil, entities.ErrNoData
	}
	return c.snap, nil
}

func (c *memoryCache) Save(_ context.Context, snap *entities.RateSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snap = snap
	c.saves++
	return nil
}

func (c *memoryCache) stored() *entities.RateSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snap
}

func okSource(name string, snap *entities.RateSnapshot, calls *atomic.Int32) Source {
	return NewSource(name, func(context.Context) (*entities.RateSnapshot, error) {
		if calls != nil {
			calls.Add(1)
		}
		return snap, nil
	})
}

func failingSource(name string, calls *atomic.Int32) Source {
	return NewSource(name, func(context.Context) (*entities.RateSnapshot, error) {
		if calls != nil {
			calls.Add(1)
		}
		return nil, errors.New(name + " unavailable")
	})
}

func TestRefreshFromDatabase(t *testing.T) {
	db := snapshot(map[string]float64{"USD": 1, "EUR": 0.9})
	cache := &memoryCache{}

	var apiCalls atomic.Int32
	p := New([]Source{okSource("database", db, nil), failingSource("api", &apiCalls)}, cache, Options{})

	state := p.Initialize(context.Background())

	assert.Equal(t, "database", state.Source)
	assert.Empty(t, state.Notice)
	assert.False(t, state.Stale)
	assert.Equal(t, testTime, state.UpdatedAt)
	assert.InDelta(t, 90, p.Convert(100, "USD", "EUR"), 1e-9)
	assert.Zero(t, apiCalls.Load())
	assert.Same(t, db, cache.stored())
}

func TestRefreshFallsThroughToEndpoint(t *testing.T) {
	api := snapshot(map[string]float64{"USD": 1, "GBP": 0.8})
	cache := &memoryCache{}

	p := New([]Source{failingSource("database", nil), okSource("api", api, nil)}, cache, Options{})

	state := p.Refresh(context.Background())

	assert.Equal(t, "api", state.Source)
	assert.Empty(t, state.Notice)
	assert.Same(t, api, cache.stored())
}

func TestRefreshUsesCacheWhenOffline(t *testing.T) {
	cached := &entities.RateSnapshot{
		Base:      "USD",
		Rates:     map[string]float64{"USD": 1, "EUR": 0.92, "JPY": 150},
		Timestamp: testTime.Add(-time.Hour),
	}
	cache := &memoryCache{snap: cached}

	p := New([]Source{failingSource("database", nil), failingSource("api", nil)}, cache, Options{})

	state := p.Refresh(context.Background())

	assert.Equal(t, SourceCache, state.Source)
	assert.Equal(t, NoticeOffline, state.Notice)
	assert.True(t, state.Stale)
	assert.False(t, state.Failed)
	assert.Equal(t, cached.Rates, state.Snapshot.Rates)
	assert.Equal(t, cached.Timestamp, state.UpdatedAt)
	assert.Zero(t, cache.saves)
}

func TestRefreshTotalFailureKeepsPrevious(t *testing.T) {
	db := snapshot(map[string]float64{"USD": 1, "EUR": 0.9})

	var dbUp atomic.Bool
	dbUp.Store(true)
	source := NewSource("database", func(context.Context) (*entities.RateSnapshot, error) {
		if dbUp.Load() {
			return db, nil
		}
		return nil, errors.New("connection refused")
	})

	cache := &memoryCache{}
	p := New([]Source{source}, cache, Options{})

	require.Equal(t, "database", p.Refresh(context.Background()).Source)

	dbUp.Store(false)
	cache.mu.Lock()
	cache.err = errors.New("disk full")
	cache.mu.Unlock()

	state := p.Refresh(context.Background())

	assert.True(t, state.Failed)
	assert.Equal(t, NoticeFailed, state.Notice)
	assert.Same(t, db, state.Snapshot)
	assert.InDelta(t, 90, p.Convert(100, "USD", "EUR"), 1e-9)
}

func TestRefreshNothingAvailable(t *testing.T) {
	p := New([]Source{failingSource("database", nil)}, nil, Options{})

	state := p.Initialize(context.Background())

	assert.True(t, state.Failed)
	assert.Equal(t, NoticeFailed, state.Notice)
	assert.Nil(t, state.Snapshot)
	assert.Zero(t, p.Convert(100, "USD", "EUR"))
}

func TestEmptySnapshotIsSourceFailure(t *testing.T) {
	api := snapshot(map[string]float64{"USD": 1, "EUR": 0.9})

	empty := NewSource("database", func(context.Context) (*entities.RateSnapshot, error) {
		return &entities.RateSnapshot{Base: "USD", Rates: map[string]float64{}}, nil
	})
	nothing := NewSource("nil", func(context.Context) (*entities.RateSnapshot, error) {
		return nil, nil
	})

	p := New([]Source{empty, nothing, okSource("api", api, nil)}, nil, Options{})

	assert.Equal(t, "api", p.Refresh(context.Background()).Source)
}

func TestSourceTimeout(t *testing.T) {
	api := snapshot(map[string]float64{"USD": 1, "EUR": 0.9})

	hanging := NewSource("database", func(ctx context.Context) (*entities.RateSnapshot, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	p := New([]Source{hanging, okSource("api", api, nil)}, nil, Options{Timeout: 20 * time.Millisecond})

	assert.Equal(t, "api", p.Refresh(context.Background()).Source)
}

func TestInitializeShowsCacheFirst(t *testing.T) {
	cached := snapshot(map[string]float64{"USD": 1, "EUR": 0.95})
	fresh := snapshot(map[string]float64{"USD": 1, "EUR": 0.9})
	cache := &memoryCache{snap: cached}

	release := make(chan struct{})
	slow := NewSource("database", func(context.Context) (*entities.RateSnapshot, error) {
		<-release
		return fresh, nil
	})

	p := New([]Source{slow}, cache, Options{})
	updates := p.Subscribe()

	done := make(chan State)
	go func() { done <- p.Initialize(context.Background()) }()

	first := <-updates
	assert.Equal(t, SourceCache, first.Source)
	assert.Empty(t, first.Notice)
	assert.Same(t, cached, first.Snapshot)

	close(release)

	state := <-done
	assert.Equal(t, "database", state.Source)
	assert.Same(t, fresh, state.Snapshot)
}

func TestOlderRefreshIsDiscarded(t *testing.T) {
	older := snapshot(map[string]float64{"USD": 1, "EUR": 0.7})
	newer := snapshot(map[string]float64{"USD": 1, "EUR": 0.9})

	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	source := NewSource("database", func(context.Context) (*entities.RateSnapshot, error) {
		if calls.Add(1) == 1 {
			close(entered)
			<-release
			return older, nil
		}
		return newer, nil
	})

	cache := &memoryCache{}
	p := New([]Source{source}, cache, Options{})

	slowDone := make(chan State)
	go func() { slowDone <- p.Refresh(context.Background()) }()
	<-entered

	fast := p.Refresh(context.Background())
	require.Same(t, newer, fast.Snapshot)

	close(release)
	slow := <-slowDone

	assert.Same(t, newer, slow.Snapshot)
	assert.Same(t, newer, p.Current().Snapshot)
	assert.Same(t, newer, cache.stored())
	assert.Equal(t, 1, cache.saves)
}

func TestStartRefreshesOnTimer(t *testing.T) {
	var calls atomic.Int32
	db := snapshot(map[string]float64{"USD": 1, "EUR": 0.9})

	p := New([]Source{okSource("database", db, &calls)}, nil, Options{RefreshInterval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := p.Start(ctx)

	assert.Equal(t, "database", p.Current().Source)
	require.Eventually(t, func() bool { return calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh loop did not stop")
	}
}

func TestListenRefreshesOnUpdate(t *testing.T) {
	var calls atomic.Int32
	db := snapshot(map[string]float64{"USD": 1, "EUR": 0.9})

	p := New([]Source{okSource("database", db, &calls)}, nil, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan string)
	done := p.Listen(ctx, updates)

	updates <- "row-1"
	updates <- "row-2"

	require.Eventually(t, func() bool { return calls.Load() == 2 }, 2*time.Second, 5*time.Millisecond)

	close(updates)
	<-done
}

func TestDroppedRefreshLeavesCacheAlone(t *testing.T) {
	cached := snapshot(map[string]float64{"USD": 1, "EUR": 0.9})
	late := snapshot(map[string]float64{"USD": 1, "EUR": 0.5})

	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	source := NewSource("database", func(context.Context) (*entities.RateSnapshot, error) {
		if calls.Add(1) == 1 {
			close(entered)
			<-release
			return late, nil
		}
		return nil, errors.New("connection refused")
	})

	cache := &memoryCache{snap: cached}
	p := New([]Source{source}, cache, Options{})

	slowDone := make(chan State)
	go func() { slowDone <- p.Refresh(context.Background()) }()
	<-entered

	offline := p.Refresh(context.Background())
	require.Equal(t, SourceCache, offline.Source)

	close(release)
	<-slowDone

	cur := p.Current()
	assert.Equal(t, SourceCache, cur.Source)
	assert.Same(t, cached, cur.Snapshot)
	assert.Same(t, cached, cache.stored())
	assert.Zero(t, cache.saves)
}

func TestOlderRefreshLandsAfterNewerFailure(t *testing.T) {
	late := snapshot(map[string]float64{"USD": 1, "EUR": 0.5})

	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	source := NewSource("database", func(context.Context) (*entities.RateSnapshot, error) {
		if calls.Add(1) == 1 {
			close(entered)
			<-release
			return late, nil
		}
		return nil, errors.New("connection refused")
	})

	cache := &memoryCache{}
	p := New([]Source{source}, cache, Options{})

	slowDone := make(chan State)
	go func() { slowDone <- p.Refresh(context.Background()) }()
	<-entered

	failed := p.Refresh(context.Background())
	require.True(t, failed.Failed)

	close(release)
	state := <-slowDone

	assert.Equal(t, "database", state.Source)
	assert.False(t, state.Failed)
	assert.Same(t, late, p.Current().Snapshot)
	assert.Same(t, late, cache.stored())
}
