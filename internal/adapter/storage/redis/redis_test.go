package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/langowen/converter/internal/entities"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) (*miniredis.Miniredis, *Storage) {
	t.Helper()

	mr := miniredis.RunT(t)

	s, err := InitStorage(context.Background(), &redis.Options{Addr: mr.Addr()}, time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return mr, s
}

func TestLatestEmpty(t *testing.T) {
	_, s := newTestStorage(t)

	_, err := s.Latest(context.Background())
	assert.ErrorIs(t, err, entities.ErrNoData)
}

func TestSetLatest(t *testing.T) {
	mr, s := newTestStorage(t)
	ctx := context.Background()

	ts := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	snap, err := entities.NewSnapshot("USD", map[string]float64{"USD": 1, "EUR": 0.9}, ts)
	require.NoError(t, err)
	snap.ID = "row-1"

	require.NoError(t, s.SetLatest(ctx, snap))
	assert.Equal(t, time.Hour, mr.TTL(latestKey))

	got, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "row-1", got.ID)
	assert.Equal(t, "USD", got.Base)
	assert.Equal(t, snap.Rates, got.Rates)
	assert.True(t, ts.Equal(got.Timestamp))
}

func TestUpdates(t *testing.T) {
	_, s := newTestStorage(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := s.Updates(ctx)
	require.NoError(t, err)

	require.NoError(t, s.PublishUpdated(context.Background(), "row-2"))

	select {
	case id := <-updates:
		assert.Equal(t, "row-2", id)
	case <-time.After(2 * time.Second):
		t.Fatal("update not delivered")
	}

	cancel()

	require.Eventually(t, func() bool {
		_, ok := <-updates
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestInitStorageUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := InitStorage(context.Background(), &redis.Options{Addr: addr}, time.Hour)
	assert.Error(t, err)
}
