package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/slot-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/slot-scheduler/internal/httperr"
)

type countingSource struct {
	cfg   availability.ProviderConfig
	err   error
	calls int
}

func (s *countingSource) ProviderConfig(ctx context.Context, providerID uint) (availability.ProviderConfig, error) {
	s.calls++
	if s.err != nil {
		return availability.ProviderConfig{}, s.err
	}
	out := s.cfg
	out.ProviderID = providerID
	return out, nil
}

func newCache(t *testing.T, src *countingSource) (*ProviderConfigCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewProviderConfigCache(client, src, time.Minute, nil), mr
}

func TestReadThrough(t *testing.T) {
	src := &countingSource{cfg: availability.ProviderConfig{
		Timezone:        "UTC",
		IntervalMinutes: 30,
		Weekly:          []availability.DayHours{{Weekday: 1, Open: "09:00", Close: "17:00"}},
	}}
	c, mr := newCache(t, src)
	ctx := context.Background()

	first, err := c.ProviderConfig(ctx, 4)
	require.NoError(t, err)
	second, err := c.ProviderConfig(ctx, 4)
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists("scheduling:provider-config:4"))
	assert.Equal(t, time.Minute, mr.TTL("scheduling:provider-config:4"))
}

func TestInvalidateForcesReload(t *testing.T) {
	src := &countingSource{cfg: availability.ProviderConfig{Timezone: "UTC", IntervalMinutes: 30}}
	c, mr := newCache(t, src)
	ctx := context.Background()

	_, err := c.ProviderConfig(ctx, 4)
	require.NoError(t, err)

	src.cfg.IntervalMinutes = 15
	require.NoError(t, c.Invalidate(ctx, 4))
	assert.False(t, mr.Exists("scheduling:provider-config:4"))

	got, err := c.ProviderConfig(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 15, got.IntervalMinutes)
	assert.Equal(t, 2, src.calls)
}

func TestSourceErrorIsNotCached(t *testing.T) {
	src := &countingSource{err: httperr.NotFound("provider_not_found")}
	c, mr := newCache(t, src)

	_, err := c.ProviderConfig(context.Background(), 9)
	assert.True(t, httperr.IsKind(err, httperr.KindNotFound))
	assert.False(t, mr.Exists("scheduling:provider-config:9"))
}

func TestRedisDownFallsThrough(t *testing.T) {
	src := &countingSource{cfg: availability.ProviderConfig{Timezone: "UTC", IntervalMinutes: 30}}
	c, mr := newCache(t, src)
	mr.Close()

	got, err := c.ProviderConfig(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, uint(2), got.ProviderID)

	assert.Error(t, c.Invalidate(context.Background(), 2))
}
