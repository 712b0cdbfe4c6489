package sitesettings

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	calls    int
	err      error
	settings Settings
}

func (f *fakeGateway) Fetch(ctx context.Context) (Settings, error) {
	f.calls++
	if f.err != nil {
		return Settings{}, f.err
	}
	return f.settings, nil
}

func newTestCache(gw Gateway, ttl time.Duration) (*Cache, *time.Time) {
	cache := NewCache(gw, ttl, slog.New(slog.NewTextHandler(io.Discard, nil)))
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	return cache, &now
}

func TestGetCachesWithinTTL(t *testing.T) {
	gw := &fakeGateway{settings: Settings{ClinicName: "HealthyPhysio", MinimumSessionFee: 300}}
	cache, now := newTestCache(gw, 5*time.Minute)
	ctx := context.Background()

	first, err := cache.Get(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "HealthyPhysio", first.ClinicName)

	*now = now.Add(4 * time.Minute)
	_, err = cache.Get(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, gw.calls, "a fresh cache must not refetch")
}

func TestGetRefetchesAfterTTL(t *testing.T) {
	gw := &fakeGateway{settings: Settings{MinimumSessionFee: 300}}
	cache, now := newTestCache(gw, 5*time.Minute)
	ctx := context.Background()

	_, err := cache.Get(ctx, false)
	require.NoError(t, err)

	*now = now.Add(6 * time.Minute)
	gw.settings.MinimumSessionFee = 500

	settings, err := cache.Get(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, gw.calls)
	assert.Equal(t, 500.0, settings.MinimumSessionFee)
}

func TestForceRefreshBypassesCache(t *testing.T) {
	gw := &fakeGateway{}
	cache, _ := newTestCache(gw, 5*time.Minute)
	ctx := context.Background()

	_, err := cache.Get(ctx, false)
	require.NoError(t, err)
	_, err = cache.Get(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, gw.calls)
}

func TestStaleServeOnRefreshFailure(t *testing.T) {
	gw := &fakeGateway{settings: Settings{ClinicName: "HealthyPhysio"}}
	cache, now := newTestCache(gw, 5*time.Minute)
	ctx := context.Background()

	_, err := cache.Get(ctx, false)
	require.NoError(t, err)

	*now = now.Add(10 * time.Minute)
	gw.err = errors.New("connection refused")

	settings, err := cache.Get(ctx, false)
	require.NoError(t, err, "a stale copy beats an error while one exists")
	assert.Equal(t, "HealthyPhysio", settings.ClinicName)
}

func TestFirstFetchFailureSurfaces(t *testing.T) {
	gw := &fakeGateway{err: errors.New("connection refused")}
	cache, _ := newTestCache(gw, 5*time.Minute)

	_, err := cache.Get(context.Background(), false)
	assert.Error(t, err, "no previous value exists to fall back on")
}

func TestMinimumSessionFee(t *testing.T) {
	gw := &fakeGateway{settings: Settings{MinimumSessionFee: 300}}
	cache, _ := newTestCache(gw, time.Minute)

	fee, err := cache.MinimumSessionFee(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 300.0, fee)
}
