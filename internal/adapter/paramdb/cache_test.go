package paramdb

import (
	"context"
	"testing"
	"time"

	"github.com/couchcryptid/gribmeta/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingResolver struct {
	calls int
	info  pipeline.ParamInfo
}

func (m *countingResolver) Lookup(_ context.Context, _, _, _ int) (pipeline.ParamInfo, error) {
	m.calls++
	return m.info, nil
}

// --- CachedResolver tests ---

func TestCachedResolver_Hit(t *testing.T) {
	inner := &countingResolver{
		info: pipeline.ParamInfo{StandardName: "visibility_in_air", Units: "m"},
	}
	cached := NewCachedResolver(inner, time.Hour, testMetrics())

	r1, err := cached.Lookup(context.Background(), 0, 19, 0)
	require.NoError(t, err)
	assert.Equal(t, "visibility_in_air", r1.StandardName)

	r2, err := cached.Lookup(context.Background(), 0, 19, 0)
	require.NoError(t, err)
	assert.Equal(t, "visibility_in_air", r2.StandardName)

	assert.Equal(t, 1, inner.calls, "should only call inner once")
}

func TestCachedResolver_DifferentKeysMiss(t *testing.T) {
	inner := &countingResolver{
		info: pipeline.ParamInfo{StandardName: "x", Units: "1"},
	}
	cached := NewCachedResolver(inner, time.Hour, testMetrics())

	_, _ = cached.Lookup(context.Background(), 0, 19, 0)
	_, _ = cached.Lookup(context.Background(), 0, 19, 1)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedResolver_UnknownNotCached(t *testing.T) {
	inner := &countingResolver{}
	cached := NewCachedResolver(inner, time.Hour, testMetrics())

	_, _ = cached.Lookup(context.Background(), 9, 99, 99)
	_, _ = cached.Lookup(context.Background(), 9, 99, 99)

	assert.Equal(t, 2, inner.calls, "registry misses should be retried")
}

func TestCachedResolver_TTLExpiry(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2024, time.April, 26, 15, 0, 0, 0, time.UTC))
	inner := &countingResolver{
		info: pipeline.ParamInfo{StandardName: "visibility_in_air", Units: "m"},
	}
	cached := NewCachedResolver(inner, time.Hour, testMetrics()).WithClock(fakeClock)

	_, err := cached.Lookup(context.Background(), 0, 19, 0)
	require.NoError(t, err)

	fakeClock.Advance(30 * time.Minute)
	_, err = cached.Lookup(context.Background(), 0, 19, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls, "entry should still be fresh")

	fakeClock.Advance(31 * time.Minute)
	_, err = cached.Lookup(context.Background(), 0, 19, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls, "expired entry should be refetched")
}
