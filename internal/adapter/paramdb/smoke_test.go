//go:build paramdb

package paramdb

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/gribmeta/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit a real parameter registry and require a REGISTRY_URL env var.
// Run with: go test -tags=paramdb ./internal/adapter/paramdb/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	baseURL := os.Getenv("REGISTRY_URL")
	if baseURL == "" {
		t.Fatal("REGISTRY_URL must be set to run smoke tests")
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSmoke_Lookup(t *testing.T) {
	c := smokeClient(t)

	info, err := c.Lookup(context.Background(), 0, 0, 0)
	require.NoError(t, err)

	assert.Equal(t, "air_temperature", info.StandardName)
	assert.Equal(t, "K", info.Units)
}

func TestSmoke_Lookup_Unknown(t *testing.T) {
	c := smokeClient(t)

	// A registry should answer unknown triples with 404, not an error.
	info, err := c.Lookup(context.Background(), 191, 191, 191)
	require.NoError(t, err)
	assert.Empty(t, info.StandardName)
}

func TestSmoke_CachedResolver(t *testing.T) {
	c := smokeClient(t)
	cached := NewCachedResolver(c, time.Hour, observability.NewMetricsForTesting())

	// First call: cache miss, real registry call.
	r1, err := cached.Lookup(context.Background(), 0, 0, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, r1.StandardName)

	// Second call: cache hit, no registry call.
	r2, err := cached.Lookup(context.Background(), 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}
