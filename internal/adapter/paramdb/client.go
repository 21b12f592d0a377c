// Package paramdb resolves GRIB2 parameter identities that are absent from
// the engine's static tables against an HTTP parameter registry.
package paramdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/gribmeta/internal/observability"
	"github.com/couchcryptid/gribmeta/internal/pipeline"
)

// Client implements pipeline.ParamResolver against a parameter registry.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a registry client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// Lookup fetches the identity for a discipline/category/number triple. A
// registry miss returns a zero ParamInfo with no error so callers can fall
// back to the untranslated form.
func (c *Client) Lookup(ctx context.Context, discipline, category, number int) (pipeline.ParamInfo, error) {
	u := fmt.Sprintf("%s/params/%d/%d/%d", c.baseURL, discipline, category, number)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return pipeline.ParamInfo{}, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RegistryRequests.WithLabelValues("error").Inc()
		return pipeline.ParamInfo{}, fmt.Errorf("registry request: %w", err)
	}
	defer resp.Body.Close()
	c.metrics.RegistryAPIDuration.Observe(time.Since(start).Seconds())

	if resp.StatusCode == http.StatusNotFound {
		c.metrics.RegistryRequests.WithLabelValues("empty").Inc()
		return pipeline.ParamInfo{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		c.metrics.RegistryRequests.WithLabelValues("error").Inc()
		body, _ := io.ReadAll(resp.Body)
		return pipeline.ParamInfo{}, fmt.Errorf("registry error: status %d: %s", resp.StatusCode, body)
	}

	var info pipeline.ParamInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		c.metrics.RegistryRequests.WithLabelValues("error").Inc()
		return pipeline.ParamInfo{}, fmt.Errorf("decode response: %w", err)
	}

	c.metrics.RegistryRequests.WithLabelValues("success").Inc()
	return info, nil
}
