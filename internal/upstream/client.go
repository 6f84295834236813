package upstream

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/odds-gateway-service/internal/metrics"
)

// maxBodySize caps how much of an upstream response is read
const maxBodySize = 32 << 20

// Client fetches raw payloads from the odds provider
type Client struct {
	httpClient   *http.Client
	headers      map[string]string
	apiKey       string
	apiKeyHeader string
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

// ClientConfig holds upstream client configuration
type ClientConfig struct {
	Headers      map[string]string // sent with every request
	APIKey       string
	APIKeyHeader string        // e.g., "X-Api-Key"
	Timeout      time.Duration // e.g., 5 * time.Second
}

// NewClient creates a new upstream client
func NewClient(config ClientConfig, m *metrics.Metrics, logger zerolog.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers:      config.Headers,
		apiKey:       config.APIKey,
		apiKeyHeader: config.APIKeyHeader,
		metrics:      m,
		logger:       logger.With().Str("component", "upstream_client").Logger(),
	}
}

// Fetch issues a GET for url and returns the body.
// Any failure is logged and reported as ok=false; the caller retries on its next cycle.
func (c *Client) Fetch(ctx context.Context, kind, url string) ([]byte, bool) {
	start := time.Now()
	body, outcome := c.do(ctx, url)

	c.metrics.UpstreamRequests.WithLabelValues(kind, outcome).Inc()
	c.metrics.UpstreamLatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	return body, outcome == "ok"
}

func (c *Client) do(ctx context.Context, url string) ([]byte, string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Error().Err(err).Str("url", url).Msg("failed to create upstream request")
		return nil, "error"
	}

	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if c.apiKey != "" && c.apiKeyHeader != "" {
		req.Header.Set(c.apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", url).Msg("upstream request failed")
		return nil, "error"
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("url", url).
			Str("body", string(snippet)).
			Msg("upstream returned non-2xx status")
		return nil, "bad_status"
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		c.logger.Warn().Err(err).Str("url", url).Msg("failed to read upstream response")
		return nil, "error"
	}

	c.logger.Debug().
		Str("url", url).
		Int("bytes", len(body)).
		Msg("fetched upstream payload")

	return body, "ok"
}
