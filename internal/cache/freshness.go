package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/cypherlabdev/odds-gateway-service/internal/metrics"
)

// ErrFetchFailed is returned when the cache is stale and the refresh fetch failed
var ErrFetchFailed = errors.New("fetch failed")

// FetchFunc produces a fresh payload for a cache miss
type FetchFunc func(ctx context.Context) ([]byte, error)

// FreshnessCache serves payloads younger than its window and refreshes lazily on demand.
// Concurrent misses for one key share a single fetch.
type FreshnessCache struct {
	name         string
	window       time.Duration
	fetchTimeout time.Duration
	store   Store
	group   singleflight.Group
	now     func() time.Time
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// FreshnessConfig holds freshness cache configuration
type FreshnessConfig struct {
	Name   string        // e.g., "sport", also the key namespace
	Window       time.Duration // e.g., 5 * time.Minute
	FetchTimeout time.Duration // bound on one shared fetch, 10s when zero
}

// NewFreshnessCache creates a cache over store
func NewFreshnessCache(config FreshnessConfig, store Store, m *metrics.Metrics, logger zerolog.Logger) *FreshnessCache {
	fetchTimeout := config.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = 10 * time.Second
	}

	return &FreshnessCache{
		name:         config.Name,
		window:       config.Window,
		fetchTimeout: fetchTimeout,
		store:        store,
		now:          time.Now,
		metrics:      m,
		logger:       logger.With().Str("component", "freshness_cache").Str("cache", config.Name).Logger(),
	}
}

// Window returns the freshness window
func (c *FreshnessCache) Window() time.Duration {
	return c.window
}

// GetOrFetch returns the cached payload for key if fresh, otherwise calls fetch and stores the result.
// On fetch failure the stale entry is neither served nor evicted.
func (c *FreshnessCache) GetOrFetch(ctx context.Context, key string, fetch FetchFunc) ([]byte, error) {
	if payload, ok := c.fresh(ctx, key); ok {
		c.metrics.CacheLookups.WithLabelValues(c.name, metrics.CacheHit).Inc()
		return payload, nil
	}
	c.metrics.CacheLookups.WithLabelValues(c.name, metrics.CacheMiss).Inc()

	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		// The flight is shared, so one caller going away must not fail the others
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()

		// A flight that just finished may have refreshed the entry
		if payload, ok := c.fresh(ctx, key); ok {
			return payload, nil
		}

		started := c.now()
		payload, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		written, err := c.store.Put(ctx, c.storeKey(key), Entry{Payload: payload, FetchedAt: started}, 2*c.window)
		if err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("failed to store cache entry")
		} else if !written {
			c.logger.Debug().Str("key", key).Msg("newer entry already cached, keeping it")
		}

		return payload, nil
	})
	if err != nil {
		c.metrics.CacheLookups.WithLabelValues(c.name, metrics.CacheError).Inc()
		return nil, fmt.Errorf("%w for %s:%s: %w", ErrFetchFailed, c.name, key, err)
	}

	if shared {
		c.logger.Debug().Str("key", key).Msg("shared in-flight fetch")
	}

	return v.([]byte), nil
}

// fresh returns the stored payload if it is inside the window. Store errors count as a miss.
func (c *FreshnessCache) fresh(ctx context.Context, key string) ([]byte, bool) {
	entry, ok, err := c.store.Get(ctx, c.storeKey(key))
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed, treating as miss")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.FetchedAt) >= c.window {
		return nil, false
	}
	return entry.Payload, true
}

func (c *FreshnessCache) storeKey(key string) string {
	return c.name + ":" + key
}
