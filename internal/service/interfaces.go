package service

import (
	"context"

	"github.com/cypherlabdev/odds-gateway-service/internal/cache"
)

// Fetcher is an interface that abstracts the upstream provider client.
// ok=false means no data this cycle; it never carries an error.
type Fetcher interface {
	Fetch(ctx context.Context, kind, url string) ([]byte, bool)
}

// Cache is an interface that abstracts a freshness cache.
// This allows for easier testing and mocking
type Cache interface {
	GetOrFetch(ctx context.Context, key string, fetch cache.FetchFunc) ([]byte, error)
}

// Publisher mirrors freshly fetched snapshots onto a message bus
type Publisher interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

// URLBuilder builds upstream endpoint URLs
type URLBuilder interface {
	SportURL(typeID string) string
	EventURL(typeID, eventID string) string
}
