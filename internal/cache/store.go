package cache

import (
	"context"
	"time"
)

// Entry is a cached payload and the time the fetch that produced it started
type Entry struct {
	Payload   []byte
	FetchedAt time.Time
}

// Store is a keyed entry store shared by every freshness cache.
// Put must only write when entry.FetchedAt is strictly newer than the stored entry,
// and reports whether it wrote.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Put(ctx context.Context, key string, entry Entry, ttl time.Duration) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}
