package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// putScript writes payload and fetched_at only when fetched_at (unix micros) is newer
// than the stored value, then refreshes the key TTL.
var putScript = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'fetched_at')
if current and tonumber(current) >= tonumber(ARGV[2]) then
  return 0
end
redis.call('HSET', KEYS[1], 'payload', ARGV[1], 'fetched_at', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

// RedisStore keeps entries in Redis so several gateway replicas share one cache
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	logger    zerolog.Logger
}

// RedisStoreConfig holds Redis store configuration
type RedisStoreConfig struct {
	Addr      string // e.g., "localhost:6379"
	Password  string
	DB        int
	KeyPrefix string // e.g., "odds-gateway"
}

// NewRedisStore creates a new Redis-backed store
func NewRedisStore(config RedisStoreConfig, logger zerolog.Logger) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	return &RedisStore{
		client:    client,
		keyPrefix: config.KeyPrefix,
		logger:    logger.With().Str("component", "redis_store").Logger(),
	}
}

// Get retrieves the entry under key
func (s *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	fields, err := s.client.HGetAll(ctx, s.redisKey(key)).Result()
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to get from Redis: %w", err)
	}

	payload, hasPayload := fields["payload"]
	fetchedAt, hasFetchedAt := fields["fetched_at"]
	if !hasPayload || !hasFetchedAt {
		return Entry{}, false, nil
	}

	micros, err := strconv.ParseInt(fetchedAt, 10, 64)
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to parse fetched_at %q: %w", fetchedAt, err)
	}

	return Entry{
		Payload:   []byte(payload),
		FetchedAt: time.UnixMicro(micros),
	}, true, nil
}

// Put writes the entry under key unless a newer one is already stored
func (s *RedisStore) Put(ctx context.Context, key string, entry Entry, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Hour
	}

	written, err := putScript.Run(ctx, s.client,
		[]string{s.redisKey(key)},
		entry.Payload,
		entry.FetchedAt.UnixMicro(),
		ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to set in Redis: %w", err)
	}

	s.logger.Debug().
		Str("key", key).
		Bool("written", written == 1).
		Dur("ttl", ttl).
		Msg("stored cache entry")

	return written == 1, nil
}

// Ping checks Redis connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) redisKey(key string) string {
	if s.keyPrefix == "" {
		return "cache:" + key
	}
	return s.keyPrefix + ":cache:" + key
}
