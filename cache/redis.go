package cache

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the hash key used when none is configured.
const DefaultRedisKey = "epubtl:cache"

// RedisStore keeps translations in a single Redis hash: one field per
// source text.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// RedisConfig holds configuration for the Redis store.
type RedisConfig struct {
	URL string // Redis connection URL (e.g., "redis://localhost:6379")
	Key string // Hash key (default: "epubtl:cache")
	TTL int    // TTL in seconds refreshed on every save (0 = no expiration)
}

// writeCheckField is written and removed again by CheckWritable. It never
// holds a translation.
const writeCheckField = "\x00epubtl:write-check"

// NewRedisStore connects to Redis and verifies that the hash can be written.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	s := NewRedisStoreFromClient(client, cfg.Key, cfg.TTL)
	if err := s.CheckWritable(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return s, nil
}

// NewRedisStoreFromClient creates a RedisStore from an existing Redis client.
func NewRedisStoreFromClient(client *redis.Client, key string, ttlSeconds int) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}

	ttl := time.Duration(ttlSeconds) * time.Second
	if ttlSeconds <= 0 {
		ttl = 0
	}

	return &RedisStore{
		client: client,
		key:    key,
		ttl:    ttl,
	}
}

// Load reads the whole hash. A missing key is an empty cache.
func (s *RedisStore) Load(ctx context.Context) (map[string]string, error) {
	entries, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = make(map[string]string)
	}
	delete(entries, writeCheckField)
	return entries, nil
}

// CheckWritable sets and deletes a marker field in the hash. Read-only
// replicas and users without write permission fail here.
func (s *RedisStore) CheckWritable(ctx context.Context) error {
	if err := s.client.HSet(ctx, s.key, writeCheckField, "").Err(); err != nil {
		return fmt.Errorf("redis key %s is not writable: %w", s.key, err)
	}
	return s.client.HDel(ctx, s.key, writeCheckField).Err()
}

// Save writes every entry to the hash. Fields are written in sorted order.
func (s *RedisStore) Save(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]interface{}, 0, 2*len(keys))
	for _, k := range keys {
		args = append(args, k, entries[k])
	}

	if err := s.client.HSet(ctx, s.key, args...).Err(); err != nil {
		return err
	}
	if s.ttl > 0 {
		return s.client.Expire(ctx, s.key, s.ttl).Err()
	}
	return nil
}

// Key returns the hash key.
func (s *RedisStore) Key() string {
	return s.key
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping tests the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Verify RedisStore implements Store
var _ Store = (*RedisStore)(nil)
