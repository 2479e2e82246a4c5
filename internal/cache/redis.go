package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisURL = "redis://localhost:6379/0"
	redisKeyPrefix  = "optibridge:image:"
	scanBatchSize   = 100
)

// RedisStore keeps cached images in Redis so several API replicas can share
// handles. A zero TTL stores entries without expiry.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to url and verifies the connection.
func NewRedisStore(url string, ttl time.Duration) (*RedisStore, error) {
	if url == "" {
		url = defaultRedisURL
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Put stores data under a new handle.
func (s *RedisStore) Put(ctx context.Context, data []byte) (Handle, error) {
	h := uuid.NewString()
	if err := s.client.Set(ctx, redisKey(h), data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("redis set failed: %w", err)
	}
	return h, nil
}

// Get returns the bytes stored under h.
func (s *RedisStore) Get(ctx context.Context, h Handle) ([]byte, error) {
	data, err := s.client.Get(ctx, redisKey(h)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

// Delete removes h.
func (s *RedisStore) Delete(ctx context.Context, h Handle) error {
	if err := s.client.Del(ctx, redisKey(h)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// Len counts cached images by scanning the key prefix.
func (s *RedisStore) Len(ctx context.Context) (int, error) {
	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, redisKeyPrefix+"*", scanBatchSize).Result()
		if err != nil {
			return 0, fmt.Errorf("redis scan failed: %w", err)
		}
		total += len(keys)
		cursor = next
		if cursor == 0 {
			return total, nil
		}
	}
}

func redisKey(h Handle) string {
	return redisKeyPrefix + h
}

var _ Store = (*RedisStore)(nil)
