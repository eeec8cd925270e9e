package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/classroom-insight-api/internal/models"
)

// RedisCollectionStore reads collections that a sync job publishes into Redis as JSON arrays
// under `<prefix>:<collection>`.
type RedisCollectionStore struct {
	client *redis.Client
	prefix string
}

// NewRedisCollectionStore constructs a RedisCollectionStore.
func NewRedisCollectionStore(client *redis.Client, prefix string) *RedisCollectionStore {
	if prefix == "" {
		prefix = "sheet"
	}
	return &RedisCollectionStore{client: client, prefix: prefix}
}

// Key returns the Redis key holding a collection.
func (s *RedisCollectionStore) Key(collection models.Collection) string {
	return fmt.Sprintf("%s:%s", s.prefix, collection)
}

// Fetch reads one collection. A missing key is an unsuccessful result, not an error.
func (s *RedisCollectionStore) Fetch(ctx context.Context, collection models.Collection, _ models.FetchParams) (*models.FetchResult, error) {
	if s.client == nil {
		return nil, fmt.Errorf("redis client not configured")
	}
	key := s.Key(collection)
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &models.FetchResult{Success: false, Error: fmt.Sprintf("%s has not been published", key)}, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	rows, err := decodeRowArray(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &models.FetchResult{Success: true, Rows: rows}, nil
}

// Close releases the underlying Redis connection if present.
func (s *RedisCollectionStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
