package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisContextStore keeps the study context in Redis so several clients
// pointed at the same instance share it.
type RedisContextStore struct {
	client *redis.Client
	key    string
}

// NewRedisContextStore wraps client. prefix namespaces the key and may be empty.
func NewRedisContextStore(client *redis.Client, prefix string) *RedisContextStore {
	return &RedisContextStore{client: client, key: prefix + "simtai:" + contextKey}
}

// OpenRedisContextStore parses a redis:// URL and verifies the server answers.
func OpenRedisContextStore(ctx context.Context, url string) (*RedisContextStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisContextStore(client, ""), nil
}

func (s *RedisContextStore) GetContext(ctx context.Context) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read context: %w", err)
	}
	return v, true, nil
}

func (s *RedisContextStore) SetContext(ctx context.Context, content string) error {
	if err := s.client.Set(ctx, s.key, content, 0).Err(); err != nil {
		return fmt.Errorf("save context: %w", err)
	}
	return nil
}

func (s *RedisContextStore) ClearContext(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clear context: %w", err)
	}
	return nil
}

// Close releases the client connection.
func (s *RedisContextStore) Close() error {
	return s.client.Close()
}
