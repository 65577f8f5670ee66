package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore reads the phone number from a Redis string key.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore builds a store reading Key(namespace).
func NewRedisStore(client *redis.Client, namespace string) *RedisStore {
	return &RedisStore{client: client, key: Key(namespace)}
}

// PhoneNumber returns ErrNotFound when the key is missing or blank.
func (s *RedisStore) PhoneNumber(ctx context.Context) (string, error) {
	value, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", s.key, err)
	}
	return normalize(value)
}

// SavePhoneNumber writes the number without expiry.
func (s *RedisStore) SavePhoneNumber(ctx context.Context, phone string) error {
	phone, err := validateWrite(phone)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, phone, 0).Err(); err != nil {
		return fmt.Errorf("write %s: %w", s.key, err)
	}
	return nil
}
