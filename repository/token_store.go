package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisTokenStore struct {
	client *redis.Client
}

func NewTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func refreshTokenKey(userID string) string {
	return "refresh_token:" + userID
}

func (s *RedisTokenStore) SaveRefreshToken(ctx context.Context, userID, token string, ttl time.Duration) error {
	return s.client.Set(ctx, refreshTokenKey(userID), token, ttl).Err()
}

// GetRefreshToken returns ErrNotFound when no token is stored for userID.
func (s *RedisTokenStore) GetRefreshToken(ctx context.Context, userID string) (string, error) {
	token, err := s.client.Get(ctx, refreshTokenKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return token, err
}

func (s *RedisTokenStore) DeleteRefreshToken(ctx context.Context, userID string) error {
	return s.client.Del(ctx, refreshTokenKey(userID)).Err()
}
