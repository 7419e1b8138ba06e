// Package session keeps the list of revoked access tokens.
package session

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"localMarketplace/internal/config"
)

const revokedPrefix = "revoked:"

type Store interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	Close() error
}

// redisClient is the part of *redis.Client the store uses.
type redisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

type RedisStore struct {
	client redisClient
}

// NewRedisStore connects to Redis and checks the connection with a PING.
func NewRedisStore(ctx context.Context, cfg config.Redis) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("не удалось подключиться к Redis: %w", err)
	}

	log.Printf("Успешное подключение к Redis: %s:%s", cfg.Host, cfg.Port)

	return &RedisStore{client: rdb}, nil
}

func newStore(client redisClient) *RedisStore {
	return &RedisStore{client: client}
}

// Revoke marks the token as revoked until it would have expired anyway.
func (s *RedisStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" || ttl <= 0 {
		return nil
	}

	if err := s.client.Set(ctx, revokedPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("ошибка при отзыве токена: %w", err)
	}

	return nil
}

func (s *RedisStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}

	count, err := s.client.Exists(ctx, revokedPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("ошибка при проверке токена: %w", err)
	}

	return count > 0, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
