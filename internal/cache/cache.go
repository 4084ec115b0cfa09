// Package cache — Redis-кэш соответствия «ключ токена -> ID пользователя».
// Снимает с хранилища join auth_tokens/users на каждый аутентифицированный запрос.
package cache

//go:generate mockgen -source=cache.go -destination=../../mocks/cache.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TokenCache — минимальный контракт кэша токенов.
type TokenCache interface {
	// Get возвращает ID владельца и признак наличия ключа в кэше.
	Get(ctx context.Context, key string) (uuid.UUID, bool, error)
	// Set сохраняет владельца токена с TTL.
	Set(ctx context.Context, key string, userID uuid.UUID, ttl time.Duration) error
	// Close закрывает клиент Redis.
	Close() error
}

type redisCache struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisCache создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "users:tok:".
func NewRedisCache(ctx context.Context, redisURL, prefix string) (TokenCache, error) {
	if prefix == "" {
		prefix = "users:tok:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("cache: parse url: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: ping: %w", err)
	}

	return &redisCache{rdb: rdb, prefix: prefix}, nil
}

func (c *redisCache) key(token string) string { return c.prefix + token }

func (c *redisCache) Get(ctx context.Context, token string) (uuid.UUID, bool, error) {
	v, err := c.rdb.Get(ctx, c.key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, false, nil
		}

		return uuid.Nil, false, err
	}

	uid, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, false, err
	}

	return uid, true, nil
}

func (c *redisCache) Set(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	return c.rdb.Set(ctx, c.key(token), userID.String(), ttl).Err()
}

func (c *redisCache) Close() error { return c.rdb.Close() }
