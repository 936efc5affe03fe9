package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vlasenko/contacts_api/internal/models"
)

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(ctx context.Context, addr string, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connect: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

func (r *RedisCache) Get(ctx context.Context, email string) (*models.User, error) {
	data, err := r.client.Get(ctx, key(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	user, err := decodeUser(data)
	if err != nil {
		return nil, fmt.Errorf("redis decode: %w", err)
	}
	return user, nil
}

func (r *RedisCache) Put(ctx context.Context, email string, user *models.User) error {
	data, err := encodeUser(user)
	if err != nil {
		return fmt.Errorf("redis encode: %w", err)
	}
	if err := r.client.Set(ctx, key(email), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisCache) Invalidate(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, key(email)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
