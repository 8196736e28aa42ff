package feed

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	p := strings.TrimSpace(prefix)
	if p == "" {
		p = "codeswap:cache:"
	}
	return &RedisCache{client: client, prefix: p}
}

func (c *RedisCache) keyBase() string {
	return c.prefix + "feed:base"
}

func (c *RedisCache) GetBase(ctx context.Context) (*View, bool, error) {
	val, err := c.client.Get(ctx, c.keyBase()).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}

	var v View
	if err := json.Unmarshal([]byte(val), &v); err != nil {
		return nil, false, err
	}
	return &v, true, nil
}

func (c *RedisCache) SetBase(ctx context.Context, view *View, ttl time.Duration) error {
	payload, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.keyBase(), payload, ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.keyBase()).Err()
}
