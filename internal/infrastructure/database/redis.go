package database

import (
	"context"

	"github.com/redis/go-redis/v9"
)

type RedisClient struct{ *redis.Client }

// NewRedis returns nil when addr is empty; callers treat a nil client as "Redis features off"
func NewRedis(addr, pass string, db int) *RedisClient {
	if addr == "" {
		return nil
	}
	return &RedisClient{redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

func (c *RedisClient) Ping(ctx context.Context) error { return c.Client.Ping(ctx).Err() }
