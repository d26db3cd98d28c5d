package config

import (
	"context"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns nil clients when REDIS_ADDRESS is not configured.
func ConnectRedis(ctx context.Context, cfg *Config) (*redis.Client, *redislock.Client, error) {
	if cfg.RedisAddress == "" {
		return nil, nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		PoolSize: 20,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("connect to redis %s: %w", cfg.RedisAddress, err)
	}

	return rdb, redislock.New(rdb), nil
}
