package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/yeremiapane/franchise-menu-sync/utils"
)

// AppendLocker serializes version appends for one master menu across processes.
type AppendLocker interface {
	Obtain(ctx context.Context, masterMenuID uint) (release func(), err error)
}

// RedisAppendLocker is an AppendLocker backed by redislock.
type RedisAppendLocker struct {
	client *redislock.Client
	ttl    time.Duration
	wait   time.Duration
}

func NewRedisAppendLocker(client *redislock.Client, wait time.Duration) *RedisAppendLocker {
	return &RedisAppendLocker{
		client: client,
		ttl:    30 * time.Second,
		wait:   wait,
	}
}

func (l *RedisAppendLocker) Obtain(ctx context.Context, masterMenuID uint) (func(), error) {
	lockKey := fmt.Sprintf("menu-version-append:%d", masterMenuID)

	obtainCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	lock, err := l.client.Obtain(obtainCtx, lockKey, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(25 * time.Millisecond),
	})
	if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %s", ErrLockContention, lockKey)
	} else if err != nil {
		utils.LogError("services", "RedisAppendLocker.Obtain", "Error obtaining append lock", lockKey, err)
		return nil, err
	}

	return func() {
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			utils.LogError("services", "RedisAppendLocker.Obtain", "Error releasing append lock", lockKey, err)
		}
	}, nil
}
