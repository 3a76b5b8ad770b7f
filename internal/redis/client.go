package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options configures the shared Redis client. PoolSize zero keeps 10.
type Options struct {
	Addr     string
	Username string
	Password string
	PoolSize int
}

// NewRedisClient returns a client that has answered PING, so callers can rely
// on the lock, marker and stream commands working from the first call.
func NewRedisClient(ctx context.Context, opts Options) (*redis.Client, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	poolSize := opts.PoolSize
	if poolSize <= 0 {
		poolSize = 10
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Username:     opts.Username,
		Password:     opts.Password,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     poolSize,
		MinIdleConns: 1,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}

	return rdb, nil
}
