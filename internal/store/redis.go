// Package store holds the optional Redis connection shared by the rate
// limiter and the health check.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoAddr is returned when Redis is selected without an address.
var ErrNoAddr = errors.New("store: redis address is empty")

// Redis is the dashboard's connection pool to the shared limiter store.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds a pool with short timeouts. Connecting is lazy; use Ping
// to find out whether the server answers.
func NewRedis(addr string) (*Redis, error) {
	if addr == "" {
		return nil, ErrNoAddr
	}
	return &Redis{Client: redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolSize:     10,
	})}, nil
}

// Ping round-trips to the server.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return ErrNoAddr
	}
	return r.Client.Ping(ctx).Err()
}

// Healthy reports whether Ping succeeds.
func (r *Redis) Healthy(ctx context.Context) bool {
	return r.Ping(ctx) == nil
}

// Close releases the pool. Closing a nil Redis is a no-op.
func (r *Redis) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
