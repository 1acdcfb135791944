package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// NewClient creates a Redis client from a redis:// URL and verifies it responds.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Verify connection
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// Checker reports Redis readiness for the /ready endpoint.
type Checker struct {
	client redis.UniversalClient
}

// NewChecker creates a Checker for client.
func NewChecker(client redis.UniversalClient) *Checker {
	return &Checker{client: client}
}

// Name identifies the dependency in readiness output.
func (c *Checker) Name() string { return "redis" }

// Check pings Redis.
func (c *Checker) Check(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
