package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ClientName tags kakeibo connections in CLIENT LIST.
const ClientName = "kakeibo"

// NewClient connects to the Redis instance behind redisURL, which backs the
// summary cache and idempotency keys, and pings it once.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := clientOptions(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}

	return client, nil
}

func clientOptions(redisURL string) (*redis.Options, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opts.ClientName == "" {
		opts.ClientName = ClientName
	}
	return opts, nil
}
