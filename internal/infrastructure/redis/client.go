package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ricknaldos/buzentry-main-sub001/internal/config"
)

// NewClient connects to Redis using the configured URL and verifies the
// connection with a ping.
func NewClient(cfg *config.Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}
