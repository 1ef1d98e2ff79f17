package db

import (
	"context"
	"fmt"

	"github.com/apex/log"
	"github.com/redis/go-redis/v9"
)

// ConnectRedis opens and pings the shared Redis used for cross-instance rate limiting.
func ConnectRedis(ctx context.Context, addr, password string, database int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       database,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("could not connect to redis at %s: %w", addr, err)
	}
	log.WithField("addr", addr).Info("connected to redis")
	return rdb, nil
}
