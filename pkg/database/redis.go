package database

import (
	"context"
	"fmt"

	"survey_insight_go/pkg/log"

	"github.com/go-redis/redis/v8"
)

// NewRedis 连接 Redis 并 Ping 一次确认可用。
func NewRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}

	log.Info("Redis client connected successfully")
	return client, nil
}
