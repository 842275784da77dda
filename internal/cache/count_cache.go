// Package cache 缓存有效标签的聚合计数。
//
// 失效采用代际方案：写路径把代际号加一，读写键都带上当前代际，
// 旧代际的键不再被读到，随 TTL 自然过期。
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	generationKey = "survey:effective_counts:gen"
	countsKeyFmt  = "survey:effective_counts:%d:%s"
)

// CountCache 按过滤范围缓存 TagID -> 响应数。
// 调用方先取 Generation，再用同一个代际号 Get/Set：
// 计算期间发生的写入会推进代际，迟到的 Set 落在已作废的键上。
type CountCache interface {
	Generation(ctx context.Context) (int64, error)
	// Get 第二个返回值为 false 表示未命中
	Get(ctx context.Context, gen int64, scope string) (map[uint]int, bool, error)
	Set(ctx context.Context, gen int64, scope string, counts map[uint]int) error
	// Invalidate 让所有已缓存的计数失效，任何修正或映射写入后调用
	Invalidate(ctx context.Context) error
}

type redisCountCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCountCache 创建基于 Redis 的计数缓存。
func NewRedisCountCache(client *redis.Client, ttl time.Duration) CountCache {
	return &redisCountCache{client: client, ttl: ttl}
}

func (c *redisCountCache) Generation(ctx context.Context) (int64, error) {
	val, err := c.client.Get(ctx, generationKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read cache generation: %w", err)
	}
	return strconv.ParseInt(val, 10, 64)
}

func (c *redisCountCache) Get(ctx context.Context, gen int64, scope string) (map[uint]int, bool, error) {
	raw, err := c.client.Get(ctx, fmt.Sprintf(countsKeyFmt, gen, scope)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	counts := make(map[uint]int)
	if err := json.Unmarshal(raw, &counts); err != nil {
		return nil, false, fmt.Errorf("decode cached counts: %w", err)
	}
	return counts, true, nil
}

func (c *redisCountCache) Set(ctx context.Context, gen int64, scope string, counts map[uint]int) error {
	raw, err := json.Marshal(counts)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, fmt.Sprintf(countsKeyFmt, gen, scope), raw, c.ttl).Err()
}

func (c *redisCountCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, generationKey).Err()
}

type noopCountCache struct{}

// NewNoopCountCache 返回永不命中的缓存，未配置 Redis 时使用。
func NewNoopCountCache() CountCache {
	return noopCountCache{}
}

func (noopCountCache) Generation(context.Context) (int64, error) { return 0, nil }

func (noopCountCache) Get(context.Context, int64, string) (map[uint]int, bool, error) {
	return nil, false, nil
}

func (noopCountCache) Set(context.Context, int64, string, map[uint]int) error { return nil }

func (noopCountCache) Invalidate(context.Context) error { return nil }
