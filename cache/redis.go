package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rushteam/hybrec/core"
)

// Redis 是 Redis 实现的结果缓存，多实例部署时共享命中。
// 条目用 JSON 序列化，过期交给 Redis 的键 TTL。
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(addr string, db int, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]*core.Item, error) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, core.ErrStoreNotFound
	}
	if err != nil {
		return nil, err
	}
	var items []*core.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Redis) Set(ctx context.Context, key string, items []*core.Item) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, raw, r.ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// Clear 只清理本缓存前缀下的键，避免误伤同库的其他数据。
func (r *Redis) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, "rec:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
