package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rushteam/hybrec/core"
)

// RedisUserState 是 Redis 实现的用户状态存储。
// 每类状态一个 list，key 形如 {prefix}:{kind}:{userID}，
// 新条目由业务侧 LPUSH，读取时取前 limit 条即最近记录。
type RedisUserState struct {
	client *redis.Client
	prefix string
}

func NewRedisUserState(addr string, db int, prefix string) (*RedisUserState, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	if prefix == "" {
		prefix = "user"
	}
	return &RedisUserState{client: client, prefix: prefix}, nil
}

func (s *RedisUserState) key(kind, userID string) string {
	return s.prefix + ":" + kind + ":" + userID
}

func (s *RedisUserState) list(ctx context.Context, kind, userID string, limit int) ([]string, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	ids, err := s.client.LRange(ctx, s.key(kind, userID), 0, stop).Result()
	if err == redis.Nil {
		return nil, nil
	}
	return ids, err
}

func (s *RedisUserState) RecentPurchases(ctx context.Context, userID string, limit int) ([]string, error) {
	return s.list(ctx, "purchases", userID, limit)
}

func (s *RedisUserState) WishlistItems(ctx context.Context, userID string, limit int) ([]string, error) {
	return s.list(ctx, "wishlist", userID, limit)
}

func (s *RedisUserState) CartItems(ctx context.Context, userID string, limit int) ([]string, error) {
	return s.list(ctx, "cart", userID, limit)
}

// RedisInteractions 是 Redis 实现的交互历史存储。
// 每个用户一个 zset，member 是 JSON 序列化的交互记录，
// score 是事件时间戳，读取时按时间降序返回。
type RedisInteractions struct {
	client *redis.Client
	prefix string
}

func NewRedisInteractions(addr string, db int, prefix string) (*RedisInteractions, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	if prefix == "" {
		prefix = "interactions"
	}
	return &RedisInteractions{client: client, prefix: prefix}, nil
}

func (s *RedisInteractions) key(userID string) string {
	return s.prefix + ":" + userID
}

func (s *RedisInteractions) Append(ctx context.Context, interactions ...core.Interaction) error {
	for _, in := range interactions {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		z := redis.Z{Score: float64(in.Timestamp.Unix()), Member: raw}
		if err := s.client.ZAdd(ctx, s.key(in.UserID), z).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (s *RedisInteractions) ListByUser(ctx context.Context, userID string, eventTypes ...string) ([]core.Interaction, error) {
	raws, err := s.client.ZRevRange(ctx, s.key(userID), 0, -1).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(eventTypes))
	for _, t := range eventTypes {
		wanted[t] = true
	}

	out := make([]core.Interaction, 0, len(raws))
	for _, raw := range raws {
		var in core.Interaction
		if err := json.Unmarshal([]byte(raw), &in); err != nil {
			continue // 脏数据跳过
		}
		if len(wanted) > 0 && !wanted[in.EventType] {
			continue
		}
		out = append(out, in)
	}
	return out, nil
}

// TrimBefore 清理某用户早于给定时间的交互记录，限制 zset 体积。
func (s *RedisInteractions) TrimBefore(ctx context.Context, userID string, t time.Time) error {
	max := "(" + strconv.FormatInt(t.Unix(), 10)
	return s.client.ZRemRangeByScore(ctx, s.key(userID), "-inf", max).Err()
}
