// Package cache 提供推荐结果的短时缓存，降低重复请求的打分开销。
package cache

import (
	"context"
	"strconv"
	"strings"

	"github.com/rushteam/hybrec/core"
)

// Cache 是推荐结果缓存的统一接口。
// 未命中或已过期时 Get 返回 ErrStoreNotFound。
type Cache interface {
	Get(ctx context.Context, key string) ([]*core.Item, error)
	Set(ctx context.Context, key string, items []*core.Item) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Key 把一次请求的全部判别维度物化为稳定的缓存键。
// 匿名用户与空检索词用哨兵值占位，保证不同逻辑请求不会互相碰撞。
func Key(userID, query string, alpha float64, k int) string {
	if userID == "" {
		userID = "anonymous"
	}
	if query == "" {
		query = "none"
	}
	var b strings.Builder
	b.WriteString("rec:")
	b.WriteString(userID)
	b.WriteString(":")
	b.WriteString(query)
	b.WriteString(":")
	b.WriteString(strconv.FormatFloat(alpha, 'g', -1, 64))
	b.WriteString(":")
	b.WriteString(strconv.Itoa(k))
	return b.String()
}
