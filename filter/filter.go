// Package filter 提供融合结果的后置过滤能力。
package filter

import (
	"context"

	"github.com/rushteam/hybrec/core"
)

// Filter 是过滤器的抽象接口，用于判断一个 Item 是否应该被过滤掉。
// 返回 true 表示应该过滤（移除），false 表示保留。
type Filter interface {
	// Name 返回过滤器名称
	Name() string

	// ShouldFilter 判断 item 是否应该被过滤
	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}

// Apply 依次对每个 item 执行过滤器链，任一过滤器命中即移除该物品。
// 单个过滤器出错时跳过该过滤器，不中断整个请求。
func Apply(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
	filters []Filter,
) []*core.Item {
	if len(filters) == 0 || len(items) == 0 {
		return items
	}

	out := make([]*core.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}

		keep := true
		for _, f := range filters {
			ok, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				continue
			}
			if ok {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, item)
		}
	}
	return out
}
