package filter

import (
	"context"

	"github.com/rushteam/hybrec/core"
	"github.com/rushteam/hybrec/pkg/dsl"
)

// RuleFilter 是基于 CEL 表达式的规则过滤器。
// 表达式对 item/label/rctx 求值，结果为 true 时物品被移除。
//
// 示例：
//   - `label.source == "content_only"` → 移除纯内容通道的结果
//   - `item.score < 0.3` → 移除低分结果
type RuleFilter struct {
	// Expr 是 CEL 过滤表达式，空表达式不过滤任何物品
	Expr string
}

func NewRuleFilter(expr string) *RuleFilter {
	return &RuleFilter{Expr: expr}
}

func (f *RuleFilter) Name() string {
	return "filter.rule"
}

func (f *RuleFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if f.Expr == "" {
		return false, nil
	}
	return dsl.NewEval(item, rctx).Evaluate(f.Expr)
}
