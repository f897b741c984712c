package filter

import (
	"context"

	"github.com/rushteam/hybrec/core"
)

// CandidateSetFilter 只保留给定候选集合内的物品，
// 用于类目约束推荐中对内容通道结果做事后收敛。
type CandidateSetFilter struct {
	allowed map[string]bool
}

func NewCandidateSetFilter(itemIDs []string) *CandidateSetFilter {
	allowed := make(map[string]bool, len(itemIDs))
	for _, id := range itemIDs {
		allowed[id] = true
	}
	return &CandidateSetFilter{allowed: allowed}
}

func (f *CandidateSetFilter) Name() string {
	return "filter.candidate_set"
}

func (f *CandidateSetFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	return !f.allowed[item.ID], nil
}

// ExcludeFilter 移除给定集合内的物品，如用户已拥有或锚点自身。
type ExcludeFilter struct {
	blocked map[string]bool
}

func NewExcludeFilter(itemIDs []string) *ExcludeFilter {
	blocked := make(map[string]bool, len(itemIDs))
	for _, id := range itemIDs {
		blocked[id] = true
	}
	return &ExcludeFilter{blocked: blocked}
}

func (f *ExcludeFilter) Name() string {
	return "filter.exclude"
}

func (f *ExcludeFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	return f.blocked[item.ID], nil
}
