package hybrid

import (
	"context"

	"github.com/rushteam/hybrec/core"
)

// 融合结果的来源标记，写入 item 的 source label。
const (
	SourceContentOnly       = "content_only"
	SourceCollaborativeOnly = "collaborative_only"
	SourceHybrid            = "hybrid"
)

// 通道无信号时的原因标记。
const (
	ReasonColdUser        = "cold_user"
	ReasonNoUser          = "no_user"
	ReasonNoCandidates    = "no_candidates"
	ReasonUpstreamFailure = "upstream_failure"
)

// Branch 是单个打分通道的显式结果。
// 通道失败或无信号时不抛错，而是返回 NoSignal 加原因，
// 由融合层显式分派，保证兜底链路可审计、可单测。
type Branch struct {
	Items    []*core.Item
	NoSignal bool
	Reason   string
}

// ok 构造有信号的通道结果，空列表同样视为无信号。
func okBranch(items []*core.Item) Branch {
	if len(items) == 0 {
		return Branch{NoSignal: true, Reason: ReasonNoCandidates}
	}
	return Branch{Items: items}
}

func noSignal(reason string) Branch {
	return Branch{NoSignal: true, Reason: reason}
}

// ContentSource 是内容通道的最小接口，由 content.Scorer 实现。
type ContentSource interface {
	SearchByText(query string, k int) ([]*core.Item, error)
	PersonalizedRecommend(ctx context.Context, userID string, k int) ([]*core.Item, error)
	FindSimilar(itemID string, k int) ([]*core.Item, error)
	ContentScoreOf(itemID, query string) (float64, error)
}

// CollabSource 是协同过滤通道的最小接口，由 cf.Scorer 实现。
type CollabSource interface {
	RecommendForUser(userID string, k int, candidates []string) ([]*core.Item, error)
	SimilarItems(itemID string, k int) ([]*core.Item, error)
	PopularItems(k int) ([]*core.Item, error)
	ScoreNormalized(userID, itemID string) (float64, error)
	IsColdUser(userID string) bool
}
