// Package hybrid 实现混合推荐的融合引擎。
//
// 核心思想：
//   - 内容通道与协同通道并发取数，各自返回显式的 Branch 结果
//   - 按 hybrid = (1-α)·content + α·cf 加权合并，α 是协同权重
//   - 每条结果携带 source 来源标记与两侧分数，保证可解释
//   - 无信号时沿确定的兜底链路退化：检索词 → 画像合成词 →
//     热门检索词；匿名用户协同侧退化为全局热度
package hybrid

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/hybrec/cache"
	"github.com/rushteam/hybrec/core"
	"github.com/rushteam/hybrec/filter"
)

const (
	// DefaultAlpha 是默认协同过滤权重
	DefaultAlpha = 0.6
	// DefaultK 是默认返回条数
	DefaultK = 10
	// 类目约束变体的固定协同权重
	categoryAlpha = 0.4
	// 同品相似变体的固定协同权重
	productAlpha = 0.5
)

// Engine 是混合推荐引擎。请求级无状态，所有共享数据来自
// 工件快照，天然并发安全；通道失败被收敛为 NoSignal 而不是
// 异常，单侧坏不拖垮另一侧。
type Engine struct {
	Content ContentSource
	Collab  CollabSource

	// Cache 为空时关闭结果缓存
	Cache cache.Cache

	// Filters 在融合与排序之后应用
	Filters []filter.Filter

	// DefaultAlpha 是请求未指定时的协同权重，零值按 0.6 处理
	DefaultAlpha float64

	// DefaultK 是请求未指定时的返回条数，零值按 10 处理
	DefaultK int

	// TrendingQuery 覆盖内容通道的兜底检索词（可选）
	TrendingQuery string
}

func (e *Engine) alpha(rctx *core.RecommendContext) float64 {
	if rctx != nil && rctx.HasAlpha() {
		return rctx.Alpha
	}
	if e.DefaultAlpha > 0 {
		return e.DefaultAlpha
	}
	return DefaultAlpha
}

func (e *Engine) k(rctx *core.RecommendContext) int {
	if rctx != nil && rctx.K > 0 {
		return rctx.K
	}
	if e.DefaultK > 0 {
		return e.DefaultK
	}
	return DefaultK
}

// fatal 判断通道错误是否必须终止整个请求。
// 工件未加载属于请求级致命错误；其余错误收敛为通道无信号。
func fatal(err error) bool {
	return core.IsNotLoaded(err)
}

// collabSkipReason 返回个性化协同通道不可用的原因，空串表示可用。
func (e *Engine) collabSkipReason(rctx *core.RecommendContext) string {
	if rctx.UserID == "" {
		return ReasonNoUser
	}
	if e.Collab.IsColdUser(rctx.UserID) {
		return ReasonColdUser
	}
	return ""
}

// contentBranch 执行内容通道的兜底决策树：
// 检索词 → 用户画像合成词 → 热门检索词。
func (e *Engine) contentBranch(ctx context.Context, rctx *core.RecommendContext, n int) (Branch, error) {
	var (
		items []*core.Item
		err   error
	)
	switch {
	case rctx.Query != "":
		items, err = e.Content.SearchByText(rctx.Query, n)
	case rctx.UserID != "":
		items, err = e.Content.PersonalizedRecommend(ctx, rctx.UserID, n)
	default:
		query := e.TrendingQuery
		if query == "" {
			query = "popular trending products"
		}
		items, err = e.Content.SearchByText(query, n)
	}
	if err != nil {
		if fatal(err) {
			return Branch{}, err
		}
		return noSignal(ReasonUpstreamFailure), nil
	}
	return okBranch(items), nil
}

// collabBranch 执行协同通道的决策树：
// 匿名用户退化为全局热度；冷启动用户显式跳过本通道。
func (e *Engine) collabBranch(rctx *core.RecommendContext, n int, candidates []string) (Branch, error) {
	if rctx.UserID == "" {
		items, err := e.Collab.PopularItems(n)
		if err != nil {
			if fatal(err) {
				return Branch{}, err
			}
			return noSignal(ReasonUpstreamFailure), nil
		}
		return okBranch(items), nil
	}
	if e.Collab.IsColdUser(rctx.UserID) {
		return noSignal(ReasonColdUser), nil
	}
	items, err := e.Collab.RecommendForUser(rctx.UserID, n, candidates)
	if err != nil {
		if fatal(err) {
			return Branch{}, err
		}
		return noSignal(ReasonUpstreamFailure), nil
	}
	return okBranch(items), nil
}

// Recommend 执行一次混合推荐。
// 两个通道并发取数（各超采 2k），融合后过滤、截断到 k。
// 命中缓存时直接返回，不再触发任何打分。
func (e *Engine) Recommend(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if rctx == nil {
		rctx = core.NewRecommendContext("")
	}
	alpha := e.alpha(rctx)
	k := e.k(rctx)

	cacheKey := cache.Key(rctx.UserID, rctx.Query, alpha, k)
	if e.Cache != nil {
		if cached, err := e.Cache.Get(ctx, cacheKey); err == nil {
			return cached, nil
		}
	}

	oversample := k * 2

	var content, collab Branch
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		b, err := e.contentBranch(egCtx, rctx, oversample)
		if err != nil {
			return err
		}
		content = b
		return nil
	})
	eg.Go(func() error {
		b, err := e.collabBranch(rctx, oversample, nil)
		if err != nil {
			return err
		}
		collab = b
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// 先过滤再截断，保证过滤不会把结果数压到 k 以下
	items := fuse(content, collab, alpha, 0)
	items = filter.Apply(ctx, rctx, items, e.Filters)
	if len(items) > k {
		items = items[:k]
	}

	if e.Cache != nil {
		_ = e.Cache.Set(ctx, cacheKey, items)
	}
	return items, nil
}

// RecommendForProduct 返回与锚点物品相似的混合推荐。
// 内容侧用 Embedding 近邻，协同侧用物品因子相似，
// 权重固定对半，锚点自身始终被排除。
func (e *Engine) RecommendForProduct(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if rctx == nil || rctx.AnchorItemID == "" {
		return nil, core.NewDomainError(core.ModuleContent, core.ErrorCodeInvalidInput,
			"anchor item id required")
	}
	k := e.k(rctx)
	oversample := k * 2

	var content, collab Branch
	eg, _ := errgroup.WithContext(ctx)
	eg.Go(func() error {
		items, err := e.Content.FindSimilar(rctx.AnchorItemID, oversample)
		if err != nil {
			if fatal(err) {
				return err
			}
			content = noSignal(ReasonUpstreamFailure)
			return nil
		}
		content = okBranch(items)
		return nil
	})
	eg.Go(func() error {
		if reason := e.collabSkipReason(rctx); reason != "" {
			collab = noSignal(reason)
			return nil
		}
		items, err := e.Collab.SimilarItems(rctx.AnchorItemID, oversample)
		if err != nil {
			if fatal(err) {
				return err
			}
			collab = noSignal(ReasonUpstreamFailure)
			return nil
		}
		collab = okBranch(items)
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	items := fuse(content, collab, productAlpha, 0)
	anchorFilter := []filter.Filter{filter.NewExcludeFilter([]string{rctx.AnchorItemID})}
	items = filter.Apply(ctx, rctx, items, append(anchorFilter, e.Filters...))
	if len(items) > k {
		items = items[:k]
	}
	return items, nil
}

// RecommendInCategory 是类目约束的相似推荐变体：
// 协同通道先把候选宇宙收敛到类目商品集合再打分归一化，
// 内容通道的近邻结果事后过滤到同一集合；协同权重固定 0.4。
// exclude 通常是用户已购集合，连同锚点一并移除。
func (e *Engine) RecommendInCategory(
	ctx context.Context,
	rctx *core.RecommendContext,
	categoryItemIDs []string,
	exclude []string,
) ([]*core.Item, error) {
	if rctx == nil || rctx.AnchorItemID == "" {
		return nil, core.NewDomainError(core.ModuleContent, core.ErrorCodeInvalidInput,
			"anchor item id required")
	}
	k := e.k(rctx)
	oversample := k * 2

	blocked := append([]string{rctx.AnchorItemID}, exclude...)
	preFilters := []filter.Filter{filter.NewExcludeFilter(blocked)}
	contentFilters := preFilters
	if len(categoryItemIDs) > 0 {
		contentFilters = append([]filter.Filter{filter.NewCandidateSetFilter(categoryItemIDs)}, preFilters...)
	}

	var content, collab Branch
	eg, _ := errgroup.WithContext(ctx)
	eg.Go(func() error {
		items, err := e.Content.FindSimilar(rctx.AnchorItemID, oversample)
		if err != nil {
			if fatal(err) {
				return err
			}
			content = noSignal(ReasonUpstreamFailure)
			return nil
		}
		items = filter.Apply(ctx, rctx, items, contentFilters)
		if len(items) > k {
			items = items[:k]
		}
		content = okBranch(items)
		return nil
	})
	eg.Go(func() error {
		if len(categoryItemIDs) == 0 {
			collab = noSignal(ReasonNoCandidates)
			return nil
		}
		if reason := e.collabSkipReason(rctx); reason != "" {
			collab = noSignal(reason)
			return nil
		}
		items, err := e.Collab.RecommendForUser(rctx.UserID, oversample, categoryItemIDs)
		if err != nil {
			if fatal(err) {
				return err
			}
			collab = noSignal(ReasonUpstreamFailure)
			return nil
		}
		items = filter.Apply(ctx, rctx, items, preFilters)
		if len(items) > k {
			items = items[:k]
		}
		collab = okBranch(items)
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	items := fuse(content, collab, categoryAlpha, 0)
	items = filter.Apply(ctx, rctx, items, e.Filters)
	if len(items) > k {
		items = items[:k]
	}
	return items, nil
}

// Explanation 是单个物品的推荐解释。
type Explanation struct {
	ContentScore float64 `json:"content_score"`
	CFScore      float64 `json:"cf_score"`
	Source       string  `json:"source"`
}

// Explain 解释单个物品的两侧得分与来源归属。
// 匿名或冷启动用户没有协同侧得分。
func (e *Engine) Explain(_ context.Context, userID, itemID, query string) (*Explanation, error) {
	out := &Explanation{Source: "unknown"}

	contentScore, err := e.Content.ContentScoreOf(itemID, query)
	if err != nil {
		return nil, err
	}
	out.ContentScore = contentScore

	if userID != "" && !e.Collab.IsColdUser(userID) {
		cfScore, err := e.Collab.ScoreNormalized(userID, itemID)
		if err != nil {
			return nil, err
		}
		out.CFScore = cfScore
	}

	switch {
	case out.ContentScore > 0 && out.CFScore > 0:
		out.Source = SourceHybrid
	case out.CFScore > 0:
		out.Source = SourceCollaborativeOnly
	case out.ContentScore > 0:
		out.Source = SourceContentOnly
	}
	return out, nil
}
