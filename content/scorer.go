// Package content 实现基于内容（语义相似度）的打分通道。
//
// 核心思想：
//   - 物品 Embedding 与文本编码器共享同一向量空间
//   - 显式检索词 / 用户画像合成词 → 编码 → L2 归一化 → 内积 top-k
//   - 用户画像由加权交互历史累积而来，权重随行为强度递增
package content

import (
	"context"

	"github.com/rushteam/hybrec/artifact"
	"github.com/rushteam/hybrec/config"
	"github.com/rushteam/hybrec/core"
	"github.com/rushteam/hybrec/vector"
)

// DefaultTrendingQuery 是无任何画像信号时的兜底检索词。
const DefaultTrendingQuery = "popular trending products"

// 多源聚合时每个来源最多取多少条最近记录。
const sourceFetchLimit = 20

// Scorer 是内容通道打分器。
// Artifacts 为必填；Catalog/Interactions 仅画像类操作需要，
// UserState 仅多源聚合需要。权重字段零值时使用默认权重。
type Scorer struct {
	Artifacts    *artifact.Store
	Catalog      core.CatalogStore
	Interactions core.InteractionStore
	UserState    core.UserStateStore

	ActionWeights config.ActionWeights
	SourceWeights config.SourceWeights

	// TrendingQuery 覆盖默认兜底检索词（可选）
	TrendingQuery string
}

func (s *Scorer) trendingQuery() string {
	if s.TrendingQuery != "" {
		return s.TrendingQuery
	}
	return DefaultTrendingQuery
}

func (s *Scorer) actionWeight(eventType string) float64 {
	w := s.ActionWeights
	if w == (config.ActionWeights{}) {
		w = config.ActionWeights{Purchase: 3.0, AddToCart: 2.0, Wishlist: 1.5, View: 1.0}
	}
	switch eventType {
	case core.EventPurchase:
		return w.Purchase
	case core.EventAddToCart:
		return w.AddToCart
	case core.EventWishlist:
		return w.Wishlist
	case core.EventView:
		return w.View
	default:
		return 1.0
	}
}

func (s *Scorer) sourceWeights() config.SourceWeights {
	if s.SourceWeights == (config.SourceWeights{}) {
		return config.SourceWeights{Purchases: 3.0, Wishlist: 2.0, Cart: 1.5}
	}
	return s.SourceWeights
}

// EmbedQuery 把自由文本编码为查询向量。
// 对相同输入与相同编码器版本，结果严格确定。
func (s *Scorer) EmbedQuery(text string) ([]float64, error) {
	gen, err := s.Artifacts.Snapshot()
	if err != nil {
		return nil, err
	}
	return gen.Encoder().EncodeText(text), nil
}

// SearchByText 语义检索：编码、L2 归一化、内积 top-k，按相似度降序返回。
func (s *Scorer) SearchByText(query string, k int) ([]*core.Item, error) {
	gen, err := s.Artifacts.Snapshot()
	if err != nil {
		return nil, err
	}
	if k <= 0 {
		k = 10
	}

	queryVec := vector.NormalizeL2(gen.Encoder().EncodeText(query))
	hits := gen.Index().Search(queryVec, k)

	itemIDs := gen.ItemIDs()
	out := make([]*core.Item, 0, len(hits))
	for _, hit := range hits {
		it := core.NewItem(itemIDs[hit.Index])
		it.Score = hit.Score
		out = append(out, it)
	}
	return out, nil
}

// FindSimilar 返回与锚点物品最相似的 k 个物品，排除锚点自身。
// 物品不在 Embedding 集合中时返回空结果（不是错误）。
func (s *Scorer) FindSimilar(itemID string, k int) ([]*core.Item, error) {
	gen, err := s.Artifacts.Snapshot()
	if err != nil {
		return nil, err
	}
	if k <= 0 {
		k = 10
	}

	row, ok := gen.RowOf(itemID)
	if !ok {
		return nil, nil
	}

	// 多取一个以便剔除自身
	hits := gen.Index().Search(gen.Index().Reconstruct(row), k+1)

	itemIDs := gen.ItemIDs()
	out := make([]*core.Item, 0, k)
	for _, hit := range hits {
		if hit.Index == row {
			continue
		}
		it := core.NewItem(itemIDs[hit.Index])
		it.Score = hit.Score
		out = append(out, it)
		if len(out) == k {
			break
		}
	}
	return out, nil
}

// BuildUserProfile 累积用户的加权交互历史为内容画像（特征 -> 权重，权重和为 1）。
// 空历史返回空画像，由调用方决定兜底路径。
func (s *Scorer) BuildUserProfile(ctx context.Context, userID string) (map[string]float64, error) {
	interactions, err := s.Interactions.ListByUser(ctx, userID,
		core.EventView, core.EventAddToCart, core.EventWishlist, core.EventPurchase)
	if err != nil {
		return nil, err
	}
	if len(interactions) == 0 {
		return map[string]float64{}, nil
	}

	profile := make(map[string]float64)
	for _, interaction := range interactions {
		product, err := s.Catalog.GetProduct(ctx, interaction.ItemID)
		if err != nil {
			continue // 元数据缺失的物品不参与画像
		}
		weight := s.actionWeight(interaction.EventType)
		for feature, value := range ExtractFeatures(product) {
			profile[feature] += value * weight
		}
	}

	var total float64
	for _, w := range profile {
		total += w
	}
	if total > 0 {
		for feature := range profile {
			profile[feature] /= total
		}
	}
	return profile, nil
}

// PersonalizedRecommend 基于用户画像的个性化内容推荐：
// 画像 → 合成检索词 → 语义检索。画像为空时直接使用兜底检索词。
func (s *Scorer) PersonalizedRecommend(ctx context.Context, userID string, k int) ([]*core.Item, error) {
	profile, err := s.BuildUserProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	query := ProfileQuery(profile, s.trendingQuery())
	return s.SearchByText(query, k)
}

// AggregateRecommend 聚合用户的购买/心愿单/购物车三个来源：
// 按来源权重（购买 > 心愿单 > 购物车）加权平均 Embedding 向量，
// 同一物品出现在多个来源时只计入权重更高的来源；检索结果剔除
// 用户已拥有的物品并按 id 去重。没有任何来源物品在 Embedding
// 集合中时返回空结果。
func (s *Scorer) AggregateRecommend(ctx context.Context, userID string, k int) ([]*core.Item, error) {
	gen, err := s.Artifacts.Snapshot()
	if err != nil {
		return nil, err
	}
	if k <= 0 {
		k = 10
	}

	purchases, err := s.UserState.RecentPurchases(ctx, userID, sourceFetchLimit)
	if err != nil {
		return nil, err
	}
	wishlist, err := s.UserState.WishlistItems(ctx, userID, sourceFetchLimit)
	if err != nil {
		return nil, err
	}
	cart, err := s.UserState.CartItems(ctx, userID, sourceFetchLimit)
	if err != nil {
		return nil, err
	}

	weights := s.sourceWeights()
	type weightedID struct {
		id     string
		weight float64
	}
	seen := make(map[string]bool, len(purchases)+len(wishlist)+len(cart))
	sources := make([]weightedID, 0, len(purchases)+len(wishlist)+len(cart))
	appendSource := func(ids []string, weight float64) {
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			sources = append(sources, weightedID{id: id, weight: weight})
		}
	}
	appendSource(purchases, weights.Purchases)
	appendSource(wishlist, weights.Wishlist)
	appendSource(cart, weights.Cart)

	if len(sources) == 0 {
		return nil, nil
	}

	// 加权平均来源物品的 Embedding
	var aggregated []float64
	var totalWeight float64
	for _, src := range sources {
		row, ok := gen.RowOf(src.id)
		if !ok {
			continue
		}
		vec := gen.Index().Reconstruct(row)
		if aggregated == nil {
			aggregated = make([]float64, len(vec))
		}
		for i := range vec {
			aggregated[i] += vec[i] * src.weight
		}
		totalWeight += src.weight
	}
	if aggregated == nil {
		return nil, nil
	}
	for i := range aggregated {
		aggregated[i] /= totalWeight
	}

	searchK := k * 3
	if n := gen.Index().Ntotal(); searchK > n {
		searchK = n
	}
	hits := gen.Index().Search(vector.NormalizeL2(aggregated), searchK)

	itemIDs := gen.ItemIDs()
	picked := make(map[string]bool, k)
	out := make([]*core.Item, 0, k)
	for _, hit := range hits {
		id := itemIDs[hit.Index]
		if seen[id] || picked[id] {
			continue // 用户已拥有或已选中
		}
		picked[id] = true
		it := core.NewItem(id)
		it.Score = hit.Score
		out = append(out, it)
		if len(out) == k {
			break
		}
	}
	return out, nil
}

// ContentScoreOf 给出单个物品的内容分：
// 有检索词时取该物品在 top-100 检索结果中的分数（未命中为 0）；
// 无检索词时取其 top-5 相似物品分数的均值。用于 explain。
func (s *Scorer) ContentScoreOf(itemID, query string) (float64, error) {
	if query != "" {
		results, err := s.SearchByText(query, 100)
		if err != nil {
			return 0, err
		}
		for _, it := range results {
			if it.ID == itemID {
				return it.Score, nil
			}
		}
		return 0, nil
	}

	similar, err := s.FindSimilar(itemID, 5)
	if err != nil {
		return 0, err
	}
	if len(similar) == 0 {
		return 0, nil
	}
	var sum float64
	for _, it := range similar {
		sum += it.Score
	}
	return sum / float64(len(similar)), nil
}
