// Package cf 实现基于矩阵分解的协同过滤打分通道。
//
// 核心思想：
//   - 用户因子矩阵 × 物品因子矩阵的内积即为偏好预估
//   - 原始内积无固定量纲，对外输出前相对全量（或候选子集）
//     做 min/max 归一化，压缩到 [0.5, 1.0] 区间
//   - 不在因子矩阵中的用户/物品视为冷启动，由融合层兜底
package cf

import (
	"sort"

	"github.com/rushteam/hybrec/artifact"
	"github.com/rushteam/hybrec/core"
	"github.com/rushteam/hybrec/vector"
)

// 归一化区间退化（所有分数相同）时的保守常量。
const (
	degenerateListScore     = 0.9
	degeneratePairwiseScore = 0.75
)

// Scorer 是协同过滤通道打分器，所有数据来自 Artifacts 快照。
type Scorer struct {
	Artifacts *artifact.Store
}

func errUnknownUser(userID string) error {
	return core.NewDomainError(core.ModuleCollab, core.ErrorCodeNotFound,
		"user not in factor matrix: "+userID)
}

// IsColdUser 判断用户是否不在因子矩阵中（冷启动用户）。
// 工件未加载时同样视为冷，调用方可退化到内容通道。
func (s *Scorer) IsColdUser(userID string) bool {
	gen, err := s.Artifacts.Snapshot()
	if err != nil {
		return true
	}
	_, ok := gen.UserRow(userID)
	return !ok
}

// IsColdItem 判断物品是否不在因子矩阵中。
func (s *Scorer) IsColdItem(itemID string) bool {
	gen, err := s.Artifacts.Snapshot()
	if err != nil {
		return true
	}
	_, ok := gen.ItemRow(itemID)
	return !ok
}

// Score 返回用户对物品的原始偏好预估（因子内积）。
// 用户或物品未知时返回 0.0。
func (s *Scorer) Score(userID, itemID string) (float64, error) {
	gen, err := s.Artifacts.Snapshot()
	if err != nil {
		return 0, err
	}
	userRow, ok := gen.UserRow(userID)
	if !ok {
		return 0, nil
	}
	itemRow, ok := gen.ItemRow(itemID)
	if !ok {
		return 0, nil
	}
	return vector.Dot(gen.UserFactors().Row(userRow), gen.ItemFactors().Row(itemRow)), nil
}

// ScoreNormalized 返回单个用户-物品对的归一化分数，
// 相对该用户在全量物品上的分数分布定位。区间退化时返回 0.75。
func (s *Scorer) ScoreNormalized(userID, itemID string) (float64, error) {
	gen, err := s.Artifacts.Snapshot()
	if err != nil {
		return 0, err
	}
	userRow, ok := gen.UserRow(userID)
	if !ok {
		return 0, nil
	}
	itemRow, ok := gen.ItemRow(itemID)
	if !ok {
		return 0, nil
	}

	userVec := gen.UserFactors().Row(userRow)
	itemFactors := gen.ItemFactors()

	raw := vector.Dot(userVec, itemFactors.Row(itemRow))
	minScore, maxScore := raw, raw
	for row := 0; row < itemFactors.Rows; row++ {
		score := vector.Dot(userVec, itemFactors.Row(row))
		if score < minScore {
			minScore = score
		}
		if score > maxScore {
			maxScore = score
		}
	}
	if maxScore == minScore {
		return degeneratePairwiseScore, nil
	}
	return 0.5 + 0.5*(raw-minScore)/(maxScore-minScore), nil
}

type scoredRow struct {
	row   int
	score float64
}

// 相对自身分布把原始分压缩到 [0.5, 1.0]，区间退化时全部置 0.9。
func normalizeScored(scored []scoredRow) {
	if len(scored) == 0 {
		return
	}
	minScore, maxScore := scored[0].score, scored[0].score
	for _, s := range scored[1:] {
		if s.score < minScore {
			minScore = s.score
		}
		if s.score > maxScore {
			maxScore = s.score
		}
	}
	for i := range scored {
		if maxScore == minScore {
			scored[i].score = degenerateListScore
		} else {
			scored[i].score = 0.5 + 0.5*(scored[i].score-minScore)/(maxScore-minScore)
		}
	}
}

func topK(gen *artifact.Generation, scored []scoredRow, k int) []*core.Item {
	normalizeScored(scored)
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	if k > 0 && len(scored) > k {
		scored = scored[:k]
	}
	out := make([]*core.Item, 0, len(scored))
	for _, s := range scored {
		id, ok := gen.CFItemIDAt(s.row)
		if !ok {
			continue
		}
		it := core.NewItem(id)
		it.Score = s.score
		out = append(out, it)
	}
	return out
}

// RecommendForUser 为已知用户生成协同过滤候选。
// candidates 非空时只在该子集内打分与归一化；
// 未知用户返回 NOT_FOUND，调用方应先用 IsColdUser 判断。
func (s *Scorer) RecommendForUser(userID string, k int, candidates []string) ([]*core.Item, error) {
	gen, err := s.Artifacts.Snapshot()
	if err != nil {
		return nil, err
	}
	userRow, ok := gen.UserRow(userID)
	if !ok {
		return nil, errUnknownUser(userID)
	}

	userVec := gen.UserFactors().Row(userRow)
	itemFactors := gen.ItemFactors()

	var scored []scoredRow
	if len(candidates) > 0 {
		scored = make([]scoredRow, 0, len(candidates))
		for _, id := range candidates {
			row, ok := gen.ItemRow(id)
			if !ok {
				continue
			}
			scored = append(scored, scoredRow{row: row, score: vector.Dot(userVec, itemFactors.Row(row))})
		}
	} else {
		scored = make([]scoredRow, 0, itemFactors.Rows)
		for row := 0; row < itemFactors.Rows; row++ {
			scored = append(scored, scoredRow{row: row, score: vector.Dot(userVec, itemFactors.Row(row))})
		}
	}
	return topK(gen, scored, k), nil
}

// SimilarItems 基于物品因子内积返回相似物品，排除锚点自身。
// 锚点不在因子矩阵中时返回空结果。
func (s *Scorer) SimilarItems(itemID string, k int) ([]*core.Item, error) {
	gen, err := s.Artifacts.Snapshot()
	if err != nil {
		return nil, err
	}
	anchor, ok := gen.ItemRow(itemID)
	if !ok {
		return nil, nil
	}

	anchorVec := gen.ItemFactors().Row(anchor)
	itemFactors := gen.ItemFactors()
	scored := make([]scoredRow, 0, itemFactors.Rows-1)
	for row := 0; row < itemFactors.Rows; row++ {
		if row == anchor {
			continue
		}
		scored = append(scored, scoredRow{row: row, score: vector.Dot(anchorVec, itemFactors.Row(row))})
	}
	return topK(gen, scored, k), nil
}

// PopularItems 为匿名流量生成热门候选：
// 以物品因子行元素之和作为全局热度代理，归一化后取 top-k。
func (s *Scorer) PopularItems(k int) ([]*core.Item, error) {
	gen, err := s.Artifacts.Snapshot()
	if err != nil {
		return nil, err
	}
	itemFactors := gen.ItemFactors()
	scored := make([]scoredRow, 0, itemFactors.Rows)
	for row := 0; row < itemFactors.Rows; row++ {
		var sum float64
		for _, v := range itemFactors.Row(row) {
			sum += v
		}
		scored = append(scored, scoredRow{row: row, score: sum})
	}
	return topK(gen, scored, k), nil
}
