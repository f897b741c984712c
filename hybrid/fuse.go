package hybrid

import (
	"sort"

	"github.com/rushteam/hybrec/core"
	"github.com/rushteam/hybrec/pkg/utils"
)

// 内容通道分数区间退化时的固定值。
const degenerateBranchScore = 1.0

// normalizeBranch 把一个通道的分数按本通道候选的 min/max 压缩到 [0,1]。
// 同一物品重复出现时保留首个分数。区间退化时全部置 1.0。
func normalizeBranch(items []*core.Item) (order []string, scores map[string]float64) {
	scores = make(map[string]float64, len(items))
	order = make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := scores[it.ID]; ok {
			continue
		}
		scores[it.ID] = it.Score
		order = append(order, it.ID)
	}
	if len(order) == 0 {
		return order, scores
	}

	minScore, maxScore := scores[order[0]], scores[order[0]]
	for _, id := range order[1:] {
		if scores[id] < minScore {
			minScore = scores[id]
		}
		if scores[id] > maxScore {
			maxScore = scores[id]
		}
	}
	for _, id := range order {
		if maxScore == minScore {
			scores[id] = degenerateBranchScore
		} else {
			scores[id] = (scores[id] - minScore) / (maxScore - minScore)
		}
	}
	return order, scores
}

// branchScores 提取通道分数但不做归一化，用于分数已自带量纲的通道。
func branchScores(items []*core.Item) (order []string, scores map[string]float64) {
	scores = make(map[string]float64, len(items))
	order = make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := scores[it.ID]; ok {
			continue
		}
		scores[it.ID] = it.Score
		order = append(order, it.ID)
	}
	return order, scores
}

// fuse 合并两个通道：
//
//	hybrid = (1-alpha) * content + alpha * cf
//
// alpha 是协同过滤权重。内容通道先做本通道 min/max 归一化；
// 协同通道的分数在打分器内部已相对全量归一化，直接使用。
// 缺席的通道贡献 0。按融合分稳定降序排列，同分保持首见顺序。
func fuse(content, collab Branch, alpha float64, k int) []*core.Item {
	contentOrder, contentScores := normalizeBranch(content.Items)
	collabOrder, collabScores := branchScores(collab.Items)

	order := make([]string, 0, len(contentOrder)+len(collabOrder))
	seen := make(map[string]bool, len(contentOrder)+len(collabOrder))
	for _, id := range contentOrder {
		seen[id] = true
		order = append(order, id)
	}
	for _, id := range collabOrder {
		if seen[id] {
			continue
		}
		seen[id] = true
		order = append(order, id)
	}

	out := make([]*core.Item, 0, len(order))
	for _, id := range order {
		contentScore, fromContent := contentScores[id]
		collabScore, fromCollab := collabScores[id]

		it := core.NewItem(id)
		it.Score = (1-alpha)*contentScore + alpha*collabScore
		it.PutFeature("content_score", contentScore)
		it.PutFeature("cf_score", collabScore)
		it.PutLabel("source", utils.Label{
			Value:  provenance(fromContent, contentScore, fromCollab, collabScore),
			Source: "fusion",
		})
		out = append(out, it)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

// provenance 按通道的非零贡献判定来源标记；
// 两侧贡献都为零时退化到按通道成员关系判定。
func provenance(fromContent bool, contentScore float64, fromCollab bool, collabScore float64) string {
	contributedContent := fromContent && contentScore > 0
	contributedCollab := fromCollab && collabScore > 0
	switch {
	case contributedContent && contributedCollab:
		return SourceHybrid
	case contributedCollab:
		return SourceCollaborativeOnly
	case contributedContent:
		return SourceContentOnly
	case fromContent && fromCollab:
		return SourceHybrid
	case fromCollab:
		return SourceCollaborativeOnly
	default:
		return SourceContentOnly
	}
}
