// Package vector 提供进程内的向量索引。
//
// 线上检索规模（万级物品 × 数百维）下，暴力内积扫描的延迟在亚毫秒量级，
// 因此用平铺（flat）索引平替外部 ANN 服务：行序与物品 id 数组严格一致，
// 第 i 行对应 id 数组的第 i 个元素。
package vector

import (
	"math"
	"sort"

	"github.com/rushteam/hybrec/core"
)

// SearchHit 是一次检索命中：行号与内积分数。
type SearchHit struct {
	Index int
	Score float64
}

// FlatIndex 是内积（inner product）平铺索引。
// 构建时对每一行做 L2 归一化，此后内积即余弦相似度；
// 用物品自身的向量检索时，该物品自身的分数 ≈ 1.0。
//
// 索引建成后只读，可被任意多个 goroutine 并发检索。
type FlatIndex struct {
	dim  int
	rows [][]float64
}

// NewFlatIndex 以行主序矩阵构建索引。每行的维度必须等于 dim。
func NewFlatIndex(dim int, rows [][]float64) (*FlatIndex, error) {
	if dim <= 0 {
		return nil, core.NewDomainError(core.ModuleArtifact, core.ErrorCodeInvalidInput, "vector: dimension must be positive")
	}
	normalized := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != dim {
			return nil, core.NewDomainError(core.ModuleArtifact, core.ErrorCodeInvalidInput, "vector: row dimension mismatch")
		}
		normalized[i] = NormalizeL2(row)
	}
	return &FlatIndex{dim: dim, rows: normalized}, nil
}

// Ntotal 返回索引中的向量数。
func (idx *FlatIndex) Ntotal() int { return len(idx.rows) }

// Dim 返回向量维度。
func (idx *FlatIndex) Dim() int { return idx.dim }

// Reconstruct 返回第 i 行（归一化后）的向量副本。
func (idx *FlatIndex) Reconstruct(i int) []float64 {
	if i < 0 || i >= len(idx.rows) {
		return nil
	}
	out := make([]float64, idx.dim)
	copy(out, idx.rows[i])
	return out
}

// Search 对 query 做 top-k 内积检索，按分数降序返回。
// query 不会被本方法归一化，调用方决定是否先 NormalizeL2。
func (idx *FlatIndex) Search(query []float64, k int) []SearchHit {
	if len(query) != idx.dim || k <= 0 || len(idx.rows) == 0 {
		return nil
	}

	hits := make([]SearchHit, 0, len(idx.rows))
	for i, row := range idx.rows {
		var dot float64
		for j := range row {
			dot += row[j] * query[j]
		}
		hits = append(hits, SearchHit{Index: i, Score: dot})
	}

	// 分数相同时保持行序，使检索结果可复现
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// NormalizeL2 返回 v 的 L2 归一化副本；零向量原样复制返回。
func NormalizeL2(v []float64) []float64 {
	out := make([]float64, len(v))
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	if norm == 0 {
		copy(out, v)
		return out
	}
	norm = math.Sqrt(norm)
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

// Dot 计算两个等长向量的点积；长度不一致时返回 0。
func Dot(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
