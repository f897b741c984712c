package core

import "github.com/rushteam/hybrec/pkg/utils"

// Item 是推荐结果的统一承载结构：分数、通道分数、元信息、标签。
// Score 是融合后的排序分；Features 携带各通道的归一化分
// （content_score / cf_score）；Labels["source"] 记录分数来源。
type Item struct {
	ID       string                 `json:"id"`
	Score    float64                `json:"score"`
	Features map[string]float64     `json:"features,omitempty"`
	Meta     map[string]any         `json:"meta,omitempty"`
	Labels   map[string]utils.Label `json:"labels,omitempty"`
}

func NewItem(id string) *Item {
	return &Item{
		ID:       id,
		Score:    0,
		Features: make(map[string]float64),
		Meta:     make(map[string]any),
		Labels:   make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// PutFeature 写入通道分数等数值特征。
func (it *Item) PutFeature(key string, val float64) {
	if it.Features == nil {
		it.Features = make(map[string]float64)
	}
	it.Features[key] = val
}
