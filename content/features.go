package content

import (
	"sort"
	"strings"

	"github.com/rushteam/hybrec/core"
)

// 价格分桶边界。上界为开区间的最后一档兜底为 luxury。
var priceBuckets = []struct {
	max  float64
	name string
}{
	{500, "budget"},
	{2000, "mid_range"},
	{10000, "premium"},
}

// ExtractFeatures 从物品元数据提取内容特征：
// category_* / brand_* / price_range_* / tag_*，每个特征取值 1.0。
func ExtractFeatures(p *core.ProductMeta) map[string]float64 {
	features := make(map[string]float64)

	if p.CategoryID != "" {
		features["category_"+p.CategoryID] = 1.0
	}
	if p.Brand != "" {
		features["brand_"+strings.ToLower(p.Brand)] = 1.0
	}
	if p.Price > 0 {
		name := "luxury"
		for _, b := range priceBuckets {
			if p.Price <= b.max {
				name = b.name
				break
			}
		}
		features["price_range_"+name] = 1.0
	}
	for _, tag := range p.Tags {
		if tag != "" {
			features["tag_"+strings.ToLower(tag)] = 1.0
		}
	}

	return features
}

// ProfileQuery 把用户内容画像转换为合成检索词。
// 取权重最高的 5 个且权重 > 0.1 的特征，拼出最多 3 段短语；
// 画像为空或无显著特征时返回兜底检索词。
func ProfileQuery(profile map[string]float64, fallback string) string {
	if len(profile) == 0 {
		return fallback
	}

	type weighted struct {
		feature string
		weight  float64
	}
	sorted := make([]weighted, 0, len(profile))
	for f, w := range profile {
		sorted = append(sorted, weighted{feature: f, weight: w})
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].weight != sorted[j].weight {
			return sorted[i].weight > sorted[j].weight
		}
		return sorted[i].feature < sorted[j].feature // 权重并列时按名称稳定
	})
	if len(sorted) > 5 {
		sorted = sorted[:5]
	}

	parts := make([]string, 0, 3)
	for _, s := range sorted {
		if s.weight <= 0.1 {
			continue
		}
		switch {
		case strings.HasPrefix(s.feature, "category_"):
			parts = append(parts, "products in this category")
		case strings.HasPrefix(s.feature, "brand_"):
			parts = append(parts, strings.TrimPrefix(s.feature, "brand_")+" brand products")
		case strings.HasPrefix(s.feature, "price_range_"):
			parts = append(parts, strings.TrimPrefix(s.feature, "price_range_")+" price range products")
		case strings.HasPrefix(s.feature, "tag_"):
			parts = append(parts, strings.TrimPrefix(s.feature, "tag_")+" products")
		}
		if len(parts) == 3 {
			break
		}
	}

	if len(parts) == 0 {
		return fallback
	}
	return "recommended " + strings.Join(parts, " ")
}
