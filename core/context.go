package core

// RecommendContext 承载一次推荐请求的语义身份，贯穿融合引擎透传。
//
// 四个可选信号：
//   - UserID: 为空表示匿名请求
//   - Query: 显式检索词，优先于用户画像
//   - AnchorItemID: “类似商品”场景的锚点物品
//   - Alpha/K: 融合权重与返回条数，负值 / 零值表示使用引擎默认
type RecommendContext struct {
	UserID       string
	Query        string
	AnchorItemID string

	// Alpha 是协同过滤通道的权重，∈[0,1]。
	// 0 是合法取值（纯内容），因此用负数表示“未指定”。
	Alpha float64

	// K 返回条数；<=0 表示使用引擎默认。
	K int

	// Params 请求级上下文参数（设备、场景、实验分桶等），
	// 规则过滤器（filter.RuleFilter）可以读取。
	Params map[string]any
}

// NewRecommendContext 创建一个未指定 Alpha/K 的请求上下文。
func NewRecommendContext(userID string) *RecommendContext {
	return &RecommendContext{
		UserID: userID,
		Alpha:  -1,
	}
}

// HasAlpha 报告请求是否显式指定了融合权重。
func (rctx *RecommendContext) HasAlpha() bool {
	return rctx.Alpha >= 0
}
