// Package feast 对接 Feast Feature Store，为推荐链路提供在线特征。
//
// Feast 是一个开源的 Feature Store，这里只使用在线特征读取能力，
// 训练侧的历史特征与物化由离线作业负责。
//
// 参考：https://github.com/feast-dev/feast
package feast

import (
	"context"
)

// Client 是 Feast 在线特征读取的客户端接口。
type Client interface {
	// GetOnlineFeatures 获取在线特征（用于实时打分）
	//
	// 参数：
	//   - features: 特征名称列表，例如 ["user_interactions:recent_events"]
	//   - entityRows: 实体行，例如 [{"user_id": "u1"}]
	GetOnlineFeatures(ctx context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error)

	// Close 关闭客户端连接
	Close() error
}

// GetOnlineFeaturesRequest 是在线特征请求。
type GetOnlineFeaturesRequest struct {
	// Features 特征名称列表
	Features []string

	// EntityRows 实体行列表
	EntityRows []map[string]interface{}

	// Project 项目名称（为空时使用客户端默认项目）
	Project string
}

// FeatureVector 是单个实体行的特征向量。
type FeatureVector struct {
	// Values 特征名 -> 特征值
	Values map[string]interface{}

	// EntityRow 对应的实体行
	EntityRow map[string]interface{}
}

// GetOnlineFeaturesResponse 是在线特征响应，行序与请求实体行一致。
type GetOnlineFeaturesResponse struct {
	FeatureVectors []FeatureVector
}
