// Package hybrec 是一个混合推荐引擎（Hybrid Recommender Engine）。
//
// 设计要点：
// - 双通道打分: 内容语义相似度（Content）与协同过滤隐向量（Collaborative）各自独立产出候选
// - 加权融合: hybrid = (1-α)·content + α·cf，α∈[0,1]，缺失的通道贡献 0
// - Labels-first: 每个结果携带 source / 分数来源标签，支持 explain / 观测 / 策略驱动
// - 工件热加载: 离线训练产物（Embedding / 隐向量 / 映射）按代（generation）原子切换，
//   服务中的读永远不会观察到半更新状态
package hybrec

import "github.com/rushteam/hybrec/hybrid"

// 轻量 facade：便于用户直接 import "hybrec" 使用核心抽象。
type Engine = hybrid.Engine
type Branch = hybrid.Branch

const (
	SourceContentOnly       = hybrid.SourceContentOnly
	SourceCollaborativeOnly = hybrid.SourceCollaborativeOnly
	SourceHybrid            = hybrid.SourceHybrid
)
