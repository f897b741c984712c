package hybrec

import (
	"time"

	"github.com/rushteam/hybrec/artifact"
	"github.com/rushteam/hybrec/cache"
	"github.com/rushteam/hybrec/cf"
	"github.com/rushteam/hybrec/config"
	"github.com/rushteam/hybrec/content"
	"github.com/rushteam/hybrec/core"
	"github.com/rushteam/hybrec/hybrid"
)

// Stores 汇聚引擎依赖的外部数据源。
// Catalog 与 Interactions 缺失时画像类推荐退化到兜底检索词，
// UserState 缺失时多源聚合不可用。
type Stores struct {
	Catalog      core.CatalogStore
	Interactions core.InteractionStore
	UserState    core.UserStateStore
}

// New 按配置组装完整的推荐引擎。
// 内部完成工件加载，失败时返回错误且不产出半初始化的引擎。
func New(cfg *config.Config, stores Stores) (*Engine, *artifact.Store, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	cfg.ApplyDefaults()

	artifacts := artifact.NewStore(cfg.Artifacts.Paths())
	if err := artifacts.Load(); err != nil {
		return nil, nil, err
	}

	contentScorer := &content.Scorer{
		Artifacts:     artifacts,
		Catalog:       stores.Catalog,
		Interactions:  stores.Interactions,
		UserState:     stores.UserState,
		ActionWeights: cfg.ActionWeights,
		SourceWeights: cfg.SourceWeights,
		TrendingQuery: cfg.TrendingQuery,
	}
	collabScorer := &cf.Scorer{Artifacts: artifacts}

	engine := &hybrid.Engine{
		Content:       contentScorer,
		Collab:        collabScorer,
		Cache:         cache.NewMemory(time.Duration(cfg.CacheTTLSeconds) * time.Second),
		DefaultAlpha:  cfg.DefaultAlpha,
		DefaultK:      cfg.DefaultTopK,
		TrendingQuery: cfg.TrendingQuery,
	}
	return engine, artifacts, nil
}
