// Package config 提供引擎配置的加载与默认值。
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/hybrec/artifact"
)

// ArtifactConfig 是工件文件路径配置。
type ArtifactConfig struct {
	EmbeddingsPath  string `yaml:"embeddings_path" json:"embeddings_path"`
	ItemIDsPath     string `yaml:"item_ids_path" json:"item_ids_path"`
	WordVectorsPath string `yaml:"word_vectors_path" json:"word_vectors_path"`
	UserFactorsPath string `yaml:"user_factors_path" json:"user_factors_path"`
	ItemFactorsPath string `yaml:"item_factors_path" json:"item_factors_path"`
	MappingsPath    string `yaml:"mappings_path" json:"mappings_path"`
}

// Paths 转换为 artifact.Paths。
func (a ArtifactConfig) Paths() artifact.Paths {
	return artifact.Paths{
		Embeddings:  a.EmbeddingsPath,
		ItemIDs:     a.ItemIDsPath,
		WordVectors: a.WordVectorsPath,
		UserFactors: a.UserFactorsPath,
		ItemFactors: a.ItemFactorsPath,
		Mappings:    a.MappingsPath,
	}
}

// ActionWeights 是构建用户内容画像时各交互事件的权重。
// 刻意作为具名配置而非内联常量，便于独立测试与调优。
type ActionWeights struct {
	Purchase  float64 `yaml:"purchase" json:"purchase"`
	AddToCart float64 `yaml:"add_to_cart" json:"add_to_cart"`
	Wishlist  float64 `yaml:"wishlist" json:"wishlist"`
	View      float64 `yaml:"view" json:"view"`
}

// SourceWeights 是多源聚合推荐时各来源集合的权重。
type SourceWeights struct {
	Purchases float64 `yaml:"purchases" json:"purchases"`
	Wishlist  float64 `yaml:"wishlist" json:"wishlist"`
	Cart      float64 `yaml:"cart" json:"cart"`
}

// Config 是引擎的完整配置面。
type Config struct {
	Artifacts ArtifactConfig `yaml:"artifacts" json:"artifacts"`

	// DefaultAlpha 协同通道的默认融合权重
	DefaultAlpha float64 `yaml:"default_alpha" json:"default_alpha"`

	// DefaultTopK 默认返回条数
	DefaultTopK int `yaml:"default_top_k" json:"default_top_k"`

	// CacheTTLSeconds 结果缓存过期时间（秒）
	CacheTTLSeconds int `yaml:"cache_ttl_seconds" json:"cache_ttl_seconds"`

	// TrendingQuery 无画像可用时的兜底检索词
	TrendingQuery string `yaml:"trending_query" json:"trending_query"`

	ActionWeights ActionWeights `yaml:"action_weights" json:"action_weights"`
	SourceWeights SourceWeights `yaml:"source_weights" json:"source_weights"`
}

// Default 返回全部取默认值的配置。
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults 为零值字段填入默认值。
func (c *Config) ApplyDefaults() {
	if c.DefaultAlpha <= 0 {
		c.DefaultAlpha = 0.6
	}
	if c.DefaultTopK <= 0 {
		c.DefaultTopK = 10
	}
	if c.CacheTTLSeconds <= 0 {
		c.CacheTTLSeconds = 300
	}
	if c.TrendingQuery == "" {
		c.TrendingQuery = "popular trending products"
	}
	if c.ActionWeights == (ActionWeights{}) {
		c.ActionWeights = ActionWeights{Purchase: 3.0, AddToCart: 2.0, Wishlist: 1.5, View: 1.0}
	}
	if c.SourceWeights == (SourceWeights{}) {
		c.SourceWeights = SourceWeights{Purchases: 3.0, Wishlist: 2.0, Cart: 1.5}
	}
	if c.Artifacts == (ArtifactConfig{}) {
		c.Artifacts = ArtifactConfig{
			EmbeddingsPath:  "artifacts/product_embeddings.npy",
			ItemIDsPath:     "artifacts/product_ids.json",
			WordVectorsPath: "artifacts/word_vectors.json",
			UserFactorsPath: "artifacts/user_factors.npy",
			ItemFactorsPath: "artifacts/item_factors.npy",
			MappingsPath:    "artifacts/als_mappings.json",
		}
	}
}

// LoadFromYAML 从 YAML 文件加载配置，未出现的字段取默认值。
func LoadFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}
