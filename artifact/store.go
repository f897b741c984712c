// Package artifact 负责离线训练产物的加载、持有与原子热更新。
//
// 三组工件：
//   - embedding: 物品 Embedding 矩阵（NPY）+ 平行物品 id 数组（JSON），
//     行 i ↔ id 数组第 i 个元素；加载时就地构建平铺内积索引
//   - encoder: 词向量词表（JSON），与 Embedding 同一向量空间
//   - collaborative: 用户/物品隐向量矩阵（NPY）+ 双向 id↔行号映射（JSON）
//
// 并发模型：单写多读。加载/热更新在旁路构建完整的 generation，
// 校验通过后整体替换指针；在途请求持有旧 generation 快照，
// 永远不会读到半更新状态。
package artifact

import (
	"fmt"
	"sync"
	"time"

	"github.com/rushteam/hybrec/core"
	"github.com/rushteam/hybrec/model"
	"github.com/rushteam/hybrec/pkg/npy"
	"github.com/rushteam/hybrec/vector"
)

// Group 标识一组可独立热更新的工件。
type Group string

const (
	GroupEmbedding     Group = "embedding"
	GroupEncoder       Group = "encoder"
	GroupCollaborative Group = "collaborative"
)

// Paths 是各工件文件的路径配置。
type Paths struct {
	Embeddings  string // 物品 Embedding 矩阵（NPY, rows×d）
	ItemIDs     string // 平行物品 id 数组（JSON string array）
	WordVectors string // 词向量词表（JSON, word -> []float64）
	UserFactors string // 用户隐向量矩阵（NPY, users×f）
	ItemFactors string // 物品隐向量矩阵（NPY, items×f）
	Mappings    string // 双向 id↔行号映射（JSON）
}

// Mappings 是协同过滤的 id↔行号双向映射。
// JSON 的行号 key 为十进制字符串（与离线任务的序列化格式一致）。
type Mappings struct {
	UserIDToIdx map[string]int    `json:"user_id_to_idx"`
	ItemIDToIdx map[string]int    `json:"item_id_to_idx"`
	IdxToUserID map[string]string `json:"idx_to_user_id"`
	IdxToItemID map[string]string `json:"idx_to_item_id"`
}

// Generation 是一代已加载并通过校验的工件集合。
// 创建后只读；持有者可以在任意 goroutine 上并发使用。
type Generation struct {
	index   *vector.FlatIndex
	itemIDs []string
	itemRow map[string]int // embedding 空间的 id -> 行号

	encoder *model.Word2VecModel

	userFactors *npy.Matrix
	itemFactors *npy.Matrix
	mappings    *Mappings
	cfItemByRow []string // 协同空间的行号 -> 物品 id

	loadedAt time.Time
}

// Index 返回平铺内积索引。
func (g *Generation) Index() *vector.FlatIndex { return g.index }

// ItemIDs 返回与索引行序平行的物品 id 数组。
func (g *Generation) ItemIDs() []string { return g.itemIDs }

// RowOf 返回物品在 Embedding 索引中的行号。
func (g *Generation) RowOf(itemID string) (int, bool) {
	row, ok := g.itemRow[itemID]
	return row, ok
}

// Encoder 返回文本编码器。
func (g *Generation) Encoder() *model.Word2VecModel { return g.encoder }

// UserFactors 返回用户隐向量矩阵。
func (g *Generation) UserFactors() *npy.Matrix { return g.userFactors }

// ItemFactors 返回物品隐向量矩阵。
func (g *Generation) ItemFactors() *npy.Matrix { return g.itemFactors }

// Mappings 返回 id↔行号映射。
func (g *Generation) Mappings() *Mappings { return g.mappings }

// UserRow 返回用户在隐向量矩阵中的行号；不存在即冷用户。
func (g *Generation) UserRow(userID string) (int, bool) {
	row, ok := g.mappings.UserIDToIdx[userID]
	return row, ok
}

// ItemRow 返回物品在隐向量矩阵中的行号；不存在即冷物品。
func (g *Generation) ItemRow(itemID string) (int, bool) {
	row, ok := g.mappings.ItemIDToIdx[itemID]
	return row, ok
}

// CFItemIDAt 返回协同空间中行号对应的物品 id。
func (g *Generation) CFItemIDAt(row int) (string, bool) {
	if row < 0 || row >= len(g.cfItemByRow) {
		return "", false
	}
	id := g.cfItemByRow[row]
	return id, id != ""
}

// Status 报告各工件组的加载情况与规模（供管理接口使用）。
type Status struct {
	EmbeddingLoaded     bool      `json:"embedding_loaded"`
	VectorCount         int       `json:"vector_count"`
	Dimension           int       `json:"dimension"`
	EncoderLoaded       bool      `json:"encoder_loaded"`
	VocabSize           int       `json:"vocab_size"`
	CollaborativeLoaded bool      `json:"collaborative_loaded"`
	UserCount           int       `json:"user_count"`
	ItemCount           int       `json:"item_count"`
	FactorRank          int       `json:"factor_rank"`
	LoadedAt            time.Time `json:"loaded_at,omitempty"`
}

// Store 持有当前 generation 并提供加载/热更新/快照能力。
type Store struct {
	paths Paths

	mu  sync.RWMutex
	gen *Generation
}

// NewStore 创建一个未加载的工件仓库；必须先 Load 才能使用 getter。
func NewStore(paths Paths) *Store {
	return &Store{paths: paths}
}

var errNotLoaded = core.NewDomainError(core.ModuleArtifact, core.ErrorCodeNotLoaded, "artifact: models not loaded")

// Load 依次加载三组工件并整体发布。任何文件缺失或校验失败都不提交，
// 先前的 generation（如有）继续服务。
func (s *Store) Load() error {
	gen := &Generation{}
	if err := loadEmbedding(s.paths, gen); err != nil {
		return err
	}
	if err := loadEncoder(s.paths, gen); err != nil {
		return err
	}
	if err := loadCollaborative(s.paths, gen); err != nil {
		return err
	}
	if err := validate(gen); err != nil {
		return err
	}
	gen.loadedAt = time.Now()

	s.mu.Lock()
	s.gen = gen
	s.mu.Unlock()
	return nil
}

// Reload 重新读取一组工件并换入。以当前 generation 为底座构建新代，
// 校验通过后整体替换；未加载过时等价于一次组内加载失败。
func (s *Store) Reload(group Group) error {
	s.mu.RLock()
	cur := s.gen
	s.mu.RUnlock()
	if cur == nil {
		return errNotLoaded
	}

	next := *cur // 浅拷贝：未更新的组沿用旧引用
	var err error
	switch group {
	case GroupEmbedding:
		err = loadEmbedding(s.paths, &next)
	case GroupEncoder:
		err = loadEncoder(s.paths, &next)
	case GroupCollaborative:
		err = loadCollaborative(s.paths, &next)
	default:
		return core.NewDomainError(core.ModuleArtifact, core.ErrorCodeInvalidInput,
			fmt.Sprintf("artifact: unknown group %q", group))
	}
	if err != nil {
		return err
	}
	if err := validate(&next); err != nil {
		return err
	}
	next.loadedAt = time.Now()

	s.mu.Lock()
	s.gen = &next
	s.mu.Unlock()
	return nil
}

// ReloadCollaborative 是管理层“重载协同工件”的入口。
func (s *Store) ReloadCollaborative() error {
	return s.Reload(GroupCollaborative)
}

// Snapshot 返回当前 generation；请求期间持有该快照即可保证一致性。
func (s *Store) Snapshot() (*Generation, error) {
	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()
	if gen == nil {
		return nil, errNotLoaded
	}
	return gen, nil
}

// Status 报告当前加载状态；未加载时返回零值状态。
func (s *Store) Status() Status {
	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()
	if gen == nil {
		return Status{}
	}
	return Status{
		EmbeddingLoaded:     gen.index != nil,
		VectorCount:         gen.index.Ntotal(),
		Dimension:           gen.index.Dim(),
		EncoderLoaded:       gen.encoder != nil,
		VocabSize:           gen.encoder.VocabSize(),
		CollaborativeLoaded: gen.mappings != nil,
		UserCount:           gen.userFactors.Rows,
		ItemCount:           gen.itemFactors.Rows,
		FactorRank:          gen.itemFactors.Cols,
		LoadedAt:            gen.loadedAt,
	}
}

// 便捷 getter：与 Snapshot 等价，但只取单个工件。

func (s *Store) Index() (*vector.FlatIndex, error) {
	gen, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return gen.index, nil
}

func (s *Store) ItemIDs() ([]string, error) {
	gen, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return gen.itemIDs, nil
}

func (s *Store) Encoder() (*model.Word2VecModel, error) {
	gen, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return gen.encoder, nil
}

func (s *Store) UserFactors() (*npy.Matrix, error) {
	gen, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return gen.userFactors, nil
}

func (s *Store) ItemFactors() (*npy.Matrix, error) {
	gen, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return gen.itemFactors, nil
}

func (s *Store) IDMappings() (*Mappings, error) {
	gen, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return gen.mappings, nil
}
