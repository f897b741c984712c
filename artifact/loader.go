package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/rushteam/hybrec/core"
	"github.com/rushteam/hybrec/model"
	"github.com/rushteam/hybrec/pkg/npy"
	"github.com/rushteam/hybrec/vector"
)

func missing(path string) error {
	return core.NewDomainError(core.ModuleArtifact, core.ErrorCodeArtifactMissing,
		fmt.Sprintf("artifact: required file not found: %s", path))
}

func invalid(format string, args ...any) error {
	return core.NewDomainError(core.ModuleArtifact, core.ErrorCodeInvalidInput,
		fmt.Sprintf("artifact: "+format, args...))
}

// loadEmbedding 读取 Embedding 矩阵与平行 id 数组，构建平铺索引与 id->行号映射。
func loadEmbedding(paths Paths, gen *Generation) error {
	if _, err := os.Stat(paths.Embeddings); err != nil {
		return missing(paths.Embeddings)
	}
	if _, err := os.Stat(paths.ItemIDs); err != nil {
		return missing(paths.ItemIDs)
	}

	mat, err := npy.ReadFile(paths.Embeddings)
	if err != nil {
		return fmt.Errorf("artifact: load embeddings: %w", err)
	}

	idsRaw, err := os.ReadFile(paths.ItemIDs)
	if err != nil {
		return missing(paths.ItemIDs)
	}
	var itemIDs []string
	if err := json.Unmarshal(idsRaw, &itemIDs); err != nil {
		return fmt.Errorf("artifact: parse item ids %s: %w", paths.ItemIDs, err)
	}

	if len(itemIDs) != mat.Rows {
		return invalid("item id count %d does not match embedding rows %d", len(itemIDs), mat.Rows)
	}

	rows := make([][]float64, mat.Rows)
	for i := 0; i < mat.Rows; i++ {
		rows[i] = mat.Row(i)
	}
	index, err := vector.NewFlatIndex(mat.Cols, rows)
	if err != nil {
		return err
	}

	itemRow := make(map[string]int, len(itemIDs))
	for i, id := range itemIDs {
		itemRow[id] = i
	}

	gen.index = index
	gen.itemIDs = itemIDs
	gen.itemRow = itemRow
	return nil
}

// loadEncoder 读取词向量词表。
func loadEncoder(paths Paths, gen *Generation) error {
	if _, err := os.Stat(paths.WordVectors); err != nil {
		return missing(paths.WordVectors)
	}
	encoder, err := model.LoadWord2VecFile(paths.WordVectors)
	if err != nil {
		return fmt.Errorf("artifact: load encoder: %w", err)
	}
	gen.encoder = encoder
	return nil
}

// loadCollaborative 读取隐向量矩阵与双向映射，并构建行号->物品 id 的快速查表。
func loadCollaborative(paths Paths, gen *Generation) error {
	for _, p := range []string{paths.UserFactors, paths.ItemFactors, paths.Mappings} {
		if _, err := os.Stat(p); err != nil {
			return missing(p)
		}
	}

	userFactors, err := npy.ReadFile(paths.UserFactors)
	if err != nil {
		return fmt.Errorf("artifact: load user factors: %w", err)
	}
	itemFactors, err := npy.ReadFile(paths.ItemFactors)
	if err != nil {
		return fmt.Errorf("artifact: load item factors: %w", err)
	}

	raw, err := os.ReadFile(paths.Mappings)
	if err != nil {
		return missing(paths.Mappings)
	}
	var mappings Mappings
	if err := json.Unmarshal(raw, &mappings); err != nil {
		return fmt.Errorf("artifact: parse mappings %s: %w", paths.Mappings, err)
	}

	cfItemByRow := make([]string, itemFactors.Rows)
	for idxStr, itemID := range mappings.IdxToItemID {
		idx, err := strconv.Atoi(idxStr)
		if err != nil || idx < 0 || idx >= itemFactors.Rows {
			return invalid("mapping row %q out of range for %d item factors", idxStr, itemFactors.Rows)
		}
		cfItemByRow[idx] = itemID
	}

	gen.userFactors = userFactors
	gen.itemFactors = itemFactors
	gen.mappings = &mappings
	gen.cfItemByRow = cfItemByRow
	return nil
}

// validate 检查一代工件的跨组一致性。
// 任一检查失败都意味着离线任务产物损坏，整代拒绝发布。
func validate(gen *Generation) error {
	if gen.encoder != nil && gen.index != nil && gen.encoder.Dimension != gen.index.Dim() {
		return invalid("encoder dimension %d does not match index dimension %d",
			gen.encoder.Dimension, gen.index.Dim())
	}

	if gen.mappings != nil {
		if gen.userFactors.Cols != gen.itemFactors.Cols {
			return invalid("factor rank mismatch: users %d, items %d",
				gen.userFactors.Cols, gen.itemFactors.Cols)
		}
		if len(gen.mappings.UserIDToIdx) != gen.userFactors.Rows ||
			len(gen.mappings.IdxToUserID) != gen.userFactors.Rows {
			return invalid("user mapping count does not match %d user factor rows", gen.userFactors.Rows)
		}
		if len(gen.mappings.ItemIDToIdx) != gen.itemFactors.Rows ||
			len(gen.mappings.IdxToItemID) != gen.itemFactors.Rows {
			return invalid("item mapping count does not match %d item factor rows", gen.itemFactors.Rows)
		}
		for userID, idx := range gen.mappings.UserIDToIdx {
			if idx < 0 || idx >= gen.userFactors.Rows {
				return invalid("user %q mapped to row %d out of range", userID, idx)
			}
		}
		for itemID, idx := range gen.mappings.ItemIDToIdx {
			if idx < 0 || idx >= gen.itemFactors.Rows {
				return invalid("item %q mapped to row %d out of range", itemID, idx)
			}
		}
	}
	return nil
}
