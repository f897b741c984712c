// Package model 提供文本编码模型。
package model

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Word2VecModel 是词向量文本编码器。
//
// 核心思想：
//   - 离线任务把物品标题/描述/标签训练为词向量表并与 Embedding 矩阵
//     使用同一向量空间
//   - 在线编码 = 分词后词向量的平均，OOV 词跳过
//   - 对相同输入与相同词表版本，输出严格确定
//
// 工程特征：
//   - 实时性：好（预加载词表，O(词数) 编码）
//   - 计算复杂度：低（向量平均）
type Word2VecModel struct {
	// WordVectors 词向量表：word -> vector
	WordVectors map[string][]float64

	// Dimension 向量维度
	Dimension int
}

// NewWord2VecModel 创建编码器；dimension<=0 时从第一个向量推断维度。
func NewWord2VecModel(wordVectors map[string][]float64, dimension int) *Word2VecModel {
	if dimension <= 0 {
		for _, vec := range wordVectors {
			dimension = len(vec)
			break
		}
	}
	return &Word2VecModel{
		WordVectors: wordVectors,
		Dimension:   dimension,
	}
}

// VocabSize 返回词表大小。
func (m *Word2VecModel) VocabSize() int { return len(m.WordVectors) }

// EncodeText 将文本编码为向量：小写、按空白分词、词向量平均。
// 所有词都 OOV 时返回零向量。
func (m *Word2VecModel) EncodeText(text string) []float64 {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(text)))
	aggregated := make([]float64, m.Dimension)
	if len(words) == 0 {
		return aggregated
	}

	validCount := 0
	for _, word := range words {
		vec, ok := m.WordVectors[word]
		if !ok || len(vec) != m.Dimension {
			continue
		}
		validCount++
		for i := 0; i < m.Dimension; i++ {
			aggregated[i] += vec[i]
		}
	}

	if validCount == 0 {
		return aggregated
	}
	for i := 0; i < m.Dimension; i++ {
		aggregated[i] /= float64(validCount)
	}
	return aggregated
}

// LoadWord2VecFile 从 JSON 词表文件（word -> []float64）加载编码器。
// 所有向量维度必须一致。
func LoadWord2VecFile(path string) (*Word2VecModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string][]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("word2vec: parse %s: %w", path, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("word2vec: empty vocabulary in %s", path)
	}

	dimension := 0
	for word, vec := range raw {
		if dimension == 0 {
			dimension = len(vec)
			continue
		}
		if len(vec) != dimension {
			return nil, fmt.Errorf("word2vec: word %q has dimension %d, expected %d", word, len(vec), dimension)
		}
	}
	if dimension == 0 {
		return nil, fmt.Errorf("word2vec: no valid vectors in %s", path)
	}

	return NewWord2VecModel(raw, dimension), nil
}
