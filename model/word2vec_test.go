package model

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func testVectors() map[string][]float64 {
	return map[string][]float64{
		"red":   {1, 0},
		"blue":  {0, 1},
		"shoes": {0.5, 0.5},
	}
}

func TestEncodeText_Mean(t *testing.T) {
	m := NewWord2VecModel(testVectors(), 0)

	// (red + blue) / 2 = [0.5, 0.5]
	got := m.EncodeText("red blue")
	if math.Abs(got[0]-0.5) > 1e-12 || math.Abs(got[1]-0.5) > 1e-12 {
		t.Errorf("EncodeText = %v, want [0.5 0.5]", got)
	}
}

func TestEncodeText_CaseAndOOV(t *testing.T) {
	m := NewWord2VecModel(testVectors(), 0)

	// 大小写不敏感，未登录词被跳过
	got := m.EncodeText("RED unknownword")
	if got[0] != 1 || got[1] != 0 {
		t.Errorf("EncodeText = %v, want [1 0]", got)
	}

	// 全部未登录时返回零向量
	zero := m.EncodeText("foo bar")
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("EncodeText all-OOV = %v, want zero vector", zero)
	}
}

func TestEncodeText_Deterministic(t *testing.T) {
	m := NewWord2VecModel(testVectors(), 0)
	a := m.EncodeText("red shoes")
	b := m.EncodeText("red shoes")
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same input produced different vectors: %v vs %v", a, b)
		}
	}
}

func TestLoadWord2VecFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.json")
	raw, _ := json.Marshal(testVectors())
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadWord2VecFile(path)
	if err != nil {
		t.Fatalf("LoadWord2VecFile: %v", err)
	}
	if m.Dimension != 2 {
		t.Errorf("Dimension = %d, want 2", m.Dimension)
	}
	if m.VocabSize() != 3 {
		t.Errorf("VocabSize = %d, want 3", m.VocabSize())
	}
}

func TestLoadWord2VecFile_DimMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	raw, _ := json.Marshal(map[string][]float64{
		"a": {1, 0},
		"b": {1},
	})
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadWord2VecFile(path); err == nil {
		t.Fatal("want error for inconsistent dimensions")
	}
}
