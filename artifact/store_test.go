package artifact

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/hybrec/core"
	"github.com/rushteam/hybrec/pkg/npy"
)

// writeTestArtifacts 在 dir 下写出一套最小可用的工件：
// 3 个物品 A/B/C（2 维 Embedding），2 个用户 u1/u2，
// u1 对 A/B/C 的隐向量内积为 5/3/1。
func writeTestArtifacts(t *testing.T, dir string) Paths {
	t.Helper()

	paths := Paths{
		Embeddings:  filepath.Join(dir, "product_embeddings.npy"),
		ItemIDs:     filepath.Join(dir, "product_ids.json"),
		WordVectors: filepath.Join(dir, "word_vectors.json"),
		UserFactors: filepath.Join(dir, "user_factors.npy"),
		ItemFactors: filepath.Join(dir, "item_factors.npy"),
		Mappings:    filepath.Join(dir, "als_mappings.json"),
	}

	mustWriteNPY(t, paths.Embeddings, &npy.Matrix{
		Rows: 3, Cols: 2,
		Data: []float64{1, 0, 0.9, 0.1, 0, 1},
	})
	mustWriteJSON(t, paths.ItemIDs, []string{"A", "B", "C"})
	mustWriteJSON(t, paths.WordVectors, map[string][]float64{
		"red":  {1, 0},
		"blue": {0, 1},
	})
	mustWriteNPY(t, paths.UserFactors, &npy.Matrix{
		Rows: 2, Cols: 2,
		Data: []float64{1, 0, 0, 1},
	})
	mustWriteNPY(t, paths.ItemFactors, &npy.Matrix{
		Rows: 3, Cols: 2,
		Data: []float64{5, 0, 3, 0, 1, 0},
	})
	mustWriteJSON(t, paths.Mappings, map[string]any{
		"user_id_to_idx": map[string]int{"u1": 0, "u2": 1},
		"item_id_to_idx": map[string]int{"A": 0, "B": 1, "C": 2},
		"idx_to_user_id": map[string]string{"0": "u1", "1": "u2"},
		"idx_to_item_id": map[string]string{"0": "A", "1": "B", "2": "C"},
	})
	return paths
}

func mustWriteNPY(t *testing.T, path string, m *npy.Matrix) {
	t.Helper()
	if err := npy.WriteFile(path, m); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func mustWriteJSON(t *testing.T, path string, v any) {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", path, err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadAndAccessors(t *testing.T) {
	store := NewStore(writeTestArtifacts(t, t.TempDir()))
	if err := store.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	gen, err := store.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if gen.Index().Ntotal() != 3 || gen.Index().Dim() != 2 {
		t.Errorf("index shape = %dx%d", gen.Index().Ntotal(), gen.Index().Dim())
	}
	if row, ok := gen.RowOf("B"); !ok || row != 1 {
		t.Errorf("RowOf(B) = %d,%v", row, ok)
	}
	if _, ok := gen.RowOf("missing"); ok {
		t.Error("RowOf(missing) should report absent")
	}
	if row, ok := gen.UserRow("u2"); !ok || row != 1 {
		t.Errorf("UserRow(u2) = %d,%v", row, ok)
	}
	if id, ok := gen.CFItemIDAt(2); !ok || id != "C" {
		t.Errorf("CFItemIDAt(2) = %q,%v", id, ok)
	}
	if gen.Encoder().Dimension != 2 {
		t.Errorf("encoder dimension = %d", gen.Encoder().Dimension)
	}
}

func TestAccessBeforeLoad(t *testing.T) {
	store := NewStore(Paths{})
	if _, err := store.Index(); !core.IsNotLoaded(err) {
		t.Errorf("Index before load: err = %v, want NOT_LOADED", err)
	}
	if _, err := store.Snapshot(); !core.IsNotLoaded(err) {
		t.Errorf("Snapshot before load: err = %v, want NOT_LOADED", err)
	}
	if err := store.ReloadCollaborative(); !core.IsNotLoaded(err) {
		t.Errorf("Reload before load: err = %v, want NOT_LOADED", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	paths := writeTestArtifacts(t, t.TempDir())
	if err := os.Remove(paths.Embeddings); err != nil {
		t.Fatal(err)
	}
	store := NewStore(paths)
	if err := store.Load(); !core.IsArtifactMissing(err) {
		t.Errorf("Load with missing embeddings: err = %v, want ARTIFACT_MISSING", err)
	}
}

func TestLoadIDCountMismatch(t *testing.T) {
	paths := writeTestArtifacts(t, t.TempDir())
	mustWriteJSON(t, paths.ItemIDs, []string{"A", "B"})
	store := NewStore(paths)
	if err := store.Load(); err == nil {
		t.Fatal("want error for id/row count mismatch")
	}
}

func TestReloadFailureKeepsPreviousGeneration(t *testing.T) {
	paths := writeTestArtifacts(t, t.TempDir())
	store := NewStore(paths)
	if err := store.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	before, _ := store.Snapshot()

	if err := os.Remove(paths.UserFactors); err != nil {
		t.Fatal(err)
	}
	if err := store.ReloadCollaborative(); !core.IsArtifactMissing(err) {
		t.Fatalf("Reload with missing factors: err = %v, want ARTIFACT_MISSING", err)
	}

	// 失败的重载不提交，旧 generation 继续服务
	after, err := store.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot after failed reload: %v", err)
	}
	if after != before {
		t.Error("failed reload replaced the serving generation")
	}
	if after.UserFactors().Rows != 2 {
		t.Errorf("user factors rows = %d, want 2", after.UserFactors().Rows)
	}
}

func TestReloadCollaborativeSwapsFactors(t *testing.T) {
	paths := writeTestArtifacts(t, t.TempDir())
	store := NewStore(paths)
	if err := store.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	old, _ := store.Snapshot()

	mustWriteNPY(t, paths.ItemFactors, &npy.Matrix{
		Rows: 3, Cols: 2,
		Data: []float64{7, 0, 8, 0, 9, 0},
	})
	if err := store.ReloadCollaborative(); err != nil {
		t.Fatalf("ReloadCollaborative: %v", err)
	}

	gen, _ := store.Snapshot()
	if gen.ItemFactors().Row(0)[0] != 7 {
		t.Errorf("item factors not reloaded: %v", gen.ItemFactors().Row(0))
	}
	// 在途请求持有的旧快照不受影响
	if old.ItemFactors().Row(0)[0] != 5 {
		t.Errorf("old generation mutated: %v", old.ItemFactors().Row(0))
	}
	// Embedding 组沿用旧引用
	if gen.Index() != old.Index() {
		t.Error("embedding group should be shared across collaborative reload")
	}
}

func TestStatus(t *testing.T) {
	store := NewStore(writeTestArtifacts(t, t.TempDir()))

	if st := store.Status(); st.EmbeddingLoaded || st.CollaborativeLoaded {
		t.Errorf("unexpected status before load: %+v", st)
	}

	if err := store.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	st := store.Status()
	if !st.EmbeddingLoaded || !st.EncoderLoaded || !st.CollaborativeLoaded {
		t.Errorf("status groups = %+v", st)
	}
	if st.VectorCount != 3 || st.Dimension != 2 || st.UserCount != 2 || st.ItemCount != 3 || st.FactorRank != 2 {
		t.Errorf("status sizes = %+v", st)
	}
	if st.VocabSize != 2 {
		t.Errorf("vocab size = %d, want 2", st.VocabSize)
	}
	if st.LoadedAt.IsZero() {
		t.Error("LoadedAt not set")
	}
}

func TestValidateRejectsRankMismatch(t *testing.T) {
	paths := writeTestArtifacts(t, t.TempDir())
	// 用户隐向量维度与物品不一致
	mustWriteNPY(t, paths.UserFactors, &npy.Matrix{
		Rows: 2, Cols: 3,
		Data: []float64{1, 0, 0, 0, 1, 0},
	})
	store := NewStore(paths)
	if err := store.Load(); err == nil {
		t.Fatal("want error for factor rank mismatch")
	}
}
