package vector

import (
	"math"
	"testing"
)

func TestFlatIndex_SearchRanking(t *testing.T) {
	// A/B/C 与查询 [1,0] 的内积降序应为 A > B > C
	idx, err := NewFlatIndex(2, [][]float64{
		{1, 0},
		{0.9, 0.1},
		{0, 1},
	})
	if err != nil {
		t.Fatalf("NewFlatIndex: %v", err)
	}

	hits := idx.Search([]float64{1, 0}, 3)
	if len(hits) != 3 {
		t.Fatalf("want 3 hits, got %d", len(hits))
	}
	wantOrder := []int{0, 1, 2}
	for i, hit := range hits {
		if hit.Index != wantOrder[i] {
			t.Errorf("rank %d: want row %d, got %d", i, wantOrder[i], hit.Index)
		}
	}
	if hits[0].Score <= hits[1].Score || hits[1].Score <= hits[2].Score {
		t.Errorf("scores not descending: %v", hits)
	}
}

func TestFlatIndex_SelfConsistency(t *testing.T) {
	// 用物品自身的向量检索，必须命中自身且得分约等于 1.0
	rows := [][]float64{
		{3, 4},
		{1, 1},
		{0, 2},
	}
	idx, err := NewFlatIndex(2, rows)
	if err != nil {
		t.Fatalf("NewFlatIndex: %v", err)
	}

	for i := range rows {
		hits := idx.Search(idx.Reconstruct(i), 1)
		if len(hits) == 0 {
			t.Fatalf("row %d: no hits", i)
		}
		if hits[0].Index != i {
			t.Errorf("row %d: top hit is row %d", i, hits[0].Index)
		}
		if math.Abs(hits[0].Score-1.0) > 1e-9 {
			t.Errorf("row %d: self score = %v, want 1.0", i, hits[0].Score)
		}
	}
}

func TestFlatIndex_TieKeepsRowOrder(t *testing.T) {
	// 同分时保持行序
	idx, err := NewFlatIndex(2, [][]float64{
		{0, 1},
		{1, 0},
		{1, 0},
	})
	if err != nil {
		t.Fatalf("NewFlatIndex: %v", err)
	}
	hits := idx.Search([]float64{1, 0}, 3)
	if hits[0].Index != 1 || hits[1].Index != 2 {
		t.Errorf("tie order broken: %v", hits)
	}
}

func TestFlatIndex_KLargerThanNtotal(t *testing.T) {
	idx, err := NewFlatIndex(1, [][]float64{{1}, {2}})
	if err != nil {
		t.Fatalf("NewFlatIndex: %v", err)
	}
	hits := idx.Search([]float64{1}, 10)
	if len(hits) != 2 {
		t.Errorf("want 2 hits, got %d", len(hits))
	}
}

func TestFlatIndex_DimMismatch(t *testing.T) {
	if _, err := NewFlatIndex(2, [][]float64{{1, 0}, {1}}); err == nil {
		t.Fatal("want error for row dim mismatch")
	}
}

func TestFlatIndex_ReconstructCopies(t *testing.T) {
	idx, err := NewFlatIndex(2, [][]float64{{1, 0}})
	if err != nil {
		t.Fatalf("NewFlatIndex: %v", err)
	}
	vec := idx.Reconstruct(0)
	vec[0] = 42
	if got := idx.Reconstruct(0)[0]; got == 42 {
		t.Error("Reconstruct returned internal storage")
	}
}

func TestNormalizeL2(t *testing.T) {
	got := NormalizeL2([]float64{3, 4})
	if math.Abs(got[0]-0.6) > 1e-12 || math.Abs(got[1]-0.8) > 1e-12 {
		t.Errorf("NormalizeL2([3 4]) = %v", got)
	}

	// 零向量原样返回，不产生 NaN
	zero := NormalizeL2([]float64{0, 0})
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("NormalizeL2 zero vector = %v", zero)
	}
}

func TestDot(t *testing.T) {
	if got := Dot([]float64{1, 2, 3}, []float64{4, 5, 6}); got != 32 {
		t.Errorf("Dot = %v, want 32", got)
	}
}
