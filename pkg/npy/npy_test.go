package npy

import (
	"math"
	"path/filepath"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mat.npy")
	want := &Matrix{
		Rows: 2,
		Cols: 3,
		Data: []float64{1, 2, 3, 4.5, -6, 0.125},
	}
	if err := WriteFile(path, want); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.Rows != want.Rows || got.Cols != want.Cols {
		t.Fatalf("shape = %dx%d, want %dx%d", got.Rows, got.Cols, want.Rows, want.Cols)
	}
	for i := range want.Data {
		if got.Data[i] != want.Data[i] {
			t.Errorf("data[%d] = %v, want %v", i, got.Data[i], want.Data[i])
		}
	}
}

func TestRowView(t *testing.T) {
	m := &Matrix{Rows: 2, Cols: 2, Data: []float64{1, 2, 3, 4}}
	row := m.Row(1)
	if row[0] != 3 || row[1] != 4 {
		t.Errorf("Row(1) = %v", row)
	}
}

func TestRank1RoundTrip(t *testing.T) {
	// 一维数组表达为 n×1
	path := filepath.Join(t.TempDir(), "vec.npy")
	want := &Matrix{Rows: 4, Cols: 1, Data: []float64{0.5, 1.5, 2.5, 3.5}}
	if err := WriteFile(path, want); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.Rows*got.Cols != 4 {
		t.Fatalf("element count = %d, want 4", got.Rows*got.Cols)
	}
	for i, v := range want.Data {
		if math.Abs(got.Data[i]-v) > 1e-12 {
			t.Errorf("data[%d] = %v, want %v", i, got.Data[i], v)
		}
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "nope.npy")); err == nil {
		t.Fatal("want error for missing file")
	}
}
