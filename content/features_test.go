package content

import (
	"strings"
	"testing"

	"github.com/rushteam/hybrec/core"
)

func TestExtractFeatures(t *testing.T) {
	tests := []struct {
		name    string
		product *core.ProductMeta
		want    map[string]float64
	}{
		{
			name: "full metadata",
			product: &core.ProductMeta{
				ID:         "p1",
				CategoryID: "c9",
				Brand:      "Nike",
				Price:      1500,
				Tags:       []string{"Running", "shoes"},
			},
			want: map[string]float64{
				"category_c9":          1.0,
				"brand_nike":           1.0,
				"price_range_mid_range": 1.0,
				"tag_running":          1.0,
				"tag_shoes":            1.0,
			},
		},
		{
			name:    "budget bucket",
			product: &core.ProductMeta{ID: "p2", Price: 500},
			want:    map[string]float64{"price_range_budget": 1.0},
		},
		{
			name:    "premium bucket",
			product: &core.ProductMeta{ID: "p3", Price: 9999},
			want:    map[string]float64{"price_range_premium": 1.0},
		},
		{
			name:    "luxury bucket",
			product: &core.ProductMeta{ID: "p4", Price: 10001},
			want:    map[string]float64{"price_range_luxury": 1.0},
		},
		{
			name:    "empty metadata",
			product: &core.ProductMeta{ID: "p5"},
			want:    map[string]float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractFeatures(tt.product)
			if len(got) != len(tt.want) {
				t.Fatalf("features = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("feature %q = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}

func TestProfileQuery(t *testing.T) {
	const fallback = "popular trending products"

	t.Run("empty profile falls back", func(t *testing.T) {
		if got := ProfileQuery(nil, fallback); got != fallback {
			t.Errorf("got %q", got)
		}
	})

	t.Run("weak weights fall back", func(t *testing.T) {
		profile := map[string]float64{"brand_nike": 0.05, "tag_shoes": 0.1}
		if got := ProfileQuery(profile, fallback); got != fallback {
			t.Errorf("got %q", got)
		}
	})

	t.Run("dominant features produce phrase", func(t *testing.T) {
		profile := map[string]float64{
			"category_c1":        0.5,
			"brand_nike":         0.3,
			"price_range_budget": 0.2,
		}
		got := ProfileQuery(profile, fallback)
		if !strings.HasPrefix(got, "recommended ") {
			t.Fatalf("got %q", got)
		}
		for _, part := range []string{
			"products in this category",
			"nike brand products",
			"budget price range products",
		} {
			if !strings.Contains(got, part) {
				t.Errorf("query %q missing %q", got, part)
			}
		}
	})

	t.Run("at most three phrase parts", func(t *testing.T) {
		profile := map[string]float64{
			"category_c1": 0.3,
			"brand_a":     0.25,
			"tag_x":       0.2,
			"tag_y":       0.15,
			"tag_z":       0.12,
		}
		got := ProfileQuery(profile, fallback)
		if n := strings.Count(got, "products"); n != 3 {
			t.Errorf("query %q has %d parts, want 3", got, n)
		}
	})

	t.Run("deterministic on equal weights", func(t *testing.T) {
		profile := map[string]float64{"tag_b": 0.5, "tag_a": 0.5}
		first := ProfileQuery(profile, fallback)
		for i := 0; i < 10; i++ {
			if got := ProfileQuery(profile, fallback); got != first {
				t.Fatalf("unstable query: %q vs %q", got, first)
			}
		}
	})
}
