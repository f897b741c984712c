package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/hybrec/core"
	"github.com/rushteam/hybrec/pkg/utils"
)

func mkItem(id string, score float64, source string) *core.Item {
	it := core.NewItem(id)
	it.Score = score
	if source != "" {
		it.PutLabel("source", utils.Label{Value: source, Source: "fusion"})
	}
	return it
}

func ids(items []*core.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestRuleFilter(t *testing.T) {
	rctx := core.NewRecommendContext("u1")
	tests := []struct {
		name string
		expr string
		item *core.Item
		want bool
	}{
		{"empty expr keeps all", "", mkItem("A", 0.1, "hybrid"), false},
		{"score threshold hit", `item.score < 0.3`, mkItem("A", 0.1, "hybrid"), true},
		{"score threshold miss", `item.score < 0.3`, mkItem("A", 0.9, "hybrid"), false},
		{"label match", `label.source == "content_only"`, mkItem("A", 0.5, "content_only"), true},
		{"label mismatch", `label.source == "content_only"`, mkItem("A", 0.5, "hybrid"), false},
		{"combined", `label.source == "hybrid" && item.score > 0.8`, mkItem("A", 0.9, "hybrid"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewRuleFilter(tt.expr).ShouldFilter(context.Background(), rctx, tt.item)
			if err != nil {
				t.Fatalf("ShouldFilter: %v", err)
			}
			if got != tt.want {
				t.Errorf("ShouldFilter = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRuleFilterNilItem(t *testing.T) {
	got, err := NewRuleFilter(`item.score > 0`).ShouldFilter(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("ShouldFilter: %v", err)
	}
	if !got {
		t.Error("nil item must be filtered")
	}
}

func TestCandidateSetFilter(t *testing.T) {
	f := NewCandidateSetFilter([]string{"A", "B"})
	items := []*core.Item{mkItem("A", 1, ""), mkItem("C", 1, ""), mkItem("B", 1, "")}
	got := Apply(context.Background(), nil, items, []Filter{f})
	want := []string{"A", "B"}
	if len(got) != 2 || got[0].ID != want[0] || got[1].ID != want[1] {
		t.Errorf("got %v, want %v", ids(got), want)
	}
}

func TestExcludeFilter(t *testing.T) {
	f := NewExcludeFilter([]string{"B"})
	items := []*core.Item{mkItem("A", 1, ""), mkItem("B", 1, ""), mkItem("C", 1, "")}
	got := Apply(context.Background(), nil, items, []Filter{f})
	if len(got) != 2 || got[0].ID != "A" || got[1].ID != "C" {
		t.Errorf("got %v", ids(got))
	}
}

type errFilter struct{}

func (errFilter) Name() string { return "filter.err" }

func (errFilter) ShouldFilter(context.Context, *core.RecommendContext, *core.Item) (bool, error) {
	return true, errors.New("rule backend down")
}

func TestApplySkipsErroringFilter(t *testing.T) {
	items := []*core.Item{mkItem("A", 1, ""), mkItem("B", 1, "")}
	got := Apply(context.Background(), nil, items, []Filter{errFilter{}})
	// 出错的过滤器不生效，物品全部保留
	if len(got) != 2 {
		t.Errorf("got %d items, want 2", len(got))
	}
}

func TestApplyChainsFilters(t *testing.T) {
	items := []*core.Item{
		mkItem("A", 0.9, ""), mkItem("B", 0.2, ""), mkItem("C", 0.8, ""),
	}
	filters := []Filter{
		NewCandidateSetFilter([]string{"A", "B"}),
		NewRuleFilter(`item.score < 0.3`),
	}
	got := Apply(context.Background(), core.NewRecommendContext("u1"), items, filters)
	if len(got) != 1 || got[0].ID != "A" {
		t.Errorf("got %v, want [A]", ids(got))
	}
}
