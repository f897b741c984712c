package dsl

import (
	"testing"

	"github.com/rushteam/hybrec/core"
	"github.com/rushteam/hybrec/pkg/utils"
)

func testItem() *core.Item {
	it := core.NewItem("sku-1")
	it.Score = 0.82
	it.PutFeature("content_score", 0.9)
	it.PutFeature("cf_score", 0.75)
	it.PutLabel("source", utils.Label{Value: "hybrid", Source: "fusion"})
	return it
}

func testRctx() *core.RecommendContext {
	rctx := core.NewRecommendContext("u1")
	rctx.Query = "red shoes"
	return rctx
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"empty expr", "", true},
		{"label equality", `label.source == "hybrid"`, true},
		{"label inequality", `label.source != "content_only"`, true},
		{"label contains", `label.source.contains("hyb")`, true},
		{"item id", `item.id == "sku-1"`, true},
		{"score compare", `item.score > 0.7`, true},
		{"feature access", `item.features.cf_score >= 0.5`, true},
		{"rctx user", `rctx.user_id == "u1"`, true},
		{"rctx query", `rctx.query == "red shoes"`, true},
		{"logical and", `label.source == "hybrid" && item.score > 0.8`, true},
		{"false branch", `item.score > 0.99`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewEval(testItem(), testRctx()).Evaluate(tt.expr)
			if err != nil {
				t.Fatalf("Evaluate(%q): %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	e := NewEval(testItem(), testRctx())

	if _, err := e.Evaluate(`item.score >`); err == nil {
		t.Error("want compile error for malformed expression")
	}
	if _, err := e.Evaluate(`item.score + 1.0`); err == nil {
		t.Error("want error for non-boolean result")
	}
}

func TestEvaluateNilContext(t *testing.T) {
	got, err := NewEval(testItem(), nil).Evaluate(`item.score > 0.5`)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !got {
		t.Error("item expressions must work without a request context")
	}
}
