package dsl

import (
	"testing"

	"github.com/merobazar/recsys/core"
	"github.com/merobazar/recsys/pkg/utils"
)

func TestEvaluate(t *testing.T) {
	item := core.NewItem("i1")
	item.Score = 0.6
	item.PutLabel("recall_source", utils.Label{Value: "hybrid", Source: "recall"})
	item.PutLabel("hybrid_sources", utils.Label{Value: "collaborative", Source: "recall"})
	item.PutLabel("hybrid_sources", utils.Label{Value: "content", Source: "recall"})
	rctx := &core.RecommendContext{UserID: "u1", Scene: "home", Limit: 10}

	tests := []struct {
		name    string
		expr    string
		want    bool
		wantErr bool
	}{
		{name: "empty", expr: "", want: true},
		{name: "label equals", expr: `label.recall_source == "hybrid"`, want: true},
		{name: "merged label contains", expr: `label.hybrid_sources.contains("content")`, want: true},
		{name: "score", expr: `item.score >= 0.5`, want: true},
		{name: "score false", expr: `item.score > 0.9`, want: false},
		{name: "scene", expr: `rctx.scene == "home" && rctx.limit == 10`, want: true},
		{name: "label presence", expr: `"missing" in label`, want: false},
		{name: "not boolean", expr: `item.score`, wantErr: true},
		{name: "syntax", expr: `item.score >=`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewEval(item, rctx).Evaluate(tt.expr)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}
