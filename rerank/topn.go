package rerank

import (
	"context"

	"github.com/merobazar/recsys/core"
	"github.com/merobazar/recsys/pipeline"
)

// TopNNode 是一个 Top-N 截断节点，用于在过滤/重排后截取前 N 个物品。
//
// 示例：
//
//	pipeline := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &recall.Hybrid{...},        // 混合召回（已过取 2×N）
//	        &filter.FilterNode{...},    // 过滤
//	        &rerank.TopNNode{},         // 按 rctx.Limit 截断
//	    },
//	}
type TopNNode struct {
	// N 要保留的物品数量（Top N）
	// 如果 N <= 0，则使用 rctx.Limit；两者都未设置时不截断
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.N
	if limit <= 0 {
		limit = rctx.LimitOr(0)
	}
	if limit <= 0 || len(items) <= limit {
		return items, nil
	}
	return items[:limit], nil
}
