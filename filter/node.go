package filter

import (
	"context"

	"github.com/merobazar/recsys/core"
	"github.com/merobazar/recsys/pipeline"
	"github.com/merobazar/recsys/pkg/utils"
)

// FilterNode 是过滤 Node，可以组合多个过滤器进行过滤。
// 如果任何一个过滤器返回 true，该物品就会被过滤掉。
//
// Strict 为 false 时，过滤器报错会被忽略（该过滤器视为放行）；
// 为 true 时错误直接返回，适合“必须保证不推荐自己商品”这类约束。
type FilterNode struct {
	Filters []Filter
	Strict  bool
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	filters := make([]Filter, 0, len(n.Filters))
	for _, f := range n.Filters {
		bf, ok := f.(BatchFilter)
		if !ok {
			filters = append(filters, f)
			continue
		}
		bound, err := bf.Bind(ctx, rctx, items)
		if err != nil {
			if n.Strict {
				return nil, err
			}
			continue
		}
		filters = append(filters, bound)
	}

	out := make([]*core.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}

		shouldFilter := false
		filterReason := ""

		// 依次检查每个过滤器
		for _, f := range filters {
			ok, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				if n.Strict {
					return nil, err
				}
				continue
			}
			if ok {
				shouldFilter = true
				filterReason = f.Name()
				break
			}
		}

		if shouldFilter {
			// 记录过滤原因（用于调试/观测）
			item.PutLabel("filtered", utils.Label{
				Value:  "true",
				Source: filterReason,
			})
			continue
		}

		out = append(out, item)
	}

	return out, nil
}
