package rerank

import (
	"context"

	"github.com/merobazar/recsys/core"
	"github.com/merobazar/recsys/pipeline"
)

// Diversity 按类目打散：同一类目最多保留 MaxPerCategory 个（保留靠前的）。
// 类目来源优先级：
// - label[LabelKey].Value
// - meta[LabelKey] (string)
// - Catalog 中商品的 CategoryName（配置了 Catalog 时整批查询一次）
type Diversity struct {
	LabelKey       string // 默认 "category"
	MaxPerCategory int    // 默认 1
	Catalog        core.Catalog
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	ctx context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	key := n.LabelKey
	if key == "" {
		key = "category"
	}
	maxPer := n.MaxPerCategory
	if maxPer <= 0 {
		maxPer = 1
	}

	var listings map[string]core.Listing
	if n.Catalog != nil {
		var err error
		listings, err = n.Catalog.Listings(ctx, core.ItemIDs(items))
		if err != nil {
			return nil, err
		}
	}

	seen := make(map[string]int, 32)
	out := make([]*core.Item, 0, len(items))

	for _, it := range items {
		if it == nil {
			continue
		}

		cate := ""
		if lbl, ok := it.Labels[key]; ok {
			cate = lbl.Value
		}
		if cate == "" && it.Meta != nil {
			if s, ok := it.Meta[key].(string); ok {
				cate = s
			}
		}
		if cate == "" {
			cate = listings[it.ID].CategoryName
		}

		if cate == "" {
			out = append(out, it)
			continue
		}
		if seen[cate] >= maxPer {
			continue
		}
		seen[cate]++
		out = append(out, it)
	}

	return out, nil
}
