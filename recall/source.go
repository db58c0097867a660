package recall

import (
	"context"

	"github.com/merobazar/recsys/core"
)

// Source 表示一个可复用的召回源（协同/内容/混合/热门）。
// 你可以把它理解为“可并发 fan-out 的策略单元”。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// Recommender 是按用户产出 TopN 的个性化召回源，Hybrid 通过它组合子策略。
type Recommender interface {
	Source
	Recommend(ctx context.Context, userID string, topN int) ([]*core.Item, error)
}

// eligible 批量查询商品，只保留上架且不属于 userID 的。
func eligible(ctx context.Context, catalog core.Catalog, userID string, ids []string) (map[string]core.Listing, error) {
	if len(ids) == 0 {
		return map[string]core.Listing{}, nil
	}
	listings, err := catalog.Listings(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]core.Listing, len(listings))
	for id, l := range listings {
		if !l.Active || l.OwnedBy(userID) {
			continue
		}
		out[id] = l
	}
	return out, nil
}

func keys(m map[string]float64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func limitOr(n, def int) int {
	if n > 0 {
		return n
	}
	return def
}
