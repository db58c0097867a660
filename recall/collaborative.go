package recall

import (
	"context"
	"fmt"

	"github.com/merobazar/recsys/core"
	"github.com/merobazar/recsys/pipeline"
	"github.com/merobazar/recsys/pkg/utils"
	"github.com/merobazar/recsys/vector"
)

// UserBasedCF 是基于用户的协同过滤召回源（User-CF）。
//
// 核心思想："兴趣相似的用户，喜欢相似的物品"
//
// 算法流程：
//  1. 读取目标用户已持久化的 Top 邻居；从未计算过则同步计算一次
//  2. 遍历每个邻居的交互，跳过目标用户自己发布的商品
//  3. score[item] += 交互强度 × 邻居相似度
//  4. 只保留上架商品，按分数降序取 TopN
//
// 冷启动：计算后仍无邻居时返回空，由调用方走热门兜底。
type UserBasedCF struct {
	Interactions core.InteractionLog
	Catalog      core.Catalog
	Similarity   *UserSimilarity

	// NeighborLimit 读取的邻居数，<= 0 时默认 10
	NeighborLimit int

	// TopK 未指定数量时的返回条数，<= 0 时默认 20
	TopK int
}

func (r *UserBasedCF) Name() string        { return "recall.collaborative" }
func (r *UserBasedCF) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *UserBasedCF) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *UserBasedCF) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if rctx == nil || rctx.UserID == "" {
		return nil, nil
	}
	return r.Recommend(ctx, rctx.UserID, rctx.LimitOr(limitOr(r.TopK, 20)))
}

func (r *UserBasedCF) Recommend(ctx context.Context, userID string, topN int) ([]*core.Item, error) {
	if userID == "" {
		return nil, nil
	}
	topN = limitOr(topN, limitOr(r.TopK, 20))

	neighbors, err := r.Similarity.Ensure(ctx, userID, limitOr(r.NeighborLimit, 10))
	if err != nil {
		return nil, fmt.Errorf("user neighbors: %w", err)
	}
	if len(neighbors) == 0 {
		return nil, nil
	}

	scores := make(map[string]float64)
	for _, nb := range neighbors {
		interactions, err := r.Interactions.ByUser(ctx, nb.ID)
		if err != nil {
			return nil, fmt.Errorf("neighbor interactions %s: %w", nb.ID, err)
		}
		for _, in := range interactions {
			scores[in.ItemID] += in.Strength() * nb.Score
		}
	}

	allowed, err := eligible(ctx, r.Catalog, userID, keys(scores))
	if err != nil {
		return nil, fmt.Errorf("filter listings: %w", err)
	}
	for id := range scores {
		if _, ok := allowed[id]; !ok {
			delete(scores, id)
		}
	}

	ranked := vector.RankMap(scores)
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	out := make([]*core.Item, 0, len(ranked))
	for _, s := range ranked {
		it := core.NewItem(s.ID)
		it.Score = s.Score
		it.PutLabel("recall_source", utils.Label{Value: "collaborative", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
