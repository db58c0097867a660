package recall

import (
	"context"
	"fmt"

	"github.com/merobazar/recsys/core"
	"github.com/merobazar/recsys/pipeline"
	"github.com/merobazar/recsys/pkg/utils"
	"github.com/merobazar/recsys/vector"
)

// ContentRecall 是基于内容相似度的召回源。
// 对用户交互过的每个商品取其 Top 相似商品，score[other] += 交互强度 × 商品相似度。
// 结果只保留上架且不属于该用户的商品。
type ContentRecall struct {
	Interactions core.InteractionLog
	Catalog      core.Catalog
	Similarity   *ItemSimilarity

	// NeighborLimit 每个商品读取的相似商品数，<= 0 时默认 10
	NeighborLimit int

	// TopK 未指定数量时的返回条数，<= 0 时默认 20
	TopK int
}

func (r *ContentRecall) Name() string        { return "recall.content" }
func (r *ContentRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *ContentRecall) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *ContentRecall) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if rctx == nil || rctx.UserID == "" {
		return nil, nil
	}
	return r.Recommend(ctx, rctx.UserID, rctx.LimitOr(limitOr(r.TopK, 20)))
}

func (r *ContentRecall) Recommend(ctx context.Context, userID string, topN int) ([]*core.Item, error) {
	if userID == "" {
		return nil, nil
	}
	topN = limitOr(topN, limitOr(r.TopK, 20))

	history, err := r.Interactions.ByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user interactions: %w", err)
	}
	if len(history) == 0 {
		return nil, nil
	}

	scores := make(map[string]float64)
	for _, in := range history {
		neighbors, err := r.Similarity.Ensure(ctx, in.ItemID, limitOr(r.NeighborLimit, 10))
		if err != nil {
			return nil, fmt.Errorf("item neighbors %s: %w", in.ItemID, err)
		}
		for _, nb := range neighbors {
			if nb.ID == in.ItemID {
				continue
			}
			scores[nb.ID] += in.Strength() * nb.Score
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
		it.PutLabel("recall_source", utils.Label{Value: "content", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
