package recall

import (
	"context"
	"fmt"
	"time"

	"github.com/merobazar/recsys/core"
	"github.com/merobazar/recsys/pipeline"
	"github.com/merobazar/recsys/pkg/conv"
	"github.com/merobazar/recsys/pkg/utils"
	"github.com/merobazar/recsys/vector"
)

// Popular 是热门召回源：统计时间窗口内每个上架商品的交互行数，按次数降序取 TopN，
// 同次数按商品 ID 升序，保证同一快照与窗口下结果确定。
// 不依赖个性化数据，是匿名用户、新用户以及个性化失败时的兜底。
type Popular struct {
	Interactions core.InteractionLog
	Catalog      core.Catalog

	// WindowDays 统计窗口（天），<= 0 时默认 30；可被 rctx.Params["window_days"] 覆盖
	WindowDays int

	// TopK 未指定数量时的返回条数，<= 0 时默认 20
	TopK int

	// Now 用于测试注入时间，默认 time.Now
	Now func() time.Time
}

func (r *Popular) Name() string        { return "recall.popular" }
func (r *Popular) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *Popular) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口
func (r *Popular) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	topN := rctx.LimitOr(limitOr(r.TopK, 20))
	window := r.WindowDays
	if rctx != nil && rctx.Params != nil {
		if days, ok := conv.ToInt(rctx.Params["window_days"]); ok {
			window = days
		}
	}
	return r.Top(ctx, topN, window)
}

// Top 返回窗口内交互次数最多的 topN 个上架商品。
func (r *Popular) Top(ctx context.Context, topN, windowDays int) ([]*core.Item, error) {
	topN = limitOr(topN, limitOr(r.TopK, 20))
	windowDays = limitOr(windowDays, limitOr(r.WindowDays, 30))

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	since := now().Add(-time.Duration(windowDays) * 24 * time.Hour)

	recent, err := r.Interactions.Since(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("recent interactions: %w", err)
	}
	counts := make(map[string]float64)
	for _, in := range recent {
		counts[in.ItemID]++
	}

	listings, err := r.Catalog.Listings(ctx, keys(counts))
	if err != nil {
		return nil, fmt.Errorf("load listings: %w", err)
	}
	for id := range counts {
		if l, ok := listings[id]; !ok || !l.Active {
			delete(counts, id)
		}
	}

	ranked := vector.RankMap(counts)
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	out := make([]*core.Item, 0, len(ranked))
	for _, s := range ranked {
		it := core.NewItem(s.ID)
		it.Score = s.Score
		it.PutLabel("recall_source", utils.Label{Value: "popular", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
