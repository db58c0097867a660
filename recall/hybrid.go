package recall

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/merobazar/recsys/core"
	"github.com/merobazar/recsys/pipeline"
	"github.com/merobazar/recsys/pkg/utils"
)

// 混合推荐的默认权重
const (
	DefaultCollaborativeWeight = 0.6
	DefaultContentWeight       = 0.4
)

// Hybrid 并发请求协同与内容两路各 2×TopN 个候选，按“是否出现在该路结果中”线性加权：
// 出现在协同列表加 CollaborativeWeight，出现在内容列表加 ContentWeight，不再乘以原始分数。
// 合并后过滤为上架且不属于该用户的商品，再按权重降序取 TopN。
//
// 任一路返回错误时 Hybrid 返回错误，由上层决定是否走热门兜底。
type Hybrid struct {
	Collaborative Recommender
	Content       Recommender
	Catalog       core.Catalog

	// 两个权重都为 0 视为未配置，使用 0.6 / 0.4；只有一个为 0 时该路不计分
	CollaborativeWeight float64
	ContentWeight       float64

	// TopK 未指定数量时的返回条数，<= 0 时默认 20
	TopK int
}

func (h *Hybrid) Name() string        { return "recall.hybrid" }
func (h *Hybrid) Kind() pipeline.Kind { return pipeline.KindRecall }

func (h *Hybrid) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return h.Recall(ctx, rctx)
}

func (h *Hybrid) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if rctx == nil || rctx.UserID == "" {
		return nil, nil
	}
	return h.Recommend(ctx, rctx.UserID, rctx.LimitOr(limitOr(h.TopK, 20)))
}

func (h *Hybrid) weights() (collab, content float64) {
	if h.CollaborativeWeight == 0 && h.ContentWeight == 0 {
		return DefaultCollaborativeWeight, DefaultContentWeight
	}
	return h.CollaborativeWeight, h.ContentWeight
}

func (h *Hybrid) Recommend(ctx context.Context, userID string, topN int) ([]*core.Item, error) {
	if userID == "" {
		return nil, nil
	}
	topN = limitOr(topN, limitOr(h.TopK, 20))
	collabWeight, contentWeight := h.weights()

	var collab, content []*core.Item
	eg, egCtx := errgroup.WithContext(ctx)
	if h.Collaborative != nil {
		eg.Go(func() error {
			items, err := h.Collaborative.Recommend(egCtx, userID, topN*2)
			if err != nil {
				return fmt.Errorf("%s: %w", h.Collaborative.Name(), err)
			}
			collab = items
			return nil
		})
	}
	if h.Content != nil {
		eg.Go(func() error {
			items, err := h.Content.Recommend(egCtx, userID, topN*2)
			if err != nil {
				return fmt.Errorf("%s: %w", h.Content.Name(), err)
			}
			content = items
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if len(collab) == 0 && len(content) == 0 {
		return nil, nil
	}

	// 按插入顺序（先协同后内容）保存，稳定排序保证同分时顺序确定
	var order []*core.Item
	merged := make(map[string]*core.Item)
	add := func(items []*core.Item, weight float64, source string) {
		for _, it := range items {
			if it == nil {
				continue
			}
			m, ok := merged[it.ID]
			if !ok {
				m = core.NewItem(it.ID)
				merged[it.ID] = m
				order = append(order, m)
			}
			m.Score += weight
			m.PutLabel("hybrid_sources", utils.Label{Value: source, Source: "recall"})
		}
	}
	if collabWeight > 0 {
		add(collab, collabWeight, "collaborative")
	}
	if contentWeight > 0 {
		add(content, contentWeight, "content")
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].Score > order[j].Score
	})

	if h.Catalog != nil {
		ids := make([]string, 0, len(order))
		for _, it := range order {
			ids = append(ids, it.ID)
		}
		allowed, err := eligible(ctx, h.Catalog, userID, ids)
		if err != nil {
			return nil, fmt.Errorf("filter listings: %w", err)
		}
		kept := order[:0]
		for _, it := range order {
			if _, ok := allowed[it.ID]; ok {
				kept = append(kept, it)
			}
		}
		order = kept
	}

	if len(order) > topN {
		order = order[:topN]
	}
	for _, it := range order {
		it.PutLabel("recall_source", utils.Label{Value: "hybrid", Source: "recall"})
		it.PutLabel("hybrid_weight", utils.Label{Value: strconv.FormatFloat(it.Score, 'f', 2, 64), Source: "recall"})
	}
	return order, nil
}
