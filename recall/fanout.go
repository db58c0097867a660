package recall

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/merobazar/recsys/core"
	"github.com/merobazar/recsys/pipeline"
	"github.com/merobazar/recsys/pkg/utils"
)

// MergeStrategy 决定 Fanout 如何合并多个召回源的结果。
type MergeStrategy string

const (
	// MergeFirst 按 ID 去重，保留 Sources 中靠前者的分数与位置
	MergeFirst MergeStrategy = "first"
	// MergeSum 按 ID 去重并累加分数，再按分数降序稳定排序
	MergeSum MergeStrategy = "sum"
	// MergeNone 直接拼接，不去重
	MergeNone MergeStrategy = "none"
)

// ParseMergeStrategy 解析配置值，空串视为 MergeFirst。
func ParseMergeStrategy(s string) (MergeStrategy, error) {
	switch MergeStrategy(s) {
	case "", MergeFirst:
		return MergeFirst, nil
	case MergeSum, MergeNone:
		return MergeStrategy(s), nil
	}
	return "", fmt.Errorf("unknown merge strategy %q", s)
}

// Fanout 是一个 Recall Node：并发执行多个召回源并合并结果。
// 单个召回源失败或超时只记日志并视为空结果，不影响其他召回源。
// 典型用法：hybrid 在前、popular 在后，用热门补足个性化结果。
type Fanout struct {
	Sources       []Source
	Merge         MergeStrategy
	Timeout       time.Duration // 单个召回源超时，0 表示只受 ctx 约束
	MaxConcurrent int           // 0 表示不限制

	Logger zerolog.Logger
}

func (n *Fanout) Name() string        { return "recall.fanout" }
func (n *Fanout) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Fanout) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	if len(n.Sources) == 0 {
		return nil, nil
	}

	results := make([][]*core.Item, len(n.Sources))
	var eg errgroup.Group
	if n.MaxConcurrent > 0 {
		eg.SetLimit(n.MaxConcurrent)
	}
	for i, src := range n.Sources {
		eg.Go(func() error {
			results[i] = n.recallOne(ctx, rctx, i, src)
			return nil
		})
	}
	_ = eg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return n.merge(results), nil
}

func (n *Fanout) recallOne(ctx context.Context, rctx *core.RecommendContext, priority int, src Source) []*core.Item {
	if n.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.Timeout)
		defer cancel()
	}
	start := time.Now()
	items, err := src.Recall(ctx, rctx)
	if err != nil {
		n.Logger.Warn().Err(err).
			Str("source", src.Name()).
			Str("user_id", rctx.UserID).
			Dur("took", time.Since(start)).
			Msg("fanout source failed")
		return nil
	}
	for _, it := range items {
		it.PutLabel("recall_source", utils.Label{Value: src.Name(), Source: "recall"})
		it.PutLabel("recall_priority", utils.Label{Value: strconv.Itoa(priority), Source: "recall"})
	}
	return items
}

func (n *Fanout) merge(results [][]*core.Item) []*core.Item {
	var all []*core.Item
	for _, items := range results {
		all = append(all, items...)
	}
	if n.Merge == MergeNone {
		return all
	}

	seen := make(map[string]*core.Item, len(all))
	out := make([]*core.Item, 0, len(all))
	for _, it := range all {
		if it == nil {
			continue
		}
		old, ok := seen[it.ID]
		if !ok {
			seen[it.ID] = it
			out = append(out, it)
			continue
		}
		for k, v := range it.Labels {
			old.PutLabel(k, v)
		}
		if n.Merge == MergeSum {
			old.Score += it.Score
		}
	}
	if n.Merge == MergeSum {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	}
	return out
}
