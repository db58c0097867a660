package filter

import (
	"context"

	"github.com/merobazar/recsys/core"
)

// InteractedFilter 过滤用户已经发生过指定类型交互的商品，例如已购买的商品。
// Kinds 为空时任何交互都会过滤。
type InteractedFilter struct {
	Interactions core.InteractionLog
	Kinds        []core.InteractionKind
}

func (f *InteractedFilter) Name() string {
	return "filter.interacted"
}

func (f *InteractedFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	bound, err := f.Bind(ctx, rctx, nil)
	if err != nil {
		return false, err
	}
	return bound.ShouldFilter(ctx, rctx, item)
}

// Bind 读取一次用户的交互历史。
func (f *InteractedFilter) Bind(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) (Filter, error) {
	seen := make(map[string]struct{})
	if rctx == nil || rctx.UserID == "" {
		return &setFilter{name: f.Name(), ids: seen}, nil
	}
	history, err := f.Interactions.ByUser(ctx, rctx.UserID)
	if err != nil {
		return nil, err
	}
	for _, in := range history {
		if f.matches(in.Kind) {
			seen[in.ItemID] = struct{}{}
		}
	}
	return &setFilter{name: f.Name(), ids: seen}, nil
}

func (f *InteractedFilter) matches(kind core.InteractionKind) bool {
	if len(f.Kinds) == 0 {
		return true
	}
	for _, k := range f.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}
