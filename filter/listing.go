package filter

import (
	"context"

	"github.com/merobazar/recsys/core"
)

// ListingFilter 基于商品目录过滤：下架/不存在的商品，以及用户自己发布的商品。
// 作为 BatchFilter 使用时整批只查一次目录。
type ListingFilter struct {
	Catalog      core.Catalog
	ActiveOnly   bool
	ExcludeOwned bool
}

func (f *ListingFilter) Name() string {
	return "filter.listing"
}

// ShouldFilter 单条判断，会逐条查询目录；在 FilterNode 中会走 Bind 的批量路径。
func (f *ListingFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	bound, err := f.Bind(ctx, rctx, []*core.Item{item})
	if err != nil {
		return false, err
	}
	return bound.ShouldFilter(ctx, rctx, item)
}

func (f *ListingFilter) Bind(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) (Filter, error) {
	listings, err := f.Catalog.Listings(ctx, core.ItemIDs(items))
	if err != nil {
		return nil, err
	}
	userID := ""
	if rctx != nil {
		userID = rctx.UserID
	}
	return &boundListingFilter{parent: f, listings: listings, userID: userID}, nil
}

type boundListingFilter struct {
	parent   *ListingFilter
	listings map[string]core.Listing
	userID   string
}

func (b *boundListingFilter) Name() string { return b.parent.Name() }

func (b *boundListingFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	l, ok := b.listings[item.ID]
	if !ok {
		return b.parent.ActiveOnly, nil
	}
	if b.parent.ActiveOnly && !l.Active {
		return true, nil
	}
	if b.parent.ExcludeOwned && l.OwnedBy(b.userID) {
		return true, nil
	}
	return false, nil
}
