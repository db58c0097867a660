package filter

import (
	"context"

	"github.com/merobazar/recsys/core"
)

// BlacklistFilter 是黑名单过滤器，过滤掉被运营屏蔽的商品。
type BlacklistFilter struct {
	// ItemIDs 是内存中的黑名单商品 ID 列表
	ItemIDs []string

	// Store 用于从存储中读取黑名单（可选），黑名单为 Hash {Key}，field 为商品 ID
	Store core.KeyValueStore

	// Key 是 Store 中的黑名单 key（可选）
	Key string
}

// NewBlacklistFilter 创建一个黑名单过滤器。
func NewBlacklistFilter(itemIDs []string, store core.KeyValueStore, key string) *BlacklistFilter {
	return &BlacklistFilter{
		ItemIDs: itemIDs,
		Store:   store,
		Key:     key,
	}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(
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

// Bind 整批只读取一次黑名单。
func (f *BlacklistFilter) Bind(
	ctx context.Context,
	_ *core.RecommendContext,
	_ []*core.Item,
) (Filter, error) {
	blocked := make(map[string]struct{}, len(f.ItemIDs))
	for _, id := range f.ItemIDs {
		blocked[id] = struct{}{}
	}
	if f.Store != nil && f.Key != "" {
		fields, err := f.Store.HGetAll(ctx, f.Key)
		if err != nil && !core.IsStoreNotFound(err) {
			return nil, err
		}
		for id := range fields {
			blocked[id] = struct{}{}
		}
	}
	return &setFilter{name: f.Name(), ids: blocked}, nil
}

type setFilter struct {
	name string
	ids  map[string]struct{}
}

func (s *setFilter) Name() string { return s.name }

func (s *setFilter) ShouldFilter(_ context.Context, _ *core.RecommendContext, item *core.Item) (bool, error) {
	if item == nil {
		return true, nil
	}
	_, ok := s.ids[item.ID]
	return ok, nil
}
