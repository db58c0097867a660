package filter

import (
	"context"

	"github.com/merobazar/recsys/core"
)

// Filter 是过滤器的抽象接口，用于判断一个 Item 是否应该被过滤掉。
// 返回 true 表示应该过滤（移除），false 表示保留。
type Filter interface {
	// Name 返回过滤器名称
	Name() string

	// ShouldFilter 判断 item 是否应该被过滤
	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}

// BatchFilter 是需要按整批候选预取数据的过滤器（例如批量查商品目录）。
// FilterNode 在逐个判断之前调用 Bind，用返回的请求级 Filter 做判断。
type BatchFilter interface {
	Filter
	Bind(ctx context.Context, rctx *core.RecommendContext, items []*core.Item) (Filter, error)
}
