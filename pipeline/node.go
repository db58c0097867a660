package pipeline

import (
	"context"

	"github.com/merobazar/recsys/core"
)

// Kind 标记 Node 所处阶段，Pipeline 运行日志按它区分。
type Kind string

const (
	KindRecall Kind = "recall" // 产出候选：hybrid / popular / fanout
	KindFilter Kind = "filter" // 剔除下架、自有、已购、黑名单或表达式不通过的候选
	KindReRank Kind = "rerank" // 截断与类目打散
)

// Node 接收上一阶段的 items 并返回新的 items。
// 召回类 Node 忽略输入，直接生成候选。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Item,
	) ([]*core.Item, error)
}
