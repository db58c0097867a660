// Package recsys 是二手交易市场的混合推荐引擎。
//
// 设计要点：
// - 交互加权：view=1 click=2 wishlist=3 cart=4 purchase=5，未知类型在写入时拒绝
// - 协同过滤（用户余弦相似度）与内容相似度（商品 TF-IDF）按出现与否线性混合
// - 相似度表读写分离：纯读可能返回“尚未计算”，刷新由推荐器懒触发或由 refresh 批量执行
// - 个性化失败、为空或熔断打开时回退到窗口内热门商品，GetRecommendations 永不报错
// - Pipeline-first: 召回、过滤、截断都是 Node，可通过 YAML 组装
//
// 入口见 service.Open 与 service.Service。
package recsys

import "github.com/merobazar/recsys/pipeline"

// 轻量 facade：便于直接 import "recsys" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall = pipeline.KindRecall
	KindFilter = pipeline.KindFilter
	KindReRank = pipeline.KindReRank
)
