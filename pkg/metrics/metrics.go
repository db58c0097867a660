// Package metrics 定义推荐服务的 Prometheus 指标。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecommendationsTotal 按最终策略（hybrid / popular）统计推荐请求
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recsys_recommendations_total",
			Help: "Total number of recommendation requests by serving strategy",
		},
		[]string{"strategy"},
	)

	// FallbackTotal 按原因统计回退到热门推荐的次数
	FallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recsys_fallback_total",
			Help: "Total number of fallbacks to popular items by reason",
		},
		[]string{"reason"},
	)

	// InteractionsRecordedTotal 按交互类型统计写入次数
	InteractionsRecordedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recsys_interactions_recorded_total",
			Help: "Total number of recorded interactions by kind",
		},
		[]string{"kind"},
	)

	// RefreshDuration 批量刷新耗时
	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recsys_similarity_refresh_duration_seconds",
			Help:    "Duration of batch similarity refresh runs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)

	// RefreshFailuresTotal 按相似度类型统计单个实体刷新失败次数
	RefreshFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recsys_similarity_refresh_failures_total",
			Help: "Total number of per-entity similarity refresh failures",
		},
		[]string{"kind"},
	)

	// BreakerState 个性化熔断器状态：0 closed，1 half-open，2 open
	BreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recsys_breaker_state",
			Help: "State of the personalized recommendation circuit breaker",
		},
	)

	// NodeDuration Pipeline 各 Node 耗时，按 pipeline 名与 node 名区分
	NodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recsys_pipeline_node_duration_seconds",
			Help:    "Duration of pipeline node execution in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"pipeline", "node"},
	)
)
