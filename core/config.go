package core

import "time"

// RecallConfig 是召回相关的配置接口，用于提供默认值。
type RecallConfig interface {
	// DefaultNeighborLimit 返回推荐时读取的邻居条数
	DefaultNeighborLimit() int

	// DefaultTopK 返回相似度计算时持久化的邻居条数
	DefaultTopK() int

	// DefaultLimit 返回默认推荐数量
	DefaultLimit() int

	// DefaultWindowDays 返回热门兜底的默认时间窗口（天）
	DefaultWindowDays() int

	// DefaultTimeout 返回单个召回源的默认超时时间
	DefaultTimeout() time.Duration
}

// DefaultRecallConfig 是默认的召回配置实现。
type DefaultRecallConfig struct{}

func (c *DefaultRecallConfig) DefaultNeighborLimit() int {
	return 10
}

func (c *DefaultRecallConfig) DefaultTopK() int {
	return 10
}

func (c *DefaultRecallConfig) DefaultLimit() int {
	return 20
}

func (c *DefaultRecallConfig) DefaultWindowDays() int {
	return 30
}

func (c *DefaultRecallConfig) DefaultTimeout() time.Duration {
	return 2 * time.Second
}
