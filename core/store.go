package core

import (
	"context"
	"errors"
)

// KeyValueStore 是相似度邻居与运营名单依赖的 KV 能力：有序集合 + Hash。
//
// 由 store.MemoryStore（单机/测试）与 store.RedisStore（多实例共享）实现，
// recall.StoreSimilarityAdapter 在其上实现 SimilarityStore。
type KeyValueStore interface {
	// Name 返回后端名称，用于日志
	Name() string

	// ZAdd 写入有序集合成员，已存在的成员覆盖分数
	ZAdd(ctx context.Context, key string, members ...ScoredMember) error

	// ZRevRangeWithScores 按分数降序返回下标 [start, stop] 的成员，stop < 0 表示到末尾。
	// key 不存在时返回空切片。
	ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]ScoredMember, error)

	// HGet 字段不存在时返回 ErrStoreNotFound
	HGet(ctx context.Context, key, field string) ([]byte, error)
	HSet(ctx context.Context, key, field string, value []byte) error
	HGetAll(ctx context.Context, key string) (map[string][]byte, error)

	Close() error
}

// ScoredMember 是有序集合中的一个成员及其分数。
type ScoredMember struct {
	Member string
	Score  float64
}

var (
	ErrStoreNotFound     = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found")
	ErrStoreNotSupported = NewDomainError(ModuleStore, ErrorCodeNotSupported, "store: operation not supported")
)

// IsStoreNotFound 只匹配 store 模块的 NOT_FOUND；catalog 的 NOT_FOUND 不算。
func IsStoreNotFound(err error) bool {
	return errors.Is(err, ErrStoreNotFound)
}
