package core

import (
	"context"
	"time"
)

// 以下接口是推荐引擎与外部协作方之间的窄接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store、store/sqlstore）实现
//   - 引擎只读快照，不关心底层是内存、Redis 还是 SQL
//
// 实现：
//   - store.MemoryInteractionLog / store.MemoryCatalog
//   - sqlstore.InteractionRepo / sqlstore.ListingRepo / sqlstore.SimilarityRepo
//   - recall.StoreSimilarityAdapter（基于 KeyValueStore）

// InteractionLog 是交互日志。
type InteractionLog interface {
	// Record 写入一次交互；同一 (user, item, kind) 重复写入时累加 Weight，不新增行
	Record(ctx context.Context, userID, itemID string, kind InteractionKind) (Interaction, error)

	// All 返回全量快照
	All(ctx context.Context) ([]Interaction, error)

	// ByUser 返回某个用户的全部交互
	ByUser(ctx context.Context, userID string) ([]Interaction, error)

	// Since 返回 Timestamp >= since 的交互
	Since(ctx context.Context, since time.Time) ([]Interaction, error)
}

// Catalog 是商品目录。
type Catalog interface {
	// Listing 按 ID 获取商品；不存在时返回 ErrListingNotFound
	Listing(ctx context.Context, id string) (Listing, error)

	// Listings 批量获取，不存在的 ID 不出现在结果中
	Listings(ctx context.Context, ids []string) (map[string]Listing, error)

	// ActiveListings 返回所有上架商品，按 ID 升序
	ActiveListings(ctx context.Context) ([]Listing, error)
}

// SimilarityKind 区分用户相似度与商品相似度。
type SimilarityKind string

const (
	SimilarityUser SimilarityKind = "user"
	SimilarityItem SimilarityKind = "item"
)

// Neighbor 是一条有向相似度记录中的邻居及分数。
type Neighbor struct {
	ID    string
	Score float64
}

// SimilarityStore 持久化有向 Top-K 相似度。
//
// 读写分离：
//   - Neighbors 是纯读，computed=false 表示该主体尚未计算过
//   - UpsertNeighbors 按 (subject, neighbor) 覆盖写，并标记主体已计算（即使列表为空）
type SimilarityStore interface {
	UpsertNeighbors(ctx context.Context, kind SimilarityKind, subject string, neighbors []Neighbor) error
	Neighbors(ctx context.Context, kind SimilarityKind, subject string, limit int) (neighbors []Neighbor, computed bool, err error)
}
