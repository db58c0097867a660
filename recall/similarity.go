package recall

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/merobazar/recsys/core"
	"github.com/merobazar/recsys/feature"
	"github.com/merobazar/recsys/matrix"
	"github.com/merobazar/recsys/vector"
)

// SimilarUsers 在给定矩阵上计算 userID 与其余所有用户的余弦相似度。
// 排除自身与相似度 <= 0 的用户；同分保持快照中的出现顺序；用户不在矩阵中时返回空。
func SimilarUsers(m *matrix.UserItem, userID string, topN int) []core.Neighbor {
	row, ok := m.Row(userID)
	if !ok {
		return nil
	}
	scored := make([]vector.Scored, 0, len(m.Users))
	for idx, other := range m.Users {
		if other == userID {
			continue
		}
		sim := vector.Cosine(row, m.Values[idx])
		if sim <= 0 {
			continue
		}
		scored = append(scored, vector.Scored{ID: other, Score: sim})
	}
	return toNeighbors(vector.TopK(scored, topN))
}

// SimilarItems 在给定特征空间上计算 itemID 与其余所有商品的余弦相似度。
// 排除自身与相似度 <= 0 的商品；商品不在空间中（不存在或已下架）时返回空。
func SimilarItems(s *feature.Space, itemID string, topN int) []core.Neighbor {
	vec, ok := s.Vector(itemID)
	if !ok {
		return nil
	}
	scored := make([]vector.Scored, 0, s.Len())
	for idx, other := range s.IDs {
		if other == itemID {
			continue
		}
		sim := vector.CosineSparse(vec, s.Vectors[idx])
		if sim <= 0 {
			continue
		}
		scored = append(scored, vector.Scored{ID: other, Score: sim})
	}
	return toNeighbors(vector.TopK(scored, topN))
}

func toNeighbors(scored []vector.Scored) []core.Neighbor {
	out := make([]core.Neighbor, 0, len(scored))
	for _, s := range scored {
		out = append(out, core.Neighbor{ID: s.ID, Score: s.Score})
	}
	return out
}

// UserSimilarity 是用户相似度引擎。
//
// 两种模式：
//   - Neighbors：纯读，可能返回“尚未计算”
//   - Refresh / RefreshFrom：计算并覆盖写入 Top-K
//
// Ensure 供推荐器使用：未计算时同步刷新一次再读，同一用户的并发刷新会被合并。
type UserSimilarity struct {
	Interactions core.InteractionLog
	Store        core.SimilarityStore

	// TopK 持久化的邻居数，<= 0 时默认 10
	TopK int

	group singleflight.Group
}

// Refresh 基于最新交互快照重新计算 userID 的邻居并写入存储。
func (e *UserSimilarity) Refresh(ctx context.Context, userID string, topN int) ([]core.Neighbor, error) {
	snapshot, err := e.Interactions.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load interactions: %w", err)
	}
	return e.RefreshFrom(ctx, matrix.Build(snapshot), userID, topN)
}

// RefreshFrom 使用调用方构建好的矩阵（批量刷新时复用同一快照）。
// 用户不在矩阵中时返回空且不写入，使其下次仍会被懒计算。
func (e *UserSimilarity) RefreshFrom(ctx context.Context, m *matrix.UserItem, userID string, topN int) ([]core.Neighbor, error) {
	if _, ok := m.Row(userID); !ok {
		return nil, nil
	}
	neighbors := SimilarUsers(m, userID, topKOr(topN, e.TopK))
	if err := e.Store.UpsertNeighbors(ctx, core.SimilarityUser, userID, neighbors); err != nil {
		return nil, fmt.Errorf("upsert user neighbors %s: %w", userID, err)
	}
	return neighbors, nil
}

// Neighbors 读取已持久化的邻居，按分数降序。
func (e *UserSimilarity) Neighbors(ctx context.Context, userID string, limit int) ([]core.Neighbor, bool, error) {
	return e.Store.Neighbors(ctx, core.SimilarityUser, userID, limit)
}

// Ensure 读取邻居；尚未计算时同步刷新一次后再读。
func (e *UserSimilarity) Ensure(ctx context.Context, userID string, limit int) ([]core.Neighbor, error) {
	return ensureNeighbors(ctx, &e.group, e.Store, core.SimilarityUser, userID, limit, func(ctx context.Context) error {
		_, err := e.Refresh(ctx, userID, 0)
		return err
	})
}

// ItemSimilarity 是商品内容相似度引擎，契约与 UserSimilarity 相同。
type ItemSimilarity struct {
	Catalog core.Catalog
	Store   core.SimilarityStore

	// TopK 持久化的邻居数，<= 0 时默认 10
	TopK int

	// MaxFeatures TF-IDF 词表上限，<= 0 时默认 1000
	MaxFeatures int

	group singleflight.Group
}

// Space 基于当前上架商品构建特征空间。
func (e *ItemSimilarity) Space(ctx context.Context) (*feature.Space, error) {
	listings, err := e.Catalog.ActiveListings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active listings: %w", err)
	}
	return feature.BuildSpace(listings, e.MaxFeatures), nil
}

// Refresh 重新向量化上架商品并写入 itemID 的邻居。
func (e *ItemSimilarity) Refresh(ctx context.Context, itemID string, topN int) ([]core.Neighbor, error) {
	space, err := e.Space(ctx)
	if err != nil {
		return nil, err
	}
	return e.RefreshFrom(ctx, space, itemID, topN)
}

// RefreshFrom 使用调用方构建好的特征空间。
// 商品不在空间中（已下架或已删除）时写入空邻居并标记为已计算，
// 避免历史中的下架商品在每次内容召回时都重建特征空间。
func (e *ItemSimilarity) RefreshFrom(ctx context.Context, s *feature.Space, itemID string, topN int) ([]core.Neighbor, error) {
	var neighbors []core.Neighbor
	if _, ok := s.Vector(itemID); ok {
		neighbors = SimilarItems(s, itemID, topKOr(topN, e.TopK))
	}
	if err := e.Store.UpsertNeighbors(ctx, core.SimilarityItem, itemID, neighbors); err != nil {
		return nil, fmt.Errorf("upsert item neighbors %s: %w", itemID, err)
	}
	return neighbors, nil
}

// Neighbors 读取已持久化的邻居，按分数降序。
func (e *ItemSimilarity) Neighbors(ctx context.Context, itemID string, limit int) ([]core.Neighbor, bool, error) {
	return e.Store.Neighbors(ctx, core.SimilarityItem, itemID, limit)
}

// Ensure 读取邻居；尚未计算时同步刷新一次后再读。
func (e *ItemSimilarity) Ensure(ctx context.Context, itemID string, limit int) ([]core.Neighbor, error) {
	return ensureNeighbors(ctx, &e.group, e.Store, core.SimilarityItem, itemID, limit, func(ctx context.Context) error {
		_, err := e.Refresh(ctx, itemID, 0)
		return err
	})
}

func ensureNeighbors(
	ctx context.Context,
	group *singleflight.Group,
	store core.SimilarityStore,
	kind core.SimilarityKind,
	subject string,
	limit int,
	refresh func(context.Context) error,
) ([]core.Neighbor, error) {
	neighbors, computed, err := store.Neighbors(ctx, kind, subject, limit)
	if err != nil {
		return nil, err
	}
	if computed || len(neighbors) > 0 {
		return neighbors, nil
	}

	_, err, _ = group.Do(string(kind)+":"+subject, func() (any, error) {
		return nil, refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	neighbors, _, err = store.Neighbors(ctx, kind, subject, limit)
	return neighbors, err
}

func topKOr(n, def int) int {
	if n > 0 {
		return n
	}
	if def > 0 {
		return def
	}
	return 10
}
