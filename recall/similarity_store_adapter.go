package recall

import (
	"context"
	"sort"

	"github.com/merobazar/recsys/core"
)

// StoreSimilarityAdapter 是基于 core.KeyValueStore 的相似度存储适配器，实现 core.SimilarityStore。
// 适用于 Redis 或内存存储。
//
// Key 约定：
//   - 邻居有序集合：{KeyPrefix}:{kind}:{subject}，member 为邻居 ID，score 为相似度
//   - 已计算标记：Hash {KeyPrefix}:{kind}:computed，field 为 subject
type StoreSimilarityAdapter struct {
	store core.KeyValueStore

	KeyPrefix string
}

// NewStoreSimilarityAdapter 创建适配器，keyPrefix 为空时使用 "sim"。
func NewStoreSimilarityAdapter(s core.KeyValueStore, keyPrefix string) *StoreSimilarityAdapter {
	if keyPrefix == "" {
		keyPrefix = "sim"
	}
	return &StoreSimilarityAdapter{
		store:     s,
		KeyPrefix: keyPrefix,
	}
}

func (a *StoreSimilarityAdapter) neighborsKey(kind core.SimilarityKind, subject string) string {
	return a.KeyPrefix + ":" + string(kind) + ":" + subject
}

func (a *StoreSimilarityAdapter) computedKey(kind core.SimilarityKind) string {
	return a.KeyPrefix + ":" + string(kind) + ":computed"
}

// UpsertNeighbors 覆盖写入每个 (subject, neighbor) 的分数。旧邻居不会被删除。
func (a *StoreSimilarityAdapter) UpsertNeighbors(ctx context.Context, kind core.SimilarityKind, subject string, neighbors []core.Neighbor) error {
	members := make([]core.ScoredMember, 0, len(neighbors))
	for _, nb := range neighbors {
		members = append(members, core.ScoredMember{Member: nb.ID, Score: nb.Score})
	}
	if err := a.store.ZAdd(ctx, a.neighborsKey(kind, subject), members...); err != nil {
		return err
	}
	return a.store.HSet(ctx, a.computedKey(kind), subject, []byte("1"))
}

// Neighbors 按分数降序读取前 limit 个邻居，limit <= 0 表示全部。
func (a *StoreSimilarityAdapter) Neighbors(ctx context.Context, kind core.SimilarityKind, subject string, limit int) ([]core.Neighbor, bool, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	members, err := a.store.ZRevRangeWithScores(ctx, a.neighborsKey(kind, subject), 0, stop)
	if err != nil && !core.IsStoreNotFound(err) {
		return nil, false, err
	}
	out := make([]core.Neighbor, 0, len(members))
	for _, m := range members {
		out = append(out, core.Neighbor{ID: m.Member, Score: m.Score})
	}
	// 各后端同分次序不同，统一为 ID 升序
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})

	computed := true
	if _, err := a.store.HGet(ctx, a.computedKey(kind), subject); err != nil {
		if !core.IsStoreNotFound(err) {
			return nil, false, err
		}
		computed = false
	}
	return out, computed, nil
}

var _ core.SimilarityStore = (*StoreSimilarityAdapter)(nil)
