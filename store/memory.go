package store

import (
	"context"
	"sort"
	"sync"

	"github.com/merobazar/recsys/core"
)

// MemoryStore 是进程内的 KeyValueStore，用于测试/开发/单机部署，重启后数据丢失。
type MemoryStore struct {
	mu     sync.RWMutex
	zsets  map[string]map[string]float64 // key -> member -> score
	hashes map[string]map[string][]byte  // key -> field -> value
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		zsets:  make(map[string]map[string]float64),
		hashes: make(map[string]map[string][]byte),
	}
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) ZAdd(_ context.Context, key string, members ...core.ScoredMember) error {
	if len(members) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	zset := m.zsets[key]
	if zset == nil {
		zset = make(map[string]float64, len(members))
		m.zsets[key] = zset
	}
	for _, sm := range members {
		zset[sm.Member] = sm.Score
	}
	return nil
}

// ZRevRangeWithScores 同分按 member 升序，保证结果确定。
func (m *MemoryStore) ZRevRangeWithScores(_ context.Context, key string, start, stop int64) ([]core.ScoredMember, error) {
	m.mu.RLock()
	pairs := make([]core.ScoredMember, 0, len(m.zsets[key]))
	for member, score := range m.zsets[key] {
		pairs = append(pairs, core.ScoredMember{Member: member, Score: score})
	}
	m.mu.RUnlock()

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Score != pairs[j].Score {
			return pairs[i].Score > pairs[j].Score
		}
		return pairs[i].Member < pairs[j].Member
	})

	n := int64(len(pairs))
	if start < 0 {
		start = 0
	}
	if stop < 0 || stop >= n {
		stop = n - 1
	}
	if start > stop {
		return nil, nil
	}
	return pairs[start : stop+1], nil
}

func (m *MemoryStore) HGet(_ context.Context, key, field string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.hashes[key][field]
	if !ok {
		return nil, core.ErrStoreNotFound
	}
	return v, nil
}

func (m *MemoryStore) HSet(_ context.Context, key, field string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	h := m.hashes[key]
	if h == nil {
		h = make(map[string][]byte)
		m.hashes[key] = h
	}
	h[field] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStore) HGetAll(_ context.Context, key string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string][]byte, len(m.hashes[key]))
	for f, v := range m.hashes[key] {
		out[f] = v
	}
	return out, nil
}

var _ core.KeyValueStore = (*MemoryStore)(nil)
