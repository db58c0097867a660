package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/merobazar/recsys/core"
)

type interactionKey struct {
	user, item string
	kind       core.InteractionKind
}

// MemoryInteractionLog 是内存实现的交互日志，按写入顺序保存。
type MemoryInteractionLog struct {
	mu    sync.RWMutex
	rows  []core.Interaction
	index map[interactionKey]int

	// Now 用于测试注入时间，默认 time.Now
	Now func() time.Time
}

func NewMemoryInteractionLog() *MemoryInteractionLog {
	return &MemoryInteractionLog{index: make(map[interactionKey]int)}
}

func (l *MemoryInteractionLog) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// Record 写入交互；同一 (user, item, kind) 已存在时 Weight+1，返回同一行。
func (l *MemoryInteractionLog) Record(ctx context.Context, userID, itemID string, kind core.InteractionKind) (core.Interaction, error) {
	if !kind.Valid() {
		return core.Interaction{}, core.ErrInvalidInteractionKind
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	key := interactionKey{user: userID, item: itemID, kind: kind}
	if idx, ok := l.index[key]; ok {
		l.rows[idx].Weight++
		return l.rows[idx], nil
	}
	in := core.Interaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		ItemID:    itemID,
		Kind:      kind,
		Weight:    1,
		Timestamp: l.now(),
	}
	l.index[key] = len(l.rows)
	l.rows = append(l.rows, in)
	return in, nil
}

// Add 直接追加一条交互（用于导入/测试），Timestamp 与 ID 为空时自动填充。
// 未知交互类型返回 ErrInvalidInteractionKind，不写入。
func (l *MemoryInteractionLog) Add(in core.Interaction) error {
	if !in.Kind.Valid() {
		return core.ErrInvalidInteractionKind
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.Timestamp.IsZero() {
		in.Timestamp = l.now()
	}
	if in.Weight == 0 {
		in.Weight = 1
	}
	key := interactionKey{user: in.UserID, item: in.ItemID, kind: in.Kind}
	if idx, ok := l.index[key]; ok {
		l.rows[idx].Weight += in.Weight
		return nil
	}
	l.index[key] = len(l.rows)
	l.rows = append(l.rows, in)
	return nil
}

func (l *MemoryInteractionLog) All(ctx context.Context) ([]core.Interaction, error) {
	return l.filter(func(core.Interaction) bool { return true }), nil
}

func (l *MemoryInteractionLog) ByUser(ctx context.Context, userID string) ([]core.Interaction, error) {
	return l.filter(func(in core.Interaction) bool { return in.UserID == userID }), nil
}

func (l *MemoryInteractionLog) Since(ctx context.Context, since time.Time) ([]core.Interaction, error) {
	return l.filter(func(in core.Interaction) bool { return !in.Timestamp.Before(since) }), nil
}

func (l *MemoryInteractionLog) filter(keep func(core.Interaction) bool) []core.Interaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]core.Interaction, 0, len(l.rows))
	for _, in := range l.rows {
		if keep(in) {
			out = append(out, in)
		}
	}
	return out
}

var _ core.InteractionLog = (*MemoryInteractionLog)(nil)
