package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/merobazar/recsys/core"
)

// InteractionRepo 实现 core.InteractionLog。
type InteractionRepo struct {
	db *gorm.DB

	// Now 用于测试注入时间，默认 time.Now().UTC()
	Now func() time.Time
}

func NewInteractionRepo(db *gorm.DB) *InteractionRepo {
	return &InteractionRepo{db: db}
}

func (r *InteractionRepo) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

// Record 以 upsert 写入：冲突时 weight = weight + 1，id 与 created_at 保持首次写入的值。
func (r *InteractionRepo) Record(ctx context.Context, userID, itemID string, kind core.InteractionKind) (core.Interaction, error) {
	if !kind.Valid() {
		return core.Interaction{}, core.ErrInvalidInteractionKind
	}
	row := InteractionRow{
		ID:        uuid.NewString(),
		UserID:    userID,
		ItemID:    itemID,
		Kind:      kind.String(),
		Weight:    1,
		CreatedAt: r.now(),
	}

	var out InteractionRow
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "item_id"}, {Name: "kind"}},
			DoUpdates: clause.Assignments(map[string]any{
				"weight": gorm.Expr(InteractionRow{}.TableName() + ".weight + 1"),
			}),
		}).Create(&row).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND item_id = ? AND kind = ?", userID, itemID, kind.String()).
			Take(&out).Error
	})
	if err != nil {
		return core.Interaction{}, fmt.Errorf("record interaction: %w", err)
	}
	return out.toDomain()
}

func (r *InteractionRepo) All(ctx context.Context) ([]core.Interaction, error) {
	return r.find(r.db.WithContext(ctx))
}

func (r *InteractionRepo) ByUser(ctx context.Context, userID string) ([]core.Interaction, error) {
	return r.find(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *InteractionRepo) Since(ctx context.Context, since time.Time) ([]core.Interaction, error) {
	return r.find(r.db.WithContext(ctx).Where("created_at >= ?", since.UTC()))
}

func (r *InteractionRepo) find(q *gorm.DB) ([]core.Interaction, error) {
	var rows []InteractionRow
	if err := q.Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load interactions: %w", err)
	}
	out := make([]core.Interaction, 0, len(rows))
	for _, row := range rows {
		in, err := row.toDomain()
		if err != nil {
			// 历史数据中的未知类型不参与计算
			continue
		}
		out = append(out, in)
	}
	return out, nil
}

var _ core.InteractionLog = (*InteractionRepo)(nil)
