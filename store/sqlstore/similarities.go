package sqlstore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/merobazar/recsys/core"
)

// SimilarityRepo 实现 core.SimilarityStore。
// 按 (subject_id, neighbor_id) upsert，并发重算同一对时后写者生效。
type SimilarityRepo struct {
	db *gorm.DB
}

func NewSimilarityRepo(db *gorm.DB) *SimilarityRepo {
	return &SimilarityRepo{db: db}
}

func similarityTable(kind core.SimilarityKind) (string, error) {
	switch kind {
	case core.SimilarityUser:
		return userSimilarityTable, nil
	case core.SimilarityItem:
		return itemSimilarityTable, nil
	}
	return "", fmt.Errorf("sqlstore: unknown similarity kind %q", kind)
}

func (r *SimilarityRepo) UpsertNeighbors(ctx context.Context, kind core.SimilarityKind, subject string, neighbors []core.Neighbor) error {
	table, err := similarityTable(kind)
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(neighbors) > 0 {
			rows := make([]SimilarityRow, 0, len(neighbors))
			for _, nb := range neighbors {
				rows = append(rows, SimilarityRow{SubjectID: subject, NeighborID: nb.ID, Score: nb.Score, UpdatedAt: now})
			}
			if err := tx.Table(table).
				Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "subject_id"}, {Name: "neighbor_id"}},
					DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
				}).
				Create(&rows).Error; err != nil {
				return fmt.Errorf("upsert %s: %w", table, err)
			}
		}
		run := SimilarityRunRow{Kind: string(kind), SubjectID: subject, ComputedAt: now}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "kind"}, {Name: "subject_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"computed_at"}),
		}).Create(&run).Error
	})
}

func (r *SimilarityRepo) Neighbors(ctx context.Context, kind core.SimilarityKind, subject string, limit int) ([]core.Neighbor, bool, error) {
	table, err := similarityTable(kind)
	if err != nil {
		return nil, false, err
	}
	db := r.db.WithContext(ctx)

	q := db.Table(table).Where("subject_id = ?", subject).Order("score DESC, neighbor_id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []SimilarityRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, false, fmt.Errorf("load %s: %w", table, err)
	}

	var runs int64
	if err := db.Model(&SimilarityRunRow{}).
		Where("kind = ? AND subject_id = ?", string(kind), subject).
		Count(&runs).Error; err != nil {
		return nil, false, fmt.Errorf("load similarity run: %w", err)
	}

	out := make([]core.Neighbor, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.Neighbor{ID: row.NeighborID, Score: row.Score})
	}
	return out, runs > 0, nil
}

var _ core.SimilarityStore = (*SimilarityRepo)(nil)
