package sqlstore

import (
	"time"

	"github.com/merobazar/recsys/core"
)

const (
	userSimilarityTable = "user_similarities"
	itemSimilarityTable = "item_similarities"
)

// InteractionRow 对 (user_id, item_id, kind) 唯一。
type InteractionRow struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	UserID    string    `gorm:"type:varchar(64);not null;uniqueIndex:uq_interaction,priority:1;index"`
	ItemID    string    `gorm:"type:varchar(64);not null;uniqueIndex:uq_interaction,priority:2"`
	Kind      string    `gorm:"type:varchar(16);not null;uniqueIndex:uq_interaction,priority:3"`
	Weight    float64   `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;index"`
}

func (InteractionRow) TableName() string { return "user_interactions" }

func (r InteractionRow) toDomain() (core.Interaction, error) {
	kind, err := core.ParseInteractionKind(r.Kind)
	if err != nil {
		return core.Interaction{}, err
	}
	return core.Interaction{
		ID:        r.ID,
		UserID:    r.UserID,
		ItemID:    r.ItemID,
		Kind:      kind,
		Weight:    r.Weight,
		Timestamp: r.CreatedAt,
	}, nil
}

// ListingRow 是推荐所需的商品字段。
type ListingRow struct {
	ID           string `gorm:"type:varchar(64);primaryKey"`
	OwnerID      string `gorm:"type:varchar(64);not null;index"`
	Name         string `gorm:"not null"`
	Description  string
	Brand        string
	Color        string
	Condition    string `gorm:"type:varchar(32)"`
	CategoryName string
	Active       bool `gorm:"not null;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (ListingRow) TableName() string { return "listings" }

func (r ListingRow) toDomain() core.Listing {
	return core.Listing{
		ID:           r.ID,
		OwnerID:      r.OwnerID,
		Name:         r.Name,
		Description:  r.Description,
		Brand:        r.Brand,
		Color:        r.Color,
		Condition:    r.Condition,
		CategoryName: r.CategoryName,
		Active:       r.Active,
		CreatedAt:    r.CreatedAt,
	}
}

func listingRowFrom(l core.Listing) ListingRow {
	return ListingRow{
		ID:           l.ID,
		OwnerID:      l.OwnerID,
		Name:         l.Name,
		Description:  l.Description,
		Brand:        l.Brand,
		Color:        l.Color,
		Condition:    l.Condition,
		CategoryName: l.CategoryName,
		Active:       l.Active,
		CreatedAt:    l.CreatedAt,
	}
}

// SimilarityRow 是有向相似度：subject 的邻居是 neighbor。
// 用户与商品分别存于 user_similarities / item_similarities。
type SimilarityRow struct {
	SubjectID  string    `gorm:"type:varchar(64);primaryKey"`
	NeighborID string    `gorm:"type:varchar(64);primaryKey"`
	Score      float64   `gorm:"not null;index"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// SimilarityRunRow 标记某个主体已计算过相似度（即使没有任何邻居）。
type SimilarityRunRow struct {
	Kind       string    `gorm:"type:varchar(8);primaryKey"`
	SubjectID  string    `gorm:"type:varchar(64);primaryKey"`
	ComputedAt time.Time `gorm:"not null"`
}

func (SimilarityRunRow) TableName() string { return "similarity_runs" }
