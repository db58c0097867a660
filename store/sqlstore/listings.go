package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/merobazar/recsys/core"
)

// ListingRepo 实现 core.Catalog。
type ListingRepo struct {
	db *gorm.DB
}

func NewListingRepo(db *gorm.DB) *ListingRepo {
	return &ListingRepo{db: db}
}

// Upsert 同步外部目录中的商品。
func (r *ListingRepo) Upsert(ctx context.Context, listings ...core.Listing) error {
	if len(listings) == 0 {
		return nil
	}
	rows := make([]ListingRow, 0, len(listings))
	for _, l := range listings {
		rows = append(rows, listingRowFrom(l))
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"owner_id",
				"name",
				"description",
				"brand",
				"color",
				"condition",
				"category_name",
				"active",
				"updated_at",
			}),
		}).
		Create(&rows).Error
}

func (r *ListingRepo) Listing(ctx context.Context, id string) (core.Listing, error) {
	var row ListingRow
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return core.Listing{}, core.ErrListingNotFound
	}
	if err != nil {
		return core.Listing{}, fmt.Errorf("load listing %s: %w", id, err)
	}
	return row.toDomain(), nil
}

func (r *ListingRepo) Listings(ctx context.Context, ids []string) (map[string]core.Listing, error) {
	out := make(map[string]core.Listing, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []ListingRow
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load listings: %w", err)
	}
	for _, row := range rows {
		out[row.ID] = row.toDomain()
	}
	return out, nil
}

func (r *ListingRepo) ActiveListings(ctx context.Context) ([]core.Listing, error) {
	var rows []ListingRow
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load active listings: %w", err)
	}
	out := make([]core.Listing, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

var _ core.Catalog = (*ListingRepo)(nil)
