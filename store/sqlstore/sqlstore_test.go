package sqlstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/merobazar/recsys/core"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := Open(DriverSQLite, dsn, nil)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("oracle", "", nil)
	assert.Error(t, err)
}

func TestInteractionRepoRecordAccumulates(t *testing.T) {
	ctx := context.Background()
	repo := NewInteractionRepo(newTestDB(t))
	t0 := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	now := t0
	repo.Now = func() time.Time { return now }

	first, err := repo.Record(ctx, "u1", "i1", core.KindView)
	require.NoError(t, err)
	assert.Equal(t, 1.0, first.Weight)

	now = t0.Add(time.Hour)
	second, err := repo.Record(ctx, "u1", "i1", core.KindView)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2.0, second.Weight)
	assert.True(t, second.Timestamp.Equal(t0))

	_, err = repo.Record(ctx, "u1", "i1", core.KindPurchase)
	require.NoError(t, err)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = repo.Record(ctx, "u1", "i1", core.InteractionKind(0))
	assert.ErrorIs(t, err, core.ErrInvalidInteractionKind)
}

func TestInteractionRepoQueries(t *testing.T) {
	ctx := context.Background()
	repo := NewInteractionRepo(newTestDB(t))
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	now := base
	repo.Now = func() time.Time { return now }

	_, err := repo.Record(ctx, "u1", "i1", core.KindView)
	require.NoError(t, err)
	now = base.Add(10 * 24 * time.Hour)
	_, err = repo.Record(ctx, "u2", "i2", core.KindCart)
	require.NoError(t, err)
	_, err = repo.Record(ctx, "u1", "i3", core.KindClick)
	require.NoError(t, err)

	byUser, err := repo.ByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	recent, err := repo.Since(ctx, base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestListingRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewListingRepo(newTestDB(t))

	require.NoError(t, repo.Upsert(ctx,
		core.Listing{ID: "i2", OwnerID: "u9", Name: "bag", Active: true},
		core.Listing{ID: "i1", OwnerID: "u9", Name: "jacket", Condition: core.ConditionUsedGood, Active: true},
		core.Listing{ID: "i3", OwnerID: "u8", Name: "lamp", Active: false},
	))

	l, err := repo.Listing(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, "jacket", l.Name)
	assert.Equal(t, core.ConditionUsedGood, l.Condition)

	_, err = repo.Listing(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrListingNotFound)

	active, err := repo.ActiveListings(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "i1", active[0].ID)

	// 下架后不再出现在上架列表
	require.NoError(t, repo.Upsert(ctx, core.Listing{ID: "i2", OwnerID: "u9", Name: "bag", Active: false}))
	active, err = repo.ActiveListings(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	got, err := repo.Listings(ctx, []string{"i1", "i3", "nope"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.False(t, got["i3"].Active)
}

func TestSimilarityRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewSimilarityRepo(newTestDB(t))

	neighbors, computed, err := repo.Neighbors(ctx, core.SimilarityUser, "u1", 10)
	require.NoError(t, err)
	assert.False(t, computed)
	assert.Empty(t, neighbors)

	require.NoError(t, repo.UpsertNeighbors(ctx, core.SimilarityUser, "u1", []core.Neighbor{
		{ID: "u2", Score: 0.4},
		{ID: "u3", Score: 0.9},
	}))
	require.NoError(t, repo.UpsertNeighbors(ctx, core.SimilarityUser, "u1", []core.Neighbor{
		{ID: "u2", Score: 0.95},
	}))

	neighbors, computed, err = repo.Neighbors(ctx, core.SimilarityUser, "u1", 10)
	require.NoError(t, err)
	assert.True(t, computed)
	assert.Equal(t, []core.Neighbor{{ID: "u2", Score: 0.95}, {ID: "u3", Score: 0.9}}, neighbors)

	top1, _, err := repo.Neighbors(ctx, core.SimilarityUser, "u1", 1)
	require.NoError(t, err)
	assert.Len(t, top1, 1)

	// 有向：u2 没有被计算过
	_, computed, err = repo.Neighbors(ctx, core.SimilarityUser, "u2", 10)
	require.NoError(t, err)
	assert.False(t, computed)

	// 用户与商品相似度互不影响；空列表也会标记已计算
	require.NoError(t, repo.UpsertNeighbors(ctx, core.SimilarityItem, "u1", nil))
	items, computed, err := repo.Neighbors(ctx, core.SimilarityItem, "u1", 10)
	require.NoError(t, err)
	assert.True(t, computed)
	assert.Empty(t, items)

	_, _, err = repo.Neighbors(ctx, core.SimilarityKind("shop"), "x", 1)
	assert.Error(t, err)
}
