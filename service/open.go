package service

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/merobazar/recsys/config"
	"github.com/merobazar/recsys/core"
	"github.com/merobazar/recsys/recall"
	"github.com/merobazar/recsys/store"
	"github.com/merobazar/recsys/store/sqlstore"
)

// Open 按 settings.Store.Backend 打开存储并组装 Service：
//   - memory：交互、商品、相似度都在进程内
//   - redis：相似度表存 Redis，交互与商品在进程内
//   - sql：交互、商品、相似度都在数据库，启动时自动迁移
func Open(ctx context.Context, settings *config.Settings, log zerolog.Logger) (*Service, error) {
	if settings == nil {
		settings = config.Default()
	}
	opts := Options{
		Defaults:            settings,
		CollaborativeWeight: settings.Hybrid.CollaborativeWeight,
		ContentWeight:       settings.Hybrid.ContentWeight,
		MaxFeatures:         settings.Similarity.MaxFeatures,
		Breaker: BreakerOptions{
			MaxRequests:      settings.Breaker.MaxRequests,
			Interval:         settings.Breaker.Interval,
			Timeout:          settings.Breaker.Timeout,
			FailureThreshold: settings.Breaker.FailureThreshold,
		},
		Logger: log,
	}

	switch settings.Store.Backend {
	case "", "memory":
		kv := store.NewMemoryStore()
		opts.Interactions = store.NewMemoryInteractionLog()
		opts.Catalog = store.NewMemoryCatalog()
		opts.Similarities = recall.NewStoreSimilarityAdapter(kv, settings.Store.KeyPrefix)
		opts.Closers = []io.Closer{kv}

	case "redis":
		kv, err := store.NewRedisStore(ctx, store.RedisOptions{
			Addr:     settings.Redis.Addr,
			Password: settings.Redis.Password,
			DB:       settings.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis %s: %w", settings.Redis.Addr, err)
		}
		opts.Interactions = store.NewMemoryInteractionLog()
		opts.Catalog = store.NewMemoryCatalog()
		opts.Similarities = recall.NewStoreSimilarityAdapter(kv, settings.Store.KeyPrefix)
		opts.Closers = []io.Closer{kv}

	case "sql":
		db, err := sqlstore.Open(settings.Database.Driver, settings.Database.DSN, &log)
		if err != nil {
			return nil, err
		}
		if err := sqlstore.Migrate(db); err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("database handle: %w", err)
		}
		opts.Interactions = sqlstore.NewInteractionRepo(db)
		opts.Catalog = sqlstore.NewListingRepo(db)
		opts.Similarities = sqlstore.NewSimilarityRepo(db)
		opts.Closers = []io.Closer{sqlDB}

	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", core.ErrStoreNotSupported, settings.Store.Backend)
	}

	log.Info().Str("backend", settings.Store.Backend).Msg("recommender opened")
	return New(opts)
}
