// Package sqlstore 用 gorm 实现交互日志、商品目录与相似度存储。
// 生产使用 Postgres，测试使用 SQLite。
package sqlstore

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// 支持的驱动
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open 打开数据库连接。log 为 nil 时不输出 SQL 日志。
func Open(driver, dsn string, log *zerolog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}

	cfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Discard,
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
	}
	if log != nil {
		cfg.Logger = gormLogger.New(log, gormLogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		})
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// 内存库每个连接是独立的数据库
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Migrate 创建/更新所有表。
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&InteractionRow{}, &ListingRow{}, &SimilarityRunRow{}); err != nil {
		return fmt.Errorf("sqlstore: migrate: %w", err)
	}
	for _, table := range []string{userSimilarityTable, itemSimilarityTable} {
		if err := db.Table(table).AutoMigrate(&SimilarityRow{}); err != nil {
			return fmt.Errorf("sqlstore: migrate %s: %w", table, err)
		}
	}
	return nil
}
