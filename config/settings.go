package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/merobazar/recsys/core"
)

// EnvPrefix 环境变量前缀，例如 RECSYS_STORE_BACKEND=redis、RECSYS_SIMILARITY_TOP_K=20。
const EnvPrefix = "RECSYS_"

// Settings 是服务的全部运行配置。
// 加载顺序：默认值 -> YAML 文件 -> 环境变量，后者覆盖前者。
type Settings struct {
	Log        LogSettings        `koanf:"log"`
	Store      StoreSettings      `koanf:"store"`
	Redis      RedisSettings      `koanf:"redis"`
	Database   DatabaseSettings   `koanf:"database"`
	Similarity SimilaritySettings `koanf:"similarity"`
	Hybrid     HybridSettings     `koanf:"hybrid"`
	Popular    PopularSettings    `koanf:"popular"`
	Breaker    BreakerSettings    `koanf:"breaker"`
	Refresh    RefreshSettings    `koanf:"refresh"`
}

type LogSettings struct {
	Level   string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format  string `koanf:"format" validate:"oneof=json console"`
	Service string `koanf:"service"`
}

// StoreSettings 选择交互日志、商品目录与相似度表的存储后端。
//   - memory：全部在进程内
//   - redis：相似度表存 Redis，交互与商品在内存
//   - sql：全部存数据库（postgres / sqlite）
type StoreSettings struct {
	Backend   string `koanf:"backend" validate:"oneof=memory redis sql"`
	KeyPrefix string `koanf:"key_prefix"`
}

type RedisSettings struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"gte=0"`
}

type DatabaseSettings struct {
	Driver string `koanf:"driver" validate:"oneof=postgres sqlite"`
	DSN    string `koanf:"dsn"`
}

type SimilaritySettings struct {
	TopK          int `koanf:"top_k" validate:"gt=0"`
	NeighborLimit int `koanf:"neighbor_limit" validate:"gt=0"`
	MaxFeatures   int `koanf:"max_features" validate:"gt=0"`
}

type HybridSettings struct {
	CollaborativeWeight float64 `koanf:"collaborative_weight" validate:"gte=0"`
	ContentWeight       float64 `koanf:"content_weight" validate:"gte=0"`
	DefaultLimit        int     `koanf:"default_limit" validate:"gt=0"`
	// Timeout 单次个性化计算的超时，超时按失败处理并回退到热门
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

type PopularSettings struct {
	WindowDays int `koanf:"window_days" validate:"gt=0"`
}

// BreakerSettings 控制个性化推荐的熔断器：连续失败 FailureThreshold 次后打开，
// Timeout 后进入半开状态，半开时最多放行 MaxRequests 个请求。
type BreakerSettings struct {
	MaxRequests      uint32        `koanf:"max_requests" validate:"gt=0"`
	Interval         time.Duration `koanf:"interval" validate:"gte=0"`
	Timeout          time.Duration `koanf:"timeout" validate:"gt=0"`
	FailureThreshold uint32        `koanf:"failure_threshold" validate:"gt=0"`
}

// RefreshSettings 控制相似度批量刷新。Interval 为 0 时不启动周期刷新。
type RefreshSettings struct {
	Interval      time.Duration `koanf:"interval" validate:"gte=0"`
	ChunkSize     int           `koanf:"chunk_size" validate:"gt=0"`
	Concurrency   int           `koanf:"concurrency" validate:"gt=0"`
	EntityTimeout time.Duration `koanf:"entity_timeout" validate:"gt=0"`
}

// Default 返回默认配置。
func Default() *Settings {
	return &Settings{
		Log: LogSettings{
			Level:   "info",
			Format:  "json",
			Service: "recsys",
		},
		Store: StoreSettings{
			Backend:   "memory",
			KeyPrefix: "sim",
		},
		Redis: RedisSettings{
			Addr: "127.0.0.1:6379",
		},
		Database: DatabaseSettings{
			Driver: "sqlite",
			DSN:    "file:recsys.db",
		},
		Similarity: SimilaritySettings{
			TopK:          10,
			NeighborLimit: 10,
			MaxFeatures:   1000,
		},
		Hybrid: HybridSettings{
			CollaborativeWeight: 0.6,
			ContentWeight:       0.4,
			DefaultLimit:        20,
			Timeout:             2 * time.Second,
		},
		Popular: PopularSettings{
			WindowDays: 30,
		},
		Breaker: BreakerSettings{
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
		},
		Refresh: RefreshSettings{
			Interval:      time.Hour,
			ChunkSize:     100,
			Concurrency:   4,
			EntityTimeout: 5 * time.Second,
		},
	}
}

var validate = validator.New()

// Load 按 默认值 -> path 指定的 YAML（为空则跳过）-> RECSYS_ 环境变量 的顺序加载并校验配置。
func Load(path string) (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	s := &Settings{}
	if err := k.Unmarshal("", s); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// envKey 把 RECSYS_SIMILARITY_TOP_K 映射为 similarity.top_k：
// 第一个下划线分隔配置段，其余保留为字段名。
func envKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	section, field, ok := strings.Cut(key, "_")
	if !ok {
		return key
	}
	return section + "." + field
}

// Validate 校验字段取值范围以及跨字段约束。
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if s.Hybrid.CollaborativeWeight+s.Hybrid.ContentWeight == 0 {
		return fmt.Errorf("invalid settings: hybrid weights must not both be zero")
	}
	if s.Store.Backend == "redis" && s.Redis.Addr == "" {
		return fmt.Errorf("invalid settings: redis.addr is required for the redis backend")
	}
	if s.Store.Backend == "sql" && s.Database.DSN == "" {
		return fmt.Errorf("invalid settings: database.dsn is required for the sql backend")
	}
	return nil
}

// 以下方法让 Settings 作为 core.RecallConfig 提供召回默认值。
func (s *Settings) DefaultNeighborLimit() int     { return s.Similarity.NeighborLimit }
func (s *Settings) DefaultTopK() int              { return s.Similarity.TopK }
func (s *Settings) DefaultLimit() int             { return s.Hybrid.DefaultLimit }
func (s *Settings) DefaultWindowDays() int        { return s.Popular.WindowDays }
func (s *Settings) DefaultTimeout() time.Duration { return s.Hybrid.Timeout }

var _ core.RecallConfig = (*Settings)(nil)
