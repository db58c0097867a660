// Package builders 注册内置 Node 的配置驱动构建逻辑。
//
// 用法：
//
//	builders.Install(builders.FromService(svc))
//	cfg, _ := pipeline.Load("pipeline.yaml")
//	_ = config.ValidatePipelineConfig(cfg)
//	p, _ := cfg.BuildPipeline(config.DefaultFactory())
package builders

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/merobazar/recsys/config"
	"github.com/merobazar/recsys/core"
	"github.com/merobazar/recsys/filter"
	"github.com/merobazar/recsys/pipeline"
	"github.com/merobazar/recsys/pkg/conv"
	"github.com/merobazar/recsys/recall"
	"github.com/merobazar/recsys/rerank"
	"github.com/merobazar/recsys/service"
)

// Deps 是构建 Node 所需的运行时依赖。
type Deps struct {
	Interactions  core.InteractionLog
	Catalog       core.Catalog
	Collaborative recall.Recommender
	Content       recall.Recommender
	Hybrid        *recall.Hybrid
	Popular       *recall.Popular

	// Blacklist 存放运营黑名单 Hash 的存储，可选
	Blacklist core.KeyValueStore

	Logger zerolog.Logger
}

// FromService 从 Service 取出各召回源与协作方。
func FromService(s *service.Service) Deps {
	return Deps{
		Interactions:  s.Interactions,
		Catalog:       s.Catalog,
		Collaborative: s.Collaborative,
		Content:       s.Content,
		Hybrid:        s.Hybrid,
		Popular:       s.Popular,
		Logger:        s.Logger(),
	}
}

// Install 把内置 Node 注册到 config 的全局注册表。
func Install(deps Deps) {
	config.Register("recall.hybrid", deps.buildHybrid)
	config.Register("recall.popular", deps.buildPopular)
	config.Register("recall.fanout", deps.buildFanout)
	config.Register("filter", deps.buildFilterNode)
	config.Register("filter.listing", deps.single("listing"))
	config.Register("filter.interacted", deps.single("interacted"))
	config.Register("filter.blacklist", deps.single("blacklist"))
	config.Register("filter.expr", deps.single("expr"))
	config.Register("rerank.topn", buildTopN)
	config.Register("rerank.diversity", deps.buildDiversity)
}

func (d Deps) buildHybrid(cfg map[string]interface{}) (pipeline.Node, error) {
	if d.Hybrid == nil {
		return nil, fmt.Errorf("recall.hybrid: hybrid recommender not configured")
	}
	h := *d.Hybrid
	h.CollaborativeWeight = conv.ConfigGetFloat64(cfg, "collaborative_weight", h.CollaborativeWeight)
	h.ContentWeight = conv.ConfigGetFloat64(cfg, "content_weight", h.ContentWeight)
	if n := conv.ConfigGetInt64(cfg, "top_k", 0); n > 0 {
		h.TopK = int(n)
	}
	if h.CollaborativeWeight < 0 || h.ContentWeight < 0 {
		return nil, fmt.Errorf("recall.hybrid: weights must be non-negative")
	}
	if h.CollaborativeWeight == 0 && h.ContentWeight == 0 {
		return nil, fmt.Errorf("recall.hybrid: at least one weight must be positive")
	}
	return &h, nil
}

func (d Deps) buildPopular(cfg map[string]interface{}) (pipeline.Node, error) {
	if d.Popular == nil {
		return nil, fmt.Errorf("recall.popular: popular recommender not configured")
	}
	p := *d.Popular
	if days := conv.ConfigGetInt64(cfg, "window_days", 0); days > 0 {
		p.WindowDays = int(days)
	}
	if n := conv.ConfigGetInt64(cfg, "top_k", 0); n > 0 {
		p.TopK = int(n)
	}
	return &p, nil
}

func (d Deps) buildFanout(cfg map[string]interface{}) (pipeline.Node, error) {
	sourcesConfig, ok := cfg["sources"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("recall.fanout: sources not found or invalid")
	}
	sources := make([]recall.Source, 0, len(sourcesConfig))
	for _, sc := range sourcesConfig {
		var sourceType string
		var sourceCfg map[string]interface{}
		switch v := sc.(type) {
		case string:
			sourceType = v
		case map[string]interface{}:
			sourceType = conv.ConfigGet(v, "type", "")
			sourceCfg = v
		default:
			continue
		}

		var (
			src recall.Source
			err error
		)
		switch sourceType {
		case "hybrid":
			var n pipeline.Node
			n, err = d.buildHybrid(sourceCfg)
			if err == nil {
				src = n.(recall.Source)
			}
		case "popular":
			var n pipeline.Node
			n, err = d.buildPopular(sourceCfg)
			if err == nil {
				src = n.(recall.Source)
			}
		case "collaborative":
			src, err = d.Collaborative, required(d.Collaborative != nil, sourceType)
		case "content":
			src, err = d.Content, required(d.Content != nil, sourceType)
		default:
			return nil, fmt.Errorf("recall.fanout: unknown source type: %s", sourceType)
		}
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}

	merge, err := recall.ParseMergeStrategy(conv.ConfigGet(cfg, "merge_strategy", ""))
	if err != nil {
		return nil, fmt.Errorf("recall.fanout: %w", err)
	}
	fanout := &recall.Fanout{
		Sources: sources,
		Merge:   merge,
		Logger:  d.Logger,
	}
	if ms := conv.ConfigGetInt64(cfg, "timeout_ms", 0); ms > 0 {
		fanout.Timeout = time.Duration(ms) * time.Millisecond
	}
	if n := conv.ConfigGetInt64(cfg, "max_concurrent", 0); n > 0 {
		fanout.MaxConcurrent = int(n)
	}
	return fanout, nil
}

func required(ok bool, name string) error {
	if ok {
		return nil
	}
	return fmt.Errorf("recall.fanout: %s recommender not configured", name)
}

// single 把单个过滤器类型包装成只含它的 FilterNode。
func (d Deps) single(filterType string) pipeline.NodeBuilder {
	return func(cfg map[string]interface{}) (pipeline.Node, error) {
		f, err := d.buildFilter(filterType, cfg)
		if err != nil {
			return nil, err
		}
		return &filter.FilterNode{
			Filters: []filter.Filter{f},
			Strict:  conv.ConfigGet(cfg, "strict", false),
		}, nil
	}
}

// buildFilterNode 构建组合过滤节点：filters: [{type: listing}, {type: expr, expr: ...}]
func (d Deps) buildFilterNode(cfg map[string]interface{}) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("filter: filters not found or invalid")
	}
	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]interface{})
		if !ok {
			continue
		}
		f, err := d.buildFilter(conv.ConfigGet(filterMap, "type", ""), filterMap)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return &filter.FilterNode{
		Filters: filters,
		Strict:  conv.ConfigGet(cfg, "strict", false),
	}, nil
}

func (d Deps) buildFilter(filterType string, cfg map[string]interface{}) (filter.Filter, error) {
	switch filterType {
	case "listing":
		if d.Catalog == nil {
			return nil, fmt.Errorf("filter.listing: catalog not configured")
		}
		return &filter.ListingFilter{
			Catalog:      d.Catalog,
			ActiveOnly:   conv.ConfigGet(cfg, "active_only", true),
			ExcludeOwned: conv.ConfigGet(cfg, "exclude_owned", true),
		}, nil
	case "interacted":
		if d.Interactions == nil {
			return nil, fmt.Errorf("filter.interacted: interaction log not configured")
		}
		var kinds []core.InteractionKind
		for _, s := range conv.SliceAnyToString(cfg["kinds"]) {
			k, err := core.ParseInteractionKind(s)
			if err != nil {
				return nil, fmt.Errorf("filter.interacted: %w", err)
			}
			kinds = append(kinds, k)
		}
		return &filter.InteractedFilter{Interactions: d.Interactions, Kinds: kinds}, nil
	case "blacklist":
		ids := conv.SliceAnyToString(cfg["item_ids"])
		if ids == nil {
			ids = []string{}
		}
		return filter.NewBlacklistFilter(ids, d.Blacklist, conv.ConfigGet(cfg, "key", "")), nil
	case "expr":
		expr := conv.ConfigGet(cfg, "expr", "")
		if expr == "" {
			return nil, fmt.Errorf("filter.expr: expr is required")
		}
		f, err := filter.NewExprFilter(expr)
		if err != nil {
			return nil, fmt.Errorf("filter.expr: %w", err)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unknown filter type: %q", filterType)
	}
}

func buildTopN(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.TopNNode{N: int(conv.ConfigGetInt64(cfg, "n", 0))}, nil
}

func (d Deps) buildDiversity(cfg map[string]interface{}) (pipeline.Node, error) {
	labelKey := conv.ConfigGet(cfg, "label_key", "category")
	if labelKey == "" {
		labelKey = "category"
	}
	return &rerank.Diversity{
		LabelKey:       labelKey,
		MaxPerCategory: int(conv.ConfigGetInt64(cfg, "max_per_category", 1)),
		Catalog:        d.Catalog,
	}, nil
}
