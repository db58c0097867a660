// Package service 是推荐引擎对外的库级入口：
// 记录交互、个性化推荐（失败回退热门）、相似商品、热门商品。
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/merobazar/recsys/core"
	"github.com/merobazar/recsys/pkg/metrics"
	"github.com/merobazar/recsys/pkg/utils"
	"github.com/merobazar/recsys/recall"
)

// 推荐策略名称
const (
	StrategyHybrid  = "hybrid"
	StrategyPopular = "popular"
)

// ListingWriter 是可写的商品目录（store.MemoryCatalog、sqlstore.ListingRepo）。
type ListingWriter interface {
	Upsert(ctx context.Context, listings ...core.Listing) error
}

// BreakerOptions 个性化路径熔断参数，零值字段使用默认值。
type BreakerOptions struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// Options 构建 Service 所需的协作方与参数。
type Options struct {
	Interactions core.InteractionLog
	Catalog      core.Catalog
	Similarities core.SimilarityStore

	// Defaults 提供 TopK、邻居数、默认条数、热门窗口与个性化超时，nil 时使用 core.DefaultRecallConfig
	Defaults core.RecallConfig

	CollaborativeWeight float64
	ContentWeight       float64
	MaxFeatures         int

	Breaker BreakerOptions
	Logger  zerolog.Logger

	// Now 用于测试注入时间
	Now func() time.Time

	// Closers 随 Service.Close 一起关闭
	Closers []io.Closer
}

// Service 组合相似度引擎与各召回源。
type Service struct {
	Interactions core.InteractionLog
	Catalog      core.Catalog

	Users         *recall.UserSimilarity
	Items         *recall.ItemSimilarity
	Collaborative *recall.UserBasedCF
	Content       *recall.ContentRecall
	Hybrid        *recall.Hybrid
	Popular       *recall.Popular

	defaults core.RecallConfig
	breaker  *gobreaker.CircuitBreaker[[]*core.Item]
	log      zerolog.Logger
	closers  []io.Closer
}

// New 按 Options 组装 Service。
func New(opts Options) (*Service, error) {
	if opts.Interactions == nil || opts.Catalog == nil || opts.Similarities == nil {
		return nil, fmt.Errorf("service: interactions, catalog and similarities are required")
	}
	defaults := opts.Defaults
	if defaults == nil {
		defaults = &core.DefaultRecallConfig{}
	}

	users := &recall.UserSimilarity{
		Interactions: opts.Interactions,
		Store:        opts.Similarities,
		TopK:         defaults.DefaultTopK(),
	}
	items := &recall.ItemSimilarity{
		Catalog:     opts.Catalog,
		Store:       opts.Similarities,
		TopK:        defaults.DefaultTopK(),
		MaxFeatures: opts.MaxFeatures,
	}
	collab := &recall.UserBasedCF{
		Interactions:  opts.Interactions,
		Catalog:       opts.Catalog,
		Similarity:    users,
		NeighborLimit: defaults.DefaultNeighborLimit(),
		TopK:          defaults.DefaultLimit(),
	}
	content := &recall.ContentRecall{
		Interactions:  opts.Interactions,
		Catalog:       opts.Catalog,
		Similarity:    items,
		NeighborLimit: defaults.DefaultNeighborLimit(),
		TopK:          defaults.DefaultLimit(),
	}

	s := &Service{
		Interactions:  opts.Interactions,
		Catalog:       opts.Catalog,
		Users:         users,
		Items:         items,
		Collaborative: collab,
		Content:       content,
		Hybrid: &recall.Hybrid{
			Collaborative:       collab,
			Content:             content,
			Catalog:             opts.Catalog,
			CollaborativeWeight: opts.CollaborativeWeight,
			ContentWeight:       opts.ContentWeight,
			TopK:                defaults.DefaultLimit(),
		},
		Popular: &recall.Popular{
			Interactions: opts.Interactions,
			Catalog:      opts.Catalog,
			WindowDays:   defaults.DefaultWindowDays(),
			TopK:         defaults.DefaultLimit(),
			Now:          opts.Now,
		},
		defaults: defaults,
		log:      opts.Logger.With().Str("component", "recommender").Logger(),
		closers:  opts.Closers,
	}
	s.breaker = newBreaker(opts.Breaker, s.log)
	return s, nil
}

func newBreaker(opts BreakerOptions, log zerolog.Logger) *gobreaker.CircuitBreaker[[]*core.Item] {
	if opts.MaxRequests == 0 {
		opts.MaxRequests = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = 5
	}
	return gobreaker.NewCircuitBreaker[[]*core.Item](gobreaker.Settings{
		Name:        "personalized",
		MaxRequests: opts.MaxRequests,
		Interval:    opts.Interval,
		Timeout:     opts.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.Set(float64(to))
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("breaker state changed")
		},
	})
}

// RecordInteraction 记录一次交互并返回交互 ID。
// 同一 (user, item, kind) 重复记录时累加权重，返回同一 ID。
func (s *Service) RecordInteraction(ctx context.Context, userID, itemID, kind string) (string, error) {
	userID, itemID = strings.TrimSpace(userID), strings.TrimSpace(itemID)
	if userID == "" || itemID == "" {
		return "", fmt.Errorf("%w: user and item ids are required", core.ErrInvalidInput)
	}
	k, err := core.ParseInteractionKind(kind)
	if err != nil {
		return "", err
	}
	in, err := s.Interactions.Record(ctx, userID, itemID, k)
	if err != nil {
		return "", fmt.Errorf("record interaction: %w", err)
	}
	metrics.InteractionsRecordedTotal.WithLabelValues(k.String()).Inc()
	s.log.Debug().
		Str("user_id", userID).
		Str("item_id", itemID).
		Stringer("kind", k).
		Float64("weight", in.Weight).
		Msg("interaction recorded")
	return in.ID, nil
}

// GetRecommendations 返回为 userID 推荐的商品 ID，永不返回错误。
func (s *Service) GetRecommendations(ctx context.Context, userID string, limit int) []string {
	items, _ := s.Recommend(ctx, userID, limit)
	return core.ItemIDs(items)
}

// Recommend 返回推荐结果与实际使用的策略（hybrid / popular）。
//
// 无历史交互的用户直接走热门；否则在熔断器内执行混合推荐，
// 出错、超时、熔断打开或结果为空时回退到热门。
func (s *Service) Recommend(ctx context.Context, userID string, limit int) ([]*core.Item, string) {
	limit = limitOr(limit, s.defaults.DefaultLimit())

	reason := s.skipReason(ctx, userID)
	if reason == "" {
		items, herr := s.breaker.Execute(func() ([]*core.Item, error) {
			hctx, cancel := context.WithTimeout(ctx, s.timeout())
			defer cancel()
			return s.Hybrid.Recommend(hctx, userID, limit)
		})
		switch {
		case herr == nil && len(items) > 0:
			metrics.RecommendationsTotal.WithLabelValues(StrategyHybrid).Inc()
			return items, StrategyHybrid
		case herr == nil:
			reason = "empty"
		case errors.Is(herr, gobreaker.ErrOpenState), errors.Is(herr, gobreaker.ErrTooManyRequests):
			reason = "breaker_open"
		default:
			reason = "error"
			s.log.Warn().Err(herr).Str("user_id", userID).Msg("hybrid recommendation failed, falling back to popular")
		}
	}

	metrics.FallbackTotal.WithLabelValues(reason).Inc()
	items := s.popular(ctx, limit)
	for _, it := range items {
		it.PutLabel("fallback_reason", utils.Label{Value: reason, Source: "service"})
	}
	metrics.RecommendationsTotal.WithLabelValues(StrategyPopular).Inc()
	return items, StrategyPopular
}

// skipReason 返回不走个性化的原因；为空表示用户有历史交互，可以走混合推荐。
func (s *Service) skipReason(ctx context.Context, userID string) string {
	if strings.TrimSpace(userID) == "" {
		return "anonymous"
	}
	history, err := s.Interactions.ByUser(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("load user history failed")
		return "error"
	}
	if len(history) == 0 {
		return "cold_start"
	}
	return ""
}

func (s *Service) popular(ctx context.Context, limit int) []*core.Item {
	items, err := s.Popular.Top(ctx, limit, s.defaults.DefaultWindowDays())
	if err != nil {
		s.log.Error().Err(err).Msg("popular fallback failed")
		return nil
	}
	return items
}

func (s *Service) timeout() time.Duration {
	if d := s.defaults.DefaultTimeout(); d > 0 {
		return d
	}
	return 2 * time.Second
}

// GetSimilarItems 返回与 itemID 内容最相似的上架商品。
// 商品不存在时返回 core.ErrListingNotFound；商品已下架时返回空。
func (s *Service) GetSimilarItems(ctx context.Context, itemID string, limit int) ([]string, error) {
	limit = limitOr(limit, s.defaults.DefaultLimit())

	listing, err := s.Catalog.Listing(ctx, itemID)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, fmt.Errorf("similar items for %q: %w", itemID, core.ErrListingNotFound)
		}
		return nil, fmt.Errorf("similar items for %q: %w", itemID, err)
	}
	if !listing.Active {
		return nil, nil
	}

	neighbors, computed, err := s.Items.Neighbors(ctx, itemID, 0)
	if err != nil {
		return nil, fmt.Errorf("read item neighbors: %w", err)
	}
	// 存储的行数达到上次刷新的上限但仍不足 limit 时，扩大 TopK 重算
	topK := s.defaults.DefaultTopK()
	if !computed || (len(neighbors) < limit && len(neighbors) >= topK) {
		neighbors, err = s.Items.Refresh(ctx, itemID, max(limit, topK))
		if err != nil {
			return nil, fmt.Errorf("refresh item neighbors: %w", err)
		}
	}

	ids := make([]string, 0, len(neighbors))
	for _, nb := range neighbors {
		ids = append(ids, nb.ID)
	}
	listings, err := s.Catalog.Listings(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load listings: %w", err)
	}
	out := make([]string, 0, limit)
	for _, id := range ids {
		if l, ok := listings[id]; !ok || !l.Active || id == itemID {
			continue
		}
		out = append(out, id)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// GetPopularItems 返回窗口内最热门的上架商品，永不返回错误。
func (s *Service) GetPopularItems(ctx context.Context, limit, windowDays int) []string {
	limit = limitOr(limit, s.defaults.DefaultLimit())
	items, err := s.Popular.Top(ctx, limit, limitOr(windowDays, s.defaults.DefaultWindowDays()))
	if err != nil {
		s.log.Error().Err(err).Msg("popular items failed")
		return nil
	}
	return core.ItemIDs(items)
}

// UpsertListings 同步外部目录中的商品，目录不可写时返回 NOT_SUPPORTED。
func (s *Service) UpsertListings(ctx context.Context, listings ...core.Listing) error {
	w, ok := s.Catalog.(ListingWriter)
	if !ok {
		return core.ErrStoreNotSupported
	}
	return w.Upsert(ctx, listings...)
}

// Logger 返回服务使用的 logger，供 pipeline 等组件沿用同一输出。
func (s *Service) Logger() zerolog.Logger { return s.log }

// Close 关闭底层存储连接。
func (s *Service) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func limitOr(n, def int) int {
	if n > 0 {
		return n
	}
	if def > 0 {
		return def
	}
	return 20
}
