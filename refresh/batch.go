// Package refresh 批量重算并持久化用户/商品相似度。
package refresh

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/merobazar/recsys/core"
	"github.com/merobazar/recsys/matrix"
	"github.com/merobazar/recsys/pkg/metrics"
	"github.com/merobazar/recsys/recall"
)

// Report 是一次批量刷新的结果。
type Report struct {
	Users    int
	Items    int
	Failed   int
	Duration time.Duration
}

// Batch 基于同一份交互快照与特征空间，分块、限并发地刷新全部用户与上架商品的 Top-K 邻居。
// 单个实体失败只记录日志与计数，不中断整批。
type Batch struct {
	Interactions core.InteractionLog
	Users        *recall.UserSimilarity
	Items        *recall.ItemSimilarity

	// ChunkSize 每块实体数，<= 0 时默认 100
	ChunkSize int
	// Concurrency 块内并发数，<= 0 时默认 4
	Concurrency int
	// EntityTimeout 单个实体的超时，<= 0 时默认 5s
	EntityTimeout time.Duration
	// TopK 每个实体持久化的邻居数，<= 0 时使用引擎的 TopK
	TopK int

	Logger zerolog.Logger
}

// Run 执行一次批量刷新。只有加载快照失败或 ctx 被取消时返回错误。
func (b *Batch) Run(ctx context.Context) (report Report, err error) {
	start := time.Now()
	defer func() {
		report.Duration = time.Since(start)
		metrics.RefreshDuration.Observe(report.Duration.Seconds())
	}()

	snapshot, err := b.Interactions.All(ctx)
	if err != nil {
		return report, fmt.Errorf("load interactions: %w", err)
	}
	m := matrix.Build(snapshot)
	space, err := b.Items.Space(ctx)
	if err != nil {
		return report, err
	}
	b.Logger.Info().
		Int("users", len(m.Users)).
		Int("items", space.Len()).
		Msg("similarity refresh started")

	failed, err := b.each(ctx, core.SimilarityUser, m.Users, func(ctx context.Context, id string) error {
		_, err := b.Users.RefreshFrom(ctx, m, id, b.TopK)
		return err
	})
	report.Users, report.Failed = len(m.Users), failed
	if err != nil {
		return report, err
	}

	failed, err = b.each(ctx, core.SimilarityItem, space.IDs, func(ctx context.Context, id string) error {
		_, err := b.Items.RefreshFrom(ctx, space, id, b.TopK)
		return err
	})
	report.Items = space.Len()
	report.Failed += failed
	if err != nil {
		return report, err
	}

	b.Logger.Info().
		Int("users", report.Users).
		Int("items", report.Items).
		Int("failed", report.Failed).
		Dur("duration", time.Since(start)).
		Msg("similarity refresh finished")
	return report, nil
}

func (b *Batch) each(ctx context.Context, kind core.SimilarityKind, ids []string, refresh func(context.Context, string) error) (int, error) {
	chunk := b.ChunkSize
	if chunk <= 0 {
		chunk = 100
	}
	timeout := b.EntityTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	limit := b.Concurrency
	if limit <= 0 {
		limit = 4
	}

	var failed atomic.Int32
	for lo := 0; lo < len(ids); lo += chunk {
		if err := ctx.Err(); err != nil {
			return int(failed.Load()), err
		}
		hi := min(lo+chunk, len(ids))

		var eg errgroup.Group
		eg.SetLimit(limit)
		for _, id := range ids[lo:hi] {
			eg.Go(func() error {
				ectx, cancel := context.WithTimeout(ctx, timeout)
				defer cancel()
				if err := refresh(ectx, id); err != nil {
					failed.Add(1)
					metrics.RefreshFailuresTotal.WithLabelValues(string(kind)).Inc()
					b.Logger.Warn().Err(err).Str("kind", string(kind)).Str("id", id).Msg("similarity refresh failed")
				}
				return nil
			})
		}
		_ = eg.Wait()
		b.Logger.Debug().Str("kind", string(kind)).Int("done", hi).Int("total", len(ids)).Msg("similarity refresh progress")
	}
	return int(failed.Load()), nil
}
