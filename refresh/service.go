package refresh

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// Service 按固定间隔运行 Batch，实现 suture.Service，可挂到 supervisor 下。
type Service struct {
	batch    *Batch
	interval time.Duration
	logger   zerolog.Logger

	// RunOnStart 启动时立即执行一次
	RunOnStart bool

	last atomic.Pointer[Report]
}

// NewService 创建刷新服务；interval <= 0 表示关闭周期刷新。
//
//nolint:gocritic // zerolog.Logger 按值传递
func NewService(batch *Batch, interval time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		batch:    batch,
		interval: interval,
		logger:   logger.With().Str("service", "similarity-refresh").Logger(),
	}
}

// Serve 实现 suture.Service。
func (s *Service) Serve(ctx context.Context) error {
	if s.interval <= 0 {
		s.logger.Info().Msg("periodic similarity refresh disabled")
		return suture.ErrDoNotRestart
	}
	s.logger.Info().Dur("interval", s.interval).Msg("similarity refresh service starting")

	if s.RunOnStart {
		s.run(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("similarity refresh service stopping")
			return ctx.Err()
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *Service) run(ctx context.Context) {
	report, err := s.batch.Run(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("similarity refresh aborted")
		return
	}
	s.last.Store(&report)
}

// LastReport 返回最近一次成功完成的刷新结果。
func (s *Service) LastReport() (Report, bool) {
	r := s.last.Load()
	if r == nil {
		return Report{}, false
	}
	return *r, true
}

func (s *Service) String() string { return "similarity-refresh" }

var _ suture.Service = (*Service)(nil)
