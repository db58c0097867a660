package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/merobazar/recsys/core"
	"github.com/merobazar/recsys/pkg/metrics"
)

// Pipeline 把推荐逻辑拆成可组合的 Node 链，按顺序执行，任一 Node 报错即终止。
type Pipeline struct {
	Name  string
	Nodes []Node

	// Logger 为空值时不输出
	Logger zerolog.Logger
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	name := p.Name
	if name == "" {
		name = "default"
	}
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", node.Name(), err)
		}
		start := time.Now()
		next, err := node.Process(ctx, rctx, cur)
		elapsed := time.Since(start)
		metrics.NodeDuration.WithLabelValues(name, node.Name()).Observe(elapsed.Seconds())
		if err != nil {
			p.Logger.Warn().Err(err).
				Str("pipeline", name).
				Str("node", node.Name()).
				Msg("pipeline node failed")
			return nil, fmt.Errorf("%s: %w", node.Name(), err)
		}
		p.Logger.Debug().
			Str("pipeline", name).
			Str("node", node.Name()).
			Str("kind", string(node.Kind())).
			Int("in", len(cur)).
			Int("out", len(next)).
			Dur("took", elapsed).
			Msg("pipeline node done")
		cur = next
	}
	return cur, nil
}
