package filter

import (
	"context"

	"github.com/merobazar/recsys/core"
	"github.com/merobazar/recsys/pkg/dsl"
)

// ExprFilter 用 CEL 表达式描述保留条件：表达式为 true 的物品保留，false 的过滤。
//
// 示例：
//   - `item.score >= 0.4`
//   - `label.hybrid_sources.contains("collaborative")`
type ExprFilter struct {
	Expr string
}

// NewExprFilter 编译校验表达式后创建过滤器。
func NewExprFilter(expr string) (*ExprFilter, error) {
	if expr != "" {
		if _, err := dsl.Compile(expr); err != nil {
			return nil, err
		}
	}
	return &ExprFilter{Expr: expr}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	keep, err := dsl.NewEval(item, rctx).Evaluate(f.Expr)
	if err != nil {
		return false, err
	}
	return !keep, nil
}
