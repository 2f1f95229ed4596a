package filter

import (
	"context"

	"github.com/rushteam/cfkit/core"
	"github.com/rushteam/cfkit/pkg/dsl"
)

// ExprFilter 是表达式过滤器：用 CEL 表达式描述过滤条件，
// 表达式求值为 true 的物品被过滤掉。
//
// 示例：
//   - `item.score < 0.1` → 剔除弱信号推荐
//   - `label.recall_source == "popular"` → 剔除热门补位结果
//
// 表达式语法见 pkg/dsl。
type ExprFilter struct {
	// Expr 是 CEL 过滤表达式，空表达式不过滤任何物品
	Expr string
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
	if f.Expr == "" {
		return false, nil
	}
	return dsl.NewEval(item, rctx).Evaluate(f.Expr)
}

var _ Filter = (*ExprFilter)(nil)
