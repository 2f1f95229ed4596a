package filter

import (
	"context"

	"github.com/rushteam/cfkit/core"
)

// OwnedFilter 过滤掉目标用户已经拥有的物品（新颖性约束）。
//
// UserCF 打分阶段本身就不会产出已拥有的物品；这个过滤器是 Pipeline 层的
// 兜底——当候选集还包含其他来源（热门召回、人工运营位）时，保证最终结果
// 仍然满足"推荐必须新颖"的约束。
type OwnedFilter struct {
	Store core.InteractionStore
}

func (f *OwnedFilter) Name() string {
	return "filter.owned"
}

func (f *OwnedFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if f.Store == nil || rctx == nil || rctx.UserID == "" {
		return false, nil
	}

	owned, err := f.Store.ItemsOf(ctx, rctx.UserID)
	if err != nil {
		return false, err
	}
	return owned.Has(item.ID), nil
}

var _ Filter = (*OwnedFilter)(nil)
