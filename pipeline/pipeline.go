package pipeline

import (
	"context"

	"github.com/rushteam/cfkit/core"
)

// Pipeline 是 cfkit 的核心抽象：把推荐逻辑拆成可组合的 Node 链。
// 单次 Run 是一条纯流水线：每个 Node 是输入的纯函数，不修改共享状态，
// 对同一份只读数据重复执行产出完全一致。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
