package recall

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/cfkit/core"
	"github.com/rushteam/cfkit/pipeline"
)

// Fanout 是一个 Recall Node：并发执行多个召回源，并按源顺序合并结果。
// 支持超时、限流。
//
// 每个源写入自己的结果槽，合并严格按 Sources 顺序进行，
// 因此并发执行不引入任何不确定性（确定性是引擎的硬性要求）。
type Fanout struct {
	Sources       []Source
	Dedup         bool          // 按物品 ID 去重，保留先出现的（源顺序优先）
	Timeout       time.Duration // 每个召回源的超时时间
	MaxConcurrent int           // 最大并发数（0 表示无限制）
}

func (n *Fanout) Name() string        { return "recall.fanout" }
func (n *Fanout) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Fanout) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	if len(n.Sources) == 0 {
		return nil, nil
	}

	results := make([][]*core.Item, len(n.Sources))
	eg, egCtx := errgroup.WithContext(ctx)
	if n.MaxConcurrent > 0 {
		eg.SetLimit(n.MaxConcurrent)
	}

	for i, src := range n.Sources {
		slot := i
		s := src
		eg.Go(func() error {
			recallCtx := egCtx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				recallCtx, cancel = context.WithTimeout(egCtx, n.Timeout)
				defer cancel()
			}

			items, err := s.Recall(recallCtx, rctx)
			if err != nil {
				// 单个源超时或出错不中断其他召回源
				return nil
			}
			results[slot] = items
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return n.merge(results), nil
}

// merge 按源顺序拼接；Dedup 开启时相同 ID 保留先出现的，后出现的标签并入。
func (n *Fanout) merge(results [][]*core.Item) []*core.Item {
	var total int
	for _, part := range results {
		total += len(part)
	}

	if !n.Dedup {
		out := make([]*core.Item, 0, total)
		for _, part := range results {
			out = append(out, part...)
		}
		return out
	}

	seen := make(map[string]*core.Item, total)
	out := make([]*core.Item, 0, total)
	for _, part := range results {
		for _, it := range part {
			if it == nil {
				continue
			}
			if old, ok := seen[it.ID]; ok {
				for k, v := range it.Labels {
					old.PutLabel(k, v)
				}
				continue
			}
			seen[it.ID] = it
			out = append(out, it)
		}
	}
	return out
}

var _ pipeline.Node = (*Fanout)(nil)
