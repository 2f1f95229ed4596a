package rerank

import (
	"context"
	"sort"

	"github.com/rushteam/cfkit/core"
	"github.com/rushteam/cfkit/pipeline"
)

// TopNNode 是一个 Top-N 节点：按分数降序排序并截取前 N 个物品。
// 排序是确定性的：同分按物品 ID 升序。
//
// 使用场景：
//   - 召回/过滤后只返回 Top 5/10/20 个结果
//   - 保证重复请求产出完全一致的有序结果
//
// 示例：
//
//	pipeline := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &recall.UserCF{...},
//	        &filter.FilterNode{...},
//	        &rerank.TopNNode{N: 5},
//	    },
//	}
type TopNNode struct {
	// N 要保留的物品数量（Top N）
	// 如果 N <= 0，则只排序不截断
	// 如果 N > len(items)，则返回所有物品
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	sortItems(items)

	if n.N <= 0 || len(items) <= n.N {
		return items, nil
	}
	return items[:n.N], nil
}

var _ pipeline.Node = (*TopNNode)(nil)

// TopN 从打分结果中选出前 n 个物品：分数降序，同分按物品 ID 升序。
// 非零分物品不足 n 个时返回全部（不补位，不报错）；零分物品不进入结果。
// n <= 0 返回 INVALID_INPUT 错误。
func TopN(scores map[string]float64, n int) ([]*core.Item, error) {
	if n <= 0 {
		return nil, core.NewDomainError(core.ModuleRerank, core.ErrorCodeInvalidInput,
			"rerank: top-n requires n > 0")
	}

	items := make([]*core.Item, 0, len(scores))
	for itemID, score := range scores {
		if score <= 0 {
			continue
		}
		it := core.NewItem(itemID)
		it.Score = score
		items = append(items, it)
	}
	sortItems(items)

	if len(items) > n {
		items = items[:n]
	}
	return items, nil
}

func sortItems(items []*core.Item) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].ID < items[j].ID
	})
}
