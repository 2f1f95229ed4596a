package recall

import (
	"context"
	"sort"
	"strconv"

	"github.com/rushteam/cfkit/core"
	"github.com/rushteam/cfkit/neighbor"
	"github.com/rushteam/cfkit/pipeline"
	"github.com/rushteam/cfkit/pkg/utils"
	"github.com/rushteam/cfkit/similarity"
)

// UserCF 是基于用户的协同过滤召回源（User-based Collaborative Filtering）。
//
// 核心思想："兴趣相似的用户，拥有相似的物品"
//
// 算法流程：
//  1. 目标用户 → 画像（拥有的物品集合，隐式二值信号）
//  2. 相似度引擎算出与其他用户的 Tanimoto 相似度（倒排索引剪枝）
//  3. 邻域筛选：阈值过滤 + TopK 截断
//  4. 打分：邻居拥有而目标用户未拥有的物品，按邻居相似度加权累积
//  5. 按分数降序（同分按物品 ID 升序）输出
//
// 推荐必须新颖：目标用户已拥有的物品永远不进候选。
// 画像为空的用户没有邻居也没有推荐，返回空结果而不是错误。
//
// UserCF 同时实现 Source 和 pipeline.Node 接口，可以直接在 Pipeline 中使用。
type UserCF struct {
	Store core.InteractionStore

	// Metric 相似度度量，默认 Tanimoto
	Metric similarity.Metric

	// Threshold 进入邻域的最低相似度，默认 0（保留所有非零相似用户）
	Threshold float64

	// TopKNeighbors 邻域大小上限，<= 0 表示不限
	TopKNeighbors int

	// TopKItems 最终返回的物品数量上限，<= 0 表示返回全部候选
	TopKItems int

	// MinIntersection 计算相似度要求的最小共享物品数，默认 1
	MinIntersection int

	// MaxConcurrent 相似度扫描的并发分片数，<= 1 表示串行
	MaxConcurrent int
}

func (r *UserCF) Name() string        { return "recall.usercf" }
func (r *UserCF) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *UserCF) engine() *similarity.Engine {
	return &similarity.Engine{
		Store:           r.Store,
		Metric:          r.Metric,
		MinIntersection: r.MinIntersection,
		MaxConcurrent:   r.MaxConcurrent,
	}
}

func (r *UserCF) metricName() string {
	if r.Metric == nil {
		return similarity.Tanimoto{}.Name()
	}
	return r.Metric.Name()
}

// Neighbors 返回目标用户的邻域（阈值过滤 + TopK 截断，降序，同分按 UserID 升序）。
func (r *UserCF) Neighbors(ctx context.Context, userID string) ([]core.Neighbor, error) {
	scored, err := r.engine().Similarities(ctx, userID)
	if err != nil {
		return nil, err
	}
	sel := neighbor.Selector{Threshold: r.Threshold, TopK: r.TopKNeighbors}
	return sel.Select(scored), nil
}

// Score 对邻域做加权累积打分：
//
//	score[i] += sim(target, v)  对每个邻居 v 拥有、目标未拥有的物品 i
//
// 空邻域返回空 map，不是错误。
func (r *UserCF) Score(ctx context.Context, targetUser string, neighbors []core.Neighbor) (map[string]float64, error) {
	scores := make(map[string]float64)
	if len(neighbors) == 0 {
		return scores, nil
	}

	targetItems, err := r.Store.ItemsOf(ctx, targetUser)
	if err != nil {
		return nil, err
	}

	for _, nb := range neighbors {
		items, err := r.Store.ItemsOf(ctx, nb.UserID)
		if err != nil {
			return nil, err
		}
		for itemID := range items {
			if targetItems.Has(itemID) {
				continue // 已拥有的物品不是候选
			}
			scores[itemID] += nb.Score
		}
	}
	return scores, nil
}

// Recall 实现 Source 接口：完整执行 邻域 → 打分 → 排序 流程。
func (r *UserCF) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if r.Store == nil || rctx == nil || rctx.UserID == "" {
		return nil, nil
	}

	neighbors, err := r.Neighbors(ctx, rctx.UserID)
	if err != nil {
		return nil, err
	}
	if len(neighbors) == 0 {
		return nil, nil
	}

	scores, err := r.Score(ctx, rctx.UserID, neighbors)
	if err != nil {
		return nil, err
	}

	out := make([]*core.Item, 0, len(scores))
	for itemID, score := range scores {
		it := core.NewItem(itemID)
		it.Score = score
		it.PutLabel("recall_source", utils.Label{Value: "usercf", Source: "recall"})
		it.PutLabel("similarity_metric", utils.Label{Value: r.metricName(), Source: "recall"})
		it.PutLabel("neighbor_count", utils.Label{Value: strconv.Itoa(len(neighbors)), Source: "recall"})
		out = append(out, it)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})

	if r.TopKItems > 0 && len(out) > r.TopKItems {
		out = out[:r.TopKItems]
	}
	return out, nil
}

// Process 实现 pipeline.Node 接口；召回节点忽略输入候选集。
func (r *UserCF) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

var _ Source = (*UserCF)(nil)
var _ pipeline.Node = (*UserCF)(nil)
