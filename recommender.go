package cfkit

import (
	"context"

	"github.com/rushteam/cfkit/core"
	"github.com/rushteam/cfkit/recall"
	"github.com/rushteam/cfkit/similarity"
)

// Recommender 是推荐引擎的查询入口，把四个阶段（相似度 → 邻域 → 打分 → TopN）
// 组装成一次同步的纯流水线执行。
//
// 对同一份只读交互数据，重复调用 Recommend 产出完全一致的有序结果：
// 相似度对同分邻居按 UserID 升序、候选对同分物品按 ItemID 升序决出确定顺序。
//
// 字段均为零值可用：New(store) 返回的 Recommender 等价于
// Tanimoto 度量、阈值 0（保留所有非零相似用户）、邻域不限大小、串行扫描。
type Recommender struct {
	Store core.InteractionStore

	// Metric 相似度度量，默认 Tanimoto
	Metric similarity.Metric

	// Threshold 进入邻域的最低相似度，默认 0
	Threshold float64

	// TopKNeighbors 邻域大小上限，<= 0 表示不限
	TopKNeighbors int

	// MinIntersection 计算相似度要求的最小共享物品数，默认 1
	MinIntersection int

	// MaxConcurrent 相似度扫描的并发分片数，<= 1 表示串行
	MaxConcurrent int
}

// New 创建一个使用默认参数（Tanimoto、阈值 0、邻域不限）的 Recommender。
func New(store core.InteractionStore) *Recommender {
	return &Recommender{Store: store}
}

func (r *Recommender) usercf() *recall.UserCF {
	return &recall.UserCF{
		Store:           r.Store,
		Metric:          r.Metric,
		Threshold:       r.Threshold,
		TopKNeighbors:   r.TopKNeighbors,
		MinIntersection: r.MinIntersection,
		MaxConcurrent:   r.MaxConcurrent,
	}
}

// Recommend 为用户生成 Top-N 推荐（分数降序，同分按物品 ID 升序）。
//
//   - n <= 0 返回 INVALID_INPUT 错误
//   - 未知用户 / 空画像 / 空邻域返回空结果，不是错误
//   - 候选不足 n 个时返回全部，不补位
//   - 结果中的物品目标用户一定没有拥有过（新颖性）
func (r *Recommender) Recommend(ctx context.Context, userID string, n int) ([]*core.Item, error) {
	if n <= 0 {
		return nil, core.NewDomainError(core.ModuleRerank, core.ErrorCodeInvalidInput,
			"cfkit: recommend requires n > 0")
	}

	cf := r.usercf()
	cf.TopKItems = n
	rctx := &core.RecommendContext{UserID: userID}

	items, err := cf.Recall(ctx, rctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*core.Item{}
	}
	return items, nil
}

// Neighbors 返回用户的邻域（相似度降序，同分按 UserID 升序）。
func (r *Recommender) Neighbors(ctx context.Context, userID string) ([]core.Neighbor, error) {
	return r.usercf().Neighbors(ctx, userID)
}

// Similarity 返回两个用户的相似度（值域 [0,1]，对称）。
func (r *Recommender) Similarity(ctx context.Context, userA, userB string) (float64, error) {
	eng := &similarity.Engine{Store: r.Store, Metric: r.Metric}
	return eng.Similarity(ctx, userA, userB)
}
