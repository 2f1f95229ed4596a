package similarity

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/cfkit/core"
)

// Engine 是相似度引擎：计算目标用户与其他用户的两两相似度。
//
// 候选生成走倒排索引：只遍历与目标用户至少共享一个物品的用户。
// 共享物品数为零的用户在任何集合度量下相似度都是 0，对邻域和打分没有贡献，
// 跳过它们不改变结果——与全量两两扫描完全等价。
//
// 字段均为零值可用：零值 Engine（仅设置 Store）等价于
// Tanimoto 度量、MinIntersection=1、串行扫描。
type Engine struct {
	Store core.InteractionStore

	// Metric 相似度度量，默认 Tanimoto
	Metric Metric

	// MinIntersection 两个用户至少需要共享多少个物品才计算相似度。
	// 默认 1（即保持与全量扫描一致的语义；调大可以抑制弱相关邻居）。
	MinIntersection int

	// MaxConcurrent 候选分片的并发数。
	// <= 1 表示串行。并发与串行产出完全一致（分片计算、统一排序）。
	MaxConcurrent int
}

func (e *Engine) metric() Metric {
	if e.Metric == nil {
		return Tanimoto{}
	}
	return e.Metric
}

// Similarity 计算两个用户的相似度（值域 [0,1]、对称）。
// 任一用户未知视为空画像；两个空画像相似度为 0。
func (e *Engine) Similarity(ctx context.Context, userA, userB string) (float64, error) {
	a, err := e.Store.ItemsOf(ctx, userA)
	if err != nil {
		return 0, err
	}
	b, err := e.Store.ItemsOf(ctx, userB)
	if err != nil {
		return 0, err
	}
	return e.metric().Similarity(a, b), nil
}

// Similarities 计算目标用户与所有其他用户的相似度，按分数降序返回，
// 同分按 UserID 升序（保证确定性）。自身被排除；相似度为 0 的用户被排除。
// 目标用户画像为空时返回空结果。
func (e *Engine) Similarities(ctx context.Context, targetUser string) ([]core.Neighbor, error) {
	targetItems, err := e.Store.ItemsOf(ctx, targetUser)
	if err != nil {
		return nil, err
	}
	if len(targetItems) == 0 {
		return nil, nil
	}

	candidates, err := e.candidates(ctx, targetUser, targetItems)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	minInter := e.MinIntersection
	if minInter <= 0 {
		minInter = 1
	}

	var out []core.Neighbor
	if e.MaxConcurrent > 1 && len(candidates) > 1 {
		out, err = e.scanParallel(ctx, targetItems, candidates, minInter)
	} else {
		out, err = e.scan(ctx, targetItems, candidates, minInter)
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

// candidates 通过倒排索引收集与目标用户共享至少一个物品的用户（排除自身），
// 返回按 UserID 升序的列表。
func (e *Engine) candidates(ctx context.Context, targetUser string, targetItems core.ItemSet) ([]string, error) {
	seen := make(map[string]struct{})
	for itemID := range targetItems {
		users, err := e.Store.UsersOf(ctx, itemID)
		if err != nil {
			return nil, err
		}
		for _, userID := range users {
			if userID == targetUser {
				continue
			}
			seen[userID] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for userID := range seen {
		out = append(out, userID)
	}
	sort.Strings(out)
	return out, nil
}

// scan 串行计算候选用户的相似度。
func (e *Engine) scan(ctx context.Context, targetItems core.ItemSet, candidates []string, minInter int) ([]core.Neighbor, error) {
	metric := e.metric()
	out := make([]core.Neighbor, 0, len(candidates))
	for _, userID := range candidates {
		items, err := e.Store.ItemsOf(ctx, userID)
		if err != nil {
			return nil, err
		}
		if intersectionSize(targetItems, items) < minInter {
			continue
		}
		if sim := metric.Similarity(targetItems, items); sim > 0 {
			out = append(out, core.Neighbor{UserID: userID, Score: sim})
		}
	}
	return out, nil
}

// scanParallel 把候选列表切成 MaxConcurrent 个分片并发计算，再合并。
// 每个分片只写自己的结果槽，合并后统一排序，因此与串行扫描产出一致。
func (e *Engine) scanParallel(ctx context.Context, targetItems core.ItemSet, candidates []string, minInter int) ([]core.Neighbor, error) {
	shards := e.MaxConcurrent
	if shards > len(candidates) {
		shards = len(candidates)
	}

	chunk := (len(candidates) + shards - 1) / shards
	results := make([][]core.Neighbor, shards)

	eg, egCtx := errgroup.WithContext(ctx)
	for i := 0; i < shards; i++ {
		lo := i * chunk
		hi := lo + chunk
		if hi > len(candidates) {
			hi = len(candidates)
		}
		if lo >= hi {
			continue
		}
		slot := i
		part := candidates[lo:hi]
		eg.Go(func() error {
			neighbors, err := e.scan(egCtx, targetItems, part, minInter)
			if err != nil {
				return err
			}
			results[slot] = neighbors
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var out []core.Neighbor
	for _, part := range results {
		out = append(out, part...)
	}
	return out, nil
}
