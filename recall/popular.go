package recall

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/rushteam/cfkit/core"
	"github.com/rushteam/cfkit/pipeline"
	"github.com/rushteam/cfkit/pkg/utils"
)

// Popular 是热门召回源：按拥有人数排序的物品排行，用作冷启动补充。
// - 如果 Store 实现了 core.KeyValueStore，优先使用 ZRange（有序集合，按拥有人数排序）
// - 否则从普通 key 读取 JSON 数组
// - 两者都没有时，从 Interactions 的倒排索引现算
//
// 注意：Popular 不是核心 recommend 流程的一部分——画像为空的用户按契约得到
// 空推荐；是否用热门补位是上层 Pipeline 的业务选择。
// Popular 同时实现 Source 和 Node 接口，可以直接在 Pipeline 中使用。
type Popular struct {
	Store core.Store // KV 后端（可选）
	Key   string     // 排行 key，例如 "cf:popular"

	// Interactions 用于现算排行的交互存储（可选 fallback）
	Interactions core.InteractionStore

	// TopK 返回的物品数量上限，默认 20
	TopK int
}

func (r *Popular) Name() string        { return "recall.popular" }
func (r *Popular) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *Popular) topK() int {
	if r.TopK <= 0 {
		return 20
	}
	return r.TopK
}

// Process 实现 Node 接口，直接调用 Recall
func (r *Popular) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口
func (r *Popular) Recall(
	ctx context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	var ids []string

	// 优先从 Store 读取（支持 ZRange 或普通 Get）
	if r.Store != nil && r.Key != "" {
		if kv, ok := r.Store.(core.KeyValueStore); ok {
			members, err := kv.ZRange(ctx, r.Key, 0, int64(r.topK())-1)
			if err == nil && len(members) > 0 {
				ids = members
			}
		} else {
			data, err := r.Store.Get(ctx, r.Key)
			if err == nil {
				var parsed []string
				if json.Unmarshal(data, &parsed) == nil {
					ids = parsed
				}
			}
		}
	}

	// Fallback：从倒排索引统计拥有人数
	if len(ids) == 0 && r.Interactions != nil {
		ranked, err := r.rank(ctx)
		if err != nil {
			return nil, err
		}
		ids = ranked
	}

	if len(ids) > r.topK() {
		ids = ids[:r.topK()]
	}

	out := make([]*core.Item, 0, len(ids))
	for _, id := range ids {
		it := core.NewItem(id)
		it.PutLabel("recall_source", utils.Label{Value: "popular", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}

// rank 按拥有人数降序排列全部物品（同数按物品 ID 升序）。
func (r *Popular) rank(ctx context.Context) ([]string, error) {
	itemIDs, err := r.Interactions.AllItems(ctx)
	if err != nil {
		return nil, err
	}

	type ranked struct {
		itemID string
		owners int
	}
	all := make([]ranked, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		users, err := r.Interactions.UsersOf(ctx, itemID)
		if err != nil {
			return nil, err
		}
		all = append(all, ranked{itemID: itemID, owners: len(users)})
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].owners != all[j].owners {
			return all[i].owners > all[j].owners
		}
		return all[i].itemID < all[j].itemID
	})

	out := make([]string, 0, len(all))
	for _, e := range all {
		out = append(out, e.itemID)
	}
	return out, nil
}

var _ Source = (*Popular)(nil)
var _ pipeline.Node = (*Popular)(nil)
