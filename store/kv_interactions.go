package store

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/rushteam/cfkit/core"
)

// KVInteractions 是基于 core.Store 的交互存储适配器。
// 把画像/倒排索引 JSON 编码后存入 KV 后端（Memory/Redis），
// 适合交互数据由离线任务写入、多个服务进程只读的部署形态。
//
// Key 布局：
//   - 用户画像：  {KeyPrefix}:user:{userID} -> JSON []itemID
//   - 物品倒排：  {KeyPrefix}:item:{itemID} -> JSON []userID
//   - 用户列表：  {KeyPrefix}:users -> JSON []userID
//   - 物品列表：  {KeyPrefix}:items -> JSON []itemID
//   - 热门排行：  {KeyPrefix}:popular -> zset member=itemID score=拥有人数
//     （仅当后端实现 core.KeyValueStore 时写入，供 recall.Popular 使用）
type KVInteractions struct {
	store core.Store

	// KeyPrefix 是存储 key 的前缀，默认 "cf"
	KeyPrefix string
}

// NewKVInteractions 创建一个基于 core.Store 的交互存储适配器。
func NewKVInteractions(s core.Store, keyPrefix string) *KVInteractions {
	if keyPrefix == "" {
		keyPrefix = "cf"
	}
	return &KVInteractions{
		store:     s,
		KeyPrefix: keyPrefix,
	}
}

func (a *KVInteractions) Name() string { return "kv_interactions" }

// PopularKey 返回热门排行 zset 的 key。
func (a *KVInteractions) PopularKey() string {
	return a.KeyPrefix + ":popular"
}

// Load 把交互记录编码写入 KV 后端。重复记录合并；缺字段返回 MALFORMED_RECORD。
func (a *KVInteractions) Load(ctx context.Context, records []core.Interaction) error {
	userItems := make(map[string]core.ItemSet)
	itemUsers := make(map[string]map[string]struct{})

	for _, rec := range records {
		if rec.UserID == "" || rec.ItemID == "" {
			return core.NewDomainError(core.ModuleStore, core.ErrorCodeMalformedRecord,
				"store: interaction record missing user or item id")
		}
		if userItems[rec.UserID] == nil {
			userItems[rec.UserID] = core.ItemSet{}
		}
		userItems[rec.UserID].Add(rec.ItemID)

		if itemUsers[rec.ItemID] == nil {
			itemUsers[rec.ItemID] = make(map[string]struct{})
		}
		itemUsers[rec.ItemID][rec.UserID] = struct{}{}
	}

	kvs := make(map[string][]byte, len(userItems)+len(itemUsers)+2)

	userIDs := make([]string, 0, len(userItems))
	for userID, items := range userItems {
		userIDs = append(userIDs, userID)
		data, err := json.Marshal(sortedIDs(items))
		if err != nil {
			return err
		}
		kvs[a.KeyPrefix+":user:"+userID] = data
	}
	sort.Strings(userIDs)

	itemIDs := make([]string, 0, len(itemUsers))
	for itemID, users := range itemUsers {
		itemIDs = append(itemIDs, itemID)
		list := make([]string, 0, len(users))
		for userID := range users {
			list = append(list, userID)
		}
		sort.Strings(list)
		data, err := json.Marshal(list)
		if err != nil {
			return err
		}
		kvs[a.KeyPrefix+":item:"+itemID] = data
	}
	sort.Strings(itemIDs)

	usersData, err := json.Marshal(userIDs)
	if err != nil {
		return err
	}
	kvs[a.KeyPrefix+":users"] = usersData

	itemsData, err := json.Marshal(itemIDs)
	if err != nil {
		return err
	}
	kvs[a.KeyPrefix+":items"] = itemsData

	if err := a.store.BatchSet(ctx, kvs); err != nil {
		return err
	}

	// 热门排行：按拥有人数写入有序集合（后端支持时）
	if kv, ok := a.store.(core.KeyValueStore); ok {
		for itemID, users := range itemUsers {
			if err := kv.ZAdd(ctx, a.PopularKey(), float64(len(users)), itemID); err != nil {
				return err
			}
		}
	}
	return nil
}

// ItemsOf 返回用户画像。key 不存在（未知用户）返回空集合而不是错误。
func (a *KVInteractions) ItemsOf(ctx context.Context, userID string) (core.ItemSet, error) {
	ids, err := a.getIDList(ctx, a.KeyPrefix+":user:"+userID)
	if err != nil {
		return nil, err
	}
	return core.NewItemSet(ids...), nil
}

// UsersOf 返回拥有某物品的用户列表（升序，装载时已排序）。
func (a *KVInteractions) UsersOf(ctx context.Context, itemID string) ([]string, error) {
	return a.getIDList(ctx, a.KeyPrefix+":item:"+itemID)
}

// AllUsers 返回全部用户 ID（升序）。
func (a *KVInteractions) AllUsers(ctx context.Context) ([]string, error) {
	return a.getIDList(ctx, a.KeyPrefix+":users")
}

// AllItems 返回全部物品 ID（升序）。
func (a *KVInteractions) AllItems(ctx context.Context) ([]string, error) {
	return a.getIDList(ctx, a.KeyPrefix+":items")
}

func (a *KVInteractions) getIDList(ctx context.Context, key string) ([]string, error) {
	data, err := a.store.Get(ctx, key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var result []string
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func sortedIDs(s core.ItemSet) []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

var _ core.InteractionStore = (*KVInteractions)(nil)
var _ core.InteractionLoader = (*KVInteractions)(nil)
