package core

import "context"

// InteractionStore 是交互数据的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 一次性批量装载（Load），之后对单次推荐请求只读
//   - 正排（user -> items）与倒排（item -> users）双索引：
//     倒排用于候选生成——只遍历与目标用户至少共享一个物品的用户，
//     结果必须与全量两两扫描完全一致（纯性能优化，不改变语义）
//
// 实现：
//   - store.MemoryInteractions：内存双索引，写路径 copy-on-write 快照
//   - store.KVInteractions：基于 core.Store（Memory/Redis）的 JSON 编码适配器
type InteractionStore interface {
	// Name 返回存储后端名称（用于观测/explain）
	Name() string

	// ItemsOf 返回用户拥有的物品集合（用户画像）。
	// 未知用户返回空集合而不是错误：没有交互的用户没有邻居也没有推荐，
	// 这是合法的业务状态。
	ItemsOf(ctx context.Context, userID string) (ItemSet, error)

	// UsersOf 返回拥有某物品的用户列表（倒排索引，按 UserID 升序）
	UsersOf(ctx context.Context, itemID string) ([]string, error)

	// AllUsers 返回全部用户 ID（按 UserID 升序，保证遍历确定性）
	AllUsers(ctx context.Context) ([]string, error)

	// AllItems 返回全部物品 ID（按 ItemID 升序）
	AllItems(ctx context.Context) ([]string, error)
}

// InteractionLoader 是支持批量装载的 InteractionStore。
// Load 对缺字段的记录返回 MALFORMED_RECORD 错误。
type InteractionLoader interface {
	InteractionStore

	// Load 批量装载交互记录，重复记录合并
	Load(ctx context.Context, records []Interaction) error
}
