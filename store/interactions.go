package store

import (
	"context"
	"sort"
	"sync"

	"github.com/rushteam/cfkit/core"
)

// MemoryInteractions 是内存实现的交互存储：正排 + 倒排双索引。
//
// 一致性模型（单写多读）：
//   - Load/Add 在锁内构建一份全新快照后原子替换指针（copy-on-write）
//   - 读路径只解引用当前快照，永远看到更新前或更新后的完整视图，
//     不会读到半更新的画像
//   - 快照内的集合构建后只读，多个请求并发读取无需加锁
//
// 写路径是全量拷贝，适用于本引擎"一次批量装载、偶尔追加"的读多写少场景。
type MemoryInteractions struct {
	mu   sync.RWMutex
	snap *interactionSnapshot
}

type interactionSnapshot struct {
	userItems map[string]core.ItemSet // user -> items（正排，用户画像）
	itemUsers map[string][]string     // item -> users（倒排，升序）
	userIDs   []string                // 升序
	itemIDs   []string                // 升序
}

func NewMemoryInteractions() *MemoryInteractions {
	return &MemoryInteractions{snap: emptySnapshot()}
}

func emptySnapshot() *interactionSnapshot {
	return &interactionSnapshot{
		userItems: make(map[string]core.ItemSet),
		itemUsers: make(map[string][]string),
	}
}

func (s *MemoryInteractions) Name() string { return "memory_interactions" }

// Load 批量装载交互记录并替换当前快照。
// 重复的 (user, item) 合并为一条拥有事实。
// 记录缺字段（UserID 或 ItemID 为空）返回 MALFORMED_RECORD 错误，整批放弃。
func (s *MemoryInteractions) Load(ctx context.Context, records []core.Interaction) error {
	next := emptySnapshot()
	for _, rec := range records {
		if rec.UserID == "" || rec.ItemID == "" {
			return core.NewDomainError(core.ModuleStore, core.ErrorCodeMalformedRecord,
				"store: interaction record missing user or item id")
		}
		next.add(rec)
	}
	next.reindex()

	s.mu.Lock()
	s.snap = next
	s.mu.Unlock()
	return nil
}

// Add 追加一条交互记录（在线写入路径）。
// 写路径拷贝整份快照后原子替换，读者观察到的永远是完整的前/后视图。
func (s *MemoryInteractions) Add(ctx context.Context, rec core.Interaction) error {
	if rec.UserID == "" || rec.ItemID == "" {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeMalformedRecord,
			"store: interaction record missing user or item id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if items, ok := s.snap.userItems[rec.UserID]; ok && items.Has(rec.ItemID) {
		return nil // 重复记录，拥有事实已存在
	}

	next := s.snap.clone()
	next.add(rec)
	next.reindex()
	s.snap = next
	return nil
}

func (s *MemoryInteractions) snapshot() *interactionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// ItemsOf 返回用户画像。未知用户返回空集合而不是错误。
func (s *MemoryInteractions) ItemsOf(ctx context.Context, userID string) (core.ItemSet, error) {
	snap := s.snapshot()
	if items, ok := snap.userItems[userID]; ok {
		return items, nil
	}
	return core.ItemSet{}, nil
}

// UsersOf 返回拥有某物品的用户列表（升序）。未知物品返回空列表。
func (s *MemoryInteractions) UsersOf(ctx context.Context, itemID string) ([]string, error) {
	return s.snapshot().itemUsers[itemID], nil
}

// AllUsers 返回全部用户 ID（升序）。
func (s *MemoryInteractions) AllUsers(ctx context.Context) ([]string, error) {
	return s.snapshot().userIDs, nil
}

// AllItems 返回全部物品 ID（升序）。
func (s *MemoryInteractions) AllItems(ctx context.Context) ([]string, error) {
	return s.snapshot().itemIDs, nil
}

var _ core.InteractionStore = (*MemoryInteractions)(nil)
var _ core.InteractionLoader = (*MemoryInteractions)(nil)

func (snap *interactionSnapshot) add(rec core.Interaction) {
	items, ok := snap.userItems[rec.UserID]
	if !ok {
		items = core.ItemSet{}
		snap.userItems[rec.UserID] = items
	}
	if items.Has(rec.ItemID) {
		return
	}
	items.Add(rec.ItemID)
	snap.itemUsers[rec.ItemID] = append(snap.itemUsers[rec.ItemID], rec.UserID)
}

// reindex 重建排序视图：倒排列表与全量 ID 列表均升序，保证遍历确定性。
func (snap *interactionSnapshot) reindex() {
	snap.userIDs = make([]string, 0, len(snap.userItems))
	for userID := range snap.userItems {
		snap.userIDs = append(snap.userIDs, userID)
	}
	sort.Strings(snap.userIDs)

	snap.itemIDs = make([]string, 0, len(snap.itemUsers))
	for itemID, users := range snap.itemUsers {
		snap.itemIDs = append(snap.itemIDs, itemID)
		sort.Strings(users)
	}
	sort.Strings(snap.itemIDs)
}

func (snap *interactionSnapshot) clone() *interactionSnapshot {
	next := &interactionSnapshot{
		userItems: make(map[string]core.ItemSet, len(snap.userItems)),
		itemUsers: make(map[string][]string, len(snap.itemUsers)),
	}
	for userID, items := range snap.userItems {
		next.userItems[userID] = items.Clone()
	}
	for itemID, users := range snap.itemUsers {
		next.itemUsers[itemID] = append([]string(nil), users...)
	}
	return next
}
