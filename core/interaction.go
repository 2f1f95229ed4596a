package core

// Interaction 是一条隐式反馈记录：用户 u 购买/拥有物品 i。
// 二值信号，没有评分、没有时间戳；同一 (user, item) 的重复记录合并为一条拥有事实。
type Interaction struct {
	UserID string
	ItemID string
}

// ItemSet 是一个物品 ID 集合，用于表示用户画像（用户拥有的物品集合）。
// 画像由全量 Interaction 推导得到，构建后只读。
type ItemSet map[string]struct{}

// NewItemSet 从物品 ID 列表构建集合。
func NewItemSet(ids ...string) ItemSet {
	s := make(ItemSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has 判断物品是否在集合中。
func (s ItemSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add 向集合添加物品。
func (s ItemSet) Add(id string) {
	s[id] = struct{}{}
}

// Clone 返回集合的一份拷贝（用于 copy-on-write 快照）。
func (s ItemSet) Clone() ItemSet {
	out := make(ItemSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Neighbor 表示一个相似用户及其与目标用户的相似度分数。
// Score 取值范围 [0, 1]（Tanimoto/Cosine 等集合度量的共同值域）。
type Neighbor struct {
	UserID string
	Score  float64
}
