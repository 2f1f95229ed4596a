// Package neighbor 实现邻域筛选：从相似度结果中选出用于打分的相似用户。
package neighbor

import (
	"sort"

	"github.com/rushteam/cfkit/core"
)

// Selector 按阈值 + TopK 筛选邻域。
//
// 规则（保证确定性）：
//   - 先按 Threshold 过滤，再按 TopK 截断
//   - 相似度为 0 的用户始终不进入邻域（没有推荐依据）
//   - 输出按分数降序，同分按 UserID 升序
//
// 零值 Selector 等价于 Threshold=0（保留所有非零相似用户）、TopK 不限。
type Selector struct {
	// Threshold 进入邻域的最低相似度，默认 0（保留所有非零相似用户）
	Threshold float64

	// TopK 邻域大小上限，<= 0 表示不限
	TopK int
}

// Select 从相似度结果中筛选邻域。输入不要求有序，输出有序。
func (s Selector) Select(scored []core.Neighbor) []core.Neighbor {
	out := make([]core.Neighbor, 0, len(scored))
	for _, n := range scored {
		if n.Score <= 0 {
			continue
		}
		if n.Score < s.Threshold {
			continue
		}
		out = append(out, n)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].UserID < out[j].UserID
	})

	if s.TopK > 0 && len(out) > s.TopK {
		out = out[:s.TopK]
	}
	return out
}
