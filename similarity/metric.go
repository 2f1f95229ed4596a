package similarity

import (
	"math"

	"github.com/rushteam/cfkit/core"
)

// Metric 是集合相似度度量的统一契约（Tanimoto / Cosine / Dice 等）。
//
// 约定：
//   - 值域 [0, 1]，对称：Similarity(a, b) == Similarity(b, a)
//   - 两个空集合的相似度定义为 0（没有推荐依据），而不是错误
//   - 非空集合与自身的相似度为 1
type Metric interface {
	Name() string
	Similarity(a, b core.ItemSet) float64
}

// Tanimoto 是 Tanimoto 系数（对二值集合等价于 Jaccard 指数）：
//
//	sim(u, v) = |A ∩ B| / |A ∪ B| = |A ∩ B| / (|A| + |B| - |A ∩ B|)
//
// 隐式反馈（购买/点击等二值信号）场景下的标准用户相似度度量。
type Tanimoto struct{}

func (Tanimoto) Name() string { return "tanimoto" }

func (Tanimoto) Similarity(a, b core.ItemSet) float64 {
	inter := intersectionSize(a, b)
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Cosine 是二值集合上的余弦相似度：
//
//	sim(u, v) = |A ∩ B| / sqrt(|A| * |B|)
type Cosine struct{}

func (Cosine) Name() string { return "cosine" }

func (Cosine) Similarity(a, b core.ItemSet) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := intersectionSize(a, b)
	return float64(inter) / math.Sqrt(float64(len(a))*float64(len(b)))
}

// Dice 是 Sørensen–Dice 系数：
//
//	sim(u, v) = 2 * |A ∩ B| / (|A| + |B|)
type Dice struct{}

func (Dice) Name() string { return "dice" }

func (Dice) Similarity(a, b core.ItemSet) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 0
	}
	inter := intersectionSize(a, b)
	return 2 * float64(inter) / float64(total)
}

// MetricByName 按名称返回内置度量，未知名称回落到 Tanimoto。
func MetricByName(name string) Metric {
	switch name {
	case "cosine":
		return Cosine{}
	case "dice":
		return Dice{}
	case "tanimoto", "jaccard", "":
		return Tanimoto{}
	default:
		return Tanimoto{}
	}
}

// intersectionSize 计算交集大小，遍历较小的集合。
func intersectionSize(a, b core.ItemSet) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for id := range a {
		if b.Has(id) {
			n++
		}
	}
	return n
}
