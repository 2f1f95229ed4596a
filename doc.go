// Package cfkit 是一个自包含的协同过滤推荐引擎（Collaborative Filtering Kit）。
//
// 设计要点：
// - Pipeline-first: 推荐流程拆成可组合的 Node 链（Recall → Filter → ReRank）
// - Labels-first: labels 全链路透传与标准化 merge，支持 explain / 观测 / 策略驱动
// - 显式依赖: 存储、度量、邻域参数都是显式传入的不可变引用，没有环境会话状态
//
// 核心算法是基于用户的协同过滤：隐式二值购买数据上的 Tanimoto 用户相似度，
// 邻居购买按相似度加权累积成候选分数，已拥有的物品永不进入推荐。
package cfkit

import "github.com/rushteam/cfkit/pipeline"

// 轻量 facade：便于用户直接 import "cfkit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
