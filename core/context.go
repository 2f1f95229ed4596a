package core

import "github.com/rushteam/cfkit/pkg/utils"

// RecommendContext 承载单次推荐请求的用户/场景信息，贯穿整个 Pipeline 透传。
// 一次请求 = 一次同步的纯流水线执行；Context 本身不持有跨请求状态。
type RecommendContext struct {
	UserID string
	Scene  string

	// Labels 是用户级标签，可驱动 Pipeline 行为（例如冷启动用户走热门召回）
	Labels map[string]utils.Label

	// Params 请求级上下文参数（如 debug、limit 等）
	Params map[string]any
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
