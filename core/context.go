package core

import "github.com/merobazar/recsys/pkg/utils"

// RecommendContext 承载用户/场景/请求信息，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	UserID string
	Scene  string

	// Limit 是本次请求期望返回的数量，Recall 节点据此决定过取数量
	Limit int

	// Labels 是用户级标签，可驱动整个 Pipeline 行为
	// 例如：cold_start、strategy=popular
	Labels map[string]utils.Label

	// Params 请求级参数，例如 window_days
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

// LimitOr 返回 Limit，未设置时返回 def。
func (rctx *RecommendContext) LimitOr(def int) int {
	if rctx == nil || rctx.Limit <= 0 {
		return def
	}
	return rctx.Limit
}
