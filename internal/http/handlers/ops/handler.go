package ops

import "github.com/cangchu-next/internal/provider"

// Handler 运营端接口处理器入口
// 说明：该处理器仅用于仓配运营 API。
type Handler struct {
	*provider.Container
}

// New 创建运营端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
