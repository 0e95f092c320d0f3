package public

import "github.com/vendapay/internal/provider"

// Handler 公开接口处理器入口
// 说明：仅包含无需登录的接口（登录、健康检查）。
type Handler struct {
	*provider.Container
}

// New 创建公开处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
