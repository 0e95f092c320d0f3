package api

import "github.com/vendapay/internal/provider"

// Handler 登录后业务接口处理器入口
// 说明：路由已经过 JWT 鉴权与 RBAC 校验，行级数据范围由 service 层按操作人收敛。
type Handler struct {
	*provider.Container
}

// New 创建业务处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
