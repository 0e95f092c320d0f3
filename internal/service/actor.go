package service

import "github.com/vendapay/internal/constants"

// Actor 当前操作人（由 handler 从 JWT 上下文构建后显式传入）
type Actor struct {
	ID        uint
	Username  string
	Role      string
	RequestID string
}

// IsSeller 是否卖家
func (a Actor) IsSeller() bool {
	return a.Role == constants.RoleSeller
}

// IsAdmin 是否管理员
func (a Actor) IsAdmin() bool {
	return a.Role == constants.RoleAdmin
}

// IsPrivileged 管理员或经理，可代录销售、设置比例、管理月报
func (a Actor) IsPrivileged() bool {
	return a.Role == constants.RoleAdmin || a.Role == constants.RoleManager
}

// scopeSellerID 卖家强制收敛到自身数据；其他角色沿用请求的卖家筛选
func (a Actor) scopeSellerID(requested uint) uint {
	if a.IsSeller() {
		return a.ID
	}
	return requested
}

// canAccessSeller 判断是否可访问某卖家的数据
func (a Actor) canAccessSeller(sellerID uint) bool {
	if a.IsPrivileged() {
		return true
	}
	return a.IsSeller() && a.ID == sellerID
}

// IsValidRole 校验角色取值
func IsValidRole(role string) bool {
	switch role {
	case constants.RoleAdmin, constants.RoleManager, constants.RoleSeller:
		return true
	default:
		return false
	}
}
