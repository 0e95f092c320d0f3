package api

import (
	"github.com/vendapay/internal/http/response"
	"github.com/vendapay/internal/i18n"
	"github.com/vendapay/internal/service"

	handlershared "github.com/vendapay/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

// UpdateProfileRequest 更新个人资料请求
type UpdateProfileRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// GetMe 当前账号资料
func (h *Handler) GetMe(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	account, err := h.AccountService.GetProfile(actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, account)
}

// UpdateMe 更新当前账号资料
func (h *Handler) UpdateMe(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	account, err := h.AccountService.UpdateProfile(actor, service.UpdateProfileInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, account)
}

// ChangePassword 修改当前账号密码
func (h *Handler) ChangePassword(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.AuthService.ChangePassword(actor.ID, req.OldPassword, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}
	requestLog(c).Infow("account_password_changed", "account_id", actor.ID)
	response.Success(c, gin.H{"message": i18n.T(i18n.ResolveLocale(c), "success.password_changed")})
}

// Logout 注销当前账号全部 Token
func (h *Handler) Logout(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if err := h.AuthService.Logout(actor.ID); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"message": i18n.T(i18n.ResolveLocale(c), "success.logout")})
}

// GetAuthzMe 当前账号的角色与生效策略
func (h *Handler) GetAuthzMe(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if h.AuthzService == nil {
		handlershared.RespondError(c, response.CodeInternal, "error.internal", nil)
		return
	}
	roles, err := h.AuthzService.GetAccountRoles(actor.ID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	policies, err := h.AuthzService.GetAccountPolicies(actor.ID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{
		"account_id": actor.ID,
		"role":       actor.Role,
		"roles":      roles,
		"policies":   policies,
	})
}
