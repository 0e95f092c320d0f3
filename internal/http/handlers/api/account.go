package api

import (
	"strings"

	handlershared "github.com/vendapay/internal/http/handlers/shared"
	"github.com/vendapay/internal/http/response"
	"github.com/vendapay/internal/models"
	"github.com/vendapay/internal/repository"
	"github.com/vendapay/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest 创建账号请求
type CreateAccountRequest struct {
	Username            string           `json:"username" binding:"required"`
	Password            string           `json:"password" binding:"required"`
	Email               string           `json:"email"`
	FirstName           string           `json:"first_name"`
	LastName            string           `json:"last_name"`
	Document            string           `json:"document"`
	Phone               string           `json:"phone"`
	Role                string           `json:"role"`
	CommissionRate      *decimal.Decimal `json:"commission_rate"`
	CommissionActive    *bool            `json:"commission_active"`
	CommissionStartDate *models.Date     `json:"commission_start_date"`
	IsActive            *bool            `json:"is_active"`
}

// UpdateAccountRequest 更新账号请求（字段为空表示不修改）
type UpdateAccountRequest struct {
	Email               *string          `json:"email"`
	FirstName           *string          `json:"first_name"`
	LastName            *string          `json:"last_name"`
	Document            *string          `json:"document"`
	Phone               *string          `json:"phone"`
	Role                *string          `json:"role"`
	Password            *string          `json:"password"`
	CommissionRate      *decimal.Decimal `json:"commission_rate"`
	CommissionActive    *bool            `json:"commission_active"`
	CommissionStartDate *models.Date     `json:"commission_start_date"`
	IsActive            *bool            `json:"is_active"`
}

// ListAccounts 账号列表
func (h *Handler) ListAccounts(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.PaginationFromQuery(c)
	filter := repository.AccountListFilter{
		Page:             page,
		PageSize:         pageSize,
		Search:           strings.TrimSpace(c.Query("search")),
		Role:             strings.TrimSpace(c.Query("role")),
		IsActive:         handlershared.QueryBool(c, "is_active"),
		CommissionActive: handlershared.QueryBool(c, "commission_active"),
	}

	accounts, total, err := h.AccountService.ListAccounts(actor, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, accounts, response.NewPagination(page, pageSize, total))
}

// GetAccount 账号详情
func (h *Handler) GetAccount(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}
	account, err := h.AccountService.GetAccount(actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, account)
}

// CreateAccount 创建账号
func (h *Handler) CreateAccount(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	account, err := h.AccountService.CreateAccount(actor, service.CreateAccountInput{
		Username:            req.Username,
		Password:            req.Password,
		Email:               req.Email,
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		Document:            req.Document,
		Phone:               req.Phone,
		Role:                req.Role,
		CommissionRate:      req.CommissionRate,
		CommissionActive:    req.CommissionActive,
		CommissionStartDate: req.CommissionStartDate,
		IsActive:            req.IsActive,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, account)
}

// UpdateAccount 更新账号
func (h *Handler) UpdateAccount(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	account, err := h.AccountService.UpdateAccount(actor, id, service.UpdateAccountInput{
		Email:               req.Email,
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		Document:            req.Document,
		Phone:               req.Phone,
		Role:                req.Role,
		Password:            req.Password,
		CommissionRate:      req.CommissionRate,
		CommissionActive:    req.CommissionActive,
		CommissionStartDate: req.CommissionStartDate,
		IsActive:            req.IsActive,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, account)
}

// DeleteAccount 删除账号（存在销售或月报时拒绝）
func (h *Handler) DeleteAccount(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.AccountService.DeleteAccount(actor, id); err != nil {
		respondServiceError(c, err)
		return
	}
	requestLog(c).Infow("account_deleted", "account_id", id, "operator_id", actor.ID)
	response.Success(c, gin.H{"deleted": true})
}
