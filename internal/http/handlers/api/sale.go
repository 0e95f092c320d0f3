package api

import (
	"strings"

	handlershared "github.com/vendapay/internal/http/handlers/shared"
	"github.com/vendapay/internal/http/response"
	"github.com/vendapay/internal/models"
	"github.com/vendapay/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// RecordSaleRequest 登记日销售请求
type RecordSaleRequest struct {
	SellerID       uint             `json:"seller_id"`
	SaleDate       models.Date      `json:"sale_date"`
	TotalAmount    decimal.Decimal  `json:"total_amount"`
	CommissionRate *decimal.Decimal `json:"commission_rate"`
	Notes          string           `json:"notes"`
}

// UpdateSaleRequest 更新日销售请求（字段为空表示不修改）
type UpdateSaleRequest struct {
	TotalAmount    *decimal.Decimal `json:"total_amount"`
	CommissionRate *decimal.Decimal `json:"commission_rate"`
	Notes          *string          `json:"notes"`
	IsActive       *bool            `json:"is_active"`
}

// ListSales 销售记录列表
func (h *Handler) ListSales(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.PaginationFromQuery(c)
	startDate, ok := handlershared.QueryDate(c, "start_date")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.sale_date_invalid", nil)
		return
	}
	endDate, ok := handlershared.QueryDate(c, "end_date")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.sale_date_invalid", nil)
		return
	}

	sales, total, err := h.SaleService.ListSales(actor, service.SaleListInput{
		Page:      page,
		PageSize:  pageSize,
		SellerID:  handlershared.QueryUint(c, "seller_id"),
		StartDate: startDate,
		EndDate:   endDate,
		Year:      handlershared.QueryInt(c, "year"),
		Month:     handlershared.QueryInt(c, "month"),
		IsActive:  handlershared.QueryBool(c, "is_active"),
		Search:    strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, sales, response.NewPagination(page, pageSize, total))
}

// GetSale 销售记录详情
func (h *Handler) GetSale(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}
	sale, err := h.SaleService.GetSale(actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, sale)
}

// CreateSale 登记日销售
func (h *Handler) CreateSale(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req RecordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	sale, err := h.SaleService.RecordSale(actor, service.RecordSaleInput{
		SellerID:       req.SellerID,
		SaleDate:       req.SaleDate,
		TotalAmount:    req.TotalAmount,
		CommissionRate: req.CommissionRate,
		Notes:          req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, sale)
}

// UpdateSale 更新日销售
func (h *Handler) UpdateSale(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req UpdateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	sale, err := h.SaleService.UpdateSale(actor, id, service.UpdateSaleInput{
		TotalAmount:    req.TotalAmount,
		CommissionRate: req.CommissionRate,
		Notes:          req.Notes,
		IsActive:       req.IsActive,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, sale)
}

// DeleteSale 作废日销售（软删除，is_active=false）
func (h *Handler) DeleteSale(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.SaleService.DeactivateSale(actor, id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"deactivated": true})
}
