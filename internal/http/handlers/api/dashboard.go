package api

import (
	"strconv"
	"strings"

	handlershared "github.com/vendapay/internal/http/handlers/shared"
	"github.com/vendapay/internal/http/response"
	"github.com/vendapay/internal/service"

	"github.com/gin-gonic/gin"
)

// GetDashboardSummary 仪表盘汇总（卖家仅能看到自身数据）
func (h *Handler) GetDashboardSummary(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	data, err := h.DashboardService.GetSummary(c.Request.Context(), actor, parseDashboardQuery(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, data)
}

// GetDashboardTopSellers 销售排行
func (h *Handler) GetDashboardTopSellers(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	data, err := h.DashboardService.GetTopSellers(c.Request.Context(), actor, parseDashboardQuery(c), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, data)
}

func parseDashboardQuery(c *gin.Context) service.DashboardQueryInput {
	refresh, _ := strconv.ParseBool(strings.TrimSpace(c.DefaultQuery("refresh", "false")))
	return service.DashboardQueryInput{
		Year:         handlershared.QueryInt(c, "year"),
		Month:        handlershared.QueryInt(c, "month"),
		SellerID:     handlershared.QueryUint(c, "seller_id"),
		Status:       strings.TrimSpace(c.Query("status")),
		ForceRefresh: refresh,
	}
}
