package api

import (
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/vendapay/internal/constants"
	handlershared "github.com/vendapay/internal/http/handlers/shared"
	"github.com/vendapay/internal/http/response"
	"github.com/vendapay/internal/service"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CreateReportRequest 创建月报请求
type CreateReportRequest struct {
	SellerID     uint   `json:"seller_id" binding:"required"`
	Year         int    `json:"year" binding:"required"`
	Month        int    `json:"month" binding:"required"`
	Status       string `json:"status"`
	PaymentNotes string `json:"payment_notes"`
}

// UpdateReportRequest 更新月报请求（字段为空表示不修改）
type UpdateReportRequest struct {
	SellerID     *uint   `json:"seller_id"`
	Year         *int    `json:"year"`
	Month        *int    `json:"month"`
	Status       *string `json:"status"`
	PaymentNotes *string `json:"payment_notes"`
}

// GenerateAllRequest 批量生成月报请求，年月为空时取当前月份
type GenerateAllRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// ListCommissionReports 月报列表
func (h *Handler) ListCommissionReports(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.PaginationFromQuery(c)
	input := parseReportListInput(c)
	input.Page = page
	input.PageSize = pageSize

	reports, total, err := h.CommissionReportService.ListReports(actor, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, reports, response.NewPagination(page, pageSize, total))
}

// GetCommissionReport 月报详情
func (h *Handler) GetCommissionReport(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}
	report, err := h.CommissionReportService.GetReport(actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, report)
}

// CreateCommissionReport 创建月报并按销售数据计算
func (h *Handler) CreateCommissionReport(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	report, err := h.CommissionReportService.CreateReport(actor, service.CreateReportInput{
		SellerID:     req.SellerID,
		Year:         req.Year,
		Month:        req.Month,
		Status:       req.Status,
		PaymentNotes: req.PaymentNotes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, report)
}

// UpdateCommissionReport 更新月报（含状态流转）
func (h *Handler) UpdateCommissionReport(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	report, err := h.CommissionReportService.UpdateReport(actor, id, service.UpdateReportInput{
		SellerID:     req.SellerID,
		Year:         req.Year,
		Month:        req.Month,
		Status:       req.Status,
		PaymentNotes: req.PaymentNotes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, report)
}

// RecalculateCommissionReport 按当前销售数据重新计算月报
func (h *Handler) RecalculateCommissionReport(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}
	report, err := h.CommissionReportService.RecalculateReport(actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, report)
}

// ListCommissionReportLogs 月报变更日志
func (h *Handler) ListCommissionReportLogs(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.PaginationFromQuery(c)
	logs, total, err := h.CommissionReportService.ListReportLogs(actor, id, page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, logs, response.NewPagination(page, pageSize, total))
}

// GenerateAllCommissionReports 为全部有资格的卖家生成月报；队列启用时异步执行
func (h *Handler) GenerateAllCommissionReports(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req GenerateAllRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
	}

	dispatch, err := h.CommissionReportService.EnqueueGenerateAll(c.Request.Context(), actor, req.Year, req.Month)
	if err != nil {
		handlershared.RespondWithMappedError(c, err, handlershared.CommonErrorRules, response.CodeInternal, "error.queue_enqueue_failed")
		return
	}
	requestLog(c).Infow("commission_generate_all_dispatched",
		"operator_id", actor.ID,
		"async", dispatch.Async,
		"task_id", dispatch.TaskID,
	)
	response.Success(c, dispatch)
}

// ExportCommissionReports 按列表筛选条件导出月报（xlsx 默认，可选 csv）
func (h *Handler) ExportCommissionReports(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", constants.ExportFormatXLSX)))
	if format != constants.ExportFormatXLSX && format != constants.ExportFormatCSV {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	file, err := h.CommissionReportService.ExportReports(actor, parseReportListInput(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	defer func() {
		_ = file.Close()
	}()

	filename := fmt.Sprintf("comissoes_%s.%s", time.Now().Format("20060102_150405"), format)
	if format == constants.ExportFormatCSV {
		rows, err := file.GetRows(service.ReportExportSheet)
		if err != nil {
			respondError(c, response.CodeInternal, "error.report_export_failed", err)
			return
		}
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
		writer := csv.NewWriter(c.Writer)
		if err := writer.WriteAll(rows); err != nil {
			requestLog(c).Errorw("commission_export_csv_write_failed", "error", err)
		}
		return
	}

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if err := file.Write(c.Writer); err != nil {
		requestLog(c).Errorw("commission_export_xlsx_write_failed", "error", err)
	}
}

func parseReportListInput(c *gin.Context) service.ReportListInput {
	return service.ReportListInput{
		SellerID: handlershared.QueryUint(c, "seller_id"),
		Year:     handlershared.QueryInt(c, "year"),
		Month:    handlershared.QueryInt(c, "month"),
		Status:   strings.TrimSpace(c.Query("status")),
		Search:   strings.TrimSpace(c.Query("search")),
		OrderBy:  strings.TrimSpace(c.Query("ordering")),
	}
}
