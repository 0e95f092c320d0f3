package service

import (
	"fmt"
	"time"

	"github.com/vendapay/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	ReportExportSheet    = "Comissoes" // 导出工作表名称
	reportExportPageSize = 100
	reportExportMaxRows  = 10000
)

var reportExportHeaders = []interface{}{
	"ID", "Vendedor", "Usuario", "Periodo", "Total de vendas", "Dias com vendas",
	"Comissao total", "Taxa media (%)", "Status", "Aprovado em", "Pago em", "Observacoes",
}

// ExportReports 按列表筛选条件导出月报为 XLSX
func (s *CommissionReportService) ExportReports(actor Actor, input ReportListInput) (*excelize.File, error) {
	if !actor.IsPrivileged() {
		return nil, ErrForbidden
	}
	filter, err := s.buildListFilter(actor, input)
	if err != nil {
		return nil, err
	}

	reports := make([]models.MonthlyCommissionReport, 0)
	filter.PageSize = reportExportPageSize
	for page := 1; len(reports) < reportExportMaxRows; page++ {
		filter.Page = page
		batch, total, err := s.reportRepo.List(filter)
		if err != nil {
			return nil, err
		}
		reports = append(reports, batch...)
		if len(batch) == 0 || int64(len(reports)) >= total {
			break
		}
	}
	return buildReportWorkbook(reports)
}

func buildReportWorkbook(reports []models.MonthlyCommissionReport) (*excelize.File, error) {
	file := excelize.NewFile()
	if err := file.SetSheetName(file.GetSheetName(0), ReportExportSheet); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	if err := file.SetSheetRow(ReportExportSheet, "A1", &reportExportHeaders); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	headerStyle, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		lastHeader, _ := excelize.CoordinatesToCellName(len(reportExportHeaders), 1)
		_ = file.SetCellStyle(ReportExportSheet, "A1", lastHeader, headerStyle)
	}

	for i := range reports {
		report := reports[i]
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
		}
		row := []interface{}{
			report.ID,
			report.Seller.DisplayName(),
			sellerUsername(report.Seller),
			models.FormatPeriod(report.Year, report.Month),
			report.TotalSalesAmount.InexactFloat64(),
			report.SalesDaysCount,
			report.TotalCommission.InexactFloat64(),
			report.AverageCommissionRate.InexactFloat64(),
			report.Status,
			formatExportTime(report.ApprovedAt),
			formatExportTime(report.PaidAt),
			report.PaymentNotes,
		}
		if err := file.SetSheetRow(ReportExportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
		}
	}
	_ = file.SetColWidth(ReportExportSheet, "B", "D", 22)
	_ = file.SetColWidth(ReportExportSheet, "E", "K", 16)
	return file, nil
}

func sellerUsername(seller *models.Account) string {
	if seller == nil {
		return ""
	}
	return seller.Username
}

func formatExportTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
