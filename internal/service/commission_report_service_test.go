package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vendapay/internal/constants"
	"github.com/vendapay/internal/models"
	"github.com/vendapay/internal/repository"

	"gorm.io/gorm"
)

// failingSaleRepo 对指定卖家的月度查询返回错误
type failingSaleRepo struct {
	repository.DailySaleRepository
	failSellerID uint
}

func (r *failingSaleRepo) WithTx(tx *gorm.DB) repository.DailySaleRepository {
	return &failingSaleRepo{DailySaleRepository: r.DailySaleRepository.WithTx(tx), failSellerID: r.failSellerID}
}

func (r *failingSaleRepo) ListActiveBySellerPeriod(sellerID uint, start, end models.Date) ([]models.DailySale, error) {
	if sellerID == r.failSellerID {
		return nil, errors.New("sales query failed")
	}
	return r.DailySaleRepository.ListActiveBySellerPeriod(sellerID, start, end)
}

func TestSummarizeSalesWeightedAverage(t *testing.T) {
	sales := []models.DailySale{
		{SaleDate: models.NewDate(2025, time.June, 1), TotalAmount: models.MustMoney("100"), CommissionRateApplied: models.MustMoney("2"), IsActive: true},
		{SaleDate: models.NewDate(2025, time.June, 2), TotalAmount: models.MustMoney("300"), CommissionRateApplied: models.MustMoney("1"), IsActive: true},
		{SaleDate: models.NewDate(2025, time.June, 3), TotalAmount: models.MustMoney("900"), CommissionRateApplied: models.MustMoney("9"), IsActive: false},
	}
	for i := range sales {
		sales[i].RecalculateCommission()
	}
	summary := SummarizeSales(sales)
	if summary.AverageCommissionRate.StringFixed(2) != "1.25" {
		t.Fatalf("want weighted average 1.25 got %s", summary.AverageCommissionRate.StringFixed(2))
	}
	if summary.TotalSalesAmount.StringFixed(2) != "400.00" || summary.TotalCommission.StringFixed(2) != "5.00" {
		t.Fatalf("unexpected totals: sales=%s commission=%s", summary.TotalSalesAmount.StringFixed(2), summary.TotalCommission.StringFixed(2))
	}
	if summary.SalesDaysCount != 2 {
		t.Fatalf("want 2 sales days got %d", summary.SalesDaysCount)
	}

	empty := SummarizeSales(nil)
	if !empty.AverageCommissionRate.IsZero() || empty.SalesDaysCount != 0 {
		t.Fatalf("empty summary should be zero")
	}
}

func TestCommissionScenarioSingleSale(t *testing.T) {
	env := setupServiceTest(t)
	admin := seedAdmin(t, env.db)
	seller := seedAccount(t, env.db, "joao", constants.RoleSeller, "0.50")
	recordTestSale(t, env.sales, actorOf(admin), seller.ID, models.NewDate(2025, time.January, 10), "1000.00", nil)

	report, err := env.reports.CreateReport(actorOf(admin), CreateReportInput{SellerID: seller.ID, Year: 2025, Month: 1})
	if err != nil {
		t.Fatalf("create report failed: %v", err)
	}
	if report.TotalSalesAmount.StringFixed(2) != "1000.00" ||
		report.SalesDaysCount != 1 ||
		report.TotalCommission.StringFixed(2) != "5.00" ||
		report.AverageCommissionRate.StringFixed(2) != "0.50" {
		t.Fatalf("unexpected report: %s / %d / %s / %s",
			report.TotalSalesAmount.StringFixed(2), report.SalesDaysCount,
			report.TotalCommission.StringFixed(2), report.AverageCommissionRate.StringFixed(2))
	}
	if report.Status != constants.ReportStatusPending || report.PeriodDisplay != "Janeiro/2025" {
		t.Fatalf("unexpected status/period: %s %s", report.Status, report.PeriodDisplay)
	}
}

func TestCalculateFromSalesIsIdempotent(t *testing.T) {
	env := setupServiceTest(t)
	admin := seedAdmin(t, env.db)
	seller := seedAccount(t, env.db, "ana", constants.RoleSeller, "1.00")
	recordTestSale(t, env.sales, actorOf(admin), seller.ID, models.NewDate(2025, time.June, 1), "100.00", decPtr("2.00"))
	recordTestSale(t, env.sales, actorOf(admin), seller.ID, models.NewDate(2025, time.June, 2), "300.00", decPtr("1.00"))

	report := &models.MonthlyCommissionReport{SellerID: seller.ID, Year: 2025, Month: 6}
	if err := env.reports.CalculateFromSales(report); err != nil {
		t.Fatalf("first calculation failed: %v", err)
	}
	first := *report
	if err := env.reports.CalculateFromSales(report); err != nil {
		t.Fatalf("second calculation failed: %v", err)
	}
	if !first.TotalSalesAmount.Equal(report.TotalSalesAmount.Decimal) ||
		!first.TotalCommission.Equal(report.TotalCommission.Decimal) ||
		!first.AverageCommissionRate.Equal(report.AverageCommissionRate.Decimal) ||
		first.SalesDaysCount != report.SalesDaysCount {
		t.Fatalf("calculation not idempotent")
	}
	if report.AverageCommissionRate.StringFixed(2) != "1.25" {
		t.Fatalf("want 1.25 got %s", report.AverageCommissionRate.StringFixed(2))
	}
}

func TestGenerateAllCreatesZeroReportForEligibleSellers(t *testing.T) {
	env := setupServiceTest(t)
	seedAdmin(t, env.db)
	eligible := seedAccount(t, env.db, "ana", constants.RoleSeller, "1.00")
	inactive := seedAccount(t, env.db, "bia", constants.RoleSeller, "1.00")
	if err := env.db.Model(inactive).Update("is_active", false).Error; err != nil {
		t.Fatalf("disable seller failed: %v", err)
	}
	noCommission := seedAccount(t, env.db, "caio", constants.RoleSeller, "1.00")
	if err := env.db.Model(noCommission).Update("commission_active", false).Error; err != nil {
		t.Fatalf("disable commission failed: %v", err)
	}

	result, err := env.reports.GenerateAll(context.Background(), 2025, 6)
	if err != nil {
		t.Fatalf("generate all failed: %v", err)
	}
	if len(result.Reports) != 1 || len(result.Failures) != 0 {
		t.Fatalf("want 1 report and 0 failures got %d/%d", len(result.Reports), len(result.Failures))
	}
	report := result.Reports[0]
	if report.SellerID != eligible.ID || !report.TotalSalesAmount.IsZero() || report.SalesDaysCount != 0 || !report.AverageCommissionRate.IsZero() {
		t.Fatalf("unexpected zero report: %+v", report)
	}

	// 重复执行不会产生重复月报
	if _, err := env.reports.GenerateAll(context.Background(), 2025, 6); err != nil {
		t.Fatalf("second generate all failed: %v", err)
	}
	var count int64
	env.db.Model(&models.MonthlyCommissionReport{}).Where("seller_id = ?", eligible.ID).Count(&count)
	if count != 1 {
		t.Fatalf("want 1 report row got %d", count)
	}
}

func TestGenerateAllRejectsInvalidPeriod(t *testing.T) {
	env := setupServiceTest(t)
	if _, err := env.reports.GenerateAll(context.Background(), 2023, 6); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("want ErrInvalidPeriod got %v", err)
	}
	if _, err := env.reports.GenerateAll(context.Background(), 2025, 13); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("want ErrInvalidPeriod got %v", err)
	}
}

func TestEnqueueGenerateAllRunsSyncWithoutQueue(t *testing.T) {
	env := setupServiceTest(t)
	admin := seedAdmin(t, env.db)
	seedAccount(t, env.db, "ana", constants.RoleSeller, "1.00")

	dispatch, err := env.reports.EnqueueGenerateAll(context.Background(), actorOf(admin), 2025, 6)
	if err != nil {
		t.Fatalf("enqueue generate all failed: %v", err)
	}
	if dispatch.Async || dispatch.Result == nil || len(dispatch.Result.Reports) != 1 {
		t.Fatalf("expected synchronous result, got %+v", dispatch)
	}
}

func TestCreateReportDuplicateAndUpdateCollision(t *testing.T) {
	env := setupServiceTest(t)
	admin := seedAdmin(t, env.db)
	seller := seedAccount(t, env.db, "ana", constants.RoleSeller, "1.00")
	actor := actorOf(admin)

	if _, err := env.reports.CreateReport(actor, CreateReportInput{SellerID: seller.ID, Year: 2025, Month: 6}); err != nil {
		t.Fatalf("create june failed: %v", err)
	}
	if _, err := env.reports.CreateReport(actor, CreateReportInput{SellerID: seller.ID, Year: 2025, Month: 6}); !errors.Is(err, ErrDuplicateReport) {
		t.Fatalf("want ErrDuplicateReport got %v", err)
	}
	july, err := env.reports.CreateReport(actor, CreateReportInput{SellerID: seller.ID, Year: 2025, Month: 7})
	if err != nil {
		t.Fatalf("create july failed: %v", err)
	}

	month := 6
	if _, err := env.reports.UpdateReport(actor, july.ID, UpdateReportInput{Month: &month}); !errors.Is(err, ErrDuplicateReport) {
		t.Fatalf("want ErrDuplicateReport on collision got %v", err)
	}
	month = 8
	moved, err := env.reports.UpdateReport(actor, july.ID, UpdateReportInput{Month: &month})
	if err != nil || moved.Month != 8 || moved.PeriodDisplay != "Agosto/2025" {
		t.Fatalf("move report failed: %v", err)
	}
	if _, err := env.reports.CreateReport(actor, CreateReportInput{SellerID: seller.ID, Year: 2101, Month: 1}); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("want ErrInvalidPeriod got %v", err)
	}
}

func TestUpdateReportStatusWritesAuditLog(t *testing.T) {
	env := setupServiceTest(t)
	admin := seedAdmin(t, env.db)
	seller := seedAccount(t, env.db, "ana", constants.RoleSeller, "1.00")
	actor := actorOf(admin)
	actor.RequestID = "req-1"

	report, err := env.reports.CreateReport(actor, CreateReportInput{SellerID: seller.ID, Year: 2025, Month: 6})
	if err != nil {
		t.Fatalf("create report failed: %v", err)
	}
	status := constants.ReportStatusPaid
	paid, err := env.reports.UpdateReport(actor, report.ID, UpdateReportInput{Status: &status})
	if err != nil {
		t.Fatalf("pay report failed: %v", err)
	}
	if paid.PaidAt == nil || paid.ApprovedAt == nil || paid.ApprovedByID == nil || *paid.ApprovedByID != admin.ID {
		t.Fatalf("paid report should be stamped: %+v", paid)
	}

	cancelled := constants.ReportStatusCancelled
	if _, err := env.reports.UpdateReport(actor, report.ID, UpdateReportInput{Status: &cancelled}); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Fatalf("want ErrInvalidStatusTransition got %v", err)
	}

	logs, total, err := env.reports.ListReportLogs(actor, report.ID, 1, 10)
	if err != nil {
		t.Fatalf("list logs failed: %v", err)
	}
	if total != 2 || logs[0].Action != "status_change" || logs[0].FromStatus != constants.ReportStatusPending || logs[0].ToStatus != constants.ReportStatusPaid {
		t.Fatalf("unexpected logs: total=%d first=%+v", total, logs[0])
	}
	if logs[0].RequestID != "req-1" || logs[0].OperatorUsername != admin.Username {
		t.Fatalf("log should carry operator context: %+v", logs[0])
	}
}

func TestReportAccessForSellers(t *testing.T) {
	env := setupServiceTest(t)
	admin := seedAdmin(t, env.db)
	ana := seedAccount(t, env.db, "ana", constants.RoleSeller, "1.00")
	bia := seedAccount(t, env.db, "bia", constants.RoleSeller, "1.00")
	report, err := env.reports.CreateReport(actorOf(admin), CreateReportInput{SellerID: bia.ID, Year: 2025, Month: 6})
	if err != nil {
		t.Fatalf("create report failed: %v", err)
	}
	if _, err := env.reports.CreateReport(actorOf(admin), CreateReportInput{SellerID: ana.ID, Year: 2025, Month: 6}); err != nil {
		t.Fatalf("create report failed: %v", err)
	}

	if _, err := env.reports.GetReport(actorOf(ana), report.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound got %v", err)
	}
	if _, err := env.reports.CreateReport(actorOf(ana), CreateReportInput{SellerID: ana.ID, Year: 2025, Month: 7}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("want ErrForbidden got %v", err)
	}
	reports, total, err := env.reports.ListReports(actorOf(ana), ReportListInput{SellerID: bia.ID, Status: constants.ReportStatusFilterAll})
	if err != nil || total != 1 || reports[0].SellerID != ana.ID {
		t.Fatalf("seller list not narrowed: total=%d err=%v", total, err)
	}
}

func TestExportReportsBuildsWorkbook(t *testing.T) {
	env := setupServiceTest(t)
	admin := seedAdmin(t, env.db)
	seller := seedAccount(t, env.db, "ana", constants.RoleSeller, "0.50")
	recordTestSale(t, env.sales, actorOf(admin), seller.ID, models.NewDate(2025, time.January, 10), "1000.00", nil)
	if _, err := env.reports.CreateReport(actorOf(admin), CreateReportInput{SellerID: seller.ID, Year: 2025, Month: 1}); err != nil {
		t.Fatalf("create report failed: %v", err)
	}

	file, err := env.reports.ExportReports(actorOf(admin), ReportListInput{})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	defer file.Close()

	rows, err := file.GetRows(ReportExportSheet)
	if err != nil {
		t.Fatalf("read rows failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("want header + 1 row got %d", len(rows))
	}
	if rows[1][3] != "Janeiro/2025" || rows[1][8] != constants.ReportStatusPending {
		t.Fatalf("unexpected export row: %v", rows[1])
	}
	if _, err := env.reports.ExportReports(actorOf(seller), ReportListInput{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("want ErrForbidden got %v", err)
	}
}

func TestGenerateAllContinuesAfterSellerFailure(t *testing.T) {
	env := setupServiceTest(t)
	admin := seedAdmin(t, env.db)
	ana := seedAccount(t, env.db, "ana", constants.RoleSeller, "1.00")
	bia := seedAccount(t, env.db, "bia", constants.RoleSeller, "1.00")
	caio := seedAccount(t, env.db, "caio", constants.RoleSeller, "1.00")
	recordTestSale(t, env.sales, actorOf(admin), caio.ID, models.NewDate(2025, time.June, 3), "200.00", nil)

	reports := NewCommissionReportService(
		env.cfg,
		repository.NewCommissionReportRepository(env.db),
		&failingSaleRepo{DailySaleRepository: repository.NewDailySaleRepository(env.db), failSellerID: bia.ID},
		repository.NewAccountRepository(env.db),
		repository.NewCommissionReportLogRepository(env.db),
		nil,
	)
	result, err := reports.GenerateAll(context.Background(), 2025, 6)
	if err != nil {
		t.Fatalf("generate all should not fail as a whole: %v", err)
	}
	if len(result.Failures) != 1 || result.Failures[0].SellerID != bia.ID || result.Failures[0].Username != "bia" {
		t.Fatalf("want one failure for bia got %+v", result.Failures)
	}
	if len(result.Reports) != 2 {
		t.Fatalf("want 2 reports got %d", len(result.Reports))
	}
	got := map[uint]string{}
	for _, report := range result.Reports {
		got[report.SellerID] = report.TotalSalesAmount.StringFixed(2)
	}
	if got[ana.ID] != "0.00" || got[caio.ID] != "200.00" {
		t.Fatalf("unexpected reports: %v", got)
	}

	var count int64
	env.db.Model(&models.MonthlyCommissionReport{}).Where("seller_id = ?", bia.ID).Count(&count)
	if count != 0 {
		t.Fatalf("failed seller should have no report row, got %d", count)
	}
}

func TestPaidReportIgnoresLaterSaleEdits(t *testing.T) {
	env := setupServiceTest(t)
	admin := seedAdmin(t, env.db)
	seller := seedAccount(t, env.db, "ana", constants.RoleSeller, "1.00")
	sale := recordTestSale(t, env.sales, actorOf(admin), seller.ID, models.NewDate(2025, time.June, 5), "300.00", nil)

	report, err := env.reports.CreateReport(actorOf(admin), CreateReportInput{SellerID: seller.ID, Year: 2025, Month: 6})
	if err != nil {
		t.Fatalf("create report failed: %v", err)
	}
	status := constants.ReportStatusPaid
	if _, err := env.reports.UpdateReport(actorOf(admin), report.ID, UpdateReportInput{Status: &status}); err != nil {
		t.Fatalf("pay report failed: %v", err)
	}

	amount := dec("5000.00")
	if _, err := env.sales.UpdateSale(actorOf(seller), sale.ID, UpdateSaleInput{TotalAmount: &amount}); err != nil {
		t.Fatalf("seller update sale failed: %v", err)
	}
	if _, err := env.reports.GenerateAll(context.Background(), 2025, 6); err != nil {
		t.Fatalf("generate all failed: %v", err)
	}
	if _, err := env.reports.RecalculateReport(actorOf(admin), report.ID); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Fatalf("want ErrInvalidStatusTransition got %v", err)
	}

	reloaded, err := env.reports.GetReport(actorOf(admin), report.ID)
	if err != nil {
		t.Fatalf("reload report failed: %v", err)
	}
	if reloaded.Status != constants.ReportStatusPaid ||
		reloaded.TotalSalesAmount.StringFixed(2) != "300.00" ||
		reloaded.TotalCommission.StringFixed(2) != "3.00" {
		t.Fatalf("paid report changed: status=%s total=%s commission=%s",
			reloaded.Status, reloaded.TotalSalesAmount.StringFixed(2), reloaded.TotalCommission.StringFixed(2))
	}
}
