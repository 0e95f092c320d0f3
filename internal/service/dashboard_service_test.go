package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vendapay/internal/constants"
	"github.com/vendapay/internal/models"
)

func TestGrowthPercentage(t *testing.T) {
	cases := []struct {
		current  string
		previous string
		want     string
	}{
		{"150", "100", "50.00"},
		{"50", "100", "-50.00"},
		{"100", "0", "0.00"},
		{"100", "-10", "0.00"},
		{"1", "3", "-66.67"},
	}
	for _, tc := range cases {
		got := growthPercentage(dec(tc.current), dec(tc.previous)).StringFixed(2)
		if got != tc.want {
			t.Fatalf("growth(%s, %s) want %s got %s", tc.current, tc.previous, tc.want, got)
		}
	}
}

func TestProgressOf(t *testing.T) {
	if got := progressOf(dec("300"), dec("300")); got != 100 {
		t.Fatalf("want 100 got %d", got)
	}
	if got := progressOf(dec("200"), dec("300")); got != 66 {
		t.Fatalf("want 66 got %d", got)
	}
	if got := progressOf(dec("0"), dec("0")); got != 0 {
		t.Fatalf("want 0 got %d", got)
	}
}

func seedDashboardData(t *testing.T, env *testServices) (admin, ana, bia *models.Account) {
	t.Helper()
	admin = seedAdmin(t, env.db)
	ana = seedAccount(t, env.db, "ana", constants.RoleSeller, "1.00")
	bia = seedAccount(t, env.db, "bia", constants.RoleSeller, "2.00")
	actor := actorOf(admin)

	recordTestSale(t, env.sales, actor, ana.ID, models.NewDate(2025, time.May, 10), "100.00", nil)
	recordTestSale(t, env.sales, actor, ana.ID, models.NewDate(2025, time.June, 1), "200.00", nil)
	recordTestSale(t, env.sales, actor, ana.ID, models.NewDate(2025, time.June, 2), "100.00", nil)
	recordTestSale(t, env.sales, actor, bia.ID, models.NewDate(2025, time.June, 2), "100.00", nil)

	if _, err := env.reports.GenerateAll(context.Background(), 2025, 6); err != nil {
		t.Fatalf("generate reports failed: %v", err)
	}
	biaReport, err := env.reports.reportRepo.GetBySellerPeriod(bia.ID, 2025, 6)
	if err != nil || biaReport == nil {
		t.Fatalf("load bia report failed: %v", err)
	}
	paid := constants.ReportStatusPaid
	if _, err := env.reports.UpdateReport(actor, biaReport.ID, UpdateReportInput{Status: &paid}); err != nil {
		t.Fatalf("pay bia report failed: %v", err)
	}
	return admin, ana, bia
}

func TestDashboardSummaryForAdmin(t *testing.T) {
	env := setupServiceTest(t)
	admin, ana, _ := seedDashboardData(t, env)

	summary, err := env.dashboard.GetSummary(context.Background(), actorOf(admin), DashboardQueryInput{Year: 2025, Month: 6})
	if err != nil {
		t.Fatalf("get summary failed: %v", err)
	}
	if summary.TotalSales != "400.00" || summary.TotalCommission != "5.00" {
		t.Fatalf("unexpected totals: sales=%s commission=%s", summary.TotalSales, summary.TotalCommission)
	}
	if summary.PaidCommission != "2.00" || summary.PendingCommission != "3.00" {
		t.Fatalf("unexpected paid/pending: %s/%s", summary.PaidCommission, summary.PendingCommission)
	}
	if summary.GrowthPercentage != "300.00" {
		t.Fatalf("want growth 300.00 got %s", summary.GrowthPercentage)
	}
	if summary.Status != constants.ReportStatusFilterAll || summary.PeriodDisplay != "Junho/2025" {
		t.Fatalf("unexpected status/period: %s %s", summary.Status, summary.PeriodDisplay)
	}
	if len(summary.DailySales) != 2 || summary.DailySales[1].Total != "200.00" {
		t.Fatalf("unexpected daily sales: %+v", summary.DailySales)
	}
	if len(summary.TopSellers) != 2 || summary.TopSellers[0].SellerID != ana.ID || summary.TopSellers[0].Progress != 100 || summary.TopSellers[1].Progress != 33 {
		t.Fatalf("unexpected top sellers: %+v", summary.TopSellers)
	}
}

func TestDashboardSummaryNarrowsSeller(t *testing.T) {
	env := setupServiceTest(t)
	_, ana, bia := seedDashboardData(t, env)

	summary, err := env.dashboard.GetSummary(context.Background(), actorOf(ana), DashboardQueryInput{Year: 2025, Month: 6, SellerID: bia.ID})
	if err != nil {
		t.Fatalf("get summary failed: %v", err)
	}
	if summary.SellerID != ana.ID || summary.TotalSales != "300.00" || summary.TotalCommission != "3.00" {
		t.Fatalf("seller summary not narrowed: %+v", summary)
	}
	if summary.GrowthPercentage != "200.00" {
		t.Fatalf("want growth 200.00 got %s", summary.GrowthPercentage)
	}
	if summary.TopSellers != nil {
		t.Fatalf("seller must not receive ranking")
	}
	if _, err := env.dashboard.GetTopSellers(context.Background(), actorOf(ana), DashboardQueryInput{Year: 2025, Month: 6}, 5); !errors.Is(err, ErrForbidden) {
		t.Fatalf("want ErrForbidden got %v", err)
	}
}

func TestDashboardTopSellersHonoursSellerFilter(t *testing.T) {
	env := setupServiceTest(t)
	admin, _, bia := seedDashboardData(t, env)

	summary, err := env.dashboard.GetSummary(context.Background(), actorOf(admin), DashboardQueryInput{Year: 2025, Month: 6, SellerID: bia.ID})
	if err != nil {
		t.Fatalf("get summary failed: %v", err)
	}
	if len(summary.TopSellers) != 1 || summary.TopSellers[0].SellerID != bia.ID || summary.TopSellers[0].Progress != 100 {
		t.Fatalf("ranking should only contain bia: %+v", summary.TopSellers)
	}

	top, err := env.dashboard.GetTopSellers(context.Background(), actorOf(admin), DashboardQueryInput{Year: 2025, Month: 6, SellerID: bia.ID}, 5)
	if err != nil {
		t.Fatalf("get top sellers failed: %v", err)
	}
	if len(top) != 1 || top[0].SellerID != bia.ID || top[0].TotalSales != "100.00" {
		t.Fatalf("unexpected top sellers: %+v", top)
	}
}

func TestDashboardStatusFilter(t *testing.T) {
	env := setupServiceTest(t)
	admin, _, _ := seedDashboardData(t, env)

	summary, err := env.dashboard.GetSummary(context.Background(), actorOf(admin), DashboardQueryInput{Year: 2025, Month: 6, Status: constants.ReportStatusPending})
	if err != nil {
		t.Fatalf("get summary failed: %v", err)
	}
	if summary.TotalCommission != "3.00" || summary.PaidCommission != "0.00" || summary.PendingCommission != "3.00" {
		t.Fatalf("unexpected pending summary: %+v", summary)
	}
	if _, err := env.dashboard.GetSummary(context.Background(), actorOf(admin), DashboardQueryInput{Status: "unknown"}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("want ErrInvalidStatus got %v", err)
	}
}

func TestGrowthVsPreviousMonthZeroWithoutHistory(t *testing.T) {
	env := setupServiceTest(t)
	admin := seedAdmin(t, env.db)
	seller := seedAccount(t, env.db, "ana", constants.RoleSeller, "1.00")
	recordTestSale(t, env.sales, actorOf(admin), seller.ID, models.NewDate(2025, time.January, 5), "500.00", nil)

	growth, err := env.dashboard.GrowthVsPreviousMonth(Period{Year: 2025, Month: 1}, 0)
	if err != nil {
		t.Fatalf("growth failed: %v", err)
	}
	if !growth.IsZero() {
		t.Fatalf("want 0 growth got %s", growth.String())
	}
}
