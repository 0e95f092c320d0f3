package repository

import (
	"testing"

	"github.com/vendapay/internal/constants"
	"github.com/vendapay/internal/models"
)

func TestCommissionReportListFiltersAndOrdering(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewCommissionReportRepository(db)
	ana := createTestSeller(t, db, "ana", "Ana", "1.00")
	bia := createTestSeller(t, db, "bia", "Beatriz", "0.50")

	seed := []models.MonthlyCommissionReport{
		{SellerID: ana.ID, Year: 2025, Month: 1, TotalCommission: models.MustMoney("5.00")},
		{SellerID: ana.ID, Year: 2025, Month: 3, TotalCommission: models.MustMoney("1.00"), Status: constants.ReportStatusApproved},
		{SellerID: bia.ID, Year: 2024, Month: 12, TotalCommission: models.MustMoney("9.00")},
	}
	for i := range seed {
		if err := repo.Create(&seed[i]); err != nil {
			t.Fatalf("create report failed: %v", err)
		}
	}

	list, total, err := repo.List(CommissionReportListFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 3 || len(list) != 3 {
		t.Fatalf("expected 3 reports, got total=%d len=%d", total, len(list))
	}
	if list[0].Year != 2025 || list[0].Month != 3 || list[2].Year != 2024 {
		t.Fatalf("default ordering should be year desc, month desc: %+v", list)
	}
	if list[0].PeriodDisplay != "Março/2025" {
		t.Fatalf("unexpected period display %q", list[0].PeriodDisplay)
	}

	byCommission, _, err := repo.List(CommissionReportListFilter{OrderBy: "-total_commission"})
	if err != nil {
		t.Fatalf("list ordered failed: %v", err)
	}
	if byCommission[0].TotalCommission.String() != "9.00" {
		t.Fatalf("expected highest commission first, got %s", byCommission[0].TotalCommission.String())
	}

	searched, total, err := repo.List(CommissionReportListFilter{Search: "beat", WithSeller: true})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if total != 1 || searched[0].SellerID != bia.ID || searched[0].Seller == nil {
		t.Fatalf("expected single report for bia with seller preloaded, got total=%d", total)
	}

	approved, total, err := repo.List(CommissionReportListFilter{Status: constants.ReportStatusApproved})
	if err != nil {
		t.Fatalf("status filter failed: %v", err)
	}
	if total != 1 || approved[0].Month != 3 {
		t.Fatalf("unexpected status filter result total=%d", total)
	}

	allStatuses, total, err := repo.List(CommissionReportListFilter{Status: constants.ReportStatusFilterAll, SellerID: ana.ID})
	if err != nil || total != 2 || len(allStatuses) != 2 {
		t.Fatalf("expected 2 ana reports with status=all, got total=%d err=%v", total, err)
	}
}

func TestCommissionReportUniquePerSellerPeriod(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewCommissionReportRepository(db)
	ana := createTestSeller(t, db, "ana", "Ana", "1.00")

	first := &models.MonthlyCommissionReport{SellerID: ana.ID, Year: 2025, Month: 6}
	if err := repo.Create(first); err != nil {
		t.Fatalf("create first failed: %v", err)
	}
	if first.Status != constants.ReportStatusPending {
		t.Fatalf("expected default pending status, got %s", first.Status)
	}
	dup := &models.MonthlyCommissionReport{SellerID: ana.ID, Year: 2025, Month: 6}
	if err := repo.Create(dup); err == nil {
		t.Fatalf("expected unique violation on duplicate period")
	}

	got, err := repo.GetBySellerPeriod(ana.ID, 2025, 6)
	if err != nil || got == nil || got.ID != first.ID {
		t.Fatalf("lookup by period failed: %v", err)
	}
	missing, err := repo.GetBySellerPeriod(ana.ID, 2025, 7)
	if err != nil || missing != nil {
		t.Fatalf("expected nil,nil for missing report, got %v %v", missing, err)
	}
}

func TestAccountDeleteClearsApproverReferences(t *testing.T) {
	db := setupRepositoryTestDB(t)
	accounts := NewAccountRepository(db)
	reports := NewCommissionReportRepository(db)
	ana := createTestSeller(t, db, "ana", "Ana", "1.00")
	manager := &models.Account{Username: "gestor", Role: constants.RoleManager, IsActive: true}
	if err := accounts.Create(manager); err != nil {
		t.Fatalf("create manager failed: %v", err)
	}

	report := &models.MonthlyCommissionReport{SellerID: ana.ID, Year: 2025, Month: 6, ApprovedByID: &manager.ID, Status: constants.ReportStatusApproved}
	if err := reports.Create(report); err != nil {
		t.Fatalf("create report failed: %v", err)
	}

	count, err := accounts.CountDependents(ana.ID)
	if err != nil || count != 1 {
		t.Fatalf("expected seller to have 1 dependent, got %d err=%v", count, err)
	}
	count, err = accounts.CountDependents(manager.ID)
	if err != nil || count != 0 {
		t.Fatalf("expected manager to have no dependents, got %d err=%v", count, err)
	}

	if err := accounts.Delete(manager.ID); err != nil {
		t.Fatalf("delete manager failed: %v", err)
	}
	reloaded, err := reports.GetByID(report.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload report failed: %v", err)
	}
	if reloaded.ApprovedByID != nil {
		t.Fatalf("expected approver reference cleared")
	}
}

func TestAccountListSearchAndEligibility(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewAccountRepository(db)
	createTestSeller(t, db, "ana", "Ana", "1.00")
	inactive := createTestSeller(t, db, "caio", "Caio", "1.00")
	inactive.IsActive = false
	if err := repo.Update(inactive); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	noCommission := createTestSeller(t, db, "davi", "Davi", "1.00")
	noCommission.CommissionActive = false
	if err := repo.Update(noCommission); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	eligible, err := repo.ListCommissionEligible()
	if err != nil {
		t.Fatalf("eligible failed: %v", err)
	}
	if len(eligible) != 1 || eligible[0].Username != "ana" {
		t.Fatalf("expected only ana eligible, got %d", len(eligible))
	}

	found, total, err := repo.List(AccountListFilter{Search: "CAI", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if total != 1 || found[0].Username != "caio" || found[0].FullName != "Caio" {
		t.Fatalf("unexpected search result total=%d", total)
	}
}
