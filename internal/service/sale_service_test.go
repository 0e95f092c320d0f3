package service

import (
	"errors"
	"testing"
	"time"

	"github.com/vendapay/internal/constants"
	"github.com/vendapay/internal/models"
)

func TestRecordSaleSnapshotsSellerRate(t *testing.T) {
	env := setupServiceTest(t)
	admin := seedAdmin(t, env.db)
	seller := seedAccount(t, env.db, "joao", constants.RoleSeller, "0.50")

	sale := recordTestSale(t, env.sales, actorOf(admin), seller.ID, models.NewDate(2025, time.January, 10), "1000.00", nil)
	if sale.CommissionRateApplied.StringFixed(2) != "0.50" {
		t.Fatalf("want snapshot rate 0.50 got %s", sale.CommissionRateApplied.StringFixed(2))
	}
	if sale.CalculatedCommission.StringFixed(2) != "5.00" {
		t.Fatalf("want commission 5.00 got %s", sale.CalculatedCommission.StringFixed(2))
	}
	if sale.RegisteredByID == nil || *sale.RegisteredByID != admin.ID {
		t.Fatalf("want registered_by %d got %v", admin.ID, sale.RegisteredByID)
	}

	// 卖家比例变更后再次保存，快照不变
	seller.CommissionRate = models.MustMoney("3.00")
	if err := env.db.Save(seller).Error; err != nil {
		t.Fatalf("update seller rate failed: %v", err)
	}
	notes := "revisado"
	updated, err := env.sales.UpdateSale(actorOf(admin), sale.ID, UpdateSaleInput{Notes: &notes})
	if err != nil {
		t.Fatalf("update sale failed: %v", err)
	}
	if updated.CommissionRateApplied.StringFixed(2) != "0.50" || updated.CalculatedCommission.StringFixed(2) != "5.00" {
		t.Fatalf("snapshot changed: rate=%s commission=%s", updated.CommissionRateApplied.StringFixed(2), updated.CalculatedCommission.StringFixed(2))
	}
}

func TestRecordSaleCommissionRounding(t *testing.T) {
	env := setupServiceTest(t)
	admin := seedAdmin(t, env.db)
	seller := seedAccount(t, env.db, "ana", constants.RoleSeller, "0.50")

	cases := []struct {
		day    int
		amount string
		rate   string
		want   string
	}{
		{1, "333.33", "1.00", "3.33"},
		{2, "100.10", "2.50", "2.50"},
		{3, "0.00", "5.00", "0.00"},
		{4, "1.00", "0.50", "0.01"},
		{5, "99999999.99", "100.00", "99999999.99"},
	}
	for _, tc := range cases {
		sale := recordTestSale(t, env.sales, actorOf(admin), seller.ID, models.NewDate(2025, time.March, tc.day), tc.amount, decPtr(tc.rate))
		if got := sale.CalculatedCommission.StringFixed(2); got != tc.want {
			t.Fatalf("amount=%s rate=%s want %s got %s", tc.amount, tc.rate, tc.want, got)
		}
	}
}

func TestRecordSaleRejectsDuplicateSellerDate(t *testing.T) {
	env := setupServiceTest(t)
	admin := seedAdmin(t, env.db)
	seller := seedAccount(t, env.db, "ana", constants.RoleSeller, "1.00")
	day := models.NewDate(2025, time.June, 3)

	recordTestSale(t, env.sales, actorOf(admin), seller.ID, day, "10.00", nil)
	_, err := env.sales.RecordSale(actorOf(admin), RecordSaleInput{SellerID: seller.ID, SaleDate: day, TotalAmount: dec("20.00")})
	if !errors.Is(err, ErrDuplicateEntry) {
		t.Fatalf("want ErrDuplicateEntry got %v", err)
	}
}

func TestRecordSaleValidation(t *testing.T) {
	env := setupServiceTest(t)
	admin := seedAdmin(t, env.db)
	seller := seedAccount(t, env.db, "ana", constants.RoleSeller, "1.00")
	other := seedAccount(t, env.db, "bia", constants.RoleSeller, "1.00")
	day := models.NewDate(2025, time.June, 3)

	cases := []struct {
		name  string
		actor Actor
		input RecordSaleInput
		want  error
	}{
		{"negative amount", actorOf(admin), RecordSaleInput{SellerID: seller.ID, SaleDate: day, TotalAmount: dec("-0.01")}, ErrInvalidAmount},
		{"rate above 100", actorOf(admin), RecordSaleInput{SellerID: seller.ID, SaleDate: day, TotalAmount: dec("1"), CommissionRate: decPtr("100.01")}, ErrInvalidRate},
		{"unknown seller", actorOf(admin), RecordSaleInput{SellerID: 999, SaleDate: day, TotalAmount: dec("1")}, ErrSellerNotFound},
		{"seller for other", actorOf(seller), RecordSaleInput{SellerID: other.ID, SaleDate: day, TotalAmount: dec("1")}, ErrForbidden},
		{"seller sets rate", actorOf(seller), RecordSaleInput{SellerID: seller.ID, SaleDate: day, TotalAmount: dec("1"), CommissionRate: decPtr("9")}, ErrRateEditForbidden},
		{"missing date", actorOf(admin), RecordSaleInput{SellerID: seller.ID, TotalAmount: dec("1")}, ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := env.sales.RecordSale(tc.actor, tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("want %v got %v", tc.want, err)
			}
		})
	}
}

func TestSellerRecordsOwnSaleWithoutSellerID(t *testing.T) {
	env := setupServiceTest(t)
	seller := seedAccount(t, env.db, "ana", constants.RoleSeller, "2.00")

	sale, err := env.sales.RecordSale(actorOf(seller), RecordSaleInput{SaleDate: models.NewDate(2025, time.June, 1), TotalAmount: dec("50")})
	if err != nil {
		t.Fatalf("record own sale failed: %v", err)
	}
	if sale.SellerID != seller.ID || sale.CalculatedCommission.StringFixed(2) != "1.00" {
		t.Fatalf("unexpected sale: seller=%d commission=%s", sale.SellerID, sale.CalculatedCommission.StringFixed(2))
	}
}

func TestUpdateSaleRateByManagerAndSellerRestrictions(t *testing.T) {
	env := setupServiceTest(t)
	manager := seedAccount(t, env.db, "gerente", constants.RoleManager, "0.00")
	seller := seedAccount(t, env.db, "ana", constants.RoleSeller, "1.00")
	other := seedAccount(t, env.db, "bia", constants.RoleSeller, "1.00")
	sale := recordTestSale(t, env.sales, actorOf(manager), seller.ID, models.NewDate(2025, time.June, 1), "200.00", nil)

	updated, err := env.sales.UpdateSale(actorOf(manager), sale.ID, UpdateSaleInput{CommissionRate: decPtr("2.50")})
	if err != nil {
		t.Fatalf("manager update rate failed: %v", err)
	}
	if updated.CalculatedCommission.StringFixed(2) != "5.00" {
		t.Fatalf("want 5.00 got %s", updated.CalculatedCommission.StringFixed(2))
	}

	if _, err := env.sales.UpdateSale(actorOf(seller), sale.ID, UpdateSaleInput{CommissionRate: decPtr("9")}); !errors.Is(err, ErrRateEditForbidden) {
		t.Fatalf("want ErrRateEditForbidden got %v", err)
	}
	if _, err := env.sales.GetSale(actorOf(other), sale.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound for other seller got %v", err)
	}
}

func TestDeactivateSaleAndListNarrowing(t *testing.T) {
	env := setupServiceTest(t)
	admin := seedAdmin(t, env.db)
	ana := seedAccount(t, env.db, "ana", constants.RoleSeller, "1.00")
	bia := seedAccount(t, env.db, "bia", constants.RoleSeller, "1.00")
	first := recordTestSale(t, env.sales, actorOf(admin), ana.ID, models.NewDate(2025, time.June, 1), "10", nil)
	recordTestSale(t, env.sales, actorOf(admin), ana.ID, models.NewDate(2025, time.July, 1), "10", nil)
	recordTestSale(t, env.sales, actorOf(admin), bia.ID, models.NewDate(2025, time.June, 2), "10", nil)

	sales, total, err := env.sales.ListSales(actorOf(ana), SaleListInput{SellerID: bia.ID})
	if err != nil {
		t.Fatalf("list sales failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("seller should only see own sales, got %d", total)
	}
	for _, sale := range sales {
		if sale.SellerID != ana.ID {
			t.Fatalf("unexpected seller %d in list", sale.SellerID)
		}
	}

	_, total, err = env.sales.ListSales(actorOf(admin), SaleListInput{Year: 2025, Month: 6})
	if err != nil || total != 2 {
		t.Fatalf("want 2 june sales got %d err=%v", total, err)
	}

	if err := env.sales.DeactivateSale(actorOf(admin), first.ID); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	active := true
	_, total, err = env.sales.ListSales(actorOf(admin), SaleListInput{IsActive: &active})
	if err != nil || total != 2 {
		t.Fatalf("want 2 active sales got %d err=%v", total, err)
	}
}

func TestSaleWriteRecalculatesExistingReport(t *testing.T) {
	env := setupServiceTest(t)
	admin := seedAdmin(t, env.db)
	seller := seedAccount(t, env.db, "ana", constants.RoleSeller, "1.00")
	report, err := env.reports.CreateReport(actorOf(admin), CreateReportInput{SellerID: seller.ID, Year: 2025, Month: 6})
	if err != nil {
		t.Fatalf("create report failed: %v", err)
	}

	recordTestSale(t, env.sales, actorOf(admin), seller.ID, models.NewDate(2025, time.June, 5), "300.00", nil)

	reloaded, err := env.reports.GetReport(actorOf(admin), report.ID)
	if err != nil {
		t.Fatalf("reload report failed: %v", err)
	}
	if reloaded.TotalSalesAmount.StringFixed(2) != "300.00" || reloaded.TotalCommission.StringFixed(2) != "3.00" {
		t.Fatalf("report not refreshed: total=%s commission=%s", reloaded.TotalSalesAmount.StringFixed(2), reloaded.TotalCommission.StringFixed(2))
	}
}
