package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/vendapay/internal/config"
	"github.com/vendapay/internal/constants"
	"github.com/vendapay/internal/models"
	"github.com/vendapay/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type testServices struct {
	db        *gorm.DB
	cfg       *config.Config
	auth      *AuthService
	accounts  *AccountService
	sales     *SaleService
	reports   *CommissionReportService
	dashboard *DashboardService
}

func newTestConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{SecretKey: "test-secret", ExpireHours: 1},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{MinLength: 8, RequireUpper: true, RequireLower: true, RequireNumber: true},
		},
		Commission: config.CommissionConfig{MinYear: 2024, MaxYear: 2100, DefaultRate: "0.50"},
		Dashboard:  config.DashboardConfig{TopSellersLimit: 5},
	}
}

func setupServiceTest(t *testing.T) *testServices {
	t.Helper()
	dsn := fmt.Sprintf("file:service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	cfg := newTestConfig()
	accountRepo := repository.NewAccountRepository(db)
	saleRepo := repository.NewDailySaleRepository(db)
	reportRepo := repository.NewCommissionReportRepository(db)
	logRepo := repository.NewCommissionReportLogRepository(db)

	authSvc := NewAuthService(cfg, accountRepo)
	reportSvc := NewCommissionReportService(cfg, reportRepo, saleRepo, accountRepo, logRepo, nil)
	return &testServices{
		db:        db,
		cfg:       cfg,
		auth:      authSvc,
		accounts:  NewAccountService(cfg, accountRepo, authSvc, nil),
		sales:     NewSaleService(saleRepo, accountRepo, reportSvc),
		reports:   reportSvc,
		dashboard: NewDashboardService(cfg, repository.NewDashboardRepository(db)),
	}
}

func seedAccount(t *testing.T, db *gorm.DB, username, role, rate string) *models.Account {
	t.Helper()
	account := &models.Account{
		Username:         username,
		FirstName:        username,
		PasswordHash:     "hash",
		Role:             role,
		CommissionRate:   models.MustMoney(rate),
		CommissionActive: true,
		IsActive:         true,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("create account %s failed: %v", username, err)
	}
	return account
}

func actorOf(account *models.Account) Actor {
	return Actor{ID: account.ID, Username: account.Username, Role: account.Role}
}

func dec(raw string) decimal.Decimal {
	return decimal.RequireFromString(raw)
}

func decPtr(raw string) *decimal.Decimal {
	d := dec(raw)
	return &d
}

func recordTestSale(t *testing.T, svc *SaleService, actor Actor, sellerID uint, day models.Date, amount string, rate *decimal.Decimal) *models.DailySale {
	t.Helper()
	sale, err := svc.RecordSale(actor, RecordSaleInput{
		SellerID:       sellerID,
		SaleDate:       day,
		TotalAmount:    dec(amount),
		CommissionRate: rate,
	})
	if err != nil {
		t.Fatalf("record sale failed: %v", err)
	}
	return sale
}

func seedAdmin(t *testing.T, db *gorm.DB) *models.Account {
	t.Helper()
	return seedAccount(t, db, "admin", constants.RoleAdmin, "0.00")
}
