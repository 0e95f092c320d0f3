package main

import (
	"context"
	"errors"
	"time"

	"github.com/vendapay/internal/authz"
	"github.com/vendapay/internal/config"
	"github.com/vendapay/internal/constants"
	"github.com/vendapay/internal/logger"
	"github.com/vendapay/internal/models"
	"github.com/vendapay/internal/provider"
	"github.com/vendapay/internal/service"

	"github.com/shopspring/decimal"
)

const seedPassword = "Vendas2024"

type sellerSeed struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	Rate      string
	BaseSale  int64
}

var sellerSeeds = []sellerSeed{
	{Username: "ana.souza", FirstName: "Ana", LastName: "Souza", Email: "ana@vendapay.local", Rate: "0.50", BaseSale: 1800},
	{Username: "bruno.lima", FirstName: "Bruno", LastName: "Lima", Email: "bruno@vendapay.local", Rate: "0.75", BaseSale: 1200},
	{Username: "carla.melo", FirstName: "Carla", LastName: "Melo", Email: "carla@vendapay.local", Rate: "1.00", BaseSale: 950},
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, false); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}
	if err := models.InitDefaultAdmin("", ""); err != nil {
		stdLog.Fatalf("Failed to init default admin: %v", err)
	}

	authzService, err := authz.NewService(models.DB)
	if err != nil {
		stdLog.Fatalf("Failed to init authz: %v", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		stdLog.Fatalf("Failed to bootstrap roles: %v", err)
	}
	container := provider.NewContainerWith(cfg, models.DB, authzService, nil)
	if err := container.SyncAccountRoles(); err != nil {
		stdLog.Printf("Failed to sync account roles: %v", err)
	}

	admin := service.Actor{Username: "seed", Role: constants.RoleAdmin}
	now := time.Now()
	startDate := models.NewDate(now.Year(), now.Month()-1, 1)

	for i, seed := range sellerSeeds {
		seller, err := ensureSeller(container, admin, seed, startDate)
		if err != nil {
			stdLog.Printf("Failed to create seller %s: %v", seed.Username, err)
			continue
		}

		created := 0
		for day := startDate.Time; !day.After(now); day = day.AddDate(0, 0, 1) {
			if day.Weekday() == time.Sunday {
				continue
			}
			amount := decimal.NewFromInt(seed.BaseSale + int64((day.Day()*37+i*53)%400))
			_, err := container.SaleService.RecordSale(admin, service.RecordSaleInput{
				SellerID:    seller.ID,
				SaleDate:    models.DateOf(day),
				TotalAmount: amount,
				Notes:       "seed",
			})
			if err != nil {
				if errors.Is(err, service.ErrDuplicateEntry) {
					continue
				}
				stdLog.Printf("Failed to record sale %s %s: %v", seed.Username, models.DateOf(day), err)
				continue
			}
			created++
		}
		stdLog.Printf("Seller %s: %d sales created", seed.Username, created)
	}

	for _, period := range []service.Period{service.CurrentPeriod(startDate.Time), service.CurrentPeriod(now)} {
		result, err := container.CommissionReportService.GenerateAll(context.Background(), period.Year, period.Month)
		if err != nil {
			stdLog.Printf("Failed to generate reports %d-%02d: %v", period.Year, period.Month, err)
			continue
		}
		stdLog.Printf("Reports %d-%02d: %d generated, %d failed", result.Year, result.Month, len(result.Reports), len(result.Failures))
	}

	stdLog.Println("Seed completed")
}

func ensureSeller(container *provider.Container, admin service.Actor, seed sellerSeed, startDate models.Date) (*models.Account, error) {
	existing, err := container.AccountRepo.GetByUsername(seed.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	rate := decimal.RequireFromString(seed.Rate)
	return container.AccountService.CreateAccount(admin, service.CreateAccountInput{
		Username:            seed.Username,
		Password:            seedPassword,
		Email:               seed.Email,
		FirstName:           seed.FirstName,
		LastName:            seed.LastName,
		Role:                constants.RoleSeller,
		CommissionRate:      &rate,
		CommissionStartDate: &startDate,
	})
}
