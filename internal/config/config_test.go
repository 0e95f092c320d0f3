package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestSetDefaultsCommissionSection(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		t.Fatalf("unmarshal defaults failed: %v", err)
	}
	cfg.normalize()

	if cfg.Commission.MinYear != 2024 || cfg.Commission.MaxYear != 2100 {
		t.Fatalf("unexpected year bounds: %d..%d", cfg.Commission.MinYear, cfg.Commission.MaxYear)
	}
	if cfg.Commission.DefaultRate != "0.50" {
		t.Fatalf("unexpected default rate: %s", cfg.Commission.DefaultRate)
	}
	if cfg.Dashboard.TopSellersLimit != 5 {
		t.Fatalf("unexpected top sellers limit: %d", cfg.Dashboard.TopSellersLimit)
	}
	if cfg.Dashboard.CacheTTL() != 45*time.Second {
		t.Fatalf("unexpected dashboard ttl: %v", cfg.Dashboard.CacheTTL())
	}
	if cfg.Security.LoginRateLimit.BlockSeconds != 900 {
		t.Fatalf("unexpected block seconds: %d", cfg.Security.LoginRateLimit.BlockSeconds)
	}
}

func TestNormalizeRepairsInvalidValues(t *testing.T) {
	cfg := Config{
		Commission: CommissionConfig{MinYear: 2030, MaxYear: 2000},
		Pagination: PaginationConfig{DefaultPageSize: 50, MaxPageSize: 10},
	}
	cfg.normalize()

	if cfg.Commission.MaxYear != 2100 {
		t.Fatalf("expected max year fallback, got %d", cfg.Commission.MaxYear)
	}
	if cfg.Commission.DefaultRate != "0.50" {
		t.Fatalf("expected default rate fallback, got %q", cfg.Commission.DefaultRate)
	}
	if cfg.Pagination.MaxPageSize != 100 {
		t.Fatalf("expected max page size fallback, got %d", cfg.Pagination.MaxPageSize)
	}
	if cfg.Commission.AutoGenerateInterval() != time.Hour {
		t.Fatalf("expected 1h auto generate interval, got %v", cfg.Commission.AutoGenerateInterval())
	}
}
