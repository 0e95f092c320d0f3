package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vendapay/internal/cache"
	"github.com/vendapay/internal/config"
	"github.com/vendapay/internal/constants"
	"github.com/vendapay/internal/repository"

	"github.com/shopspring/decimal"
)

const defaultTopSellersLimit = 5

// DashboardService 仪表盘服务
// 说明：聚合销售与佣金数据；卖家的所有筛选都收敛到自身。
type DashboardService struct {
	cfg  *config.Config
	repo repository.DashboardRepository
}

// NewDashboardService 创建仪表盘服务
func NewDashboardService(cfg *config.Config, repo repository.DashboardRepository) *DashboardService {
	return &DashboardService{cfg: cfg, repo: repo}
}

// DashboardQueryInput 仪表盘查询输入
type DashboardQueryInput struct {
	Year         int
	Month        int
	SellerID     uint
	Status       string
	ForceRefresh bool
}

// DashboardSummary 仪表盘汇总响应
type DashboardSummary struct {
	Year              int                  `json:"year"`
	Month             int                  `json:"month"`
	PeriodDisplay     string               `json:"period_display"`
	SellerID          uint                 `json:"seller_id,omitempty"`
	Status            string               `json:"status"`
	TotalSales        string               `json:"total_sales"`
	TotalCommission   string               `json:"total_commission"`
	PaidCommission    string               `json:"paid_commission"`
	PendingCommission string               `json:"pending_commission"`
	GrowthPercentage  string               `json:"growth_percentage"`
	DailySales        []DashboardDailySale `json:"daily_sales"`
	TopSellers        []DashboardTopSeller `json:"top_sellers,omitempty"`
}

// DashboardDailySale 每日销售额
type DashboardDailySale struct {
	Date  string `json:"date"`
	Total string `json:"total"`
}

// DashboardTopSeller 卖家排行项
type DashboardTopSeller struct {
	SellerID   uint   `json:"seller_id"`
	Username   string `json:"username"`
	FullName   string `json:"full_name"`
	TotalSales string `json:"total_sales"`
	SalesDays  int64  `json:"sales_days"`
	Progress   int    `json:"progress"`
}

// TotalSales 指定月份的有效销售总额
func (s *DashboardService) TotalSales(period Period, sellerID uint) (decimal.Decimal, error) {
	start, end := period.Bounds()
	return s.repo.SumSales(repository.SalesScope{Start: start, End: end, SellerID: sellerID})
}

// TotalCommission 指定月份的月报佣金合计（status 为空或 all 时不过滤）
func (s *DashboardService) TotalCommission(period Period, sellerID uint, status string) (decimal.Decimal, error) {
	return s.repo.SumReportCommission(repository.ReportScope{
		Year:     period.Year,
		Month:    period.Month,
		SellerID: sellerID,
		Statuses: statusScope(status),
	})
}

// PaidCommission 已支付的佣金合计（在状态筛选结果内再取已支付）
func (s *DashboardService) PaidCommission(period Period, sellerID uint, status string) (decimal.Decimal, error) {
	scope := statusScope(status)
	if len(scope) > 0 && scope[0] != constants.ReportStatusPaid {
		return decimal.Zero, nil
	}
	return s.repo.SumReportCommission(repository.ReportScope{
		Year:     period.Year,
		Month:    period.Month,
		SellerID: sellerID,
		Statuses: []string{constants.ReportStatusPaid},
	})
}

// GrowthVsPreviousMonth 销售额环比增长百分比，上月不大于 0 时为 0
func (s *DashboardService) GrowthVsPreviousMonth(period Period, sellerID uint) (decimal.Decimal, error) {
	current, err := s.TotalSales(period, sellerID)
	if err != nil {
		return decimal.Zero, err
	}
	previous, err := s.TotalSales(period.Previous(), sellerID)
	if err != nil {
		return decimal.Zero, err
	}
	return growthPercentage(current, previous), nil
}

// TopSellers 销售额排行，progress 为相对第一名的百分比（向下取整）；sellerID 非 0 时只统计该卖家
func (s *DashboardService) TopSellers(period Period, sellerID uint, limit int) ([]DashboardTopSeller, error) {
	if limit <= 0 {
		limit = defaultTopSellersLimit
	}
	start, end := period.Bounds()
	rows, err := s.repo.GetTopSellers(repository.SalesScope{Start: start, End: end, SellerID: sellerID}, limit)
	if err != nil {
		return nil, err
	}

	maxTotal := decimal.Zero
	for _, row := range rows {
		if row.TotalSales.GreaterThan(maxTotal) {
			maxTotal = row.TotalSales.Decimal
		}
	}
	items := make([]DashboardTopSeller, 0, len(rows))
	for _, row := range rows {
		items = append(items, DashboardTopSeller{
			SellerID:   row.SellerID,
			Username:   row.Username,
			FullName:   displayName(row.FirstName, row.LastName, row.Username),
			TotalSales: formatMoneyValue(row.TotalSales.Decimal),
			SalesDays:  row.SalesDays,
			Progress:   progressOf(row.TotalSales.Decimal, maxTotal),
		})
	}
	return items, nil
}

// DailySales 按日销售额（图表数据）
func (s *DashboardService) DailySales(period Period, sellerID uint) ([]DashboardDailySale, error) {
	start, end := period.Bounds()
	rows, err := s.repo.GetDailySales(repository.SalesScope{Start: start, End: end, SellerID: sellerID})
	if err != nil {
		return nil, err
	}
	items := make([]DashboardDailySale, 0, len(rows))
	for _, row := range rows {
		items = append(items, DashboardDailySale{
			Date:  row.Day.String(),
			Total: formatMoneyValue(row.Total.Decimal),
		})
	}
	return items, nil
}

// GetSummary 获取仪表盘汇总
func (s *DashboardService) GetSummary(ctx context.Context, actor Actor, input DashboardQueryInput) (*DashboardSummary, error) {
	if s == nil || s.repo == nil {
		return &DashboardSummary{}, nil
	}
	period, status, err := s.resolveQuery(input)
	if err != nil {
		return nil, err
	}
	sellerID := actor.scopeSellerID(input.SellerID)
	withRanking := actor.IsPrivileged()

	cacheKey := fmt.Sprintf("dashboard:summary:%04d-%02d:%d:%s:%t", period.Year, period.Month, sellerID, status, withRanking)
	if !input.ForceRefresh {
		var cached DashboardSummary
		hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached)
		if cacheErr == nil && hit {
			return &cached, nil
		}
	}

	totalSales, err := s.TotalSales(period, sellerID)
	if err != nil {
		return nil, err
	}
	totalCommission, err := s.TotalCommission(period, sellerID, status)
	if err != nil {
		return nil, err
	}
	paidCommission, err := s.PaidCommission(period, sellerID, status)
	if err != nil {
		return nil, err
	}
	growth, err := s.GrowthVsPreviousMonth(period, sellerID)
	if err != nil {
		return nil, err
	}
	daily, err := s.DailySales(period, sellerID)
	if err != nil {
		return nil, err
	}

	summary := &DashboardSummary{
		Year:              period.Year,
		Month:             period.Month,
		PeriodDisplay:     period.Display(),
		SellerID:          sellerID,
		Status:            status,
		TotalSales:        formatMoneyValue(totalSales),
		TotalCommission:   formatMoneyValue(totalCommission),
		PaidCommission:    formatMoneyValue(paidCommission),
		PendingCommission: formatMoneyValue(totalCommission.Sub(paidCommission)),
		GrowthPercentage:  formatMoneyValue(growth),
		DailySales:        daily,
	}
	if withRanking {
		top, err := s.TopSellers(period, sellerID, s.topSellersLimit())
		if err != nil {
			return nil, err
		}
		summary.TopSellers = top
	}

	_ = cache.SetJSON(ctx, cacheKey, summary, s.cacheTTL())
	return summary, nil
}

// GetTopSellers 获取卖家排行（仅管理员、经理）
func (s *DashboardService) GetTopSellers(ctx context.Context, actor Actor, input DashboardQueryInput, limit int) ([]DashboardTopSeller, error) {
	if !actor.IsPrivileged() {
		return nil, ErrForbidden
	}
	period, _, err := s.resolveQuery(input)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.topSellersLimit()
	}
	sellerID := actor.scopeSellerID(input.SellerID)

	cacheKey := fmt.Sprintf("dashboard:top_sellers:%04d-%02d:%d:%d", period.Year, period.Month, sellerID, limit)
	if !input.ForceRefresh {
		var cached []DashboardTopSeller
		hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached)
		if cacheErr == nil && hit {
			return cached, nil
		}
	}
	items, err := s.TopSellers(period, sellerID, limit)
	if err != nil {
		return nil, err
	}
	_ = cache.SetJSON(ctx, cacheKey, items, s.cacheTTL())
	return items, nil
}

func (s *DashboardService) resolveQuery(input DashboardQueryInput) (Period, string, error) {
	period := CurrentPeriod(time.Now())
	if input.Year != 0 {
		period.Year = input.Year
	}
	if input.Month != 0 {
		period.Month = input.Month
	}
	if period.Month < 1 || period.Month > 12 || period.Year <= 0 {
		return Period{}, "", ErrInvalidPeriod
	}

	status := strings.ToLower(strings.TrimSpace(input.Status))
	if status == "" {
		status = constants.ReportStatusFilterAll
	}
	if status != constants.ReportStatusFilterAll {
		normalized, err := NormalizeReportStatus(status)
		if err != nil {
			return Period{}, "", err
		}
		status = normalized
	}
	return period, status, nil
}

func (s *DashboardService) cacheTTL() time.Duration {
	if s.cfg == nil {
		return 0
	}
	return s.cfg.Dashboard.CacheTTL()
}

func (s *DashboardService) topSellersLimit() int {
	if s.cfg == nil || s.cfg.Dashboard.TopSellersLimit <= 0 {
		return defaultTopSellersLimit
	}
	return s.cfg.Dashboard.TopSellersLimit
}

func statusScope(status string) []string {
	status = strings.TrimSpace(status)
	if status == "" || status == constants.ReportStatusFilterAll {
		return nil
	}
	return []string{status}
}

// growthPercentage (当前 - 上期) / 上期 × 100，保留两位；上期不大于 0 时返回 0
func growthPercentage(current, previous decimal.Decimal) decimal.Decimal {
	if !previous.IsPositive() {
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(2)
}

// progressOf total / max × 100 向下取整，max 为 0 时为 0
func progressOf(total, maxTotal decimal.Decimal) int {
	if !maxTotal.IsPositive() {
		return 0
	}
	return int(total.Div(maxTotal).Mul(decimal.NewFromInt(100)).Floor().IntPart())
}

func displayName(firstName, lastName, username string) string {
	name := strings.TrimSpace(strings.TrimSpace(firstName) + " " + strings.TrimSpace(lastName))
	if name == "" {
		return username
	}
	return name
}

func formatMoneyValue(value decimal.Decimal) string {
	return value.Round(2).StringFixed(2)
}
