package repository

import (
	"github.com/vendapay/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardRepository 仪表盘聚合查询接口
// 说明：仅聚合统计数据，不承载业务规则。
type DashboardRepository interface {
	SumSales(scope SalesScope) (decimal.Decimal, error)
	SumReportCommission(scope ReportScope) (decimal.Decimal, error)
	GetDailySales(scope SalesScope) ([]DashboardDailySalesRow, error)
	GetTopSellers(scope SalesScope, limit int) ([]DashboardSellerRankingRow, error)
}

// DashboardDailySalesRow 每日销售额
type DashboardDailySalesRow struct {
	Day   models.Date
	Total models.Money
}

// DashboardSellerRankingRow 卖家排行原始行
type DashboardSellerRankingRow struct {
	SellerID   uint
	Username   string
	FirstName  string
	LastName   string
	TotalSales models.Money
	SalesDays  int64
}

// GormDashboardRepository GORM 仪表盘聚合实现
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository 创建仪表盘仓库
func NewDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

func activeSalesBase(db *gorm.DB, scope SalesScope) *gorm.DB {
	query := db.Model(&models.DailySale{}).
		Where("daily_sales.is_active = ? AND daily_sales.sale_date >= ? AND daily_sales.sale_date <= ?", true, scope.Start, scope.End)
	if scope.SellerID != 0 {
		query = query.Where("daily_sales.seller_id = ?", scope.SellerID)
	}
	return query
}

// SumSales 汇总有效销售额
func (r *GormDashboardRepository) SumSales(scope SalesScope) (decimal.Decimal, error) {
	var total models.Money
	row := activeSalesBase(r.db, scope).
		Select("COALESCE(SUM(daily_sales.total_amount), 0)").
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total.Decimal, nil
}

// SumReportCommission 汇总月报佣金
func (r *GormDashboardRepository) SumReportCommission(scope ReportScope) (decimal.Decimal, error) {
	query := r.db.Model(&models.MonthlyCommissionReport{}).
		Where("year = ? AND month = ?", scope.Year, scope.Month)
	if scope.SellerID != 0 {
		query = query.Where("seller_id = ?", scope.SellerID)
	}
	if len(scope.Statuses) > 0 {
		query = query.Where("status IN ?", scope.Statuses)
	}
	var total models.Money
	if err := query.Select("COALESCE(SUM(total_commission), 0)").Row().Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total.Decimal, nil
}

// GetDailySales 按日汇总销售额
func (r *GormDashboardRepository) GetDailySales(scope SalesScope) ([]DashboardDailySalesRow, error) {
	rows := make([]DashboardDailySalesRow, 0)
	if err := activeSalesBase(r.db, scope).
		Select("daily_sales.sale_date as day, COALESCE(SUM(daily_sales.total_amount), 0) as total").
		Group("daily_sales.sale_date").
		Order("daily_sales.sale_date ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetTopSellers 获取销售额排行榜
func (r *GormDashboardRepository) GetTopSellers(scope SalesScope, limit int) ([]DashboardSellerRankingRow, error) {
	if limit <= 0 {
		limit = 5
	}
	rows := make([]DashboardSellerRankingRow, 0)
	if err := activeSalesBase(r.db, scope).
		Select(`
			daily_sales.seller_id as seller_id,
			accounts.username as username,
			accounts.first_name as first_name,
			accounts.last_name as last_name,
			COALESCE(SUM(daily_sales.total_amount), 0) as total_sales,
			COUNT(DISTINCT daily_sales.sale_date) as sales_days
		`).
		Joins("JOIN accounts ON accounts.id = daily_sales.seller_id").
		Group("daily_sales.seller_id, accounts.username, accounts.first_name, accounts.last_name").
		Order("total_sales DESC, daily_sales.seller_id ASC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
