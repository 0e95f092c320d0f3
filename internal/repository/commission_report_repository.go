package repository

import (
	"errors"
	"strings"

	"github.com/vendapay/internal/constants"
	"github.com/vendapay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultReportOrdering = "year DESC, month DESC, id DESC"

// CommissionReportRepository 月度佣金报表数据访问接口
type CommissionReportRepository interface {
	GetByID(id uint) (*models.MonthlyCommissionReport, error)
	GetBySellerPeriod(sellerID uint, year, month int) (*models.MonthlyCommissionReport, error)
	List(filter CommissionReportListFilter) ([]models.MonthlyCommissionReport, int64, error)
	Create(report *models.MonthlyCommissionReport) error
	Update(report *models.MonthlyCommissionReport) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) CommissionReportRepository
}

// GormCommissionReportRepository GORM 实现
type GormCommissionReportRepository struct {
	db *gorm.DB
}

// NewCommissionReportRepository 创建月报仓库
func NewCommissionReportRepository(db *gorm.DB) *GormCommissionReportRepository {
	return &GormCommissionReportRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCommissionReportRepository) WithTx(tx *gorm.DB) CommissionReportRepository {
	if tx == nil {
		return r
	}
	return &GormCommissionReportRepository{db: tx}
}

// Transaction 执行事务
func (r *GormCommissionReportRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByID 根据 ID 获取月报（含卖家与审批人）
func (r *GormCommissionReportRepository) GetByID(id uint) (*models.MonthlyCommissionReport, error) {
	if id == 0 {
		return nil, nil
	}
	var report models.MonthlyCommissionReport
	if err := r.db.Preload("Seller").Preload("ApprovedBy").First(&report, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

// GetBySellerPeriod 根据卖家与年月获取月报
func (r *GormCommissionReportRepository) GetBySellerPeriod(sellerID uint, year, month int) (*models.MonthlyCommissionReport, error) {
	var report models.MonthlyCommissionReport
	err := r.db.Where("seller_id = ? AND year = ? AND month = ?", sellerID, year, month).First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

// List 月报列表
func (r *GormCommissionReportRepository) List(filter CommissionReportListFilter) ([]models.MonthlyCommissionReport, int64, error) {
	query := r.db.Model(&models.MonthlyCommissionReport{})
	if filter.SellerID != 0 {
		query = query.Where("monthly_commission_reports.seller_id = ?", filter.SellerID)
	}
	if filter.Year != 0 {
		query = query.Where("monthly_commission_reports.year = ?", filter.Year)
	}
	if filter.Month != 0 {
		query = query.Where("monthly_commission_reports.month = ?", filter.Month)
	}
	if status := strings.TrimSpace(filter.Status); status != "" && status != constants.ReportStatusFilterAll {
		query = query.Where("monthly_commission_reports.status = ?", status)
	}
	if filter.Search != "" {
		query = query.Joins("JOIN accounts ON accounts.id = monthly_commission_reports.seller_id")
		query = applySearch(query, filter.Search, []string{"accounts.username", "accounts.first_name", "accounts.last_name"})
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.WithSeller {
		query = query.Preload("Seller")
	}
	ordering := resolveOrdering(filter.OrderBy, constants.ReportOrderingFields, defaultReportOrdering)
	reports := make([]models.MonthlyCommissionReport, 0)
	if err := applyPagination(query, filter.Page, filter.PageSize).
		Order(qualifyReportOrdering(ordering)).
		Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// qualifyReportOrdering 为排序字段加表名前缀，避免联表后列名歧义
func qualifyReportOrdering(ordering string) string {
	parts := strings.Split(ordering, ",")
	for i, part := range parts {
		parts[i] = "monthly_commission_reports." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}

// Create 创建月报
func (r *GormCommissionReportRepository) Create(report *models.MonthlyCommissionReport) error {
	return r.db.Omit(clause.Associations).Create(report).Error
}

// Update 更新月报
func (r *GormCommissionReportRepository) Update(report *models.MonthlyCommissionReport) error {
	return r.db.Omit(clause.Associations).Save(report).Error
}
