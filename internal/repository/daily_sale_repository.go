package repository

import (
	"errors"

	"github.com/vendapay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DailySaleRepository 销售记录数据访问接口
type DailySaleRepository interface {
	GetByID(id uint) (*models.DailySale, error)
	GetBySellerAndDate(sellerID uint, saleDate models.Date) (*models.DailySale, error)
	List(filter DailySaleListFilter) ([]models.DailySale, int64, error)
	ListActiveBySellerPeriod(sellerID uint, start, end models.Date) ([]models.DailySale, error)
	Create(sale *models.DailySale) error
	Update(sale *models.DailySale) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) DailySaleRepository
}

// GormDailySaleRepository GORM 实现
type GormDailySaleRepository struct {
	db *gorm.DB
}

// NewDailySaleRepository 创建销售记录仓库
func NewDailySaleRepository(db *gorm.DB) *GormDailySaleRepository {
	return &GormDailySaleRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDailySaleRepository) WithTx(tx *gorm.DB) DailySaleRepository {
	if tx == nil {
		return r
	}
	return &GormDailySaleRepository{db: tx}
}

// Transaction 执行事务
func (r *GormDailySaleRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByID 根据 ID 获取销售记录（含卖家）
func (r *GormDailySaleRepository) GetByID(id uint) (*models.DailySale, error) {
	if id == 0 {
		return nil, nil
	}
	var sale models.DailySale
	if err := r.db.Preload("Seller").First(&sale, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sale, nil
}

// GetBySellerAndDate 根据卖家与日期获取销售记录
func (r *GormDailySaleRepository) GetBySellerAndDate(sellerID uint, saleDate models.Date) (*models.DailySale, error) {
	var sale models.DailySale
	if err := r.db.Where("seller_id = ? AND sale_date = ?", sellerID, saleDate).First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sale, nil
}

// List 销售记录列表（按日期倒序）
func (r *GormDailySaleRepository) List(filter DailySaleListFilter) ([]models.DailySale, int64, error) {
	query := r.db.Model(&models.DailySale{})
	if filter.SellerID != 0 {
		query = query.Where("daily_sales.seller_id = ?", filter.SellerID)
	}
	if filter.StartDate != nil {
		query = query.Where("daily_sales.sale_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("daily_sales.sale_date <= ?", *filter.EndDate)
	}
	if filter.IsActive != nil {
		query = query.Where("daily_sales.is_active = ?", *filter.IsActive)
	}
	if filter.Search != "" {
		query = query.Joins("JOIN accounts ON accounts.id = daily_sales.seller_id")
		query = applySearch(query, filter.Search, []string{"accounts.username", "accounts.first_name", "accounts.last_name", "daily_sales.notes"})
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.WithSeller {
		query = query.Preload("Seller")
	}
	sales := make([]models.DailySale, 0)
	if err := applyPagination(query, filter.Page, filter.PageSize).
		Order("daily_sales.sale_date DESC, daily_sales.id DESC").
		Find(&sales).Error; err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}

// ListActiveBySellerPeriod 获取卖家在日期区间内的有效销售记录
func (r *GormDailySaleRepository) ListActiveBySellerPeriod(sellerID uint, start, end models.Date) ([]models.DailySale, error) {
	sales := make([]models.DailySale, 0)
	err := r.db.
		Where("seller_id = ? AND is_active = ? AND sale_date >= ? AND sale_date <= ?", sellerID, true, start, end).
		Order("sale_date ASC").
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}

// Create 创建销售记录
func (r *GormDailySaleRepository) Create(sale *models.DailySale) error {
	return r.db.Omit(clause.Associations).Create(sale).Error
}

// Update 更新销售记录
func (r *GormDailySaleRepository) Update(sale *models.DailySale) error {
	return r.db.Omit(clause.Associations).Save(sale).Error
}
