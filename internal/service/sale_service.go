package service

import (
	"context"
	"strings"

	"github.com/vendapay/internal/cache"
	"github.com/vendapay/internal/logger"
	"github.com/vendapay/internal/models"
	"github.com/vendapay/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// dashboardCachePrefix 仪表盘缓存键前缀，销售或月报变动后整体失效
const dashboardCachePrefix = "dashboard:"

// ReportRefresher 销售变动后刷新对应月报
type ReportRefresher interface {
	ScheduleRecalculate(sellerID uint, period Period)
}

// SaleService 每日销售服务
type SaleService struct {
	saleRepo    repository.DailySaleRepository
	accountRepo repository.AccountRepository
	refresher   ReportRefresher
}

// NewSaleService 创建销售服务
func NewSaleService(saleRepo repository.DailySaleRepository, accountRepo repository.AccountRepository, refresher ReportRefresher) *SaleService {
	return &SaleService{
		saleRepo:    saleRepo,
		accountRepo: accountRepo,
		refresher:   refresher,
	}
}

// RecordSaleInput 录入销售输入
type RecordSaleInput struct {
	SellerID       uint
	SaleDate       models.Date
	TotalAmount    decimal.Decimal
	CommissionRate *decimal.Decimal
	Notes          string
}

// UpdateSaleInput 更新销售输入（nil 表示不修改；卖家与日期不可变）
type UpdateSaleInput struct {
	TotalAmount    *decimal.Decimal
	CommissionRate *decimal.Decimal
	Notes          *string
	IsActive       *bool
}

// SaleListInput 销售列表查询
type SaleListInput struct {
	Page      int
	PageSize  int
	SellerID  uint
	StartDate *models.Date
	EndDate   *models.Date
	Year      int
	Month     int
	IsActive  *bool
	Search    string
}

// RecordSale 录入一条每日销售，佣金比例在录入时快照
func (s *SaleService) RecordSale(actor Actor, input RecordSaleInput) (*models.DailySale, error) {
	sellerID := input.SellerID
	if actor.IsSeller() {
		if sellerID == 0 {
			sellerID = actor.ID
		}
		if sellerID != actor.ID {
			return nil, ErrForbidden
		}
		if input.CommissionRate != nil {
			return nil, ErrRateEditForbidden
		}
	} else if !actor.IsPrivileged() {
		return nil, ErrForbidden
	}
	if input.SaleDate.IsZero() {
		return nil, ErrInvalidDate
	}
	if input.TotalAmount.IsNegative() {
		return nil, ErrInvalidAmount
	}
	if input.CommissionRate != nil {
		if err := validateRate(*input.CommissionRate); err != nil {
			return nil, err
		}
	}

	var sale *models.DailySale
	err := s.saleRepo.Transaction(func(tx *gorm.DB) error {
		seller, err := s.accountRepo.WithTx(tx).GetByIDForUpdate(sellerID)
		if err != nil {
			return err
		}
		if seller == nil {
			return ErrSellerNotFound
		}

		saleRepo := s.saleRepo.WithTx(tx)
		existing, err := saleRepo.GetBySellerAndDate(sellerID, input.SaleDate)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrDuplicateEntry
		}

		rate := seller.CommissionRate
		if input.CommissionRate != nil {
			rate = models.NewMoneyFromDecimal(*input.CommissionRate)
		}
		registeredBy := actor.ID
		sale = &models.DailySale{
			SellerID:              sellerID,
			SaleDate:              input.SaleDate,
			TotalAmount:           models.NewMoneyFromDecimal(input.TotalAmount),
			CommissionRateApplied: rate,
			Notes:                 strings.TrimSpace(input.Notes),
			RegisteredByID:        &registeredBy,
			IsActive:              true,
		}
		if registeredBy == 0 {
			sale.RegisteredByID = nil
		}
		if err := saleRepo.Create(sale); err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateEntry
			}
			return err
		}
		sale.Seller = seller
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("daily_sale_recorded",
		"sale_id", sale.ID,
		"seller_id", sale.SellerID,
		"sale_date", sale.SaleDate.String(),
		"registered_by", actor.ID,
		"request_id", actor.RequestID,
	)
	s.afterWrite(sale)
	return sale, nil
}

// UpdateSale 更新销售记录，佣金按存储的快照比例（或管理员新设比例）重算
func (s *SaleService) UpdateSale(actor Actor, id uint, input UpdateSaleInput) (*models.DailySale, error) {
	if actor.IsSeller() && input.CommissionRate != nil {
		return nil, ErrRateEditForbidden
	}
	if input.TotalAmount != nil && input.TotalAmount.IsNegative() {
		return nil, ErrInvalidAmount
	}
	if input.CommissionRate != nil {
		if err := validateRate(*input.CommissionRate); err != nil {
			return nil, err
		}
	}

	sale, err := s.loadAccessible(actor, id)
	if err != nil {
		return nil, err
	}

	if input.TotalAmount != nil {
		sale.TotalAmount = models.NewMoneyFromDecimal(*input.TotalAmount)
	}
	if input.CommissionRate != nil {
		sale.CommissionRateApplied = models.NewMoneyFromDecimal(*input.CommissionRate)
	}
	if input.Notes != nil {
		sale.Notes = strings.TrimSpace(*input.Notes)
	}
	if input.IsActive != nil {
		sale.IsActive = *input.IsActive
	}
	if err := s.saleRepo.Update(sale); err != nil {
		return nil, err
	}

	s.afterWrite(sale)
	return sale, nil
}

// DeactivateSale 停用销售记录（不做物理删除）
func (s *SaleService) DeactivateSale(actor Actor, id uint) error {
	inactive := false
	_, err := s.UpdateSale(actor, id, UpdateSaleInput{IsActive: &inactive})
	return err
}

// GetSale 获取销售详情
func (s *SaleService) GetSale(actor Actor, id uint) (*models.DailySale, error) {
	return s.loadAccessible(actor, id)
}

// ListSales 销售列表，卖家只能看到自己的记录
func (s *SaleService) ListSales(actor Actor, input SaleListInput) ([]models.DailySale, int64, error) {
	filter := repository.DailySaleListFilter{
		Page:       input.Page,
		PageSize:   input.PageSize,
		SellerID:   actor.scopeSellerID(input.SellerID),
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		IsActive:   input.IsActive,
		Search:     strings.TrimSpace(input.Search),
		WithSeller: true,
	}
	if input.Year > 0 {
		start, end := yearMonthRange(input.Year, input.Month)
		if filter.StartDate == nil || filter.StartDate.Before(start.Time) {
			filter.StartDate = &start
		}
		if filter.EndDate == nil || filter.EndDate.After(end.Time) {
			filter.EndDate = &end
		}
	}
	return s.saleRepo.List(filter)
}

func (s *SaleService) loadAccessible(actor Actor, id uint) (*models.DailySale, error) {
	sale, err := s.saleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, ErrNotFound
	}
	if !actor.canAccessSeller(sale.SellerID) {
		// 卖家访问他人记录按不存在处理
		return nil, ErrNotFound
	}
	return sale, nil
}

func (s *SaleService) afterWrite(sale *models.DailySale) {
	if sale == nil {
		return
	}
	if s.refresher != nil {
		s.refresher.ScheduleRecalculate(sale.SellerID, PeriodOf(sale.SaleDate))
	}
	invalidateDashboardCache()
}

func invalidateDashboardCache() {
	if err := cache.DelPrefix(context.Background(), dashboardCachePrefix); err != nil {
		logger.Warnw("dashboard_cache_invalidate_failed", "error", err)
	}
}

// yearMonthRange 年（可选月）的首尾日期
func yearMonthRange(year, month int) (models.Date, models.Date) {
	if month >= 1 && month <= 12 {
		return Period{Year: year, Month: month}.Bounds()
	}
	first, _ := Period{Year: year, Month: 1}.Bounds()
	_, last := Period{Year: year, Month: 12}.Bounds()
	return first, last
}
