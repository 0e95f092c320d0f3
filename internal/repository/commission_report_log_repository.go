package repository

import (
	"github.com/vendapay/internal/models"

	"gorm.io/gorm"
)

// CommissionReportLogRepository 月报审计日志数据访问接口
type CommissionReportLogRepository interface {
	Create(log *models.CommissionReportLog) error
	List(filter CommissionReportLogListFilter) ([]models.CommissionReportLog, int64, error)
	WithTx(tx *gorm.DB) CommissionReportLogRepository
}

// GormCommissionReportLogRepository GORM 实现
type GormCommissionReportLogRepository struct {
	db *gorm.DB
}

// NewCommissionReportLogRepository 创建月报审计日志仓库
func NewCommissionReportLogRepository(db *gorm.DB) *GormCommissionReportLogRepository {
	return &GormCommissionReportLogRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCommissionReportLogRepository) WithTx(tx *gorm.DB) CommissionReportLogRepository {
	if tx == nil {
		return r
	}
	return &GormCommissionReportLogRepository{db: tx}
}

// Create 写入审计日志
func (r *GormCommissionReportLogRepository) Create(log *models.CommissionReportLog) error {
	if log == nil {
		return nil
	}
	return r.db.Create(log).Error
}

// List 查询审计日志
func (r *GormCommissionReportLogRepository) List(filter CommissionReportLogListFilter) ([]models.CommissionReportLog, int64, error) {
	query := r.db.Model(&models.CommissionReportLog{})
	if filter.ReportID != 0 {
		query = query.Where("report_id = ?", filter.ReportID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	logs := make([]models.CommissionReportLog, 0)
	if err := applyPagination(query, filter.Page, filter.PageSize).Order("id DESC").Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
