package repository

import (
	"errors"
	"strings"

	"github.com/vendapay/internal/constants"
	"github.com/vendapay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountRepository 账号数据访问接口
type AccountRepository interface {
	GetByID(id uint) (*models.Account, error)
	GetByIDForUpdate(id uint) (*models.Account, error)
	GetByUsername(username string) (*models.Account, error)
	GetByDocument(document string) (*models.Account, error)
	List(filter AccountListFilter) ([]models.Account, int64, error)
	ListCommissionEligible() ([]models.Account, error)
	CountDependents(id uint) (int64, error)
	Create(account *models.Account) error
	Update(account *models.Account) error
	Delete(id uint) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) AccountRepository
}

// GormAccountRepository GORM 实现
type GormAccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository 创建账号仓库
func NewAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAccountRepository) WithTx(tx *gorm.DB) AccountRepository {
	if tx == nil {
		return r
	}
	return &GormAccountRepository{db: tx}
}

// Transaction 执行事务
func (r *GormAccountRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

func (r *GormAccountRepository) first(query *gorm.DB) (*models.Account, error) {
	var account models.Account
	if err := query.First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetByID 根据 ID 获取账号
func (r *GormAccountRepository) GetByID(id uint) (*models.Account, error) {
	if id == 0 {
		return nil, nil
	}
	return r.first(r.db.Where("id = ?", id))
}

// GetByIDForUpdate 根据 ID 获取账号并加行锁（需在事务中调用）
func (r *GormAccountRepository) GetByIDForUpdate(id uint) (*models.Account, error) {
	if id == 0 {
		return nil, nil
	}
	return r.first(r.db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id))
}

// GetByUsername 根据账号名获取账号
func (r *GormAccountRepository) GetByUsername(username string) (*models.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil
	}
	return r.first(r.db.Where("username = ?", username))
}

// GetByDocument 根据证件号获取账号
func (r *GormAccountRepository) GetByDocument(document string) (*models.Account, error) {
	document = strings.TrimSpace(document)
	if document == "" {
		return nil, nil
	}
	return r.first(r.db.Where("document = ?", document))
}

// List 账号列表
func (r *GormAccountRepository) List(filter AccountListFilter) ([]models.Account, int64, error) {
	query := r.db.Model(&models.Account{})
	if role := strings.TrimSpace(filter.Role); role != "" {
		query = query.Where("role = ?", role)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.CommissionActive != nil {
		query = query.Where("commission_active = ?", *filter.CommissionActive)
	}
	query = applySearch(query, filter.Search, []string{"username", "first_name", "last_name", "email", "document"})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	accounts := make([]models.Account, 0)
	if err := applyPagination(query, filter.Page, filter.PageSize).
		Order("first_name ASC, username ASC").
		Find(&accounts).Error; err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

// ListCommissionEligible 获取所有有资格获得佣金的卖家
func (r *GormAccountRepository) ListCommissionEligible() ([]models.Account, error) {
	accounts := make([]models.Account, 0)
	err := r.db.
		Where("role = ? AND commission_active = ? AND is_active = ?", constants.RoleSeller, true, true).
		Order("id ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// CountDependents 统计账号名下的销售记录与月报数量
func (r *GormAccountRepository) CountDependents(id uint) (int64, error) {
	var sales int64
	if err := r.db.Model(&models.DailySale{}).Where("seller_id = ?", id).Count(&sales).Error; err != nil {
		return 0, err
	}
	var reports int64
	if err := r.db.Model(&models.MonthlyCommissionReport{}).Where("seller_id = ?", id).Count(&reports).Error; err != nil {
		return 0, err
	}
	return sales + reports, nil
}

// Create 创建账号
func (r *GormAccountRepository) Create(account *models.Account) error {
	return r.db.Create(account).Error
}

// Update 更新账号
func (r *GormAccountRepository) Update(account *models.Account) error {
	return r.db.Save(account).Error
}

// Delete 删除账号，并清空审批人与录入人引用
func (r *GormAccountRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	if err := r.db.Model(&models.MonthlyCommissionReport{}).
		Where("approved_by_id = ?", id).
		Update("approved_by_id", nil).Error; err != nil {
		return err
	}
	if err := r.db.Model(&models.DailySale{}).
		Where("registered_by_id = ?", id).
		Update("registered_by_id", nil).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.Account{}, id).Error
}
