package service

import (
	"context"
	"strings"
	"time"

	"github.com/vendapay/internal/cache"
	"github.com/vendapay/internal/config"
	"github.com/vendapay/internal/constants"
	"github.com/vendapay/internal/models"
	"github.com/vendapay/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountRoleBinder 同步账号在权限系统中的角色
type AccountRoleBinder interface {
	SetAccountRoles(accountID uint, roles []string) error
}

// AccountService 账号服务
type AccountService struct {
	cfg         *config.Config
	accountRepo repository.AccountRepository
	authService *AuthService
	roleBinder  AccountRoleBinder
}

// NewAccountService 创建账号服务
func NewAccountService(cfg *config.Config, accountRepo repository.AccountRepository, authService *AuthService, roleBinder AccountRoleBinder) *AccountService {
	return &AccountService{
		cfg:         cfg,
		accountRepo: accountRepo,
		authService: authService,
		roleBinder:  roleBinder,
	}
}

// CreateAccountInput 创建账号输入
type CreateAccountInput struct {
	Username            string
	Password            string
	Email               string
	FirstName           string
	LastName            string
	Document            string
	Phone               string
	Role                string
	CommissionRate      *decimal.Decimal
	CommissionActive    *bool
	CommissionStartDate *models.Date
	IsActive            *bool
}

// UpdateAccountInput 更新账号输入（nil 表示不修改）
type UpdateAccountInput struct {
	Email               *string
	FirstName           *string
	LastName            *string
	Document            *string
	Phone               *string
	Role                *string
	Password            *string
	CommissionRate      *decimal.Decimal
	CommissionActive    *bool
	CommissionStartDate *models.Date
	IsActive            *bool
}

// UpdateProfileInput 个人资料更新输入
type UpdateProfileInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Phone     *string
}

// ListAccounts 账号列表
func (s *AccountService) ListAccounts(actor Actor, filter repository.AccountListFilter) ([]models.Account, int64, error) {
	if !actor.IsPrivileged() {
		return nil, 0, ErrForbidden
	}
	return s.accountRepo.List(filter)
}

// GetAccount 获取账号详情
func (s *AccountService) GetAccount(actor Actor, id uint) (*models.Account, error) {
	if !actor.IsPrivileged() && actor.ID != id {
		return nil, ErrForbidden
	}
	account, err := s.accountRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrNotFound
	}
	return account, nil
}

// CreateAccount 创建账号（仅管理员）
func (s *AccountService) CreateAccount(actor Actor, input CreateAccountInput) (*models.Account, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrInvalidUsername
	}
	role := strings.TrimSpace(input.Role)
	if role == "" {
		role = constants.RoleSeller
	}
	if !IsValidRole(role) {
		return nil, ErrInvalidRole
	}
	if err := s.authService.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	rate, err := s.resolveRate(input.CommissionRate)
	if err != nil {
		return nil, err
	}

	existing, err := s.accountRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameExists
	}
	document, err := s.normalizeDocument(input.Document, 0)
	if err != nil {
		return nil, err
	}

	hash, err := s.authService.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		Username:            username,
		Email:               strings.TrimSpace(input.Email),
		PasswordHash:        hash,
		FirstName:           strings.TrimSpace(input.FirstName),
		LastName:            strings.TrimSpace(input.LastName),
		Document:            document,
		Phone:               strings.TrimSpace(input.Phone),
		Role:                role,
		CommissionRate:      rate,
		CommissionActive:    boolOr(input.CommissionActive, true),
		CommissionStartDate: input.CommissionStartDate,
		IsActive:            boolOr(input.IsActive, true),
	}
	if err := s.accountRepo.Create(account); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameExists
		}
		return nil, err
	}
	account.FullName = account.DisplayName()
	s.bindRole(account)
	return account, nil
}

// UpdateAccount 更新账号（管理员、经理）
func (s *AccountService) UpdateAccount(actor Actor, id uint, input UpdateAccountInput) (*models.Account, error) {
	if !actor.IsPrivileged() {
		return nil, ErrForbidden
	}
	account, err := s.accountRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrNotFound
	}
	// 经理不能调整角色，也不能修改管理员账号
	if !actor.IsAdmin() && (input.Role != nil || account.Role == constants.RoleAdmin) {
		return nil, ErrForbidden
	}

	revoke := false
	if input.Email != nil {
		account.Email = strings.TrimSpace(*input.Email)
	}
	if input.FirstName != nil {
		account.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		account.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Phone != nil {
		account.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Document != nil {
		document, err := s.normalizeDocument(*input.Document, account.ID)
		if err != nil {
			return nil, err
		}
		account.Document = document
	}
	roleChanged := false
	if input.Role != nil {
		role := strings.TrimSpace(*input.Role)
		if !IsValidRole(role) {
			return nil, ErrInvalidRole
		}
		roleChanged = role != account.Role
		account.Role = role
	}
	if input.CommissionRate != nil {
		rate, err := s.resolveRate(input.CommissionRate)
		if err != nil {
			return nil, err
		}
		account.CommissionRate = rate
	}
	if input.CommissionActive != nil {
		account.CommissionActive = *input.CommissionActive
	}
	if input.CommissionStartDate != nil {
		account.CommissionStartDate = input.CommissionStartDate
	}
	if input.IsActive != nil {
		if !*input.IsActive && account.IsActive {
			revoke = true
		}
		account.IsActive = *input.IsActive
	}
	if input.Password != nil && *input.Password != "" {
		if err := s.authService.ValidatePassword(*input.Password); err != nil {
			return nil, err
		}
		hash, err := s.authService.HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		account.PasswordHash = hash
		revoke = true
	}
	if revoke || roleChanged {
		revokeAccountTokens(account, time.Now())
	}

	if err := s.accountRepo.Update(account); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDocumentExists
		}
		return nil, err
	}
	account.FullName = account.DisplayName()
	_ = cache.SetAccountAuthState(context.Background(), cache.BuildAccountAuthState(account))
	if roleChanged {
		s.bindRole(account)
	}
	return account, nil
}

// DeleteAccount 删除账号（仅管理员；名下有销售或月报时拒绝）
func (s *AccountService) DeleteAccount(actor Actor, id uint) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	if actor.ID == id {
		return ErrCannotDeleteSelf
	}
	err := s.accountRepo.Transaction(func(tx *gorm.DB) error {
		accountRepo := s.accountRepo.WithTx(tx)
		account, err := accountRepo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrNotFound
		}
		count, err := accountRepo.CountDependents(id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrAccountInUse
		}
		return accountRepo.Delete(id)
	})
	if err != nil {
		return err
	}
	_ = cache.DelAccountAuthState(context.Background(), id)
	if s.roleBinder != nil {
		_ = s.roleBinder.SetAccountRoles(id, nil)
	}
	return nil
}

// GetProfile 获取当前账号资料
func (s *AccountService) GetProfile(actor Actor) (*models.Account, error) {
	account, err := s.accountRepo.GetByID(actor.ID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrNotFound
	}
	return account, nil
}

// UpdateProfile 更新当前账号资料（仅姓名、邮箱、电话）
func (s *AccountService) UpdateProfile(actor Actor, input UpdateProfileInput) (*models.Account, error) {
	account, err := s.GetProfile(actor)
	if err != nil {
		return nil, err
	}
	if input.Email != nil {
		account.Email = strings.TrimSpace(*input.Email)
	}
	if input.FirstName != nil {
		account.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		account.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Phone != nil {
		account.Phone = strings.TrimSpace(*input.Phone)
	}
	if err := s.accountRepo.Update(account); err != nil {
		return nil, err
	}
	account.FullName = account.DisplayName()
	return account, nil
}

func (s *AccountService) resolveRate(raw *decimal.Decimal) (models.Money, error) {
	if raw == nil {
		fallback := constants.CommissionRateDefault
		if s.cfg != nil {
			fallback = s.cfg.Commission.DefaultRate
		}
		rate, err := models.ParseMoney(fallback)
		if err != nil {
			return models.Money{}, ErrInvalidRate
		}
		return rate, nil
	}
	if err := validateRate(*raw); err != nil {
		return models.Money{}, err
	}
	return models.NewMoneyFromDecimal(*raw), nil
}

func (s *AccountService) normalizeDocument(raw string, selfID uint) (*string, error) {
	document := strings.TrimSpace(raw)
	if document == "" {
		return nil, nil
	}
	if len(document) > 14 {
		return nil, ErrInvalidDocument
	}
	existing, err := s.accountRepo.GetByDocument(document)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ID != selfID {
		return nil, ErrDocumentExists
	}
	return &document, nil
}

func (s *AccountService) bindRole(account *models.Account) {
	if s.roleBinder == nil || account == nil {
		return
	}
	_ = s.roleBinder.SetAccountRoles(account.ID, []string{account.Role})
}

// validateRate 校验佣金比例范围 [0, 100]
func validateRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return ErrInvalidRate
	}
	return nil
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
