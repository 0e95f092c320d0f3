package models

import (
	"strings"
	"time"

	"github.com/vendapay/internal/constants"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account 账号表（管理员、经理、卖家）
type Account struct {
	ID                  uint       `gorm:"primarykey" json:"id"`                                         // 主键
	UUID                string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`            // 对外标识
	Username            string     `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`       // 登录账号
	Email               string     `gorm:"type:varchar(254);not null;default:''" json:"email"`           // 邮箱
	PasswordHash        string     `gorm:"not null" json:"-"`                                            // 密码哈希（不返回给前端）
	FirstName           string     `gorm:"type:varchar(150);not null;default:''" json:"first_name"`      // 名
	LastName            string     `gorm:"type:varchar(150);not null;default:''" json:"last_name"`       // 姓
	Document            *string    `gorm:"type:varchar(14);uniqueIndex" json:"document"`                 // 证件号（CPF/CNPJ，可空）
	Phone               string     `gorm:"type:varchar(20);not null;default:''" json:"phone"`            // 电话
	Role                string     `gorm:"type:varchar(20);index;not null;default:'seller'" json:"role"` // 角色 admin/manager/seller
	CommissionRate      Money      `gorm:"type:decimal(5,2);not null" json:"commission_rate"`            // 佣金比例（百分比）
	CommissionActive    bool       `gorm:"not null;index" json:"commission_active"`                      // 是否参与佣金
	CommissionStartDate *Date      `gorm:"type:date" json:"commission_start_date"`                       // 佣金起算日期
	IsActive            bool       `gorm:"not null;index" json:"is_active"`                              // 账号是否启用
	TokenVersion        uint64     `gorm:"not null;default:0" json:"-"`                                  // Token 版本（用于全量失效）
	TokenInvalidBefore  *time.Time `gorm:"index" json:"-"`                                               // 该时间点前签发的 Token 失效
	LastLoginAt         *time.Time `json:"last_login_at"`                                                // 最后登录时间
	CreatedAt           time.Time  `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt           time.Time  `json:"updated_at"`                                                   // 更新时间

	FullName string `gorm:"-" json:"full_name"` // 显示名称（只读）
}

// TableName 指定表名
func (Account) TableName() string {
	return "accounts"
}

// BeforeCreate 生成 UUID
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(a.UUID) == "" {
		a.UUID = uuid.NewString()
	}
	if strings.TrimSpace(a.Role) == "" {
		a.Role = constants.RoleSeller
	}
	return nil
}

// AfterFind 填充只读字段
func (a *Account) AfterFind(tx *gorm.DB) error {
	a.FullName = a.DisplayName()
	return nil
}

// DisplayName 返回 "名 姓"，为空时回退到账号
func (a *Account) DisplayName() string {
	if a == nil {
		return ""
	}
	name := strings.TrimSpace(strings.TrimSpace(a.FirstName) + " " + strings.TrimSpace(a.LastName))
	if name == "" {
		return a.Username
	}
	return name
}

// IsSeller 是否卖家角色
func (a *Account) IsSeller() bool {
	return a != nil && a.Role == constants.RoleSeller
}

// IsCommissionEligible 是否有资格获得佣金：卖家、佣金开启且账号启用
func (a *Account) IsCommissionEligible() bool {
	return a.IsSeller() && a.CommissionActive && a.IsActive
}
