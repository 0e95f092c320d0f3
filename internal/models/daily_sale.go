package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DailySale 卖家每日销售记录（每个卖家每天一条）
type DailySale struct {
	ID                    uint      `gorm:"primarykey" json:"id"`                                                                                                   // 主键
	UUID                  string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`                                                                      // 对外标识
	SellerID              uint      `gorm:"not null;uniqueIndex:uk_daily_sales_seller_date,priority:1" json:"seller_id"`                                            // 卖家 ID
	SaleDate              Date      `gorm:"type:date;not null;uniqueIndex:uk_daily_sales_seller_date,priority:2;index:idx_daily_sales_date;index:idx_daily_sales_active_date,priority:2" json:"sale_date"` // 销售日期
	TotalAmount           Money     `gorm:"type:decimal(10,2);not null" json:"total_amount"`                                                                        // 当日销售总额
	CommissionRateApplied Money     `gorm:"type:decimal(5,2);not null" json:"commission_rate_applied"`                                                              // 记录时的佣金比例快照
	CalculatedCommission  Money     `gorm:"type:decimal(10,2);not null" json:"calculated_commission"`                                                               // 计算所得佣金
	Notes                 string    `gorm:"type:text" json:"notes"`                                                                                                 // 备注
	RegisteredByID        *uint     `gorm:"index" json:"registered_by_id"`                                                                                          // 录入人
	IsActive              bool      `gorm:"not null;index:idx_daily_sales_active_date,priority:1" json:"is_active"`                                                 // 是否有效（停用代替删除）
	CreatedAt             time.Time `gorm:"index" json:"created_at"`                                                                                                // 创建时间
	UpdatedAt             time.Time `json:"updated_at"`                                                                                                             // 更新时间

	Seller       *Account `gorm:"foreignKey:SellerID;constraint:OnDelete:RESTRICT" json:"seller,omitempty"`
	RegisteredBy *Account `gorm:"foreignKey:RegisteredByID;constraint:OnDelete:SET NULL" json:"registered_by,omitempty"`
}

// TableName 指定表名
func (DailySale) TableName() string {
	return "daily_sales"
}

// BeforeCreate 生成 UUID
func (s *DailySale) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(s.UUID) == "" {
		s.UUID = uuid.NewString()
	}
	return nil
}

// BeforeSave 每次保存都按快照比例重算佣金
func (s *DailySale) BeforeSave(tx *gorm.DB) error {
	s.RecalculateCommission()
	return nil
}

// RecalculateCommission 根据金额与快照比例重算佣金
func (s *DailySale) RecalculateCommission() {
	s.CalculatedCommission = NewMoneyFromDecimal(CalculateCommission(s.TotalAmount.Decimal, s.CommissionRateApplied.Decimal))
}
