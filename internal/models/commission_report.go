package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/vendapay/internal/constants"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var monthNames = [...]string{
	"", "Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// MonthlyCommissionReport 卖家月度佣金报表
type MonthlyCommissionReport struct {
	ID                    uint       `gorm:"primarykey" json:"id"`                                                                                 // 主键
	UUID                  string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`                                                    // 对外标识
	SellerID              uint       `gorm:"not null;uniqueIndex:uk_commission_reports_seller_period,priority:1" json:"seller_id"`                 // 卖家 ID
	Year                  int        `gorm:"not null;uniqueIndex:uk_commission_reports_seller_period,priority:2;index:idx_commission_reports_period,priority:1" json:"year"`   // 年
	Month                 int        `gorm:"not null;uniqueIndex:uk_commission_reports_seller_period,priority:3;index:idx_commission_reports_period,priority:2" json:"month"` // 月（1-12）
	TotalSalesAmount      Money      `gorm:"type:decimal(12,2);not null" json:"total_sales_amount"`                                                // 当月销售总额
	SalesDaysCount        int        `gorm:"not null;default:0" json:"sales_days_count"`                                                           // 有销售的天数
	TotalCommission       Money      `gorm:"type:decimal(10,2);not null" json:"total_commission"`                                                  // 当月佣金总额
	AverageCommissionRate Money      `gorm:"type:decimal(5,2);not null" json:"average_commission_rate"`                                            // 加权平均佣金比例
	Status                string     `gorm:"type:varchar(20);index;not null;default:'pending'" json:"status"`                                      // 状态
	ApprovedByID          *uint      `gorm:"index" json:"approved_by_id"`                                                                          // 审批人
	ApprovedAt            *time.Time `json:"approved_at"`                                                                                          // 审批时间
	PaidAt                *time.Time `json:"paid_at"`                                                                                              // 支付时间
	PaymentNotes          string     `gorm:"type:text" json:"payment_notes"`                                                                       // 支付备注
	CreatedAt             time.Time  `gorm:"index" json:"created_at"`                                                                              // 创建时间
	UpdatedAt             time.Time  `json:"updated_at"`                                                                                           // 更新时间

	Seller     *Account `gorm:"foreignKey:SellerID;constraint:OnDelete:RESTRICT" json:"seller,omitempty"`
	ApprovedBy *Account `gorm:"foreignKey:ApprovedByID;constraint:OnDelete:SET NULL" json:"approved_by,omitempty"`

	PeriodDisplay string `gorm:"-" json:"period_display"` // 例如 "Janeiro/2025"（只读）
}

// TableName 指定表名
func (MonthlyCommissionReport) TableName() string {
	return "monthly_commission_reports"
}

// BeforeCreate 生成 UUID 并设置默认状态
func (r *MonthlyCommissionReport) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(r.UUID) == "" {
		r.UUID = uuid.NewString()
	}
	if strings.TrimSpace(r.Status) == "" {
		r.Status = constants.ReportStatusPending
	}
	return nil
}

// AfterFind 填充只读字段
func (r *MonthlyCommissionReport) AfterFind(tx *gorm.DB) error {
	r.PeriodDisplay = FormatPeriod(r.Year, r.Month)
	return nil
}

// FormatPeriod 返回 "月名/年"
func FormatPeriod(year, month int) string {
	if month < 1 || month > 12 {
		return fmt.Sprintf("%d/%d", month, year)
	}
	return fmt.Sprintf("%s/%d", monthNames[month], year)
}
