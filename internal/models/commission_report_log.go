package models

import "time"

// CommissionReportLog 月报状态变更审计日志
type CommissionReportLog struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	ReportID         uint      `gorm:"index;not null" json:"report_id"`
	OperatorID       uint      `gorm:"index;not null;default:0" json:"operator_id"`
	OperatorUsername string    `gorm:"type:varchar(150);not null;default:''" json:"operator_username"`
	Action           string    `gorm:"type:varchar(50);index;not null" json:"action"`
	FromStatus       string    `gorm:"type:varchar(20);not null;default:''" json:"from_status"`
	ToStatus         string    `gorm:"type:varchar(20);not null;default:''" json:"to_status"`
	RequestID        string    `gorm:"type:varchar(64);index;not null;default:''" json:"request_id"`
	DetailJSON       JSON      `gorm:"type:json" json:"detail"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (CommissionReportLog) TableName() string {
	return "commission_report_logs"
}
