package queue

import (
	"encoding/json"
	"fmt"

	"github.com/vendapay/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskCommissionGenerateAll 批量生成月度佣金报表任务
	TaskCommissionGenerateAll = constants.TaskCommissionGenerateAll
	// TaskCommissionReportRecalculate 单个月报重算任务
	TaskCommissionReportRecalculate = constants.TaskCommissionReportRecompute
)

// CommissionGenerateAllPayload 批量生成月报任务载荷
type CommissionGenerateAllPayload struct {
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	RequestedBy uint   `json:"requested_by,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

// CommissionReportRecalculatePayload 月报重算任务载荷
type CommissionReportRecalculatePayload struct {
	SellerID uint `json:"seller_id"`
	Year     int  `json:"year"`
	Month    int  `json:"month"`
}

// UniqueKey 去重键，同一卖家同一月份只保留一个待执行任务
func (p CommissionReportRecalculatePayload) UniqueKey() string {
	return fmt.Sprintf("report_recalc:%d:%04d-%02d", p.SellerID, p.Year, p.Month)
}

// NewCommissionGenerateAllTask 创建批量生成月报任务
func NewCommissionGenerateAllTask(payload CommissionGenerateAllPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCommissionGenerateAll, body), nil
}

// NewCommissionReportRecalculateTask 创建月报重算任务
func NewCommissionReportRecalculateTask(payload CommissionReportRecalculatePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCommissionReportRecalculate, body), nil
}
