package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/vendapay/internal/logger"
	"github.com/vendapay/internal/provider"
	"github.com/vendapay/internal/queue"
	"github.com/vendapay/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCommissionGenerateAll, c.handleCommissionGenerateAll)
	mux.HandleFunc(queue.TaskCommissionReportRecalculate, c.handleCommissionReportRecalculate)
}

func (c *Consumer) handleCommissionGenerateAll(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil || c.CommissionReportService == nil {
		logger.Debugw("worker_generate_all_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CommissionGenerateAllPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_generate_all_unmarshal_failed", "error", err)
		return err
	}

	result, err := c.CommissionReportService.GenerateAll(ctx, payload.Year, payload.Month)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPeriod) {
			logger.Warnw("worker_generate_all_skip_invalid_period",
				"year", payload.Year,
				"month", payload.Month,
				"request_id", payload.RequestID,
			)
			return nil
		}
		logger.Warnw("worker_generate_all_failed",
			"year", payload.Year,
			"month", payload.Month,
			"requested_by", payload.RequestedBy,
			"request_id", payload.RequestID,
			"error", err,
		)
		return err
	}
	logger.Infow("worker_generate_all_done",
		"year", result.Year,
		"month", result.Month,
		"reports", len(result.Reports),
		"failures", len(result.Failures),
		"requested_by", payload.RequestedBy,
		"request_id", payload.RequestID,
	)
	return nil
}

func (c *Consumer) handleCommissionReportRecalculate(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil || c.CommissionReportService == nil {
		logger.Debugw("worker_report_recalculate_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CommissionReportRecalculatePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_report_recalculate_unmarshal_failed", "error", err)
		return err
	}
	if payload.SellerID == 0 {
		logger.Debugw("worker_report_recalculate_skip_invalid_payload", "seller_id", payload.SellerID)
		return nil
	}
	if err := c.CommissionReportService.RecalculateSellerPeriod(payload.SellerID, payload.Year, payload.Month); err != nil {
		logger.Warnw("worker_report_recalculate_failed",
			"seller_id", payload.SellerID,
			"year", payload.Year,
			"month", payload.Month,
			"error", err,
		)
		return err
	}
	return nil
}
