package worker

import (
	"context"
	"errors"
	"time"

	"github.com/vendapay/internal/logger"
	"github.com/vendapay/internal/service"
)

// ReportGenerator 批量生成月报
type ReportGenerator interface {
	GenerateAll(ctx context.Context, year, month int) (*service.GenerateAllResult, error)
}

// Scheduler 定时为当前月份生成或刷新月报
type Scheduler struct {
	name      string
	interval  time.Duration
	generator ReportGenerator
	now       func() time.Time
}

// NewScheduler 创建定时生成服务
func NewScheduler(interval time.Duration, generator ReportGenerator) (*Scheduler, error) {
	if generator == nil {
		return nil, errors.New("report generator is nil")
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		name:      "commission-scheduler",
		interval:  interval,
		generator: generator,
		now:       time.Now,
	}, nil
}

// Name 服务名称
func (s *Scheduler) Name() string {
	if s == nil || s.name == "" {
		return "commission-scheduler"
	}
	return s.name
}

// Start 立即执行一次，之后按间隔执行，直到 ctx 取消
func (s *Scheduler) Start(ctx context.Context) error {
	if s == nil || s.generator == nil {
		return errors.New("scheduler not initialized")
	}
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// Stop 停止服务（由 Start 的 ctx 控制退出）
func (s *Scheduler) Stop(context.Context) error {
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	period := service.CurrentPeriod(s.now())
	result, err := s.generator.GenerateAll(ctx, period.Year, period.Month)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.Warnw("scheduler_generate_all_failed", "year", period.Year, "month", period.Month, "error", err)
		return
	}
	logger.Debugw("scheduler_generate_all_done",
		"year", result.Year,
		"month", result.Month,
		"reports", len(result.Reports),
		"failures", len(result.Failures),
	)
}
