package app

import (
	"errors"
	"fmt"

	"github.com/vendapay/internal/config"
	"github.com/vendapay/internal/logger"
	"github.com/vendapay/internal/provider"
	"github.com/vendapay/internal/router"
	"github.com/vendapay/internal/worker"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if !IsValidMode(mode) {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}

	container := provider.NewContainer(cfg)
	if err := container.SyncAccountRoles(); err != nil {
		logger.Warnw("app_sync_account_roles_failed", "error", err)
	}

	var services []Service

	// 初始化 HTTP 服务
	if runsHTTP(mode) {
		engine := router.SetupRouter(cfg, container)
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		httpService := NewHTTPService(addr, engine)
		services = append(services, httpService)
	}

	// 初始化 Worker 服务（队列未启用时批量生成走同步路径）
	if runsCommissionJobs(mode) && cfg.Queue.Enabled {
		consumer := worker.NewConsumer(container)
		workerService, err := worker.NewService(&cfg.Queue, consumer)
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	}

	// 定时生成当月月报
	if runsCommissionJobs(mode) && cfg.Commission.AutoGenerate {
		scheduler, err := worker.NewScheduler(cfg.Commission.AutoGenerateInterval(), container.CommissionReportService)
		if err != nil {
			return nil, err
		}
		services = append(services, scheduler)
	}

	// worker 模式下队列与定时生成都未启用
	if len(services) == 0 {
		return nil, errors.New("no services initialized (enable queue or commission.auto_generate)")
	}

	return NewRunner(services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
