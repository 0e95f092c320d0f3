package app

import (
	"os"
	"strings"
	"time"

	"github.com/vendapay/internal/config"
	"github.com/vendapay/internal/logger"

	"go.uber.org/zap"
)

// 启动模式：all 同时运行 API 与后台任务；api 只运行 HTTP；worker 只运行队列消费与定时生成
const (
	ModeAll    = "all"
	ModeAPI    = "api"
	ModeWorker = "worker"
)

// Options 应用启动选项
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
}

// IsValidMode 判断启动模式是否合法
func IsValidMode(mode string) bool {
	switch strings.TrimSpace(mode) {
	case ModeAll, ModeAPI, ModeWorker:
		return true
	default:
		return false
	}
}

// runsHTTP 该模式是否提供 REST API
func runsHTTP(mode string) bool {
	return mode == ModeAll || mode == ModeAPI
}

// runsCommissionJobs 该模式是否执行月报批量生成（队列消费与定时生成）
func runsCommissionJobs(mode string) bool {
	return mode == ModeAll || mode == ModeWorker
}

// normalizeOptions 补齐默认参数
func normalizeOptions(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	opts.Mode = strings.TrimSpace(opts.Mode)
	if opts.Mode == "" {
		opts.Mode = ModeAll
	}
	return opts
}
