package provider

import (
	"github.com/vendapay/internal/authz"
	"github.com/vendapay/internal/cache"
	"github.com/vendapay/internal/config"
	"github.com/vendapay/internal/logger"
	"github.com/vendapay/internal/models"
	"github.com/vendapay/internal/queue"
	"github.com/vendapay/internal/repository"
	"github.com/vendapay/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AccountRepo          repository.AccountRepository
	DailySaleRepo        repository.DailySaleRepository
	CommissionReportRepo repository.CommissionReportRepository
	ReportLogRepo        repository.CommissionReportLogRepository
	DashboardRepo        repository.DashboardRepository

	// Services
	AuthzService            *authz.Service
	AuthService             *service.AuthService
	AccountService          *service.AccountService
	SaleService             *service.SaleService
	CommissionReportService *service.CommissionReportService
	DashboardService        *service.DashboardService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端（未启用时返回禁用状态的客户端）
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient, _ = queue.NewClient(nil)
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories(models.DB)

	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService

	c.initServices()
	return c
}

// NewContainerWith 使用给定数据库与权限服务构建容器（测试与工具使用）
func NewContainerWith(cfg *config.Config, db *gorm.DB, authzService *authz.Service, queueClient *queue.Client) *Container {
	c := &Container{
		Config:       cfg,
		QueueClient:  queueClient,
		AuthzService: authzService,
	}
	c.initRepositories(db)
	c.initServices()
	return c
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.AccountRepo = repository.NewAccountRepository(db)
	c.DailySaleRepo = repository.NewDailySaleRepository(db)
	c.CommissionReportRepo = repository.NewCommissionReportRepository(db)
	c.ReportLogRepo = repository.NewCommissionReportLogRepository(db)
	c.DashboardRepo = repository.NewDashboardRepository(db)
}

func (c *Container) initServices() {
	var roleBinder service.AccountRoleBinder
	if c.AuthzService != nil {
		roleBinder = c.AuthzService
	}

	c.AuthService = service.NewAuthService(c.Config, c.AccountRepo)
	c.AccountService = service.NewAccountService(c.Config, c.AccountRepo, c.AuthService, roleBinder)
	c.CommissionReportService = service.NewCommissionReportService(
		c.Config,
		c.CommissionReportRepo,
		c.DailySaleRepo,
		c.AccountRepo,
		c.ReportLogRepo,
		c.QueueClient,
	)
	c.SaleService = service.NewSaleService(c.DailySaleRepo, c.AccountRepo, c.CommissionReportService)
	c.DashboardService = service.NewDashboardService(c.Config, c.DashboardRepo)
}

// SyncAccountRoles 启动时将全部账号的角色同步到授权策略
func (c *Container) SyncAccountRoles() error {
	if c.AuthzService == nil || c.AccountRepo == nil {
		return nil
	}
	const pageSize = 100
	for page := 1; ; page++ {
		accounts, total, err := c.AccountRepo.List(repository.AccountListFilter{Page: page, PageSize: pageSize})
		if err != nil {
			return err
		}
		for i := range accounts {
			if err := c.AuthzService.SyncAccountRole(accounts[i].ID, accounts[i].Role); err != nil {
				return err
			}
		}
		if len(accounts) == 0 || int64(page*pageSize) >= total {
			return nil
		}
	}
}
