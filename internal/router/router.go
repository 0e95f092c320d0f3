package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vendapay/internal/authz"
	"github.com/vendapay/internal/cache"
	"github.com/vendapay/internal/config"
	"github.com/vendapay/internal/constants"
	apihandlers "github.com/vendapay/internal/http/handlers/api"
	publichandlers "github.com/vendapay/internal/http/handlers/public"
	"github.com/vendapay/internal/http/response"
	"github.com/vendapay/internal/logger"
	"github.com/vendapay/internal/provider"

	"github.com/gin-gonic/gin"
)

const apiV1Prefix = "/api/v1"

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	apiHandler := apihandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/health", publicHandler.Health)

	apiV1 := r.Group(apiV1Prefix)
	{
		// 登录接口（无需鉴权）
		apiV1.POST("/auth/login", RateLimitMiddleware(cache.Client(), loginRule, KeyByIPAndJSONField("username")), publicHandler.Login)

		// 需要鉴权的接口，行级数据范围由 service 按角色收敛
		authorized := apiV1.Group("")
		authorized.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AccountRepo), RBACMiddleware(c.AuthzService))
		{
			authorized.POST("/auth/logout", apiHandler.Logout)
			authorized.GET("/me", apiHandler.GetMe)
			authorized.PATCH("/me", apiHandler.UpdateMe)
			authorized.PUT("/me/password", apiHandler.ChangePassword)
			authorized.GET("/authz/me", apiHandler.GetAuthzMe)
			authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
				response.Success(ctx, buildPermissionCatalog(r))
			})

			// 账号管理
			authorized.GET("/accounts", apiHandler.ListAccounts)
			authorized.POST("/accounts", apiHandler.CreateAccount)
			authorized.GET("/accounts/:id", apiHandler.GetAccount)
			authorized.PUT("/accounts/:id", apiHandler.UpdateAccount)
			authorized.DELETE("/accounts/:id", apiHandler.DeleteAccount)

			// 日销售
			authorized.GET("/sales", apiHandler.ListSales)
			authorized.POST("/sales", apiHandler.CreateSale)
			authorized.GET("/sales/:id", apiHandler.GetSale)
			authorized.PUT("/sales/:id", apiHandler.UpdateSale)
			authorized.DELETE("/sales/:id", apiHandler.DeleteSale)

			// 月度佣金报表
			authorized.GET("/commission-reports", apiHandler.ListCommissionReports)
			authorized.POST("/commission-reports", apiHandler.CreateCommissionReport)
			authorized.GET("/commission-reports/export", apiHandler.ExportCommissionReports)
			authorized.POST("/commission-reports/generate-all", apiHandler.GenerateAllCommissionReports)
			authorized.GET("/commission-reports/:id", apiHandler.GetCommissionReport)
			authorized.PUT("/commission-reports/:id", apiHandler.UpdateCommissionReport)
			authorized.POST("/commission-reports/:id/recalculate", apiHandler.RecalculateCommissionReport)
			authorized.GET("/commission-reports/:id/logs", apiHandler.ListCommissionReportLogs)

			// 仪表盘
			authorized.GET("/dashboard/summary", apiHandler.GetDashboardSummary)
			authorized.GET("/dashboard/top-sellers", apiHandler.GetDashboardTopSellers)
		}
	}

	return r
}

type permissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildPermissionCatalog(engine *gin.Engine) []permissionCatalogItem {
	if engine == nil {
		return []permissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]permissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, apiV1Prefix+"/") || item.Path == apiV1Prefix+"/auth/login" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, permissionCatalogItem{
			Module:     derivePermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func derivePermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	return strings.Split(normalized, "/")[0]
}
