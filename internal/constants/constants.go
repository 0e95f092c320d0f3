package constants

// 账号角色常量
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleSeller  = "seller"
)

// 月度佣金报表状态常量
const (
	ReportStatusPending   = "pending"
	ReportStatusApproved  = "approved"
	ReportStatusPaid      = "paid"
	ReportStatusCancelled = "cancelled"
)

// 报表状态筛选：全部
const ReportStatusFilterAll = "all"

// 佣金默认配置常量
const (
	CommissionRateDefault = "0.50"
	CommissionMinYear     = 2024
	CommissionMaxYear     = 2100
)

// 队列常量
const (
	QueueDefault                  = "default"
	TaskCommissionGenerateAll     = "commission:generate_all"
	TaskCommissionReportRecompute = "commission:report_recalculate"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "vp"
)

// 站点语言常量
const (
	LocalePtBR = "pt-BR"
	LocaleEnUS = "en-US"
)

// 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocalePtBR, LocaleEnUS}

// 导出格式常量
const (
	ExportFormatXLSX = "xlsx"
	ExportFormatCSV  = "csv"
)

// 报表排序字段白名单
var ReportOrderingFields = []string{"year", "month", "total_sales_amount", "total_commission"}
