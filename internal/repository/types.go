package repository

import "github.com/vendapay/internal/models"

// AccountListFilter 查询账号列表的过滤条件
type AccountListFilter struct {
	Page             int
	PageSize         int
	Search           string
	Role             string
	IsActive         *bool
	CommissionActive *bool
}

// DailySaleListFilter 查询销售记录列表的过滤条件
type DailySaleListFilter struct {
	Page       int
	PageSize   int
	SellerID   uint
	StartDate  *models.Date
	EndDate    *models.Date
	IsActive   *bool
	Search     string
	WithSeller bool
}

// CommissionReportListFilter 查询月度佣金报表列表的过滤条件
type CommissionReportListFilter struct {
	Page       int
	PageSize   int
	SellerID   uint
	Year       int
	Month      int
	Status     string
	Search     string
	OrderBy    string // 例如 "-total_commission"
	WithSeller bool
}

// CommissionReportLogListFilter 查询月报审计日志的过滤条件
type CommissionReportLogListFilter struct {
	Page     int
	PageSize int
	ReportID uint
}

// SalesScope 销售聚合范围（闭区间日期，可选卖家）
type SalesScope struct {
	Start    models.Date
	End      models.Date
	SellerID uint
}

// ReportScope 月报聚合范围
type ReportScope struct {
	Year     int
	Month    int
	SellerID uint
	Statuses []string
}
