package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vendapay/internal/config"
	"github.com/vendapay/internal/constants"
	"github.com/vendapay/internal/logger"
	"github.com/vendapay/internal/models"
	"github.com/vendapay/internal/queue"
	"github.com/vendapay/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CommissionReportService 月度佣金报表服务
type CommissionReportService struct {
	cfg         *config.Config
	reportRepo  repository.CommissionReportRepository
	saleRepo    repository.DailySaleRepository
	accountRepo repository.AccountRepository
	logRepo     repository.CommissionReportLogRepository
	queueClient *queue.Client
	now         func() time.Time
}

// NewCommissionReportService 创建月报服务
func NewCommissionReportService(
	cfg *config.Config,
	reportRepo repository.CommissionReportRepository,
	saleRepo repository.DailySaleRepository,
	accountRepo repository.AccountRepository,
	logRepo repository.CommissionReportLogRepository,
	queueClient *queue.Client,
) *CommissionReportService {
	return &CommissionReportService{
		cfg:         cfg,
		reportRepo:  reportRepo,
		saleRepo:    saleRepo,
		accountRepo: accountRepo,
		logRepo:     logRepo,
		queueClient: queueClient,
		now:         time.Now,
	}
}

// CreateReportInput 创建月报输入
type CreateReportInput struct {
	SellerID     uint
	Year         int
	Month        int
	Status       string
	PaymentNotes string
}

// UpdateReportInput 更新月报输入（nil 表示不修改）
type UpdateReportInput struct {
	SellerID     *uint
	Year         *int
	Month        *int
	Status       *string
	PaymentNotes *string
}

// ReportListInput 月报列表查询
type ReportListInput struct {
	Page     int
	PageSize int
	SellerID uint
	Year     int
	Month    int
	Status   string
	Search   string
	OrderBy  string
}

// GenerateAllFailure 批量生成中单个卖家的失败记录
type GenerateAllFailure struct {
	SellerID uint   `json:"seller_id"`
	Username string `json:"username"`
	Error    string `json:"error"`
}

// GenerateAllResult 批量生成结果
type GenerateAllResult struct {
	Year     int                              `json:"year"`
	Month    int                              `json:"month"`
	Reports  []models.MonthlyCommissionReport `json:"reports"`
	Failures []GenerateAllFailure             `json:"failures"`
}

// GenerateAllDispatch 批量生成的投递结果（异步返回任务 ID，同步返回结果）
type GenerateAllDispatch struct {
	Async  bool               `json:"async"`
	TaskID string             `json:"task_id,omitempty"`
	Result *GenerateAllResult `json:"result,omitempty"`
}

// SalesSummary 一组销售记录的汇总
type SalesSummary struct {
	TotalSalesAmount      decimal.Decimal
	SalesDaysCount        int
	TotalCommission       decimal.Decimal
	AverageCommissionRate decimal.Decimal
}

// SummarizeSales 汇总有效销售记录：总额、销售天数、佣金合计与按金额加权的平均比例
func SummarizeSales(sales []models.DailySale) SalesSummary {
	summary := SalesSummary{
		TotalSalesAmount:      decimal.Zero,
		TotalCommission:       decimal.Zero,
		AverageCommissionRate: decimal.Zero,
	}
	weighted := decimal.Zero
	days := make(map[string]struct{}, len(sales))
	for _, sale := range sales {
		if !sale.IsActive {
			continue
		}
		summary.TotalSalesAmount = summary.TotalSalesAmount.Add(sale.TotalAmount.Decimal)
		summary.TotalCommission = summary.TotalCommission.Add(sale.CalculatedCommission.Decimal)
		weighted = weighted.Add(sale.TotalAmount.Mul(sale.CommissionRateApplied.Decimal))
		days[sale.SaleDate.String()] = struct{}{}
	}
	summary.SalesDaysCount = len(days)
	if summary.TotalSalesAmount.IsPositive() {
		summary.AverageCommissionRate = weighted.Div(summary.TotalSalesAmount).Round(2)
	}
	return summary
}

// CalculateFromSales 按当月有效销售重算月报汇总字段（不改变状态）
func (s *CommissionReportService) CalculateFromSales(report *models.MonthlyCommissionReport) error {
	return s.calculateWith(s.saleRepo, report)
}

func (s *CommissionReportService) calculateWith(saleRepo repository.DailySaleRepository, report *models.MonthlyCommissionReport) error {
	if report == nil {
		return ErrNotFound
	}
	start, end := Period{Year: report.Year, Month: report.Month}.Bounds()
	sales, err := saleRepo.ListActiveBySellerPeriod(report.SellerID, start, end)
	if err != nil {
		return err
	}
	summary := SummarizeSales(sales)
	report.TotalSalesAmount = models.NewMoneyFromDecimal(summary.TotalSalesAmount)
	report.SalesDaysCount = summary.SalesDaysCount
	report.TotalCommission = models.NewMoneyFromDecimal(summary.TotalCommission)
	report.AverageCommissionRate = models.NewMoneyFromDecimal(summary.AverageCommissionRate)
	return nil
}

// CreateReport 创建月报并按销售数据计算
func (s *CommissionReportService) CreateReport(actor Actor, input CreateReportInput) (*models.MonthlyCommissionReport, error) {
	if !actor.IsPrivileged() {
		return nil, ErrForbidden
	}
	period := Period{Year: input.Year, Month: input.Month}
	if err := s.validatePeriod(period); err != nil {
		return nil, err
	}
	status := constants.ReportStatusPending
	if strings.TrimSpace(input.Status) != "" {
		normalized, err := NormalizeReportStatus(input.Status)
		if err != nil {
			return nil, err
		}
		status = normalized
	}

	var report *models.MonthlyCommissionReport
	err := s.reportRepo.Transaction(func(tx *gorm.DB) error {
		seller, err := s.accountRepo.WithTx(tx).GetByID(input.SellerID)
		if err != nil {
			return err
		}
		if seller == nil {
			return ErrSellerNotFound
		}
		reportRepo := s.reportRepo.WithTx(tx)
		existing, err := reportRepo.GetBySellerPeriod(input.SellerID, period.Year, period.Month)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrDuplicateReport
		}

		report = &models.MonthlyCommissionReport{
			SellerID:     input.SellerID,
			Year:         period.Year,
			Month:        period.Month,
			Status:       constants.ReportStatusPending,
			PaymentNotes: strings.TrimSpace(input.PaymentNotes),
		}
		if err := s.calculateWith(s.saleRepo.WithTx(tx), report); err != nil {
			return err
		}
		if err := ApplyStatusTransition(report, status, actor, s.now()); err != nil {
			return err
		}
		if err := reportRepo.Create(report); err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateReport
			}
			return err
		}
		report.Seller = seller
		return s.writeLog(tx, report, actor, "create", "", report.Status, nil)
	})
	if err != nil {
		return nil, err
	}
	report.PeriodDisplay = period.Display()
	invalidateDashboardCache()
	return report, nil
}

// UpdateReport 更新月报：可调整卖家/周期、备注与状态
func (s *CommissionReportService) UpdateReport(actor Actor, id uint, input UpdateReportInput) (*models.MonthlyCommissionReport, error) {
	if !actor.IsPrivileged() {
		return nil, ErrForbidden
	}

	var report *models.MonthlyCommissionReport
	err := s.reportRepo.Transaction(func(tx *gorm.DB) error {
		reportRepo := s.reportRepo.WithTx(tx)
		current, err := reportRepo.GetByID(id)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrNotFound
		}
		report = current
		fromStatus := report.Status

		keyChanged := false
		if input.SellerID != nil && *input.SellerID != report.SellerID {
			seller, err := s.accountRepo.WithTx(tx).GetByID(*input.SellerID)
			if err != nil {
				return err
			}
			if seller == nil {
				return ErrSellerNotFound
			}
			report.SellerID = seller.ID
			report.Seller = seller
			keyChanged = true
		}
		if input.Year != nil && *input.Year != report.Year {
			report.Year = *input.Year
			keyChanged = true
		}
		if input.Month != nil && *input.Month != report.Month {
			report.Month = *input.Month
			keyChanged = true
		}
		if keyChanged {
			if IsTerminalReportStatus(report.Status) {
				return ErrInvalidStatusTransition
			}
			if err := s.validatePeriod(Period{Year: report.Year, Month: report.Month}); err != nil {
				return err
			}
			other, err := reportRepo.GetBySellerPeriod(report.SellerID, report.Year, report.Month)
			if err != nil {
				return err
			}
			if other != nil && other.ID != report.ID {
				return ErrDuplicateReport
			}
			if err := s.calculateWith(s.saleRepo.WithTx(tx), report); err != nil {
				return err
			}
		}
		if input.PaymentNotes != nil {
			report.PaymentNotes = strings.TrimSpace(*input.PaymentNotes)
		}
		if input.Status != nil {
			if err := ApplyStatusTransition(report, *input.Status, actor, s.now()); err != nil {
				return err
			}
		}

		if err := reportRepo.Update(report); err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateReport
			}
			return err
		}

		action := "update"
		if fromStatus != report.Status {
			action = "status_change"
		}
		return s.writeLog(tx, report, actor, action, fromStatus, report.Status, models.JSON{
			"key_changed": keyChanged,
			"year":        report.Year,
			"month":       report.Month,
			"seller_id":   report.SellerID,
		})
	})
	if err != nil {
		return nil, err
	}
	report.PeriodDisplay = models.FormatPeriod(report.Year, report.Month)
	invalidateDashboardCache()
	return report, nil
}

// RecalculateReport 按销售数据重算指定月报
func (s *CommissionReportService) RecalculateReport(actor Actor, id uint) (*models.MonthlyCommissionReport, error) {
	if !actor.IsPrivileged() {
		return nil, ErrForbidden
	}
	report, err := s.reportRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrNotFound
	}
	if IsTerminalReportStatus(report.Status) {
		return nil, ErrInvalidStatusTransition
	}
	if err := s.CalculateFromSales(report); err != nil {
		return nil, err
	}
	if err := s.reportRepo.Update(report); err != nil {
		return nil, err
	}
	invalidateDashboardCache()
	return report, nil
}

// RecalculateSellerPeriod 重算卖家某月的月报（不存在或已支付/已取消时忽略）
func (s *CommissionReportService) RecalculateSellerPeriod(sellerID uint, year, month int) error {
	report, err := s.reportRepo.GetBySellerPeriod(sellerID, year, month)
	if err != nil {
		return err
	}
	if report == nil {
		return nil
	}
	if IsTerminalReportStatus(report.Status) {
		logger.Debugw("commission_report_recalculate_skip_terminal",
			"report_id", report.ID,
			"seller_id", sellerID,
			"status", report.Status,
		)
		return nil
	}
	if err := s.CalculateFromSales(report); err != nil {
		return err
	}
	if err := s.reportRepo.Update(report); err != nil {
		return err
	}
	invalidateDashboardCache()
	return nil
}

// ScheduleRecalculate 销售变动后刷新已存在的月报：队列可用时异步去重执行，否则同步重算
func (s *CommissionReportService) ScheduleRecalculate(sellerID uint, period Period) {
	if s.queueClient.Enabled() {
		err := s.queueClient.EnqueueCommissionReportRecalculate(queue.CommissionReportRecalculatePayload{
			SellerID: sellerID,
			Year:     period.Year,
			Month:    period.Month,
		})
		if err == nil {
			return
		}
		logger.Warnw("commission_report_recalculate_enqueue_failed",
			"seller_id", sellerID,
			"year", period.Year,
			"month", period.Month,
			"error", err,
		)
	}
	if err := s.RecalculateSellerPeriod(sellerID, period.Year, period.Month); err != nil {
		logger.Errorw("commission_report_recalculate_failed",
			"seller_id", sellerID,
			"year", period.Year,
			"month", period.Month,
			"error", err,
		)
	}
}

// GenerateAll 为所有有佣金资格的卖家生成（或刷新）指定月份的月报
// 单个卖家失败时记录并继续处理其余卖家。year/month 为 0 时取当前月份。
func (s *CommissionReportService) GenerateAll(ctx context.Context, year, month int) (*GenerateAllResult, error) {
	period := s.resolvePeriod(year, month)
	if err := s.validatePeriod(period); err != nil {
		return nil, err
	}

	sellers, err := s.accountRepo.ListCommissionEligible()
	if err != nil {
		return nil, err
	}

	result := &GenerateAllResult{
		Year:     period.Year,
		Month:    period.Month,
		Reports:  make([]models.MonthlyCommissionReport, 0, len(sellers)),
		Failures: make([]GenerateAllFailure, 0),
	}
	for i := range sellers {
		seller := sellers[i]
		if err := ctx.Err(); err != nil {
			return result, err
		}
		report, err := s.generateForSeller(&seller, period)
		if err != nil {
			logger.Errorw("commission_generate_seller_failed",
				"seller_id", seller.ID,
				"username", seller.Username,
				"year", period.Year,
				"month", period.Month,
				"error", err,
			)
			result.Failures = append(result.Failures, GenerateAllFailure{
				SellerID: seller.ID,
				Username: seller.Username,
				Error:    err.Error(),
			})
			continue
		}
		result.Reports = append(result.Reports, *report)
	}

	logger.Infow("commission_generate_all_completed",
		"year", period.Year,
		"month", period.Month,
		"reports", len(result.Reports),
		"failures", len(result.Failures),
	)
	invalidateDashboardCache()
	return result, nil
}

func (s *CommissionReportService) generateForSeller(seller *models.Account, period Period) (*models.MonthlyCommissionReport, error) {
	var report *models.MonthlyCommissionReport
	err := s.reportRepo.Transaction(func(tx *gorm.DB) error {
		reportRepo := s.reportRepo.WithTx(tx)
		existing, err := reportRepo.GetBySellerPeriod(seller.ID, period.Year, period.Month)
		if err != nil {
			return err
		}
		created := existing == nil
		if created {
			existing = &models.MonthlyCommissionReport{
				SellerID: seller.ID,
				Year:     period.Year,
				Month:    period.Month,
				Status:   constants.ReportStatusPending,
			}
		}
		if !created && IsTerminalReportStatus(existing.Status) {
			existing.Seller = seller
			existing.PeriodDisplay = period.Display()
			report = existing
			return nil
		}
		if err := s.calculateWith(s.saleRepo.WithTx(tx), existing); err != nil {
			return err
		}
		if created {
			if err := reportRepo.Create(existing); err != nil {
				if isUniqueViolation(err) {
					return ErrDuplicateReport
				}
				return err
			}
		} else if err := reportRepo.Update(existing); err != nil {
			return err
		}
		existing.Seller = seller
		existing.PeriodDisplay = period.Display()
		report = existing
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("generate report for seller %d: %w", seller.ID, err)
	}
	return report, nil
}

// EnqueueGenerateAll 投递批量生成任务；队列未启用时同步执行
func (s *CommissionReportService) EnqueueGenerateAll(ctx context.Context, actor Actor, year, month int) (*GenerateAllDispatch, error) {
	if !actor.IsPrivileged() {
		return nil, ErrForbidden
	}
	period := s.resolvePeriod(year, month)
	if err := s.validatePeriod(period); err != nil {
		return nil, err
	}
	if s.queueClient.Enabled() {
		taskID, err := s.queueClient.EnqueueCommissionGenerateAll(queue.CommissionGenerateAllPayload{
			Year:        period.Year,
			Month:       period.Month,
			RequestedBy: actor.ID,
			RequestID:   actor.RequestID,
		})
		if err != nil {
			return nil, err
		}
		return &GenerateAllDispatch{Async: true, TaskID: taskID}, nil
	}
	result, err := s.GenerateAll(ctx, period.Year, period.Month)
	if err != nil {
		return nil, err
	}
	return &GenerateAllDispatch{Result: result}, nil
}

// GetReport 获取月报详情，卖家只能查看自己的月报
func (s *CommissionReportService) GetReport(actor Actor, id uint) (*models.MonthlyCommissionReport, error) {
	report, err := s.reportRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if report == nil || !actor.canAccessSeller(report.SellerID) {
		return nil, ErrNotFound
	}
	return report, nil
}

// ListReports 月报列表
func (s *CommissionReportService) ListReports(actor Actor, input ReportListInput) ([]models.MonthlyCommissionReport, int64, error) {
	filter, err := s.buildListFilter(actor, input)
	if err != nil {
		return nil, 0, err
	}
	return s.reportRepo.List(filter)
}

// ListReportLogs 月报审计日志
func (s *CommissionReportService) ListReportLogs(actor Actor, id uint, page, pageSize int) ([]models.CommissionReportLog, int64, error) {
	if !actor.IsPrivileged() {
		return nil, 0, ErrForbidden
	}
	report, err := s.reportRepo.GetByID(id)
	if err != nil {
		return nil, 0, err
	}
	if report == nil {
		return nil, 0, ErrNotFound
	}
	return s.logRepo.List(repository.CommissionReportLogListFilter{
		Page:     page,
		PageSize: pageSize,
		ReportID: id,
	})
}

func (s *CommissionReportService) buildListFilter(actor Actor, input ReportListInput) (repository.CommissionReportListFilter, error) {
	status := strings.TrimSpace(input.Status)
	if status != "" && status != constants.ReportStatusFilterAll {
		normalized, err := NormalizeReportStatus(status)
		if err != nil {
			return repository.CommissionReportListFilter{}, err
		}
		status = normalized
	}
	return repository.CommissionReportListFilter{
		Page:       input.Page,
		PageSize:   input.PageSize,
		SellerID:   actor.scopeSellerID(input.SellerID),
		Year:       input.Year,
		Month:      input.Month,
		Status:     status,
		Search:     strings.TrimSpace(input.Search),
		OrderBy:    input.OrderBy,
		WithSeller: true,
	}, nil
}

func (s *CommissionReportService) writeLog(tx *gorm.DB, report *models.MonthlyCommissionReport, actor Actor, action, from, to string, detail models.JSON) error {
	if s.logRepo == nil {
		return nil
	}
	return s.logRepo.WithTx(tx).Create(&models.CommissionReportLog{
		ReportID:         report.ID,
		OperatorID:       actor.ID,
		OperatorUsername: actor.Username,
		Action:           action,
		FromStatus:       from,
		ToStatus:         to,
		RequestID:        actor.RequestID,
		DetailJSON:       detail,
	})
}

func (s *CommissionReportService) resolvePeriod(year, month int) Period {
	current := CurrentPeriod(s.now())
	if year == 0 {
		year = current.Year
	}
	if month == 0 {
		month = current.Month
	}
	return Period{Year: year, Month: month}
}

func (s *CommissionReportService) validatePeriod(period Period) error {
	minYear, maxYear := constants.CommissionMinYear, constants.CommissionMaxYear
	if s.cfg != nil {
		minYear, maxYear = s.cfg.Commission.MinYear, s.cfg.Commission.MaxYear
	}
	return period.Validate(minYear, maxYear)
}
