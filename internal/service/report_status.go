package service

import (
	"strings"
	"time"

	"github.com/vendapay/internal/constants"
	"github.com/vendapay/internal/models"
)

// NormalizeReportStatus 规范化并校验月报状态
func NormalizeReportStatus(raw string) (string, error) {
	status := strings.ToLower(strings.TrimSpace(raw))
	switch status {
	case constants.ReportStatusPending,
		constants.ReportStatusApproved,
		constants.ReportStatusPaid,
		constants.ReportStatusCancelled:
		return status, nil
	default:
		return "", ErrInvalidStatus
	}
}

// IsTerminalReportStatus 已支付与已取消为终态
func IsTerminalReportStatus(status string) bool {
	return status == constants.ReportStatusPaid || status == constants.ReportStatusCancelled
}

// canTransitReportStatus 状态流转表
// pending -> approved/paid/cancelled, approved -> paid/cancelled
func canTransitReportStatus(from, to string) bool {
	if from == to {
		return true
	}
	switch from {
	case constants.ReportStatusPending:
		return to == constants.ReportStatusApproved || to == constants.ReportStatusPaid || to == constants.ReportStatusCancelled
	case constants.ReportStatusApproved:
		return to == constants.ReportStatusPaid || to == constants.ReportStatusCancelled
	default:
		return false
	}
}

// ApplyStatusTransition 执行月报状态流转并写入审批/支付时间戳
// 时间戳只在为空时写入，已有值不会被覆盖。
func ApplyStatusTransition(report *models.MonthlyCommissionReport, newStatus string, actor Actor, now time.Time) error {
	if report == nil {
		return ErrNotFound
	}
	status, err := NormalizeReportStatus(newStatus)
	if err != nil {
		return err
	}
	from := report.Status
	if from == "" {
		from = constants.ReportStatusPending
	}
	if !canTransitReportStatus(from, status) {
		return ErrInvalidStatusTransition
	}
	if from == status {
		return nil
	}

	switch status {
	case constants.ReportStatusApproved:
		if actor.ID == 0 {
			return ErrApproverRequired
		}
		stampApproval(report, actor, now)
	case constants.ReportStatusPaid:
		stampApproval(report, actor, now)
		if report.PaidAt == nil {
			paidAt := now
			report.PaidAt = &paidAt
		}
	}
	report.Status = status
	return nil
}

func stampApproval(report *models.MonthlyCommissionReport, actor Actor, now time.Time) {
	if report.ApprovedAt == nil {
		approvedAt := now
		report.ApprovedAt = &approvedAt
	}
	if report.ApprovedByID == nil && actor.ID != 0 {
		approver := actor.ID
		report.ApprovedByID = &approver
	}
}
