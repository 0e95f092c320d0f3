package service

import (
	"errors"
	"testing"
	"time"

	"github.com/vendapay/internal/constants"
	"github.com/vendapay/internal/models"
)

func TestApplyStatusTransitionPendingToPaidStampsBoth(t *testing.T) {
	report := &models.MonthlyCommissionReport{Status: constants.ReportStatusPending}
	now := time.Date(2025, 7, 5, 10, 0, 0, 0, time.UTC)

	if err := ApplyStatusTransition(report, constants.ReportStatusPaid, Actor{ID: 3}, now); err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if report.ApprovedAt == nil || !report.ApprovedAt.Equal(now) {
		t.Fatalf("want approved_at %v got %v", now, report.ApprovedAt)
	}
	if report.PaidAt == nil || !report.PaidAt.Equal(now) {
		t.Fatalf("want paid_at %v got %v", now, report.PaidAt)
	}
	if report.ApprovedByID == nil || *report.ApprovedByID != 3 {
		t.Fatalf("want approved_by 3 got %v", report.ApprovedByID)
	}
}

func TestApplyStatusTransitionKeepsFirstApproval(t *testing.T) {
	report := &models.MonthlyCommissionReport{Status: constants.ReportStatusPending}
	approvedAt := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	paidAt := approvedAt.Add(48 * time.Hour)

	if err := ApplyStatusTransition(report, constants.ReportStatusApproved, Actor{ID: 1}, approvedAt); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if err := ApplyStatusTransition(report, constants.ReportStatusPaid, Actor{ID: 2}, paidAt); err != nil {
		t.Fatalf("pay failed: %v", err)
	}
	if !report.ApprovedAt.Equal(approvedAt) {
		t.Fatalf("approved_at overwritten: %v", report.ApprovedAt)
	}
	if *report.ApprovedByID != 1 {
		t.Fatalf("approved_by overwritten: %d", *report.ApprovedByID)
	}
	if !report.PaidAt.Equal(paidAt) {
		t.Fatalf("want paid_at %v got %v", paidAt, report.PaidAt)
	}
}

func TestApplyStatusTransitionRules(t *testing.T) {
	now := time.Now()
	cases := []struct {
		from  string
		to    string
		actor Actor
		want  error
	}{
		{constants.ReportStatusPending, constants.ReportStatusApproved, Actor{}, ErrApproverRequired},
		{constants.ReportStatusPending, constants.ReportStatusCancelled, Actor{ID: 1}, nil},
		{constants.ReportStatusApproved, constants.ReportStatusCancelled, Actor{ID: 1}, nil},
		{constants.ReportStatusApproved, constants.ReportStatusPending, Actor{ID: 1}, ErrInvalidStatusTransition},
		{constants.ReportStatusPaid, constants.ReportStatusPending, Actor{ID: 1}, ErrInvalidStatusTransition},
		{constants.ReportStatusPaid, constants.ReportStatusCancelled, Actor{ID: 1}, ErrInvalidStatusTransition},
		{constants.ReportStatusCancelled, constants.ReportStatusApproved, Actor{ID: 1}, ErrInvalidStatusTransition},
		{constants.ReportStatusPaid, constants.ReportStatusPaid, Actor{ID: 1}, nil},
		{constants.ReportStatusPending, "archived", Actor{ID: 1}, ErrInvalidStatus},
	}
	for _, tc := range cases {
		report := &models.MonthlyCommissionReport{Status: tc.from}
		err := ApplyStatusTransition(report, tc.to, tc.actor, now)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s -> %s: want %v got %v", tc.from, tc.to, tc.want, err)
		}
	}
}

func TestApplyStatusTransitionSameStatusIsNoop(t *testing.T) {
	paidAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	report := &models.MonthlyCommissionReport{Status: constants.ReportStatusPaid, PaidAt: &paidAt}
	if err := ApplyStatusTransition(report, "PAID", Actor{ID: 1}, time.Now()); err != nil {
		t.Fatalf("same status should be accepted: %v", err)
	}
	if !report.PaidAt.Equal(paidAt) || report.ApprovedAt != nil {
		t.Fatalf("no-op transition changed timestamps")
	}
}
