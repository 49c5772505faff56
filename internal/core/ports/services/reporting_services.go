package services

import (
	"context"
	"time"

	"github.com/finflow/accounting/internal/core/domain"
)

// ReportingSvcFacade defines the read-only report generation operations.
type ReportingSvcFacade interface {
	// TrialBalance aggregates per-account debit and credit totals as of a date and
	// verifies the totals balance before returning.
	TrialBalance(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error)

	// BalanceSheet groups trial balance rows by account type and asserts the
	// accounting equation before returning.
	BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheetReport, error)

	// ProfitAndLoss nets revenue and expense accounts over a period.
	ProfitAndLoss(ctx context.Context, from, to time.Time) (*domain.PAndLReport, error)
}
