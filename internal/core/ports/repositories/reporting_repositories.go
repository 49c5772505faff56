package repositories

import (
	"context"
	"time"

	"github.com/finflow/accounting/internal/core/domain"
)

// ReportingRepository defines operations for retrieving financial report data.
// Implementations must aggregate over a consistent snapshot of the committed entry
// set; a report never observes a ledger mutated mid-aggregation.
type ReportingRepository interface {
	// GetTrialBalanceData retrieves per-account debit and credit totals as of a date.
	GetTrialBalanceData(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error)

	// GetProfitAndLossData retrieves net amounts for revenue and expense accounts
	// over a period.
	GetProfitAndLossData(ctx context.Context, from, to time.Time) ([]domain.AccountAmount, []domain.AccountAmount, error)
}
