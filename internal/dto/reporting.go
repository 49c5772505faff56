package dto

import (
	"time"

	"github.com/finflow/accounting/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TrialBalanceResponse wraps the trial balance rows with their grand totals.
type TrialBalanceResponse struct {
	AsOf        time.Time                `json:"asOf"`
	Rows        []domain.TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal          `json:"totalDebit"`
	TotalCredit decimal.Decimal          `json:"totalCredit"`
}

// NewTrialBalanceResponse builds the response, summing totals from the rows.
func NewTrialBalanceResponse(asOf time.Time, rows []domain.TrialBalanceRow) TrialBalanceResponse {
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, r := range rows {
		totalDebit = totalDebit.Add(r.Debit)
		totalCredit = totalCredit.Add(r.Credit)
	}
	return TrialBalanceResponse{
		AsOf:        asOf,
		Rows:        rows,
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
	}
}
