package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finflow/accounting/internal/core/domain"
	portsrepo "github.com/finflow/accounting/internal/core/ports/repositories"
)

// ReportingStore aggregates report data over the journal and account stores. Each
// report works from a single journal snapshot, so concurrent appends cannot tear the
// aggregation.
type ReportingStore struct {
	accounts *AccountStore
	journal  *JournalStore
}

// NewReportingStore creates a reporting repository over the given stores.
func NewReportingStore(accounts *AccountStore, journal *JournalStore) *ReportingStore {
	return &ReportingStore{accounts: accounts, journal: journal}
}

var _ portsrepo.ReportingRepository = (*ReportingStore)(nil)

type debitCredit struct {
	debit  decimal.Decimal
	credit decimal.Decimal
}

// totalsByAccount sums debits and credits per account over entries dated in [from, to].
func (s *ReportingStore) totalsByAccount(from, to time.Time) map[string]debitCredit {
	totals := make(map[string]debitCredit)
	for _, entry := range s.journal.Snapshot() {
		if entry.EntryDate.After(to) {
			continue
		}
		if !from.IsZero() && entry.EntryDate.Before(from) {
			continue
		}
		for _, line := range entry.Lines {
			dc := totals[line.AccountCode]
			if line.Side == domain.Debit {
				dc.debit = dc.debit.Add(line.Amount)
			} else {
				dc.credit = dc.credit.Add(line.Amount)
			}
			totals[line.AccountCode] = dc
		}
	}
	return totals
}

func (s *ReportingStore) GetTrialBalanceData(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	totals := s.totalsByAccount(time.Time{}, asOf)

	codes := make([]string, 0, len(totals))
	for code := range totals {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	accounts, err := s.accounts.FindAccountsByCodes(ctx, codes)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.TrialBalanceRow, 0, len(codes))
	for _, code := range codes {
		dc := totals[code]
		row := domain.TrialBalanceRow{
			AccountCode: code,
			Debit:       dc.debit,
			Credit:      dc.credit,
		}
		if account, ok := accounts[code]; ok {
			row.AccountName = account.Name
			row.AccountType = account.AccountType
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *ReportingStore) GetProfitAndLossData(ctx context.Context, from, to time.Time) ([]domain.AccountAmount, []domain.AccountAmount, error) {
	totals := s.totalsByAccount(from, to)

	codes := make([]string, 0, len(totals))
	for code := range totals {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	accounts, err := s.accounts.FindAccountsByCodes(ctx, codes)
	if err != nil {
		return nil, nil, err
	}

	var revenue, expenses []domain.AccountAmount
	for _, code := range codes {
		account, ok := accounts[code]
		if !ok {
			continue
		}
		dc := totals[code]
		switch account.AccountType {
		case domain.Revenue:
			revenue = append(revenue, domain.AccountAmount{
				AccountCode: code,
				Name:        account.Name,
				NetAmount:   dc.credit.Sub(dc.debit),
			})
		case domain.Expense:
			expenses = append(expenses, domain.AccountAmount{
				AccountCode: code,
				Name:        account.Name,
				NetAmount:   dc.debit.Sub(dc.credit),
			})
		}
	}
	return revenue, expenses, nil
}
