package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finflow/accounting/internal/apperrors"
	"github.com/finflow/accounting/internal/core/domain"
	portsrepo "github.com/finflow/accounting/internal/core/ports/repositories"
	portssvc "github.com/finflow/accounting/internal/core/ports/services"
)

// reportingService derives financial reports from the committed ledger. Reports are
// pure reads; nothing here mutates ledger state.
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
}

// NewReportingService creates a new ReportingService.
func NewReportingService(reportingRepo portsrepo.ReportingRepository) portssvc.ReportingSvcFacade {
	return &reportingService{reportingRepo: reportingRepo}
}

// Ensure reportingService implements the ReportingSvcFacade interface
var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// TrialBalance aggregates per-account debit and credit totals as of a date. Because
// every committed entry balances, the grand totals must too; an imbalance means the
// ledger store is corrupt and the report is refused.
func (s *reportingService) TrialBalance(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	rows, err := s.reportingRepo.GetTrialBalanceData(ctx, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to get trial balance data")
		return nil, fmt.Errorf("failed to get trial balance data: %w", err)
	}

	totalDebit, totalCredit := decimal.Zero, decimal.Zero
	for _, row := range rows {
		totalDebit = totalDebit.Add(row.Debit)
		totalCredit = totalCredit.Add(row.Credit)
	}
	if !totalDebit.Equal(totalCredit) {
		s.LogError(ctx, apperrors.ErrLedgerIntegrity, "Trial balance does not balance",
			slog.String("total_debit", totalDebit.String()),
			slog.String("total_credit", totalCredit.String()))
		return nil, fmt.Errorf("%w: trial balance debits %s != credits %s", apperrors.ErrLedgerIntegrity, totalDebit, totalCredit)
	}
	return rows, nil
}

// netByNormalSide nets a trial balance row against the account type's normal side.
func netByNormalSide(row domain.TrialBalanceRow) decimal.Decimal {
	switch row.AccountType {
	case domain.Asset, domain.Expense:
		return row.Debit.Sub(row.Credit)
	default:
		return row.Credit.Sub(row.Debit)
	}
}

// BalanceSheet groups net balances by account type as of a date. Net income to date
// is folded into equity as current period earnings so the accounting equation holds;
// if it still does not, the report is refused.
func (s *reportingService) BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheetReport, error) {
	rows, err := s.TrialBalance(ctx, asOf)
	if err != nil {
		return nil, err
	}

	report := &domain.BalanceSheetReport{
		ReportDate:       asOf,
		Assets:           []domain.AccountAmount{},
		Liabilities:      []domain.AccountAmount{},
		Equity:           []domain.AccountAmount{},
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
	}

	netIncome := decimal.Zero
	for _, row := range rows {
		net := netByNormalSide(row)
		entry := domain.AccountAmount{AccountCode: row.AccountCode, Name: row.AccountName, NetAmount: net}
		switch row.AccountType {
		case domain.Asset:
			report.Assets = append(report.Assets, entry)
			report.TotalAssets = report.TotalAssets.Add(net)
		case domain.Liability:
			report.Liabilities = append(report.Liabilities, entry)
			report.TotalLiabilities = report.TotalLiabilities.Add(net)
		case domain.Equity:
			report.Equity = append(report.Equity, entry)
			report.TotalEquity = report.TotalEquity.Add(net)
		case domain.Revenue:
			netIncome = netIncome.Add(net)
		case domain.Expense:
			netIncome = netIncome.Sub(net)
		}
	}

	if !netIncome.IsZero() {
		report.Equity = append(report.Equity, domain.AccountAmount{
			AccountCode: "",
			Name:        "Current Period Earnings",
			NetAmount:   netIncome,
		})
		report.TotalEquity = report.TotalEquity.Add(netIncome)
	}

	if !report.TotalAssets.Equal(report.TotalLiabilities.Add(report.TotalEquity)) {
		s.LogError(ctx, apperrors.ErrLedgerIntegrity, "Accounting equation violated",
			slog.String("total_assets", report.TotalAssets.String()),
			slog.String("total_liabilities", report.TotalLiabilities.String()),
			slog.String("total_equity", report.TotalEquity.String()))
		return nil, fmt.Errorf("%w: assets %s != liabilities %s + equity %s",
			apperrors.ErrLedgerIntegrity, report.TotalAssets, report.TotalLiabilities, report.TotalEquity)
	}
	return report, nil
}

// ProfitAndLoss nets revenue and expense accounts over a period.
func (s *reportingService) ProfitAndLoss(ctx context.Context, from, to time.Time) (*domain.PAndLReport, error) {
	revenue, expenses, err := s.reportingRepo.GetProfitAndLossData(ctx, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to get profit and loss data")
		return nil, fmt.Errorf("failed to get profit and loss data: %w", err)
	}

	report := &domain.PAndLReport{
		Revenue:   revenue,
		Expenses:  expenses,
		NetProfit: decimal.Zero,
	}
	for _, r := range revenue {
		report.NetProfit = report.NetProfit.Add(r.NetAmount)
	}
	for _, e := range expenses {
		report.NetProfit = report.NetProfit.Sub(e.NetAmount)
	}
	return report, nil
}
