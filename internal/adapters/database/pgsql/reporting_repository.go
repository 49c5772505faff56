package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finflow/accounting/internal/core/domain"
	portsrepo "github.com/finflow/accounting/internal/core/ports/repositories"
)

type PgxReportingRepository struct {
	pool *pgxpool.Pool
}

// NewPgxReportingRepository creates a new repository for report aggregation queries.
func NewPgxReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepository {
	return &PgxReportingRepository{pool: pool}
}

var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

// GetTrialBalanceData aggregates per-account debit and credit totals as of a date.
// The single SELECT runs in one statement snapshot, so concurrent appends cannot
// split an entry across the aggregation.
func (r *PgxReportingRepository) GetTrialBalanceData(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	query := `
		SELECT a.code, a.name, a.account_type,
			COALESCE(SUM(l.amount) FILTER (WHERE l.side = 'DEBIT'), 0) AS debit,
			COALESCE(SUM(l.amount) FILTER (WHERE l.side = 'CREDIT'), 0) AS credit
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		JOIN accounts a ON a.code = l.account_code
		WHERE e.entry_date <= $1
		GROUP BY a.code, a.name, a.account_type
		ORDER BY a.code;
	`
	rows, err := r.pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query trial balance data: %w", err)
	}
	defer rows.Close()

	result := []domain.TrialBalanceRow{}
	for rows.Next() {
		var row domain.TrialBalanceRow
		if err := rows.Scan(
			&row.AccountCode,
			&row.AccountName,
			&row.AccountType,
			&row.Debit,
			&row.Credit,
		); err != nil {
			return nil, fmt.Errorf("failed to scan trial balance row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trial balance rows: %w", err)
	}
	return result, nil
}

// GetProfitAndLossData retrieves net amounts for revenue and expense accounts over a
// period. Revenue nets credit minus debit; expenses net the other way.
func (r *PgxReportingRepository) GetProfitAndLossData(ctx context.Context, from, to time.Time) ([]domain.AccountAmount, []domain.AccountAmount, error) {
	query := `
		SELECT a.code, a.name, a.account_type,
			COALESCE(SUM(l.amount) FILTER (WHERE l.side = 'DEBIT'), 0) AS debit,
			COALESCE(SUM(l.amount) FILTER (WHERE l.side = 'CREDIT'), 0) AS credit
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		JOIN accounts a ON a.code = l.account_code
		WHERE e.entry_date >= $1 AND e.entry_date <= $2
			AND a.account_type IN ('REVENUE', 'EXPENSE')
		GROUP BY a.code, a.name, a.account_type
		ORDER BY a.code;
	`
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query profit and loss data: %w", err)
	}
	defer rows.Close()

	var revenue, expenses []domain.AccountAmount
	for rows.Next() {
		var row domain.TrialBalanceRow
		if err := rows.Scan(
			&row.AccountCode,
			&row.AccountName,
			&row.AccountType,
			&row.Debit,
			&row.Credit,
		); err != nil {
			return nil, nil, fmt.Errorf("failed to scan profit and loss row: %w", err)
		}
		switch row.AccountType {
		case domain.Revenue:
			revenue = append(revenue, domain.AccountAmount{
				AccountCode: row.AccountCode,
				Name:        row.AccountName,
				NetAmount:   row.Credit.Sub(row.Debit),
			})
		case domain.Expense:
			expenses = append(expenses, domain.AccountAmount{
				AccountCode: row.AccountCode,
				Name:        row.AccountName,
				NetAmount:   row.Debit.Sub(row.Credit),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating profit and loss rows: %w", err)
	}
	return revenue, expenses, nil
}
