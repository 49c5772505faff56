package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/finflow/accounting/internal/core/ports/repositories"
)

// NewRepositoryProvider wires the full Postgres repository set over a shared pool.
func NewRepositoryProvider(pool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:   NewPgxAccountRepository(pool),
		JournalRepo:   NewPgxJournalRepository(pool),
		InvoiceRepo:   NewPgxInvoiceRepository(pool),
		ReportingRepo: NewPgxReportingRepository(pool),
		ReviewQueue:   NewPgxReviewQueueRepository(pool),
	}
}
