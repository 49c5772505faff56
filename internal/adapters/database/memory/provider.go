package memory

import (
	portsrepo "github.com/finflow/accounting/internal/core/ports/repositories"
)

// NewRepositoryProvider wires the full in-memory repository set. Used for local
// development and tests when no database is configured.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	accounts := NewAccountStore()
	journal := NewJournalStore()

	return portsrepo.RepositoryProvider{
		AccountRepo:   accounts,
		JournalRepo:   journal,
		InvoiceRepo:   NewInvoiceStore(),
		ReportingRepo: NewReportingStore(accounts, journal),
		ReviewQueue:   NewReviewQueueStore(),
	}
}
