package services

import (
	portsrepo "github.com/finflow/accounting/internal/core/ports/repositories"
	portssvc "github.com/finflow/accounting/internal/core/ports/services"
)

// NewServiceContainer wires the application services over a repository provider.
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	accountSvc := NewAccountService(repos.AccountRepo)
	journalSvc := NewJournalService(repos.JournalRepo, accountSvc)
	invoiceSvc := NewInvoiceService(repos.InvoiceRepo, journalSvc, accountSvc)
	reconciliationSvc := NewReconciliationService(repos.InvoiceRepo, journalSvc, repos.ReviewQueue)
	reportingSvc := NewReportingService(repos.ReportingRepo)

	return &portssvc.ServiceContainer{
		Account:        accountSvc,
		Journal:        journalSvc,
		Invoice:        invoiceSvc,
		Reconciliation: reconciliationSvc,
		Reporting:      reportingSvc,
	}
}
