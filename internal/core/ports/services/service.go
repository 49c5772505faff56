package services

// ServiceContainer bundles the application services for handler registration.
type ServiceContainer struct {
	Account        AccountSvcFacade
	Journal        JournalSvcFacade
	Invoice        InvoiceSvcFacade
	Reconciliation ReconciliationSvcFacade
	Reporting      ReportingSvcFacade
}
