package repositories

// RepositoryProvider bundles the repositories a service container needs, so wiring
// code can swap the pgsql and in-memory implementations as a unit.
type RepositoryProvider struct {
	AccountRepo   AccountRepositoryFacade
	JournalRepo   JournalRepositoryFacade
	InvoiceRepo   InvoiceRepositoryFacade
	ReportingRepo ReportingRepository
	ReviewQueue   ReviewQueue
}
