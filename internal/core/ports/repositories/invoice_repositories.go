package repositories

import (
	"context"
	"time"

	"github.com/finflow/accounting/internal/core/domain"
)

// InvoiceReader defines read operations for invoice data
type InvoiceReader interface {
	// FindInvoiceByID retrieves a specific invoice by its unique identifier.
	FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// ListInvoices retrieves a paginated list of invoices, optionally filtered by status.
	ListInvoices(ctx context.Context, status *domain.InvoiceStatus, limit int, offset int) ([]domain.Invoice, error)

	// ListInvoicesDue retrieves PENDING invoices whose due date is before asOf.
	ListInvoicesDue(ctx context.Context, asOf time.Time) ([]domain.Invoice, error)
}

// InvoiceWriter defines write operations for invoice data
type InvoiceWriter interface {
	// SaveInvoice persists a new invoice with its line items.
	SaveInvoice(ctx context.Context, invoice domain.Invoice) error

	// UpdateInvoiceStatus advances an invoice to a new status.
	UpdateInvoiceStatus(ctx context.Context, invoiceID string, status domain.InvoiceStatus, userID string, now time.Time) error
}

// InvoiceRepositoryFacade combines all invoice-related repository interfaces
type InvoiceRepositoryFacade interface {
	InvoiceReader
	InvoiceWriter
}
