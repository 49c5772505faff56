package services

import (
	"context"
	"time"

	"github.com/finflow/accounting/internal/core/domain"
	"github.com/finflow/accounting/internal/dto"
)

// InvoiceSvcFacade defines the invoice lifecycle operations.
type InvoiceSvcFacade interface {
	// CreateInvoice validates the invoice arithmetic, persists it with status PENDING
	// and posts the initial receivable/revenue journal entry.
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, userID string) (*domain.Invoice, error)

	// GetInvoice retrieves an invoice by id.
	GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// ListInvoices retrieves a paginated list of invoices, optionally filtered by status.
	ListInvoices(ctx context.Context, params dto.ListInvoicesParams) ([]domain.Invoice, error)

	// MarkOverdue transitions PENDING to OVERDUE once asOf has passed the due date.
	// Calling it again after the transition is a no-op.
	MarkOverdue(ctx context.Context, invoiceID string, asOf time.Time, userID string) (*domain.Invoice, error)

	// SweepOverdue marks every due PENDING invoice overdue and reports how many changed.
	SweepOverdue(ctx context.Context, asOf time.Time, userID string) (int, error)

	// Cancel posts a reversing journal entry and transitions the invoice to CANCELLED.
	// Only PENDING and OVERDUE invoices can be cancelled.
	Cancel(ctx context.Context, invoiceID string, userID string) (*domain.Invoice, error)
}
