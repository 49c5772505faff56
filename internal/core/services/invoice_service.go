package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finflow/accounting/internal/apperrors"
	"github.com/finflow/accounting/internal/core/domain"
	portsrepo "github.com/finflow/accounting/internal/core/ports/repositories"
	portssvc "github.com/finflow/accounting/internal/core/ports/services"
	"github.com/finflow/accounting/internal/dto"
	"github.com/finflow/accounting/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInvoice = fmt.Errorf("%w: invalid invoice", apperrors.ErrValidation)
)

// invoiceService owns invoice records and their status state machine, and issues the
// initial journal posting when an invoice is created.
type invoiceService struct {
	BaseService
	invoiceRepo portsrepo.InvoiceRepositoryFacade
	journalSvc  portssvc.JournalSvcFacade
	accountSvc  portssvc.AccountSvcFacade
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(invoiceRepo portsrepo.InvoiceRepositoryFacade, journalSvc portssvc.JournalSvcFacade, accountSvc portssvc.AccountSvcFacade) portssvc.InvoiceSvcFacade {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		journalSvc:  journalSvc,
		accountSvc:  accountSvc,
	}
}

// Ensure invoiceService implements the portssvc.InvoiceSvcFacade interface
var _ portssvc.InvoiceSvcFacade = (*invoiceService)(nil)

// validateArithmetic checks the stored totals against the line items.
func validateArithmetic(inv *domain.Invoice) error {
	if inv.Subtotal.IsNegative() || inv.Tax.IsNegative() || inv.Total.IsNegative() {
		return fmt.Errorf("%w: amounts must not be negative", ErrInvalidInvoice)
	}
	computed := inv.ComputeSubtotal()
	if !computed.Equal(inv.Subtotal) {
		return fmt.Errorf("%w: subtotal %s does not match line items (%s)", ErrInvalidInvoice, inv.Subtotal, computed)
	}
	if !inv.Subtotal.Add(inv.Tax).Equal(inv.Total) {
		return fmt.Errorf("%w: total %s does not equal subtotal %s plus tax %s", ErrInvalidInvoice, inv.Total, inv.Subtotal, inv.Tax)
	}
	if err := accounting.ValidateMinorUnitScale(inv.Total); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInvoice, err.Error())
	}
	return nil
}

// validatePostingAccounts checks that the accounts the initial posting will hit are
// active and carry the invoice's currency.
func (s *invoiceService) validatePostingAccounts(ctx context.Context, currencyCode string) error {
	codes := []string{domain.AccountAccountsReceivable, domain.AccountSalesRevenue}
	accountsMap, err := s.accountSvc.ResolveMany(ctx, codes)
	if err != nil {
		return fmt.Errorf("failed to resolve posting accounts: %w", err)
	}
	for _, code := range codes {
		acc, found := accountsMap[code]
		if !found {
			return fmt.Errorf("%w: code %s", ErrAccountNotFound, code)
		}
		if !acc.IsActive {
			return fmt.Errorf("%w: code %s", ErrAccountInactive, code)
		}
		if acc.CurrencyCode != currencyCode {
			return fmt.Errorf("%w: account %s is %s, invoice is %s", ErrInvalidInvoice, code, acc.CurrencyCode, currencyCode)
		}
	}
	return nil
}

// CreateInvoice validates the invoice, persists it as PENDING and posts the initial
// receivable/revenue journal entry. The posting uses the invoice id as source
// reference so a retried create cannot double-book revenue.
func (s *invoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, userID string) (*domain.Invoice, error) {
	now := time.Now().UTC()
	lineItems := make([]domain.InvoiceLineItem, len(req.LineItems))
	for i, li := range req.LineItems {
		if li.Quantity.LessThanOrEqual(decimal.Zero) || li.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: line %d has non-positive quantity or negative price", ErrInvalidInvoice, i)
		}
		lineItems[i] = domain.InvoiceLineItem{
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
		}
	}

	invoice := domain.Invoice{
		InvoiceID:     uuid.NewString(),
		InvoiceNumber: req.InvoiceNumber,
		CustomerID:    req.CustomerID,
		CurrencyCode:  req.CurrencyCode,
		LineItems:     lineItems,
		Subtotal:      req.Subtotal,
		Tax:           req.Tax,
		Total:         req.Total,
		IssueDate:     req.IssueDate,
		DueDate:       req.DueDate,
		Status:        domain.InvoicePending,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := validateArithmetic(&invoice); err != nil {
		return nil, err
	}
	if invoice.DueDate.Before(invoice.IssueDate) {
		return nil, fmt.Errorf("%w: due date precedes issue date", ErrInvalidInvoice)
	}
	// Creation and the initial posting are all-or-nothing: the posting's preconditions
	// are checked before the invoice row is persisted, so a create that cannot post
	// leaves nothing behind.
	if err := s.validatePostingAccounts(ctx, invoice.CurrencyCode); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveInvoice(ctx, invoice); err != nil {
		s.LogError(ctx, err, "Failed to save invoice", slog.String("invoice_number", req.InvoiceNumber))
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	// Initial posting: debit Accounts Receivable, credit Sales Revenue for the total.
	_, err := s.journalSvc.PostEntry(ctx, dto.CreateJournalEntryRequest{
		Date:         invoice.IssueDate,
		Description:  fmt.Sprintf("Invoice %s issued", invoice.InvoiceNumber),
		CurrencyCode: invoice.CurrencyCode,
		Lines: []dto.JournalLineRequest{
			{AccountCode: domain.AccountAccountsReceivable, Debit: invoice.Total},
			{AccountCode: domain.AccountSalesRevenue, Credit: invoice.Total},
		},
		Source:    domain.SourceInvoice,
		SourceRef: invoice.InvoiceID,
	}, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to post initial journal entry", slog.String("invoice_id", invoice.InvoiceID))
		return nil, fmt.Errorf("failed to post invoice journal entry: %w", err)
	}

	s.LogInfo(ctx, "Invoice created",
		slog.String("invoice_id", invoice.InvoiceID),
		slog.String("invoice_number", invoice.InvoiceNumber),
		slog.String("total", invoice.Total.String()))
	return &invoice, nil
}

// GetInvoice retrieves an invoice by id.
func (s *invoiceService) GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find invoice", slog.String("invoice_id", invoiceID))
		}
		return nil, fmt.Errorf("failed to find invoice %s: %w", invoiceID, err)
	}
	return invoice, nil
}

// ListInvoices retrieves a paginated list of invoices.
func (s *invoiceService) ListInvoices(ctx context.Context, params dto.ListInvoicesParams) ([]domain.Invoice, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}
	invoices, err := s.invoiceRepo.ListInvoices(ctx, params.Status, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list invoices")
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

// transition validates and applies a status change.
func (s *invoiceService) transition(ctx context.Context, invoice *domain.Invoice, next domain.InvoiceStatus, userID string) error {
	if !invoice.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s for invoice %s", apperrors.ErrInvalidTransition, invoice.Status, next, invoice.InvoiceID)
	}
	now := time.Now().UTC()
	if err := s.invoiceRepo.UpdateInvoiceStatus(ctx, invoice.InvoiceID, next, userID, now); err != nil {
		return fmt.Errorf("failed to update invoice status: %w", err)
	}
	invoice.Status = next
	invoice.LastUpdatedAt = now
	invoice.LastUpdatedBy = userID
	return nil
}

// MarkOverdue transitions PENDING to OVERDUE once asOf has passed the due date.
// Repeated calls after the transition are no-ops.
func (s *invoiceService) MarkOverdue(ctx context.Context, invoiceID string, asOf time.Time, userID string) (*domain.Invoice, error) {
	invoice, err := s.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if invoice.Status == domain.InvoiceOverdue {
		return invoice, nil
	}
	if invoice.Status != domain.InvoicePending {
		return nil, fmt.Errorf("%w: %s -> %s for invoice %s", apperrors.ErrInvalidTransition, invoice.Status, domain.InvoiceOverdue, invoiceID)
	}
	if !asOf.After(invoice.DueDate) {
		return invoice, nil
	}

	if err := s.transition(ctx, invoice, domain.InvoiceOverdue, userID); err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Invoice marked overdue", slog.String("invoice_id", invoiceID))
	return invoice, nil
}

// SweepOverdue marks every due PENDING invoice overdue.
func (s *invoiceService) SweepOverdue(ctx context.Context, asOf time.Time, userID string) (int, error) {
	due, err := s.invoiceRepo.ListInvoicesDue(ctx, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to list due invoices")
		return 0, fmt.Errorf("failed to list due invoices: %w", err)
	}

	transitions := 0
	for i := range due {
		invoice := due[i]
		if invoice.Status != domain.InvoicePending || !asOf.After(invoice.DueDate) {
			continue
		}
		if err := s.transition(ctx, &invoice, domain.InvoiceOverdue, userID); err != nil {
			s.LogError(ctx, err, "Failed to mark invoice overdue during sweep", slog.String("invoice_id", invoice.InvoiceID))
			continue
		}
		transitions++
	}
	if transitions > 0 {
		s.LogInfo(ctx, "Overdue sweep completed", slog.Int("transitions", transitions))
	}
	return transitions, nil
}

// Cancel posts a reversing entry for the initial posting, then transitions the
// invoice to CANCELLED. Allowed only from PENDING or OVERDUE.
func (s *invoiceService) Cancel(ctx context.Context, invoiceID string, userID string) (*domain.Invoice, error) {
	invoice, err := s.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !invoice.Status.CanTransitionTo(domain.InvoiceCancelled) {
		return nil, fmt.Errorf("%w: %s -> %s for invoice %s", apperrors.ErrInvalidTransition, invoice.Status, domain.InvoiceCancelled, invoiceID)
	}

	// The reversing entry is posted before the status flips; if the posting fails the
	// invoice stays in its current state and the caller can retry.
	_, err = s.journalSvc.PostEntry(ctx, dto.CreateJournalEntryRequest{
		Date:         time.Now().UTC(),
		Description:  fmt.Sprintf("Invoice %s cancelled", invoice.InvoiceNumber),
		CurrencyCode: invoice.CurrencyCode,
		Lines: []dto.JournalLineRequest{
			{AccountCode: domain.AccountSalesRevenue, Debit: invoice.Total},
			{AccountCode: domain.AccountAccountsReceivable, Credit: invoice.Total},
		},
		Source:    domain.SourceReversal,
		SourceRef: invoice.InvoiceID,
	}, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to post cancellation reversal", slog.String("invoice_id", invoiceID))
		return nil, fmt.Errorf("failed to post cancellation reversal: %w", err)
	}

	if err := s.transition(ctx, invoice, domain.InvoiceCancelled, userID); err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Invoice cancelled", slog.String("invoice_id", invoiceID))
	return invoice, nil
}
