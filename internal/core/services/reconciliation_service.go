package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finflow/accounting/internal/apperrors"
	"github.com/finflow/accounting/internal/core/domain"
	"github.com/finflow/accounting/internal/core/ports/events"
	portsrepo "github.com/finflow/accounting/internal/core/ports/repositories"
	portssvc "github.com/finflow/accounting/internal/core/ports/services"
	"github.com/finflow/accounting/internal/dto"
)

const (
	lookupMaxAttempts = 3
	lookupBaseBackoff = 100 * time.Millisecond
)

// reconciliationService consumes payment-settlement events and applies their ledger
// effects. Events for the same invoice are serialized through a per-invoice mutex, so
// concurrent deliveries never interleave mid-flow.
type reconciliationService struct {
	BaseService
	invoiceRepo portsrepo.InvoiceRepositoryFacade
	journalSvc  portssvc.JournalSvcFacade
	reviewQueue portsrepo.ReviewQueue

	mu       sync.Mutex
	invoiceL map[string]*sync.Mutex
}

// NewReconciliationService creates a new ReconciliationService.
func NewReconciliationService(invoiceRepo portsrepo.InvoiceRepositoryFacade, journalSvc portssvc.JournalSvcFacade, reviewQueue portsrepo.ReviewQueue) portssvc.ReconciliationSvcFacade {
	return &reconciliationService{
		invoiceRepo: invoiceRepo,
		journalSvc:  journalSvc,
		reviewQueue: reviewQueue,
		invoiceL:    make(map[string]*sync.Mutex),
	}
}

// Ensure reconciliationService implements the ReconciliationSvcFacade interface
var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

// lockInvoice returns the mutex guarding a single invoice's reconciliation flow.
func (s *reconciliationService) lockInvoice(invoiceRef string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.invoiceL[invoiceRef]
	if !ok {
		l = &sync.Mutex{}
		s.invoiceL[invoiceRef] = l
	}
	return l
}

// HandlePaymentEvent dispatches an event on its status.
func (s *reconciliationService) HandlePaymentEvent(ctx context.Context, event domain.PaymentEvent) error {
	switch event.Status {
	case domain.PaymentSucceeded:
		return s.HandlePaymentSettled(ctx, event)
	case domain.PaymentFailed:
		return s.HandlePaymentFailed(ctx, event)
	default:
		s.LogWarn(ctx, "Ignoring payment event with unknown status",
			slog.String("event_id", event.EventID),
			slog.String("status", event.Status))
		return nil
	}
}

// enqueueReview hands an unreconcilable event to operators.
func (s *reconciliationService) enqueueReview(ctx context.Context, event domain.PaymentEvent, reason string) error {
	item := domain.ReviewItem{
		ReviewID:   uuid.NewString(),
		EventID:    event.EventID,
		InvoiceRef: event.InvoiceRef(),
		Amount:     event.Amount,
		Reason:     reason,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.reviewQueue.Enqueue(ctx, item); err != nil {
		s.LogError(ctx, err, "Failed to enqueue review item", slog.String("event_id", event.EventID))
		return fmt.Errorf("failed to enqueue review item for event %s: %w", event.EventID, err)
	}
	s.LogWarn(ctx, "Payment event queued for manual review",
		slog.String("event_id", event.EventID),
		slog.String("invoice_ref", event.InvoiceRef()),
		slog.String("reason", reason))
	return nil
}

// findInvoiceWithRetry looks up the invoice with bounded retries. A not-found may be
// transient when the invoice write has not landed yet, so it retries with backoff
// before giving up.
func (s *reconciliationService) findInvoiceWithRetry(ctx context.Context, invoiceRef string) (*domain.Invoice, error) {
	var lastErr error
	for attempt := 1; attempt <= lookupMaxAttempts; attempt++ {
		invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceRef)
		if err == nil {
			return invoice, nil
		}
		lastErr = err
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Invoice lookup failed", slog.String("invoice_ref", invoiceRef), slog.Int("attempt", attempt))
		}
		if attempt == lookupMaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lookupBaseBackoff * time.Duration(1<<(attempt-1))):
		}
	}
	return nil, fmt.Errorf("%w: invoice %s after %d attempts: %s", apperrors.ErrTransientLookup, invoiceRef, lookupMaxAttempts, lastErr)
}

// HandlePaymentSettled reconciles a succeeded payment against its invoice:
//   - posts a cash/receivable settlement entry keyed by the event id, so redelivery
//     cannot double-post;
//   - transitions the invoice to PAID when the payment covers the full total;
//   - leaves the status untouched for partial payments;
//   - routes unmatched or conflicting events to the review queue.
func (s *reconciliationService) HandlePaymentSettled(ctx context.Context, event domain.PaymentEvent) error {
	invoiceRef := event.InvoiceRef()
	if invoiceRef == "" {
		return s.enqueueReview(ctx, event, "event carries no invoice reference")
	}

	lock := s.lockInvoice(invoiceRef)
	lock.Lock()
	defer lock.Unlock()

	invoice, err := s.findInvoiceWithRetry(ctx, invoiceRef)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return s.enqueueReview(ctx, event, fmt.Sprintf("invoice lookup exhausted retries: %s", err))
	}

	if invoice.Status.IsTerminal() {
		return s.settleAgainstTerminal(ctx, event, invoice)
	}

	if event.CurrencyCode != invoice.CurrencyCode {
		return s.enqueueReview(ctx, event, fmt.Sprintf("currency %s does not match invoice currency %s", event.CurrencyCode, invoice.CurrencyCode))
	}
	if event.Amount.LessThanOrEqual(decimal.Zero) {
		return s.enqueueReview(ctx, event, "non-positive settlement amount")
	}
	if event.Amount.GreaterThan(invoice.Total) {
		return s.enqueueReview(ctx, event, fmt.Sprintf("settlement amount %s exceeds invoice total %s", event.Amount, invoice.Total))
	}

	entry, err := s.journalSvc.PostEntry(ctx, dto.CreateJournalEntryRequest{
		Date:         event.OccurredAt,
		Description:  fmt.Sprintf("Settlement of invoice %s", invoice.InvoiceNumber),
		CurrencyCode: invoice.CurrencyCode,
		Lines: []dto.JournalLineRequest{
			{AccountCode: domain.AccountCash, Debit: event.Amount},
			{AccountCode: domain.AccountAccountsReceivable, Credit: event.Amount},
		},
		Source:    domain.SourceSettlement,
		SourceRef: event.EventID,
	}, event.UserID)
	if err != nil {
		s.LogError(ctx, err, "Failed to post settlement entry",
			slog.String("event_id", event.EventID),
			slog.String("invoice_id", invoice.InvoiceID))
		return fmt.Errorf("failed to post settlement entry for event %s: %w", event.EventID, err)
	}

	if event.Amount.Equal(invoice.Total) {
		now := time.Now().UTC()
		if err := s.invoiceRepo.UpdateInvoiceStatus(ctx, invoice.InvoiceID, domain.InvoicePaid, event.UserID, now); err != nil {
			s.LogError(ctx, err, "Failed to mark invoice paid", slog.String("invoice_id", invoice.InvoiceID))
			return fmt.Errorf("failed to mark invoice %s paid: %w", invoice.InvoiceID, err)
		}
		s.LogInfo(ctx, "Invoice settled in full",
			slog.String("invoice_id", invoice.InvoiceID),
			slog.String("entry_id", entry.EntryID),
			slog.String("amount", event.Amount.String()))
	} else {
		s.LogInfo(ctx, "Partial payment recorded",
			slog.String("invoice_id", invoice.InvoiceID),
			slog.String("entry_id", entry.EntryID),
			slog.String("amount", event.Amount.String()),
			slog.String("invoice_total", invoice.Total.String()))
	}
	return nil
}

// settleAgainstTerminal handles a settlement arriving for an invoice that already
// reached PAID or CANCELLED. A redelivery of the event that settled it is a no-op, as
// is a re-sent settlement whose amount matches the recorded payment; a genuinely
// different settlement is a conflict and goes to review.
func (s *reconciliationService) settleAgainstTerminal(ctx context.Context, event domain.PaymentEvent, invoice *domain.Invoice) error {
	existing, err := s.journalSvc.GetEntryBySourceRef(ctx, domain.SourceSettlement, event.EventID)
	if err == nil {
		s.LogInfo(ctx, "Duplicate settlement delivery ignored",
			slog.String("event_id", event.EventID),
			slog.String("entry_id", existing.EntryID))
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("failed to check settlement history for event %s: %w", event.EventID, err)
	}

	// A re-sent settlement can arrive under a fresh event id. An invoice only reaches
	// PAID through a settlement for its full total, so a matching amount in the
	// invoice currency is the recorded payment coming around again.
	if invoice.Status == domain.InvoicePaid &&
		event.CurrencyCode == invoice.CurrencyCode &&
		event.Amount.Equal(invoice.Total) {
		s.LogInfo(ctx, "Settlement matching recorded payment ignored",
			slog.String("event_id", event.EventID),
			slog.String("invoice_id", invoice.InvoiceID))
		return nil
	}

	reason := fmt.Sprintf("settlement for %s invoice %s", invoice.Status, invoice.InvoiceID)
	if enqErr := s.enqueueReview(ctx, event, reason); enqErr != nil {
		return enqErr
	}
	return fmt.Errorf("%w: %s", apperrors.ErrReconciliationConflict, reason)
}

// HandlePaymentFailed records a failed payment. Failures carry no ledger effect; the
// invoice simply stays open.
func (s *reconciliationService) HandlePaymentFailed(ctx context.Context, event domain.PaymentEvent) error {
	s.LogInfo(ctx, "Payment failed; invoice remains open",
		slog.String("event_id", event.EventID),
		slog.String("invoice_ref", event.InvoiceRef()),
		slog.String("reason", event.Reason))
	return nil
}

// Run consumes payment events until ctx is cancelled. Handler errors are logged and
// the loop continues; at-least-once delivery means the event will come around again
// if the producer did not see a commit.
func (s *reconciliationService) Run(ctx context.Context, source events.PaymentEventSource) error {
	s.LogInfo(ctx, "Reconciliation consumer started")
	for {
		event, err := source.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				s.LogInfo(ctx, "Reconciliation consumer stopped")
				return nil
			}
			s.LogError(ctx, err, "Failed to receive payment event")
			continue
		}

		if err := s.HandlePaymentEvent(ctx, event); err != nil {
			s.LogError(ctx, err, "Failed to handle payment event", slog.String("event_id", event.EventID))
		}
	}
}
