package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/finflow/accounting/internal/adapters/database/memory"
	"github.com/finflow/accounting/internal/apperrors"
	"github.com/finflow/accounting/internal/core/domain"
	portssvc "github.com/finflow/accounting/internal/core/ports/services"
	"github.com/finflow/accounting/internal/core/services"
	"github.com/finflow/accounting/internal/dto"
)

// channelEventSource feeds events from a channel, standing in for the Kafka consumer.
type channelEventSource struct {
	events chan domain.PaymentEvent
}

func (s *channelEventSource) Receive(ctx context.Context) (domain.PaymentEvent, error) {
	select {
	case <-ctx.Done():
		return domain.PaymentEvent{}, ctx.Err()
	case event := <-s.events:
		return event, nil
	}
}

// ReconciliationServiceTestSuite exercises the reconciliation flow end to end over
// the in-memory adapters.
type ReconciliationServiceTestSuite struct {
	suite.Suite
	accounts    *memory.AccountStore
	journal     *memory.JournalStore
	invoices    *memory.InvoiceStore
	reviewQueue *memory.ReviewQueueStore
	journalSvc  portssvc.JournalSvcFacade
	invoiceSvc  portssvc.InvoiceSvcFacade
	service     portssvc.ReconciliationSvcFacade
	userID      string
}

func (suite *ReconciliationServiceTestSuite) SetupTest() {
	suite.accounts = memory.NewAccountStore()
	suite.journal = memory.NewJournalStore()
	suite.invoices = memory.NewInvoiceStore()
	suite.reviewQueue = memory.NewReviewQueueStore()
	suite.userID = uuid.NewString()

	accountSvc := services.NewAccountService(suite.accounts)
	suite.Require().NoError(accountSvc.SeedDefaultChart(context.Background(), suite.userID))

	suite.journalSvc = services.NewJournalService(suite.journal, accountSvc)
	suite.invoiceSvc = services.NewInvoiceService(suite.invoices, suite.journalSvc, accountSvc)
	suite.service = services.NewReconciliationService(suite.invoices, suite.journalSvc, suite.reviewQueue)
}

func (suite *ReconciliationServiceTestSuite) createInvoice(total string) *domain.Invoice {
	issue := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	invoice, err := suite.invoiceSvc.CreateInvoice(context.Background(), dto.CreateInvoiceRequest{
		InvoiceNumber: "INV-1001",
		CustomerID:    "cust-1",
		CurrencyCode:  "USD",
		LineItems: []dto.InvoiceLineItemRequest{
			{Description: "Services", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString(total)},
		},
		Subtotal:  decimal.RequireFromString(total),
		Tax:       decimal.Zero,
		Total:     decimal.RequireFromString(total),
		IssueDate: issue,
		DueDate:   issue.AddDate(0, 0, 30),
	}, suite.userID)
	suite.Require().NoError(err)
	return invoice
}

func (suite *ReconciliationServiceTestSuite) settledEvent(invoiceID, amount string) domain.PaymentEvent {
	return domain.PaymentEvent{
		EventID:      uuid.NewString(),
		UserID:       suite.userID,
		Amount:       decimal.RequireFromString(amount),
		CurrencyCode: "USD",
		Status:       domain.PaymentSucceeded,
		ProcessorID:  "proc-1",
		InvoiceID:    invoiceID,
		OccurredAt:   time.Now().UTC(),
	}
}

func (suite *ReconciliationServiceTestSuite) reviewItems() []domain.ReviewItem {
	items, err := suite.reviewQueue.ListPending(context.Background(), 100)
	suite.Require().NoError(err)
	return items
}

// --- Test Cases ---

func (suite *ReconciliationServiceTestSuite) TestFullSettlementMarksPaid() {
	ctx := context.Background()
	invoice := suite.createInvoice("250.00")
	event := suite.settledEvent(invoice.InvoiceID, "250.00")

	suite.Require().NoError(suite.service.HandlePaymentEvent(ctx, event))

	updated, err := suite.invoiceSvc.GetInvoice(ctx, invoice.InvoiceID)
	suite.Require().NoError(err)
	suite.Equal(domain.InvoicePaid, updated.Status)

	// A cash/receivable entry keyed by the event id was committed.
	entry, err := suite.journalSvc.GetEntryBySourceRef(ctx, domain.SourceSettlement, event.EventID)
	suite.Require().NoError(err)
	suite.Require().Len(entry.Lines, 2)
	suite.Equal(domain.AccountCash, entry.Lines[0].AccountCode)
	suite.Equal(domain.Debit, entry.Lines[0].Side)
	suite.Equal(domain.AccountAccountsReceivable, entry.Lines[1].AccountCode)
	suite.Equal(domain.Credit, entry.Lines[1].Side)

	suite.Empty(suite.reviewItems())
}

func (suite *ReconciliationServiceTestSuite) TestRedeliveryIsIdempotent() {
	ctx := context.Background()
	invoice := suite.createInvoice("250.00")
	event := suite.settledEvent(invoice.InvoiceID, "250.00")

	suite.Require().NoError(suite.service.HandlePaymentEvent(ctx, event))
	suite.Require().NoError(suite.service.HandlePaymentEvent(ctx, event))
	suite.Require().NoError(suite.service.HandlePaymentEvent(ctx, event))

	updated, err := suite.invoiceSvc.GetInvoice(ctx, invoice.InvoiceID)
	suite.Require().NoError(err)
	suite.Equal(domain.InvoicePaid, updated.Status)

	// One invoice entry plus exactly one settlement entry.
	entries, err := suite.journalSvc.ListEntries(ctx, 100, 0)
	suite.Require().NoError(err)
	suite.Len(entries, 2)
	suite.Empty(suite.reviewItems())
}

func (suite *ReconciliationServiceTestSuite) TestPartialPaymentLeavesStatus() {
	ctx := context.Background()
	invoice := suite.createInvoice("250.00")
	event := suite.settledEvent(invoice.InvoiceID, "100.00")

	suite.Require().NoError(suite.service.HandlePaymentEvent(ctx, event))

	updated, err := suite.invoiceSvc.GetInvoice(ctx, invoice.InvoiceID)
	suite.Require().NoError(err)
	suite.Equal(domain.InvoicePending, updated.Status)

	// The partial amount is on the ledger regardless.
	entry, err := suite.journalSvc.GetEntryBySourceRef(ctx, domain.SourceSettlement, event.EventID)
	suite.Require().NoError(err)
	suite.True(entry.Lines[0].Amount.Equal(decimal.RequireFromString("100.00")))
	suite.Empty(suite.reviewItems())
}

func (suite *ReconciliationServiceTestSuite) TestOverpaymentGoesToReview() {
	ctx := context.Background()
	invoice := suite.createInvoice("250.00")
	event := suite.settledEvent(invoice.InvoiceID, "300.00")

	suite.Require().NoError(suite.service.HandlePaymentEvent(ctx, event))

	updated, err := suite.invoiceSvc.GetInvoice(ctx, invoice.InvoiceID)
	suite.Require().NoError(err)
	suite.Equal(domain.InvoicePending, updated.Status)

	items := suite.reviewItems()
	suite.Require().Len(items, 1)
	suite.Equal(event.EventID, items[0].EventID)

	// No settlement entry was committed.
	_, err = suite.journalSvc.GetEntryBySourceRef(ctx, domain.SourceSettlement, event.EventID)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ReconciliationServiceTestSuite) TestCurrencyMismatchGoesToReview() {
	ctx := context.Background()
	invoice := suite.createInvoice("250.00")
	event := suite.settledEvent(invoice.InvoiceID, "250.00")
	event.CurrencyCode = "EUR"

	suite.Require().NoError(suite.service.HandlePaymentEvent(ctx, event))

	items := suite.reviewItems()
	suite.Require().Len(items, 1)
	suite.Equal(event.EventID, items[0].EventID)
}

func (suite *ReconciliationServiceTestSuite) TestUnknownInvoiceGoesToReviewAfterRetries() {
	ctx := context.Background()
	event := suite.settledEvent(uuid.NewString(), "250.00")

	suite.Require().NoError(suite.service.HandlePaymentEvent(ctx, event))

	items := suite.reviewItems()
	suite.Require().Len(items, 1)
	suite.Equal(event.EventID, items[0].EventID)
}

func (suite *ReconciliationServiceTestSuite) TestMissingInvoiceRefGoesToReview() {
	ctx := context.Background()
	event := suite.settledEvent("", "250.00")

	suite.Require().NoError(suite.service.HandlePaymentEvent(ctx, event))

	suite.Require().Len(suite.reviewItems(), 1)
}

func (suite *ReconciliationServiceTestSuite) TestConflictingSettlementOnTerminalInvoice() {
	ctx := context.Background()
	invoice := suite.createInvoice("250.00")

	first := suite.settledEvent(invoice.InvoiceID, "250.00")
	suite.Require().NoError(suite.service.HandlePaymentEvent(ctx, first))

	// A different payment arriving for the now-PAID invoice is a conflict.
	second := suite.settledEvent(invoice.InvoiceID, "100.00")
	err := suite.service.HandlePaymentEvent(ctx, second)
	suite.ErrorIs(err, apperrors.ErrReconciliationConflict)

	items := suite.reviewItems()
	suite.Require().Len(items, 1)
	suite.Equal(second.EventID, items[0].EventID)
}

func (suite *ReconciliationServiceTestSuite) TestResentSettlementWithNewIDIsIgnored() {
	ctx := context.Background()
	invoice := suite.createInvoice("250.00")

	first := suite.settledEvent(invoice.InvoiceID, "250.00")
	suite.Require().NoError(suite.service.HandlePaymentEvent(ctx, first))

	// The same payment re-sent under a fresh event id matches the recorded
	// settlement, so it is a no-op rather than a conflict.
	resent := suite.settledEvent(invoice.InvoiceID, "250.00")
	suite.Require().NoError(suite.service.HandlePaymentEvent(ctx, resent))

	entries, err := suite.journalSvc.ListEntries(ctx, 100, 0)
	suite.Require().NoError(err)
	suite.Len(entries, 2) // invoice posting + one settlement
	suite.Empty(suite.reviewItems())
}

func (suite *ReconciliationServiceTestSuite) TestFailedPaymentHasNoLedgerEffect() {
	ctx := context.Background()
	invoice := suite.createInvoice("250.00")
	event := suite.settledEvent(invoice.InvoiceID, "250.00")
	event.Status = domain.PaymentFailed
	event.Reason = "card_declined"

	suite.Require().NoError(suite.service.HandlePaymentEvent(ctx, event))

	updated, err := suite.invoiceSvc.GetInvoice(ctx, invoice.InvoiceID)
	suite.Require().NoError(err)
	suite.Equal(domain.InvoicePending, updated.Status)

	entries, err := suite.journalSvc.ListEntries(ctx, 100, 0)
	suite.Require().NoError(err)
	suite.Len(entries, 1) // only the invoice posting
}

func (suite *ReconciliationServiceTestSuite) TestRunStopsOnContextCancel() {
	ctx, cancel := context.WithCancel(context.Background())
	source := &channelEventSource{events: make(chan domain.PaymentEvent)}

	done := make(chan error, 1)
	go func() {
		done <- suite.service.Run(ctx, source)
	}()

	cancel()
	select {
	case err := <-done:
		suite.NoError(err)
	case <-time.After(2 * time.Second):
		suite.Fail("Run did not stop after context cancellation")
	}
}

func (suite *ReconciliationServiceTestSuite) TestRunProcessesEvents() {
	invoice := suite.createInvoice("250.00")
	event := suite.settledEvent(invoice.InvoiceID, "250.00")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	source := &channelEventSource{events: make(chan domain.PaymentEvent, 1)}
	source.events <- event

	done := make(chan error, 1)
	go func() {
		done <- suite.service.Run(ctx, source)
	}()

	suite.Eventually(func() bool {
		updated, err := suite.invoiceSvc.GetInvoice(context.Background(), invoice.InvoiceID)
		return err == nil && updated.Status == domain.InvoicePaid
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func (suite *ReconciliationServiceTestSuite) TestConcurrentDeliveriesSettleOnce() {
	ctx := context.Background()
	invoice := suite.createInvoice("250.00")
	event := suite.settledEvent(invoice.InvoiceID, "250.00")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = suite.service.HandlePaymentEvent(ctx, event)
		}()
	}
	wg.Wait()

	entries, err := suite.journalSvc.ListEntries(ctx, 100, 0)
	suite.Require().NoError(err)
	suite.Len(entries, 2) // invoice posting plus a single settlement

	updated, err := suite.invoiceSvc.GetInvoice(ctx, invoice.InvoiceID)
	suite.Require().NoError(err)
	suite.Equal(domain.InvoicePaid, updated.Status)
}

func TestReconciliationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceTestSuite))
}
