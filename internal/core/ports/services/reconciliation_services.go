package services

import (
	"context"

	"github.com/finflow/accounting/internal/core/domain"
	"github.com/finflow/accounting/internal/core/ports/events"
)

// ReconciliationSvcFacade matches payment-settlement events to open invoices and posts
// the corresponding ledger effects.
type ReconciliationSvcFacade interface {
	// HandlePaymentEvent dispatches an event to the settled or failed handler based on
	// its status.
	HandlePaymentEvent(ctx context.Context, event domain.PaymentEvent) error

	// HandlePaymentSettled posts the settlement entry for the referenced invoice and
	// advances its status. Safe under re-delivery of the same event.
	HandlePaymentSettled(ctx context.Context, event domain.PaymentEvent) error

	// HandlePaymentFailed records the failure for observability only; no ledger effect.
	HandlePaymentFailed(ctx context.Context, event domain.PaymentEvent) error

	// Run consumes events from the source until ctx is cancelled.
	Run(ctx context.Context, source events.PaymentEventSource) error
}
