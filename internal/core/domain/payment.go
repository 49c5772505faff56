package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment event statuses as delivered by the upstream payments service.
const (
	PaymentSucceeded = "succeeded"
	PaymentFailed    = "failed"
)

// PaymentEvent is the normalized payment-settlement event consumed by the
// reconciliation service. Delivery is at-least-once and may be reordered; EventID is
// the idempotency key. InvoiceID may be empty, in which case OrderRef (from the
// processor metadata) identifies the invoice.
type PaymentEvent struct {
	EventID      string          `json:"id"`
	UserID       string          `json:"userId"`
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currency"`
	Status       string          `json:"status"`
	ProcessorID  string          `json:"processorId"`
	InvoiceID    string          `json:"invoiceId,omitempty"`
	OrderRef     string          `json:"orderRef,omitempty"`
	Reason       string          `json:"reason,omitempty"` // Populated on failed events
	OccurredAt   time.Time       `json:"createdAt"`
}

// InvoiceRef returns whichever invoice reference the event carries.
func (e PaymentEvent) InvoiceRef() string {
	if e.InvoiceID != "" {
		return e.InvoiceID
	}
	return e.OrderRef
}

// ReviewItem is a settlement event that could not be reconciled automatically and
// needs operator attention. Items are queued, never silently dropped.
type ReviewItem struct {
	ReviewID   string          `json:"reviewID"`
	EventID    string          `json:"eventID"`
	InvoiceRef string          `json:"invoiceRef"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason"`
	CreatedAt  time.Time       `json:"createdAt"`
}
