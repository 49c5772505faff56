package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the finite state of an invoice.
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "DRAFT"
	InvoicePending   InvoiceStatus = "PENDING"
	InvoicePaid      InvoiceStatus = "PAID"
	InvoiceOverdue   InvoiceStatus = "OVERDUE"
	InvoiceCancelled InvoiceStatus = "CANCELLED"
)

// invoiceTransitions encodes the allowed status transitions. PAID and CANCELLED are
// terminal. Everything not listed here is rejected.
var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceDraft:   {InvoicePending},
	InvoicePending: {InvoicePaid, InvoiceOverdue, InvoiceCancelled},
	InvoiceOverdue: {InvoicePaid, InvoiceCancelled},
}

// CanTransitionTo reports whether the state machine allows moving from s to next.
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	for _, allowed := range invoiceTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible from s.
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoicePaid || s == InvoiceCancelled
}

// InvoiceLineItem is a single billed line on an invoice.
type InvoiceLineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// Invoice represents a customer invoice. Subtotal/Tax/Total are stored alongside the
// line items and re-validated against them on creation.
type Invoice struct {
	InvoiceID     string            `json:"invoiceID"` // Primary Key (UUID)
	InvoiceNumber string            `json:"invoiceNumber"`
	CustomerID    string            `json:"customerID"`
	LineItems     []InvoiceLineItem `json:"lineItems"`
	Subtotal      decimal.Decimal   `json:"subtotal"`
	Tax           decimal.Decimal   `json:"tax"`
	Total         decimal.Decimal   `json:"total"`
	CurrencyCode  string            `json:"currencyCode"`
	IssueDate     time.Time         `json:"issueDate"`
	DueDate       time.Time         `json:"dueDate"`
	Status        InvoiceStatus     `json:"status"`
	AuditFields
}

// ComputeSubtotal recomputes the subtotal from the line items.
func (i *Invoice) ComputeSubtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, li := range i.LineItems {
		sum = sum.Add(li.Quantity.Mul(li.UnitPrice))
	}
	return sum
}
