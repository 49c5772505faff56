package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/finflow/accounting/internal/core/domain"
)

func TestInvoiceStatusTransitions(t *testing.T) {
	testCases := []struct {
		from    domain.InvoiceStatus
		to      domain.InvoiceStatus
		allowed bool
	}{
		{domain.InvoiceDraft, domain.InvoicePending, true},
		{domain.InvoiceDraft, domain.InvoicePaid, false},
		{domain.InvoicePending, domain.InvoicePaid, true},
		{domain.InvoicePending, domain.InvoiceOverdue, true},
		{domain.InvoicePending, domain.InvoiceCancelled, true},
		{domain.InvoicePending, domain.InvoiceDraft, false},
		{domain.InvoiceOverdue, domain.InvoicePaid, true},
		{domain.InvoiceOverdue, domain.InvoiceCancelled, true},
		{domain.InvoiceOverdue, domain.InvoicePending, false},
		{domain.InvoicePaid, domain.InvoiceCancelled, false},
		{domain.InvoicePaid, domain.InvoiceOverdue, false},
		{domain.InvoiceCancelled, domain.InvoicePending, false},
		{domain.InvoiceCancelled, domain.InvoicePaid, false},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s should be allowed=%v", tc.from, tc.to, tc.allowed)
	}
}

func TestInvoiceStatusIsTerminal(t *testing.T) {
	assert.True(t, domain.InvoicePaid.IsTerminal())
	assert.True(t, domain.InvoiceCancelled.IsTerminal())
	assert.False(t, domain.InvoiceDraft.IsTerminal())
	assert.False(t, domain.InvoicePending.IsTerminal())
	assert.False(t, domain.InvoiceOverdue.IsTerminal())
}

func TestComputeSubtotal(t *testing.T) {
	invoice := domain.Invoice{
		LineItems: []domain.InvoiceLineItem{
			{Description: "Widgets", Quantity: decimal.NewFromInt(3), UnitPrice: decimal.RequireFromString("19.99")},
			{Description: "Shipping", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("5.00")},
		},
	}
	assert.True(t, invoice.ComputeSubtotal().Equal(decimal.RequireFromString("64.97")))
}

func TestSideOpposite(t *testing.T) {
	assert.Equal(t, domain.Credit, domain.Debit.Opposite())
	assert.Equal(t, domain.Debit, domain.Credit.Opposite())
}
