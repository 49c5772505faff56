package dto

import (
	"time"

	"github.com/finflow/accounting/internal/core/domain"
	"github.com/shopspring/decimal"
)

// InvoiceLineItemRequest is a single billed line on an invoice draft.
type InvoiceLineItemRequest struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unitPrice" binding:"required"`
}

// CreateInvoiceRequest defines the data needed to create an invoice. Subtotal, Tax and
// Total are supplied by the caller and re-validated against the line items.
type CreateInvoiceRequest struct {
	InvoiceNumber string                   `json:"invoiceNumber" binding:"required"`
	CustomerID    string                   `json:"customerID" binding:"required"`
	CurrencyCode  string                   `json:"currencyCode" binding:"required,len=3"`
	LineItems     []InvoiceLineItemRequest `json:"lineItems" binding:"required,min=1,dive"`
	Subtotal      decimal.Decimal          `json:"subtotal" binding:"required"`
	Tax           decimal.Decimal          `json:"tax"`
	Total         decimal.Decimal          `json:"total" binding:"required"`
	IssueDate     time.Time                `json:"issueDate" binding:"required"`
	DueDate       time.Time                `json:"dueDate" binding:"required"`
}

// InvoiceResponse defines the data returned for an invoice.
type InvoiceResponse struct {
	InvoiceID     string                   `json:"invoiceID"`
	InvoiceNumber string                   `json:"invoiceNumber"`
	CustomerID    string                   `json:"customerID"`
	CurrencyCode  string                   `json:"currencyCode"`
	LineItems     []domain.InvoiceLineItem `json:"lineItems"`
	Subtotal      decimal.Decimal          `json:"subtotal"`
	Tax           decimal.Decimal          `json:"tax"`
	Total         decimal.Decimal          `json:"total"`
	IssueDate     time.Time                `json:"issueDate"`
	DueDate       time.Time                `json:"dueDate"`
	Status        domain.InvoiceStatus     `json:"status"`
	CreatedAt     time.Time                `json:"createdAt"`
}

// ListInvoicesParams defines query parameters for listing invoices.
type ListInvoicesParams struct {
	Status *domain.InvoiceStatus `form:"status" binding:"omitempty,oneof=DRAFT PENDING PAID OVERDUE CANCELLED"`
	Limit  int                   `form:"limit,default=50" binding:"omitempty,min=1"`
	Offset int                   `form:"offset,default=0" binding:"omitempty,min=0"`
}

// OverdueSweepResponse reports how many invoices a sweep transitioned.
type OverdueSweepResponse struct {
	AsOf        time.Time `json:"asOf"`
	Transitions int       `json:"transitions"`
}

// ToInvoiceResponse converts a domain.Invoice to its response DTO.
func ToInvoiceResponse(inv *domain.Invoice) InvoiceResponse {
	return InvoiceResponse{
		InvoiceID:     inv.InvoiceID,
		InvoiceNumber: inv.InvoiceNumber,
		CustomerID:    inv.CustomerID,
		CurrencyCode:  inv.CurrencyCode,
		LineItems:     inv.LineItems,
		Subtotal:      inv.Subtotal,
		Tax:           inv.Tax,
		Total:         inv.Total,
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		Status:        inv.Status,
		CreatedAt:     inv.CreatedAt,
	}
}

// ToInvoiceResponses converts a slice of invoices.
func ToInvoiceResponses(invoices []domain.Invoice) []InvoiceResponse {
	res := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		res[i] = ToInvoiceResponse(&invoices[i])
	}
	return res
}
