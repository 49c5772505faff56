package dto

import (
	"time"

	"github.com/finflow/accounting/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalLineRequest is a single line of a journal entry draft. Exactly one of
// Debit/Credit must be non-zero; a line with both sides set (or neither) is invalid.
type JournalLineRequest struct {
	AccountCode string          `json:"accountCode" binding:"required"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// CreateJournalEntryRequest defines the data needed to post a journal entry.
type CreateJournalEntryRequest struct {
	Date         time.Time            `json:"date" binding:"required"`
	Description  string               `json:"description" binding:"required"`
	CurrencyCode string               `json:"currencyCode" binding:"required,len=3"`
	Lines        []JournalLineRequest `json:"entries" binding:"required,min=2,dive"`

	// Source and SourceRef form the idempotency key. HTTP callers default to MANUAL
	// with a caller-supplied reference; internal callers set these explicitly.
	Source    domain.EntrySource `json:"source,omitempty"`
	SourceRef string             `json:"sourceRef,omitempty"`

	// Set only by ReverseEntry; links the reversal to the entry it undoes.
	ReversesEntryID *string `json:"-"`
}

// JournalLineResponse defines the data returned for a journal line.
type JournalLineResponse struct {
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName,omitempty"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID         string                `json:"entryID"`
	Date            time.Time             `json:"date"`
	Description     string                `json:"description"`
	CurrencyCode    string                `json:"currencyCode"`
	Source          domain.EntrySource    `json:"source"`
	SourceRef       string                `json:"sourceRef"`
	ReversesEntryID *string               `json:"reversesEntryID,omitempty"`
	Entries         []JournalLineResponse `json:"entries"`
	CreatedAt       time.Time             `json:"createdAt"`
}

// ListEntriesParams defines query parameters for listing journal entries.
type ListEntriesParams struct {
	Limit  int `form:"limit,default=50" binding:"omitempty,min=1"`
	Offset int `form:"offset,default=0" binding:"omitempty,min=0"`
}

// ToJournalEntryResponse converts a domain.JournalEntry to its response DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	lines := make([]JournalLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lr := JournalLineResponse{AccountCode: l.AccountCode}
		if l.Side == domain.Debit {
			lr.Debit = l.Amount
		} else {
			lr.Credit = l.Amount
		}
		lines[i] = lr
	}
	return JournalEntryResponse{
		EntryID:         e.EntryID,
		Date:            e.EntryDate,
		Description:     e.Description,
		CurrencyCode:    e.CurrencyCode,
		Source:          e.Source,
		SourceRef:       e.SourceRef,
		ReversesEntryID: e.ReversesEntryID,
		Entries:         lines,
		CreatedAt:       e.CreatedAt,
	}
}

// ToJournalEntryResponses converts a slice of entries.
func ToJournalEntryResponses(entries []domain.JournalEntry) []JournalEntryResponse {
	res := make([]JournalEntryResponse, len(entries))
	for i := range entries {
		res[i] = ToJournalEntryResponse(&entries[i])
	}
	return res
}
