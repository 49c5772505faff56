package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side indicates whether a journal line is a Debit or a Credit.
type Side string

const (
	Debit  Side = "DEBIT"
	Credit Side = "CREDIT"
)

// EntrySource classifies what produced a journal entry. Together with SourceRef it
// forms the idempotency key that makes re-delivery of the same upstream event safe.
type EntrySource string

const (
	SourceInvoice    EntrySource = "INVOICE"
	SourceSettlement EntrySource = "SETTLEMENT"
	SourceReversal   EntrySource = "REVERSAL"
	SourceManual     EntrySource = "MANUAL"
)

// JournalEntry represents a single, balanced financial event composed of multiple lines.
// Entries are immutable once committed; corrections are made via reversing entries.
type JournalEntry struct {
	EntryID         string        `json:"entryID"` // Primary Key (UUID)
	EntryDate       time.Time     `json:"entryDate"`
	Description     string        `json:"description"`
	CurrencyCode    string        `json:"currencyCode"`
	Source          EntrySource   `json:"source"`
	SourceRef       string        `json:"sourceRef"` // Originating invoice or event id
	ReversesEntryID *string       `json:"reversesEntryID,omitempty"`
	Lines           []JournalLine `json:"lines,omitempty"`
	AuditFields
}

// JournalLine is a single debit or credit within a JournalEntry, affecting one account.
// Amount is always positive; the Side carries the direction.
type JournalLine struct {
	LineID      string          `json:"lineID"`
	EntryID     string          `json:"entryID"`
	AccountCode string          `json:"accountCode"`
	Side        Side            `json:"side"`
	Amount      decimal.Decimal `json:"amount"`
}

// Opposite returns the other side, used when building reversing entries.
func (s Side) Opposite() Side {
	if s == Debit {
		return Credit
	}
	return Debit
}
