package services

import (
	"context"
	"time"

	"github.com/finflow/accounting/internal/core/domain"
	"github.com/finflow/accounting/internal/dto"
	"github.com/shopspring/decimal"
)

// JournalSvcFacade defines the append-only ledger operations.
type JournalSvcFacade interface {
	// PostEntry validates and atomically commits a journal entry. Posting an entry
	// whose (source, sourceRef) was already committed returns the existing entry.
	PostEntry(ctx context.Context, req dto.CreateJournalEntryRequest, userID string) (*domain.JournalEntry, error)

	// GetEntry retrieves a committed entry with its lines.
	GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// GetEntryBySourceRef retrieves the committed entry for a (source, sourceRef) pair.
	GetEntryBySourceRef(ctx context.Context, source domain.EntrySource, sourceRef string) (*domain.JournalEntry, error)

	// ListEntries retrieves a paginated list of committed entries.
	ListEntries(ctx context.Context, limit int, offset int) ([]domain.JournalEntry, error)

	// ReverseEntry posts a new entry with the debit/credit sides of the original
	// swapped. Entries are immutable; this is the only correction mechanism.
	ReverseEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error)

	// BalanceAsOf derives an account's balance by summing all committed lines with
	// entry date on or before asOf. Balances are never stored.
	BalanceAsOf(ctx context.Context, accountCode string, asOf time.Time) (decimal.Decimal, error)
}
