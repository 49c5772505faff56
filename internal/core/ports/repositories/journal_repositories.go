package repositories

import (
	"context"
	"time"

	"github.com/finflow/accounting/internal/core/domain"
)

// JournalReader defines read operations for committed journal entries
type JournalReader interface {
	// FindEntryByID retrieves a specific journal entry with its lines.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindEntryBySourceRef retrieves the committed entry for an idempotency key, if any.
	FindEntryBySourceRef(ctx context.Context, source domain.EntrySource, sourceRef string) (*domain.JournalEntry, error)

	// ListEntries retrieves a paginated list of entries in commit order, lines included.
	ListEntries(ctx context.Context, limit int, offset int) ([]domain.JournalEntry, error)

	// FindLinesByAccount retrieves all committed lines for an account whose entry date
	// is on or before asOf, in commit order.
	FindLinesByAccount(ctx context.Context, accountCode string, asOf time.Time) ([]domain.JournalLine, error)
}

// JournalWriter defines write operations for the append-only ledger
type JournalWriter interface {
	// AppendEntry atomically commits an entry and its lines. The implementation must
	// serialize appends and enforce uniqueness of (source, sourceRef): a concurrent
	// duplicate loses the race and surfaces apperrors.ErrDuplicate.
	AppendEntry(ctx context.Context, entry domain.JournalEntry) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}
