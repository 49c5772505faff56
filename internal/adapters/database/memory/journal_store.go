package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/finflow/accounting/internal/apperrors"
	"github.com/finflow/accounting/internal/core/domain"
	portsrepo "github.com/finflow/accounting/internal/core/ports/repositories"
)

// JournalStore is an in-memory append-only ledger. A single mutex serializes appends,
// which is what gives (source, sourceRef) uniqueness its atomicity.
type JournalStore struct {
	mu       sync.RWMutex
	entries  []domain.JournalEntry
	byID     map[string]int
	bySource map[string]int // key: source + "\x00" + sourceRef
}

// NewJournalStore creates an empty in-memory journal store.
func NewJournalStore() *JournalStore {
	return &JournalStore{
		byID:     make(map[string]int),
		bySource: make(map[string]int),
	}
}

var _ portsrepo.JournalRepositoryFacade = (*JournalStore)(nil)

func sourceKey(source domain.EntrySource, sourceRef string) string {
	return string(source) + "\x00" + sourceRef
}

// copyEntry returns a deep copy so callers cannot mutate committed state.
func copyEntry(entry domain.JournalEntry) domain.JournalEntry {
	out := entry
	out.Lines = make([]domain.JournalLine, len(entry.Lines))
	copy(out.Lines, entry.Lines)
	if entry.ReversesEntryID != nil {
		ref := *entry.ReversesEntryID
		out.ReversesEntryID = &ref
	}
	return out
}

func (s *JournalStore) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[entryID]
	if !ok {
		return nil, fmt.Errorf("journal entry %s: %w", entryID, apperrors.ErrNotFound)
	}
	entry := copyEntry(s.entries[idx])
	return &entry, nil
}

func (s *JournalStore) FindEntryBySourceRef(ctx context.Context, source domain.EntrySource, sourceRef string) (*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.bySource[sourceKey(source, sourceRef)]
	if !ok {
		return nil, fmt.Errorf("journal entry for %s/%s: %w", source, sourceRef, apperrors.ErrNotFound)
	}
	entry := copyEntry(s.entries[idx])
	return &entry, nil
}

func (s *JournalStore) ListEntries(ctx context.Context, limit int, offset int) ([]domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if offset < 0 {
		offset = 0
	}
	if offset >= len(s.entries) {
		return []domain.JournalEntry{}, nil
	}
	end := offset + limit
	if end > len(s.entries) {
		end = len(s.entries)
	}
	out := make([]domain.JournalEntry, 0, end-offset)
	for _, entry := range s.entries[offset:end] {
		out = append(out, copyEntry(entry))
	}
	return out, nil
}

func (s *JournalStore) FindLinesByAccount(ctx context.Context, accountCode string, asOf time.Time) ([]domain.JournalLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var lines []domain.JournalLine
	for _, entry := range s.entries {
		if entry.EntryDate.After(asOf) {
			continue
		}
		for _, line := range entry.Lines {
			if line.AccountCode == accountCode {
				lines = append(lines, line)
			}
		}
	}
	return lines, nil
}

func (s *JournalStore) AppendEntry(ctx context.Context, entry domain.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[entry.EntryID]; exists {
		return fmt.Errorf("journal entry %s: %w", entry.EntryID, apperrors.ErrDuplicate)
	}
	key := ""
	if entry.SourceRef != "" {
		key = sourceKey(entry.Source, entry.SourceRef)
		if _, exists := s.bySource[key]; exists {
			return fmt.Errorf("journal entry for %s/%s: %w", entry.Source, entry.SourceRef, apperrors.ErrDuplicate)
		}
	}

	s.entries = append(s.entries, copyEntry(entry))
	idx := len(s.entries) - 1
	s.byID[entry.EntryID] = idx
	if key != "" {
		s.bySource[key] = idx
	}
	return nil
}

// Snapshot returns a deep copy of all committed entries in commit order. Reporting
// aggregates over the copy, so a report never observes a half-applied append.
func (s *JournalStore) Snapshot() []domain.JournalEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.JournalEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, copyEntry(entry))
	}
	return out
}
