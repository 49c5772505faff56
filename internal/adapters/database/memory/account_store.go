package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/finflow/accounting/internal/apperrors"
	"github.com/finflow/accounting/internal/core/domain"
	portsrepo "github.com/finflow/accounting/internal/core/ports/repositories"
)

// AccountStore is an in-memory account registry. It guards its map with a mutex and
// hands out copies, so callers can never mutate stored state.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
}

// NewAccountStore creates an empty in-memory account store.
func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[string]domain.Account)}
}

var _ portsrepo.AccountRepositoryFacade = (*AccountStore)(nil)

func (s *AccountStore) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[code]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", code, apperrors.ErrNotFound)
	}
	return &account, nil
}

func (s *AccountStore) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found := make(map[string]domain.Account, len(codes))
	for _, code := range codes {
		if account, ok := s.accounts[code]; ok {
			found[code] = account
		}
	}
	return found, nil
}

func (s *AccountStore) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	codes := make([]string, 0, len(s.accounts))
	for code := range s.accounts {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	if offset < 0 {
		offset = 0
	}
	if offset >= len(codes) {
		return []domain.Account{}, nil
	}
	end := offset + limit
	if end > len(codes) {
		end = len(codes)
	}

	accounts := make([]domain.Account, 0, end-offset)
	for _, code := range codes[offset:end] {
		accounts = append(accounts, s.accounts[code])
	}
	return accounts, nil
}

func (s *AccountStore) SaveAccount(ctx context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[account.Code]; exists {
		return fmt.Errorf("account %s: %w", account.Code, apperrors.ErrDuplicate)
	}
	s.accounts[account.Code] = account
	return nil
}

func (s *AccountStore) DeactivateAccount(ctx context.Context, code string, userID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[code]
	if !ok {
		return fmt.Errorf("account %s: %w", code, apperrors.ErrNotFound)
	}
	account.IsActive = false
	account.LastUpdatedAt = now
	account.LastUpdatedBy = userID
	s.accounts[code] = account
	return nil
}
