package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/finflow/accounting/internal/apperrors"
	"github.com/finflow/accounting/internal/core/domain"
	portsrepo "github.com/finflow/accounting/internal/core/ports/repositories"
	portssvc "github.com/finflow/accounting/internal/core/ports/services"
	"github.com/finflow/accounting/internal/dto"
)

// accountService implements the account registry.
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new account service.
func NewAccountService(repo portsrepo.AccountRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: repo}
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// Register creates a new account after checking the code is unused.
func (s *accountService) Register(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	if _, err := s.accountRepo.FindAccountByCode(ctx, req.Code); err == nil {
		return nil, fmt.Errorf("%w: account code %s", apperrors.ErrDuplicate, req.Code)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check for existing account", slog.String("code", req.Code))
		return nil, fmt.Errorf("failed to check for existing account %s: %w", req.Code, err)
	}

	now := time.Now().UTC()
	account := domain.Account{
		Code:         req.Code,
		Name:         req.Name,
		AccountType:  req.AccountType,
		CurrencyCode: req.CurrencyCode,
		Description:  req.Description,
		IsActive:     true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account", slog.String("code", req.Code))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.LogInfo(ctx, "Account registered", slog.String("code", account.Code), slog.String("type", string(account.AccountType)))
	return &account, nil
}

// Resolve looks up an account by code.
func (s *accountService) Resolve(ctx context.Context, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to resolve account", slog.String("code", code))
		}
		return nil, fmt.Errorf("failed to resolve account %s: %w", code, err)
	}
	return account, nil
}

// ResolveMany looks up multiple accounts by code.
func (s *accountService) ResolveMany(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	accounts, err := s.accountRepo.FindAccountsByCodes(ctx, codes)
	if err != nil {
		s.LogError(ctx, err, "Failed to resolve accounts", slog.Int("count", len(codes)))
		return nil, fmt.Errorf("failed to resolve accounts: %w", err)
	}
	return accounts, nil
}

// ListAccounts retrieves a paginated list of accounts.
func (s *accountService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// Deactivate marks an account inactive. Historical lines keep resolving; new postings
// against the account are rejected by the journal service.
func (s *accountService) Deactivate(ctx context.Context, code string, userID string) error {
	if _, err := s.accountRepo.FindAccountByCode(ctx, code); err != nil {
		return fmt.Errorf("failed to find account %s for deactivation: %w", code, err)
	}
	if err := s.accountRepo.DeactivateAccount(ctx, code, userID, time.Now().UTC()); err != nil {
		s.LogError(ctx, err, "Failed to deactivate account", slog.String("code", code))
		return fmt.Errorf("failed to deactivate account %s: %w", code, err)
	}
	s.LogInfo(ctx, "Account deactivated", slog.String("code", code))
	return nil
}

// SeedDefaultChart installs the default chart of accounts, skipping codes that
// already exist so boot-time seeding stays idempotent.
func (s *accountService) SeedDefaultChart(ctx context.Context, userID string) error {
	for _, req := range DefaultChart() {
		_, err := s.Register(ctx, req, userID)
		if err != nil && !errors.Is(err, apperrors.ErrDuplicate) {
			return fmt.Errorf("failed to seed account %s: %w", req.Code, err)
		}
	}
	return nil
}

// DefaultChart returns the standard chart of accounts the invoice and reconciliation
// flows depend on.
func DefaultChart() []dto.CreateAccountRequest {
	return []dto.CreateAccountRequest{
		{Code: domain.AccountCash, Name: "Cash", AccountType: domain.Asset, CurrencyCode: "USD", Description: "Primary cash account"},
		{Code: domain.AccountAccountsReceivable, Name: "Accounts Receivable", AccountType: domain.Asset, CurrencyCode: "USD", Description: "Amounts billed but not yet collected"},
		{Code: domain.AccountSalesTaxPayable, Name: "Sales Tax Payable", AccountType: domain.Liability, CurrencyCode: "USD", Description: "Collected tax owed to authorities"},
		{Code: domain.AccountOwnersEquity, Name: "Owner's Equity", AccountType: domain.Equity, CurrencyCode: "USD"},
		{Code: domain.AccountSalesRevenue, Name: "Sales Revenue", AccountType: domain.Revenue, CurrencyCode: "USD"},
		{Code: "5010", Name: "Operating Expenses", AccountType: domain.Expense, CurrencyCode: "USD"},
	}
}
