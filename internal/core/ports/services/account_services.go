package services

import (
	"context"

	"github.com/finflow/accounting/internal/core/domain"
	"github.com/finflow/accounting/internal/dto"
)

// AccountSvcFacade defines the account registry operations.
type AccountSvcFacade interface {
	// Register creates a new account, rejecting duplicate codes.
	Register(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// Resolve looks up an account by code.
	Resolve(ctx context.Context, code string) (*domain.Account, error)

	// ResolveMany looks up multiple accounts by code, keyed by code.
	ResolveMany(ctx context.Context, codes []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)

	// Deactivate marks an account inactive so no new lines can reference it.
	Deactivate(ctx context.Context, code string, userID string) error

	// SeedDefaultChart installs the default chart of accounts if it is not present.
	SeedDefaultChart(ctx context.Context, userID string) error
}
