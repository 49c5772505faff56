package dto

import (
	"time"

	"github.com/finflow/accounting/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to register a new account.
type CreateAccountRequest struct {
	Code         string             `json:"code" binding:"required"`
	Name         string             `json:"name" binding:"required"`
	AccountType  domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	CurrencyCode string             `json:"currencyCode" binding:"required,len=3"`
	Description  string             `json:"description"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	Code         string             `json:"code"`
	Name         string             `json:"name"`
	AccountType  domain.AccountType `json:"accountType"`
	CurrencyCode string             `json:"currencyCode"`
	Description  string             `json:"description"`
	IsActive     bool               `json:"isActive"`
	CreatedAt    time.Time          `json:"createdAt"`
	CreatedBy    string             `json:"createdBy"`
}

// AccountBalanceResponse defines the data returned for a derived balance query.
type AccountBalanceResponse struct {
	Code    string          `json:"code"`
	AsOf    time.Time       `json:"asOf"`
	Balance decimal.Decimal `json:"balance"`
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	Limit  int `form:"limit,default=50" binding:"omitempty,min=1"`
	Offset int `form:"offset,default=0" binding:"omitempty,min=0"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		Code:         acc.Code,
		Name:         acc.Name,
		AccountType:  acc.AccountType,
		CurrencyCode: acc.CurrencyCode,
		Description:  acc.Description,
		IsActive:     acc.IsActive,
		CreatedAt:    acc.CreatedAt,
		CreatedBy:    acc.CreatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = ToAccountResponse(&acc)
	}
	return res
}
