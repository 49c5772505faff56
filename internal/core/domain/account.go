package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Account represents an entry in the chart of accounts. Accounts are never deleted,
// only deactivated, so every historical journal line keeps resolving to a valid account.
type Account struct {
	Code         string      `json:"code"` // Primary key, e.g. "1100"
	Name         string      `json:"name"`
	AccountType  AccountType `json:"accountType"`
	CurrencyCode string      `json:"currencyCode"`
	Description  string      `json:"description"`
	IsActive     bool        `json:"isActive"`
	AuditFields
}

// Well-known account codes used by the invoice and reconciliation flows.
const (
	AccountCash               = "1010"
	AccountAccountsReceivable = "1100"
	AccountSalesTaxPayable    = "2100"
	AccountOwnersEquity       = "3010"
	AccountSalesRevenue       = "4010"
)
