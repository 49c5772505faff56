package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/finflow/accounting/internal/adapters/database/memory"
	"github.com/finflow/accounting/internal/apperrors"
	"github.com/finflow/accounting/internal/core/domain"
	portssvc "github.com/finflow/accounting/internal/core/ports/services"
	"github.com/finflow/accounting/internal/core/services"
	"github.com/finflow/accounting/internal/dto"
)

// ReportingServiceTestSuite drives reports off ledger activity recorded through the
// real services, over the in-memory adapters.
type ReportingServiceTestSuite struct {
	suite.Suite
	journal    *memory.JournalStore
	journalSvc portssvc.JournalSvcFacade
	invoiceSvc portssvc.InvoiceSvcFacade
	service    portssvc.ReportingSvcFacade
	userID     string
	asOf       time.Time
}

func (suite *ReportingServiceTestSuite) SetupTest() {
	accounts := memory.NewAccountStore()
	suite.journal = memory.NewJournalStore()
	invoices := memory.NewInvoiceStore()
	suite.userID = uuid.NewString()
	suite.asOf = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	accountSvc := services.NewAccountService(accounts)
	suite.Require().NoError(accountSvc.SeedDefaultChart(context.Background(), suite.userID))

	suite.journalSvc = services.NewJournalService(suite.journal, accountSvc)
	suite.invoiceSvc = services.NewInvoiceService(invoices, suite.journalSvc, accountSvc)
	suite.service = services.NewReportingService(memory.NewReportingStore(accounts, suite.journal))
}

// billCustomer creates an invoice, which posts receivable against revenue.
func (suite *ReportingServiceTestSuite) billCustomer(number, total string) *domain.Invoice {
	issue := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	invoice, err := suite.invoiceSvc.CreateInvoice(context.Background(), dto.CreateInvoiceRequest{
		InvoiceNumber: number,
		CustomerID:    "cust-1",
		CurrencyCode:  "USD",
		LineItems: []dto.InvoiceLineItemRequest{
			{Description: "Consulting", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString(total)},
		},
		Subtotal:  decimal.RequireFromString(total),
		Tax:       decimal.Zero,
		Total:     decimal.RequireFromString(total),
		IssueDate: issue,
		DueDate:   issue.AddDate(0, 0, 30),
	}, suite.userID)
	suite.Require().NoError(err)
	return invoice
}

// collectCash posts a cash settlement against the receivable.
func (suite *ReportingServiceTestSuite) collectCash(amount string) {
	_, err := suite.journalSvc.PostEntry(context.Background(), dto.CreateJournalEntryRequest{
		Date:         time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		Description:  "Cash collection",
		CurrencyCode: "USD",
		Lines: []dto.JournalLineRequest{
			{AccountCode: domain.AccountCash, Debit: decimal.RequireFromString(amount)},
			{AccountCode: domain.AccountAccountsReceivable, Credit: decimal.RequireFromString(amount)},
		},
		Source:    domain.SourceSettlement,
		SourceRef: uuid.NewString(),
	}, suite.userID)
	suite.Require().NoError(err)
}

func (suite *ReportingServiceTestSuite) rowByCode(rows []domain.TrialBalanceRow, code string) *domain.TrialBalanceRow {
	for i := range rows {
		if rows[i].AccountCode == code {
			return &rows[i]
		}
	}
	return nil
}

// --- Test Cases ---

func (suite *ReportingServiceTestSuite) TestTrialBalance_Balances() {
	ctx := context.Background()
	suite.billCustomer("INV-2001", "500.00")
	suite.collectCash("200.00")

	rows, err := suite.service.TrialBalance(ctx, suite.asOf)
	suite.Require().NoError(err)

	totalDebit, totalCredit := decimal.Zero, decimal.Zero
	for _, row := range rows {
		totalDebit = totalDebit.Add(row.Debit)
		totalCredit = totalCredit.Add(row.Credit)
	}
	suite.True(totalDebit.Equal(totalCredit), "debits %s != credits %s", totalDebit, totalCredit)

	ar := suite.rowByCode(rows, domain.AccountAccountsReceivable)
	suite.Require().NotNil(ar)
	suite.True(ar.Debit.Equal(decimal.RequireFromString("500.00")))
	suite.True(ar.Credit.Equal(decimal.RequireFromString("200.00")))

	cash := suite.rowByCode(rows, domain.AccountCash)
	suite.Require().NotNil(cash)
	suite.True(cash.Debit.Equal(decimal.RequireFromString("200.00")))
}

func (suite *ReportingServiceTestSuite) TestTrialBalance_RespectsAsOfDate() {
	ctx := context.Background()
	suite.billCustomer("INV-2001", "500.00")

	// Before any activity the ledger is empty.
	rows, err := suite.service.TrialBalance(ctx, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC))
	suite.Require().NoError(err)
	for _, row := range rows {
		suite.True(row.Debit.IsZero(), "account %s has activity before the cutoff", row.AccountCode)
		suite.True(row.Credit.IsZero(), "account %s has activity before the cutoff", row.AccountCode)
	}
}

func (suite *ReportingServiceTestSuite) TestBalanceSheet_EquationHolds() {
	ctx := context.Background()
	suite.billCustomer("INV-2001", "500.00")
	suite.collectCash("200.00")

	report, err := suite.service.BalanceSheet(ctx, suite.asOf)
	suite.Require().NoError(err)

	suite.True(report.TotalAssets.Equal(report.TotalLiabilities.Add(report.TotalEquity)))
	suite.True(report.TotalAssets.Equal(decimal.RequireFromString("500.00")))

	// Unsettled revenue surfaces in equity as current period earnings.
	var earnings *domain.AccountAmount
	for i := range report.Equity {
		if report.Equity[i].Name == "Current Period Earnings" {
			earnings = &report.Equity[i]
		}
	}
	suite.Require().NotNil(earnings)
	suite.True(earnings.NetAmount.Equal(decimal.RequireFromString("500.00")))
}

func (suite *ReportingServiceTestSuite) TestProfitAndLoss_NetsRevenue() {
	ctx := context.Background()
	suite.billCustomer("INV-2001", "500.00")
	suite.billCustomer("INV-2002", "250.00")

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	report, err := suite.service.ProfitAndLoss(ctx, from, suite.asOf)
	suite.Require().NoError(err)

	suite.True(report.NetProfit.Equal(decimal.RequireFromString("750.00")))
	suite.Require().Len(report.Revenue, 1)
	suite.Equal(domain.AccountSalesRevenue, report.Revenue[0].AccountCode)
	suite.Empty(report.Expenses)
}

func (suite *ReportingServiceTestSuite) TestProfitAndLoss_ExcludesOutsidePeriod() {
	ctx := context.Background()
	suite.billCustomer("INV-2001", "500.00")

	// A window that ends before the invoice was posted sees nothing.
	from := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	report, err := suite.service.ProfitAndLoss(ctx, from, to)
	suite.Require().NoError(err)
	suite.True(report.NetProfit.IsZero())
}

func (suite *ReportingServiceTestSuite) TestTrialBalance_RefusesCorruptLedger() {
	ctx := context.Background()

	// Slip an unbalanced entry past the posting service, straight into the store.
	err := suite.journal.AppendEntry(ctx, domain.JournalEntry{
		EntryID:      uuid.NewString(),
		EntryDate:    time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		Description:  "Corrupt entry",
		CurrencyCode: "USD",
		Source:       domain.SourceManual,
		Lines: []domain.JournalLine{
			{LineID: uuid.NewString(), AccountCode: domain.AccountCash, Side: domain.Debit, Amount: decimal.RequireFromString("100.00")},
			{LineID: uuid.NewString(), AccountCode: domain.AccountSalesRevenue, Side: domain.Credit, Amount: decimal.RequireFromString("60.00")},
		},
	})
	suite.Require().NoError(err)

	_, err = suite.service.TrialBalance(ctx, suite.asOf)
	suite.ErrorIs(err, apperrors.ErrLedgerIntegrity)

	_, err = suite.service.BalanceSheet(ctx, suite.asOf)
	suite.ErrorIs(err, apperrors.ErrLedgerIntegrity)
}

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}
