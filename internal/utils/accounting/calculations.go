package accounting

import (
	"fmt"

	"github.com/finflow/accounting/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CalculateSignedAmount applies the correct sign to a line amount based on account type
// and side. This is used in both services and repositories to ensure consistent
// accounting logic.
//
// DEBIT to ASSET/EXPENSE -> Positive (+)
// CREDIT to ASSET/EXPENSE -> Negative (-)
// DEBIT to LIABILITY/EQUITY/REVENUE -> Negative (-)
// CREDIT to LIABILITY/EQUITY/REVENUE -> Positive (+)
func CalculateSignedAmount(line domain.JournalLine, accountType domain.AccountType) (decimal.Decimal, error) {
	signedAmount := line.Amount
	isDebit := line.Side == domain.Debit

	switch accountType {
	case domain.Asset, domain.Expense:
		if !isDebit {
			signedAmount = signedAmount.Neg()
		}
	case domain.Liability, domain.Equity, domain.Revenue:
		if isDebit {
			signedAmount = signedAmount.Neg()
		}
	default:
		return decimal.Zero, fmt.Errorf("unknown account type '%s' encountered for account code %s", accountType, line.AccountCode)
	}
	return signedAmount, nil
}

// ValidateEntryBalance checks that the lines of a journal entry satisfy the
// double-entry invariant: at least two lines, every amount strictly positive with a
// single side, and the sum of debits equal to the sum of credits.
func ValidateEntryBalance(lines []domain.JournalLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("journal entry must have at least two lines")
	}

	debitsSum := decimal.Zero
	creditsSum := decimal.Zero

	for _, line := range lines {
		if line.Amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("line amount must be positive for account %s", line.AccountCode)
		}
		if line.Side != domain.Debit && line.Side != domain.Credit {
			return fmt.Errorf("line for account %s must be either a debit or a credit", line.AccountCode)
		}
		if line.Side == domain.Debit {
			debitsSum = debitsSum.Add(line.Amount)
		} else {
			creditsSum = creditsSum.Add(line.Amount)
		}
	}

	if !debitsSum.Equal(creditsSum) {
		return fmt.Errorf("journal lines do not balance: debits sum is %s and credits sum is %s",
			debitsSum.String(), creditsSum.String())
	}

	return nil
}

// ValidateMinorUnitScale rejects amounts with more precision than the currency's
// minor unit (two decimal places). Keeping amounts on the minor-unit grid avoids
// rounding drift in balance checks.
func ValidateMinorUnitScale(amount decimal.Decimal) error {
	if amount.Exponent() < -2 && !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("amount %s exceeds minor-unit precision", amount.String())
	}
	return nil
}
