package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finflow/accounting/internal/apperrors"
	"github.com/finflow/accounting/internal/core/domain"
	portsrepo "github.com/finflow/accounting/internal/core/ports/repositories"
	portssvc "github.com/finflow/accounting/internal/core/ports/services"
	"github.com/finflow/accounting/internal/dto"
	"github.com/finflow/accounting/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

var (
	ErrEntryUnbalanced   = errors.New("journal entry does not balance")
	ErrEntryMinLines     = errors.New("journal entry must have at least two lines")
	ErrLineSideAmbiguous = errors.New("journal line must have exactly one non-zero side")
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountInactive   = errors.New("account is inactive")
	ErrCurrencyMismatch  = errors.New("account currency does not match entry currency")
)

// journalService provides the append-only ledger operations.
type journalService struct {
	BaseService
	accountSvc  portssvc.AccountSvcFacade
	journalRepo portsrepo.JournalRepositoryFacade
}

// NewJournalService creates a new JournalService.
func NewJournalService(journalRepo portsrepo.JournalRepositoryFacade, accountSvc portssvc.AccountSvcFacade) portssvc.JournalSvcFacade {
	return &journalService{
		accountSvc:  accountSvc,
		journalRepo: journalRepo,
	}
}

// Ensure journalService implements the portssvc.JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// linesFromRequest converts request lines to domain lines, enforcing the
// one-non-zero-side rule and minor-unit precision.
func linesFromRequest(entryID string, reqLines []dto.JournalLineRequest) ([]domain.JournalLine, error) {
	lines := make([]domain.JournalLine, len(reqLines))
	for i, lr := range reqLines {
		debitSet := lr.Debit.GreaterThan(decimal.Zero)
		creditSet := lr.Credit.GreaterThan(decimal.Zero)
		if lr.Debit.IsNegative() || lr.Credit.IsNegative() {
			return nil, fmt.Errorf("%w: negative amount for account %s", apperrors.ErrValidation, lr.AccountCode)
		}
		if debitSet == creditSet {
			return nil, fmt.Errorf("%w: account %s", ErrLineSideAmbiguous, lr.AccountCode)
		}

		side := domain.Debit
		amount := lr.Debit
		if creditSet {
			side = domain.Credit
			amount = lr.Credit
		}
		if err := accounting.ValidateMinorUnitScale(amount); err != nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}

		lines[i] = domain.JournalLine{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			AccountCode: lr.AccountCode,
			Side:        side,
			Amount:      amount,
		}
	}
	return lines, nil
}

// PostEntry validates and atomically commits a journal entry.
func (s *journalService) PostEntry(ctx context.Context, req dto.CreateJournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	if len(req.Lines) < 2 {
		return nil, ErrEntryMinLines
	}
	if req.Description == "" {
		return nil, fmt.Errorf("%w: entry description is required", apperrors.ErrValidation)
	}

	source := req.Source
	if source == "" {
		source = domain.SourceManual
	}

	// Idempotency: re-posting an already-committed source reference returns the
	// committed entry unchanged.
	if req.SourceRef != "" {
		existing, err := s.journalRepo.FindEntryBySourceRef(ctx, source, req.SourceRef)
		if err == nil {
			s.LogInfo(ctx, "Duplicate post ignored", slog.String("source_ref", req.SourceRef), slog.String("entry_id", existing.EntryID))
			return existing, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to check for existing entry: %w", err)
		}
	}

	entryID := uuid.NewString()
	lines, err := linesFromRequest(entryID, req.Lines)
	if err != nil {
		return nil, err
	}

	if err := accounting.ValidateEntryBalance(lines); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEntryUnbalanced, err.Error())
	}

	// Every line must resolve to an active account in the entry's currency.
	codes := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.AccountCode]; ok {
			continue
		}
		seen[line.AccountCode] = struct{}{}
		codes = append(codes, line.AccountCode)
	}

	accountsMap, err := s.accountSvc.ResolveMany(ctx, codes)
	if err != nil {
		s.LogError(ctx, err, "Failed to resolve accounts for posting")
		return nil, fmt.Errorf("failed to resolve accounts: %w", err)
	}
	for _, code := range codes {
		acc, found := accountsMap[code]
		if !found {
			return nil, fmt.Errorf("%w: code %s", ErrAccountNotFound, code)
		}
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: code %s", ErrAccountInactive, code)
		}
		if acc.CurrencyCode != req.CurrencyCode {
			return nil, fmt.Errorf("%w: account %s is %s, entry is %s", ErrCurrencyMismatch, code, acc.CurrencyCode, req.CurrencyCode)
		}
	}

	now := time.Now().UTC()
	entry := domain.JournalEntry{
		EntryID:      entryID,
		EntryDate:    req.Date,
		Description:  req.Description,
		CurrencyCode: req.CurrencyCode,
		Source:       source,
		SourceRef:    req.SourceRef,
		Lines:        lines,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	entry.ReversesEntryID = req.ReversesEntryID

	if err := s.journalRepo.AppendEntry(ctx, entry); err != nil {
		// A concurrent duplicate may have won the append race; surface its entry.
		if errors.Is(err, apperrors.ErrDuplicate) && req.SourceRef != "" {
			existing, findErr := s.journalRepo.FindEntryBySourceRef(ctx, source, req.SourceRef)
			if findErr == nil {
				return existing, nil
			}
		}
		s.LogError(ctx, err, "Failed to append journal entry", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to append journal entry: %w", err)
	}

	s.LogInfo(ctx, "Journal entry posted",
		slog.String("entry_id", entry.EntryID),
		slog.String("source", string(entry.Source)),
		slog.String("source_ref", entry.SourceRef))
	return &entry, nil
}

// GetEntry retrieves a committed entry with its lines.
func (s *journalService) GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find journal entry", slog.String("entry_id", entryID))
		}
		return nil, fmt.Errorf("failed to find journal entry %s: %w", entryID, err)
	}
	return entry, nil
}

// GetEntryBySourceRef retrieves the committed entry for a (source, sourceRef) pair.
func (s *journalService) GetEntryBySourceRef(ctx context.Context, source domain.EntrySource, sourceRef string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryBySourceRef(ctx, source, sourceRef)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find entry by source ref", slog.String("source_ref", sourceRef))
		}
		return nil, fmt.Errorf("failed to find entry for %s/%s: %w", source, sourceRef, err)
	}
	return entry, nil
}

// ListEntries retrieves a paginated list of committed entries.
func (s *journalService) ListEntries(ctx context.Context, limit int, offset int) ([]domain.JournalEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	entries, err := s.journalRepo.ListEntries(ctx, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journal entries")
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	return entries, nil
}

// ReverseEntry posts a new entry whose lines swap the debit/credit sides of the
// original. The original is never modified.
func (s *journalService) ReverseEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	original, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entry %s for reversal: %w", entryID, err)
	}
	if original.Source == domain.SourceReversal {
		return nil, fmt.Errorf("%w: cannot reverse a reversal entry", apperrors.ErrConflict)
	}

	reqLines := make([]dto.JournalLineRequest, len(original.Lines))
	for i, line := range original.Lines {
		lr := dto.JournalLineRequest{AccountCode: line.AccountCode}
		if line.Side.Opposite() == domain.Debit {
			lr.Debit = line.Amount
		} else {
			lr.Credit = line.Amount
		}
		reqLines[i] = lr
	}

	reversal, err := s.PostEntry(ctx, dto.CreateJournalEntryRequest{
		Date:            original.EntryDate,
		Description:     fmt.Sprintf("Reversal of: %s", original.Description),
		CurrencyCode:    original.CurrencyCode,
		Lines:           reqLines,
		Source:          domain.SourceReversal,
		SourceRef:       original.EntryID,
		ReversesEntryID: &original.EntryID,
	}, userID)
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Journal entry reversed",
		slog.String("original_entry_id", original.EntryID),
		slog.String("reversing_entry_id", reversal.EntryID))
	return reversal, nil
}

// BalanceAsOf derives an account balance from the committed lines. The sign follows
// the account's normal side: an asset with more debits than credits is positive.
func (s *journalService) BalanceAsOf(ctx context.Context, accountCode string, asOf time.Time) (decimal.Decimal, error) {
	account, err := s.accountSvc.Resolve(ctx, accountCode)
	if err != nil {
		return decimal.Zero, err
	}

	lines, err := s.journalRepo.FindLinesByAccount(ctx, accountCode, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch lines for balance", slog.String("account_code", accountCode))
		return decimal.Zero, fmt.Errorf("failed to fetch lines for account %s: %w", accountCode, err)
	}

	balance := decimal.Zero
	for _, line := range lines {
		signed, err := accounting.CalculateSignedAmount(line, account.AccountType)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to sign amount for account %s: %w", accountCode, err)
		}
		balance = balance.Add(signed)
	}
	return balance, nil
}
