package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finflow/accounting/internal/apperrors"
	"github.com/finflow/accounting/internal/core/domain"
	portsrepo "github.com/finflow/accounting/internal/core/ports/repositories"
)

type PgxJournalRepository struct {
	pool *pgxpool.Pool
}

// NewPgxJournalRepository creates a new repository for journal entry data.
func NewPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{pool: pool}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

const entryColumns = `entry_id, entry_date, description, currency_code, source_type, source_ref, reverses_entry_id, created_at, created_by, last_updated_at, last_updated_by`

// AppendEntry atomically commits an entry and its lines within a DB transaction. The
// partial unique index on (source_type, source_ref) is what makes concurrent
// duplicate appends lose the race.
func (r *PgxJournalRepository) AppendEntry(ctx context.Context, entry domain.JournalEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	entryQuery := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err = tx.Exec(ctx, entryQuery,
		entry.EntryID,
		entry.EntryDate,
		entry.Description,
		entry.CurrencyCode,
		entry.Source,
		entry.SourceRef,
		entry.ReversesEntryID,
		entry.CreatedAt,
		entry.CreatedBy,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("journal entry for %s/%s: %w", entry.Source, entry.SourceRef, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert journal entry %s: %w", entry.EntryID, err)
	}

	// Batch the line inserts; a multi-line entry is the common case.
	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO journal_lines (line_id, entry_id, account_code, side, amount)
		VALUES ($1, $2, $3, $4, $5);
	`
	for _, line := range entry.Lines {
		batch.Queue(lineQuery,
			line.LineID,
			line.EntryID,
			line.AccountCode,
			line.Side,
			line.Amount,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to execute line batch for entry %s: %w", entry.EntryID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction for entry %s: %w", entry.EntryID, err)
	}
	return nil
}

func (r *PgxJournalRepository) scanEntry(ctx context.Context, row pgx.Row) (*domain.JournalEntry, error) {
	var entry domain.JournalEntry
	err := row.Scan(
		&entry.EntryID,
		&entry.EntryDate,
		&entry.Description,
		&entry.CurrencyCode,
		&entry.Source,
		&entry.SourceRef,
		&entry.ReversesEntryID,
		&entry.CreatedAt,
		&entry.CreatedBy,
		&entry.LastUpdatedAt,
		&entry.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}

	lines, err := r.findLinesByEntryID(ctx, entry.EntryID)
	if err != nil {
		return nil, err
	}
	entry.Lines = lines
	return &entry, nil
}

func (r *PgxJournalRepository) findLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	query := `
		SELECT line_id, entry_id, account_code, side, amount
		FROM journal_lines
		WHERE entry_id = $1
		ORDER BY line_id;
	`
	rows, err := r.pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for entry %s: %w", entryID, err)
	}
	defer rows.Close()

	lines := []domain.JournalLine{}
	for rows.Next() {
		var line domain.JournalLine
		if err := rows.Scan(
			&line.LineID,
			&line.EntryID,
			&line.AccountCode,
			&line.Side,
			&line.Amount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan line row for entry %s: %w", entryID, err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows for entry %s: %w", entryID, err)
	}
	return lines, nil
}

// FindEntryByID retrieves a journal entry with its lines.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1;`
	entry, err := r.scanEntry(ctx, r.pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find journal entry %s: %w", entryID, err)
	}
	return entry, nil
}

// FindEntryBySourceRef retrieves the committed entry for an idempotency key, if any.
func (r *PgxJournalRepository) FindEntryBySourceRef(ctx context.Context, source domain.EntrySource, sourceRef string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE source_type = $1 AND source_ref = $2;`
	entry, err := r.scanEntry(ctx, r.pool.QueryRow(ctx, query, source, sourceRef))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find journal entry for %s/%s: %w", source, sourceRef, err)
	}
	return entry, nil
}

// ListEntries retrieves a paginated list of entries in commit order, lines included.
func (r *PgxJournalRepository) ListEntries(ctx context.Context, limit int, offset int) ([]domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries ORDER BY created_at, entry_id LIMIT $1 OFFSET $2;`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.JournalEntry{}
	ids := []string{}
	for rows.Next() {
		var entry domain.JournalEntry
		if err := rows.Scan(
			&entry.EntryID,
			&entry.EntryDate,
			&entry.Description,
			&entry.CurrencyCode,
			&entry.Source,
			&entry.SourceRef,
			&entry.ReversesEntryID,
			&entry.CreatedAt,
			&entry.CreatedBy,
			&entry.LastUpdatedAt,
			&entry.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry row: %w", err)
		}
		entries = append(entries, entry)
		ids = append(ids, entry.EntryID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal entry rows: %w", err)
	}

	if len(ids) == 0 {
		return entries, nil
	}

	lineQuery := `
		SELECT line_id, entry_id, account_code, side, amount
		FROM journal_lines
		WHERE entry_id = ANY($1)
		ORDER BY line_id;
	`
	lineRows, err := r.pool.Query(ctx, lineQuery, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for entries: %w", err)
	}
	defer lineRows.Close()

	linesByEntry := make(map[string][]domain.JournalLine, len(ids))
	for lineRows.Next() {
		var line domain.JournalLine
		if err := lineRows.Scan(
			&line.LineID,
			&line.EntryID,
			&line.AccountCode,
			&line.Side,
			&line.Amount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan line row: %w", err)
		}
		linesByEntry[line.EntryID] = append(linesByEntry[line.EntryID], line)
	}
	if err := lineRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows: %w", err)
	}

	for i := range entries {
		entries[i].Lines = linesByEntry[entries[i].EntryID]
	}
	return entries, nil
}

// FindLinesByAccount retrieves all committed lines for an account with entry date on
// or before asOf, in commit order.
func (r *PgxJournalRepository) FindLinesByAccount(ctx context.Context, accountCode string, asOf time.Time) ([]domain.JournalLine, error) {
	query := `
		SELECT l.line_id, l.entry_id, l.account_code, l.side, l.amount
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE l.account_code = $1 AND e.entry_date <= $2
		ORDER BY e.created_at, l.line_id;
	`
	rows, err := r.pool.Query(ctx, query, accountCode, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for account %s: %w", accountCode, err)
	}
	defer rows.Close()

	lines := []domain.JournalLine{}
	for rows.Next() {
		var line domain.JournalLine
		if err := rows.Scan(
			&line.LineID,
			&line.EntryID,
			&line.AccountCode,
			&line.Side,
			&line.Amount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan line row for account %s: %w", accountCode, err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows for account %s: %w", accountCode, err)
	}
	return lines, nil
}
