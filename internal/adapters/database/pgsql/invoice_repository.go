package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finflow/accounting/internal/apperrors"
	"github.com/finflow/accounting/internal/core/domain"
	portsrepo "github.com/finflow/accounting/internal/core/ports/repositories"
)

type PgxInvoiceRepository struct {
	pool *pgxpool.Pool
}

// NewPgxInvoiceRepository creates a new repository for invoice data.
func NewPgxInvoiceRepository(pool *pgxpool.Pool) portsrepo.InvoiceRepositoryFacade {
	return &PgxInvoiceRepository{pool: pool}
}

var _ portsrepo.InvoiceRepositoryFacade = (*PgxInvoiceRepository)(nil)

const invoiceColumns = `invoice_id, invoice_number, customer_id, line_items, subtotal, tax, total, currency_code, issue_date, due_date, status, created_at, created_by, last_updated_at, last_updated_by`

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var invoice domain.Invoice
	var lineItemsJSON []byte
	err := row.Scan(
		&invoice.InvoiceID,
		&invoice.InvoiceNumber,
		&invoice.CustomerID,
		&lineItemsJSON,
		&invoice.Subtotal,
		&invoice.Tax,
		&invoice.Total,
		&invoice.CurrencyCode,
		&invoice.IssueDate,
		&invoice.DueDate,
		&invoice.Status,
		&invoice.CreatedAt,
		&invoice.CreatedBy,
		&invoice.LastUpdatedAt,
		&invoice.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(lineItemsJSON, &invoice.LineItems); err != nil {
		return nil, fmt.Errorf("failed to decode line items for invoice %s: %w", invoice.InvoiceID, err)
	}
	return &invoice, nil
}

// FindInvoiceByID retrieves an invoice by its unique identifier.
func (r *PgxInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_id = $1;`
	invoice, err := scanInvoice(r.pool.QueryRow(ctx, query, invoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find invoice %s: %w", invoiceID, err)
	}
	return invoice, nil
}

// ListInvoices retrieves a paginated list of invoices, optionally filtered by status.
func (r *PgxInvoiceRepository) ListInvoices(ctx context.Context, status *domain.InvoiceStatus, limit int, offset int) ([]domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	args := []any{}
	if status != nil {
		query += ` WHERE status = $1 ORDER BY created_at, invoice_id LIMIT $2 OFFSET $3;`
		args = append(args, *status, limit, offset)
	} else {
		query += ` ORDER BY created_at, invoice_id LIMIT $1 OFFSET $2;`
		args = append(args, limit, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	invoices := []domain.Invoice{}
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice row: %w", err)
		}
		invoices = append(invoices, *invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice rows: %w", err)
	}
	return invoices, nil
}

// ListInvoicesDue retrieves PENDING invoices whose due date is before asOf.
func (r *PgxInvoiceRepository) ListInvoicesDue(ctx context.Context, asOf time.Time) ([]domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE status = $1 AND due_date < $2 ORDER BY due_date;`
	rows, err := r.pool.Query(ctx, query, domain.InvoicePending, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query due invoices: %w", err)
	}
	defer rows.Close()

	invoices := []domain.Invoice{}
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice row: %w", err)
		}
		invoices = append(invoices, *invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice rows: %w", err)
	}
	return invoices, nil
}

// SaveInvoice persists a new invoice with its line items.
func (r *PgxInvoiceRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice) error {
	lineItemsJSON, err := json.Marshal(invoice.LineItems)
	if err != nil {
		return fmt.Errorf("failed to encode line items for invoice %s: %w", invoice.InvoiceID, err)
	}

	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err = r.pool.Exec(ctx, query,
		invoice.InvoiceID,
		invoice.InvoiceNumber,
		invoice.CustomerID,
		lineItemsJSON,
		invoice.Subtotal,
		invoice.Tax,
		invoice.Total,
		invoice.CurrencyCode,
		invoice.IssueDate,
		invoice.DueDate,
		invoice.Status,
		invoice.CreatedAt,
		invoice.CreatedBy,
		invoice.LastUpdatedAt,
		invoice.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice %s: %w", invoice.InvoiceID, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert invoice %s: %w", invoice.InvoiceID, err)
	}
	return nil
}

// UpdateInvoiceStatus advances an invoice to a new status.
func (r *PgxInvoiceRepository) UpdateInvoiceStatus(ctx context.Context, invoiceID string, status domain.InvoiceStatus, userID string, now time.Time) error {
	query := `
		UPDATE invoices
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE invoice_id = $1;
	`
	tag, err := r.pool.Exec(ctx, query, invoiceID, status, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update status for invoice %s: %w", invoiceID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
