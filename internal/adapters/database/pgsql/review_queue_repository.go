package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finflow/accounting/internal/core/domain"
	portsrepo "github.com/finflow/accounting/internal/core/ports/repositories"
)

type PgxReviewQueueRepository struct {
	pool *pgxpool.Pool
}

// NewPgxReviewQueueRepository creates a new repository for the manual-review queue.
func NewPgxReviewQueueRepository(pool *pgxpool.Pool) portsrepo.ReviewQueue {
	return &PgxReviewQueueRepository{pool: pool}
}

var _ portsrepo.ReviewQueue = (*PgxReviewQueueRepository)(nil)

// Enqueue persists an unreconcilable settlement event for operator attention.
func (r *PgxReviewQueueRepository) Enqueue(ctx context.Context, item domain.ReviewItem) error {
	query := `
		INSERT INTO review_queue (review_id, event_id, invoice_ref, amount, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.pool.Exec(ctx, query,
		item.ReviewID,
		item.EventID,
		item.InvoiceRef,
		item.Amount,
		item.Reason,
		item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert review item %s: %w", item.ReviewID, err)
	}
	return nil
}

// ListPending retrieves queued review items oldest first.
func (r *PgxReviewQueueRepository) ListPending(ctx context.Context, limit int) ([]domain.ReviewItem, error) {
	query := `
		SELECT review_id, event_id, invoice_ref, amount, reason, created_at
		FROM review_queue
		ORDER BY created_at
		LIMIT $1;
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query review queue: %w", err)
	}
	defer rows.Close()

	items := []domain.ReviewItem{}
	for rows.Next() {
		var item domain.ReviewItem
		if err := rows.Scan(
			&item.ReviewID,
			&item.EventID,
			&item.InvoiceRef,
			&item.Amount,
			&item.Reason,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan review item row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating review item rows: %w", err)
	}
	return items, nil
}
