package repositories

import (
	"context"

	"github.com/finflow/accounting/internal/core/domain"
)

// ReviewQueue receives settlement events that could not be reconciled automatically.
// Enqueue must succeed or error loudly; unmatched events are never dropped.
type ReviewQueue interface {
	Enqueue(ctx context.Context, item domain.ReviewItem) error
	ListPending(ctx context.Context, limit int) ([]domain.ReviewItem, error)
}
