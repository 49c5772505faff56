package memory

import (
	"context"
	"sync"

	"github.com/finflow/accounting/internal/core/domain"
	portsrepo "github.com/finflow/accounting/internal/core/ports/repositories"
)

// ReviewQueueStore is an in-memory manual-review queue.
type ReviewQueueStore struct {
	mu    sync.RWMutex
	items []domain.ReviewItem
}

// NewReviewQueueStore creates an empty in-memory review queue.
func NewReviewQueueStore() *ReviewQueueStore {
	return &ReviewQueueStore{}
}

var _ portsrepo.ReviewQueue = (*ReviewQueueStore)(nil)

func (s *ReviewQueueStore) Enqueue(ctx context.Context, item domain.ReviewItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, item)
	return nil
}

func (s *ReviewQueueStore) ListPending(ctx context.Context, limit int) ([]domain.ReviewItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.items) {
		limit = len(s.items)
	}
	out := make([]domain.ReviewItem, limit)
	copy(out, s.items[:limit])
	return out, nil
}
