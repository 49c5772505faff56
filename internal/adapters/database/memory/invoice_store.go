package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/finflow/accounting/internal/apperrors"
	"github.com/finflow/accounting/internal/core/domain"
	portsrepo "github.com/finflow/accounting/internal/core/ports/repositories"
)

// InvoiceStore is an in-memory invoice repository.
type InvoiceStore struct {
	mu       sync.RWMutex
	invoices map[string]domain.Invoice
}

// NewInvoiceStore creates an empty in-memory invoice store.
func NewInvoiceStore() *InvoiceStore {
	return &InvoiceStore{invoices: make(map[string]domain.Invoice)}
}

var _ portsrepo.InvoiceRepositoryFacade = (*InvoiceStore)(nil)

func copyInvoice(invoice domain.Invoice) domain.Invoice {
	out := invoice
	out.LineItems = make([]domain.InvoiceLineItem, len(invoice.LineItems))
	copy(out.LineItems, invoice.LineItems)
	return out
}

func (s *InvoiceStore) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	invoice, ok := s.invoices[invoiceID]
	if !ok {
		return nil, fmt.Errorf("invoice %s: %w", invoiceID, apperrors.ErrNotFound)
	}
	out := copyInvoice(invoice)
	return &out, nil
}

func (s *InvoiceStore) ListInvoices(ctx context.Context, status *domain.InvoiceStatus, limit int, offset int) ([]domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.Invoice, 0, len(s.invoices))
	for _, invoice := range s.invoices {
		if status != nil && invoice.Status != *status {
			continue
		}
		matched = append(matched, copyInvoice(invoice))
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].InvoiceID < matched[j].InvoiceID
	})

	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return []domain.Invoice{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (s *InvoiceStore) ListInvoicesDue(ctx context.Context, asOf time.Time) ([]domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []domain.Invoice
	for _, invoice := range s.invoices {
		if invoice.Status == domain.InvoicePending && invoice.DueDate.Before(asOf) {
			due = append(due, copyInvoice(invoice))
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].DueDate.Before(due[j].DueDate) })
	return due, nil
}

func (s *InvoiceStore) SaveInvoice(ctx context.Context, invoice domain.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.invoices[invoice.InvoiceID]; exists {
		return fmt.Errorf("invoice %s: %w", invoice.InvoiceID, apperrors.ErrDuplicate)
	}
	s.invoices[invoice.InvoiceID] = copyInvoice(invoice)
	return nil
}

func (s *InvoiceStore) UpdateInvoiceStatus(ctx context.Context, invoiceID string, status domain.InvoiceStatus, userID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	invoice, ok := s.invoices[invoiceID]
	if !ok {
		return fmt.Errorf("invoice %s: %w", invoiceID, apperrors.ErrNotFound)
	}
	invoice.Status = status
	invoice.LastUpdatedAt = now
	invoice.LastUpdatedBy = userID
	s.invoices[invoiceID] = invoice
	return nil
}
