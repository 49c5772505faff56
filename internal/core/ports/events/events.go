package events

import (
	"context"

	"github.com/finflow/accounting/internal/core/domain"
)

// PaymentEventSource is a blocking source of normalized payment events. Receive
// suspends until an event arrives or ctx is cancelled, in which case it returns
// ctx.Err(). Delivery is at-least-once; consumers must be idempotent.
type PaymentEventSource interface {
	Receive(ctx context.Context) (domain.PaymentEvent, error)
}
