package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/finflow/accounting/internal/core/domain"
	"github.com/finflow/accounting/internal/core/ports/events"
)

// paymentMessage is the wire shape published by the payments service.
type paymentMessage struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Status    string          `json:"status"`
	Processor string          `json:"processorId"`
	InvoiceID string          `json:"invoiceId"`
	Reason    string          `json:"reason"`
	CreatedAt time.Time       `json:"createdAt"`
	Metadata  struct {
		OrderID string `json:"orderId"`
	} `json:"metadata"`
}

// Consumer reads payment events from a Kafka topic. Offsets are committed when a
// message is handed to the caller; a rebalance or restart can still redeliver, so
// downstream handlers must stay idempotent.
type Consumer struct {
	reader *kafka.Reader
	logger *slog.Logger
}

// NewConsumer creates a consumer in the given group. Consumers in the same group
// share the topic's partitions.
func NewConsumer(brokers []string, topic, groupID string, logger *slog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // explicit commits only
	})
	return &Consumer{reader: reader, logger: logger}
}

var _ events.PaymentEventSource = (*Consumer)(nil)

// Receive blocks until the next decodable payment event arrives or ctx is cancelled.
// Messages that fail to decode are logged, committed and skipped; redelivering them
// forever would stall the partition.
func (c *Consumer) Receive(ctx context.Context) (domain.PaymentEvent, error) {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return domain.PaymentEvent{}, fmt.Errorf("failed to fetch message: %w", err)
		}

		var wire paymentMessage
		if err := json.Unmarshal(msg.Value, &wire); err != nil {
			c.logger.Error("Discarding undecodable payment message",
				slog.String("topic", msg.Topic),
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
				slog.String("error", err.Error()))
			if commitErr := c.reader.CommitMessages(ctx, msg); commitErr != nil {
				return domain.PaymentEvent{}, fmt.Errorf("failed to commit skipped message: %w", commitErr)
			}
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return domain.PaymentEvent{}, fmt.Errorf("failed to commit message: %w", err)
		}

		return domain.PaymentEvent{
			EventID:      wire.ID,
			UserID:       wire.UserID,
			Amount:       wire.Amount,
			CurrencyCode: wire.Currency,
			Status:       wire.Status,
			ProcessorID:  wire.Processor,
			InvoiceID:    wire.InvoiceID,
			OrderRef:     wire.Metadata.OrderID,
			Reason:       wire.Reason,
			OccurredAt:   wire.CreatedAt,
		}, nil
	}
}

// Close releases the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
