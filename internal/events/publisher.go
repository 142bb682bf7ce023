// Package events publishes committed ledger transactions to interested
// consumers (reporting, notifications). Publishing is strictly
// best-effort: the money movement has already committed and a broker
// outage must never surface to the caller.
package events

import (
	"context"
	"time"

	"kopa/internal/models"
)

// TransactionEvent is the wire form of a committed movement.
type TransactionEvent struct {
	TransactionID uint      `json:"transaction_id"`
	Type          string    `json:"type"`
	Amount        string    `json:"amount"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewTransactionEvent builds an event from a recorded transaction.
func NewTransactionEvent(tx *models.Transaction) TransactionEvent {
	return TransactionEvent{
		TransactionID: tx.ID,
		Type:          tx.Type,
		Amount:        tx.Amount.String(),
		Currency:      tx.Currency,
		Status:        tx.Status,
		OccurredAt:    tx.CreatedAt,
	}
}

// Publisher emits transaction events.
type Publisher interface {
	PublishTransaction(ctx context.Context, event TransactionEvent) error
	Close() error
}

// NoopPublisher drops all events, used in tests and when no broker is
// configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishTransaction(context.Context, TransactionEvent) error { return nil }
func (NoopPublisher) Close() error                                               { return nil }
