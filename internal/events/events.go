// Package events publishes receipt lifecycle events.
package events

import (
	"context"
	"time"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"

	"github.com/google/uuid"
)

// Event types.
const (
	ReceiptCreated       = "receipt.created"
	ReceiptStatusChanged = "receipt.status_changed"
)

// Event is the JSON payload written for every receipt change.
type Event struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	ReceiptID       string    `json:"receiptId"`
	Wallet          string    `json:"wallet"`
	BrandKey        string    `json:"brandKey,omitempty"`
	Status          string    `json:"status"`
	PreviousStatus  string    `json:"previousStatus,omitempty"`
	TotalMinor      int64     `json:"totalMinor"`
	Currency        string    `json:"currency"`
	TransactionHash string    `json:"transactionHash,omitempty"`
	Degraded        bool      `json:"degraded,omitempty"`
	OccurredAt      time.Time `json:"occurredAt"`
}

// NewEvent builds an event of type typ describing r.
func NewEvent(typ string, r *model.Receipt, occurredAt time.Time) Event {
	return Event{
		ID:              uuid.NewString(),
		Type:            typ,
		ReceiptID:       r.ReceiptID,
		Wallet:          r.Wallet,
		BrandKey:        r.BrandKey,
		Status:          r.Status,
		TotalMinor:      r.TotalMinor,
		Currency:        r.Currency,
		TransactionHash: r.TransactionHash,
		OccurredAt:      occurredAt.UTC(),
	}
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
