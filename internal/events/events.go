// Package events publishes order lifecycle events after commit.
package events

import (
	"context"
	"time"
)

const (
	OrderPlaced   = "order.placed"
	OrderCanceled = "order.canceled"
)

type Event struct {
	Type       string    `json:"type"`
	OrderID    string    `json:"order_id"`
	UserID     string    `json:"user_id"`
	PaymentID  string    `json:"payment_id,omitempty"`
	Total      int64     `json:"total"`
	Currency   string    `json:"currency"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }
