// Package payprovider talks to the payment processor.
package payprovider

import (
	"context"
	"errors"

	"github.com/MikeMC777/cafeteria-api/internal/payment"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrNotFound         = errors.New("payment intent not found")
)

const (
	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"

	StatusSucceeded = "succeeded"
)

// Intent is the processor's view of a payment. Amount is in minor units.
type Intent struct {
	ID            string
	Status        string
	Amount        int64
	Currency      string
	Method        string
	ReceiptURL    string
	ClientSecret  string
	Metadata      map[string]string
	FailureReason string
}

func (i *Intent) Succeeded() bool { return i != nil && i.Status == StatusSucceeded }

type Event struct {
	ID     string
	Type   string
	Intent *Intent
}

type CreateParams struct {
	Amount         int64
	Currency       string
	Metadata       map[string]string
	IdempotencyKey string
}

type Gateway interface {
	CreateIntent(ctx context.Context, p CreateParams) (*Intent, error)
	// GetIntent re-fetches an intent from the processor.
	GetIntent(ctx context.Context, id string) (*Intent, error)
	// ParseWebhook verifies the signature header and decodes the event.
	ParseWebhook(payload []byte, signature string) (*Event, error)
	// Refund returns amount of a captured intent.
	Refund(ctx context.Context, intentID string, amount int64, idempotencyKey string) (*payment.Refund, error)
}
