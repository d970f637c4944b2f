package payment

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusPaid      Status = "paid"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
	StatusRefunded  Status = "refunded"
)

// Refundable reports whether a captured amount can still be returned.
func (s Status) Refundable() bool { return s == StatusSucceeded || s == StatusPaid }

type Payment struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
	// ProviderTxnID is unique; it de-duplicates checkout deliveries.
	ProviderTxnID      string     `json:"stripe_payment_id"`
	Amount             int64      `json:"amount"`
	Currency           string     `json:"currency"`
	Status             Status     `json:"status"`
	Method             string     `json:"payment_method"`
	ReceiptURL         *string    `json:"receipt_url,omitempty"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
	CanceledAt         *time.Time `json:"canceled_at,omitempty"`
	RefundID           *string    `json:"refund_id,omitempty"`
	RefundAmount       *int64     `json:"refund_amount,omitempty"`
	RefundStatus       *string    `json:"refund_status,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// Refund is what the provider returned for a full refund.
type Refund struct {
	ID     string
	Amount int64
	Status string
}
