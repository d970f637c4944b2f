package checkout

import (
	"encoding/json"

	"github.com/MikeMC777/cafeteria-api/internal/money"
)

const (
	EntrySync    = "sync"
	EntryWebhook = "webhook"
)

// Outcome of one reconciliation.
const (
	OutcomeCreated   = "created"
	OutcomeResumed   = "resumed"
	OutcomeDuplicate = "duplicate"
	OutcomeIgnored   = "ignored"
	OutcomeRejected  = "rejected"
)

// PaymentData swagger:model CheckoutPaymentData
type PaymentData struct {
	TransactionID string       `json:"transaction_id" example:"pi_3PbX..."`
	Amount        *money.Minor `json:"amount,omitempty" example:"11000"`
	Currency      string       `json:"currency" example:"mxn"`
	Method        string       `json:"method" example:"card"`
}

// LineInput swagger:model CheckoutItem
type LineInput struct {
	ProductID string      `json:"product_id"`
	Quantity  int         `json:"quantity" example:"1"`
	Price     money.Minor `json:"price" example:"4000"`
}

// OrderData swagger:model CheckoutOrderData
type OrderData struct {
	Items           []LineInput     `json:"items"`
	ShippingAddress json.RawMessage `json:"shipping_address,omitempty"`
	Subtotal        *money.Minor    `json:"subtotal,omitempty"`
}

// Request is the synchronous checkout body.
// swagger:model CheckoutRequest
type Request struct {
	PaymentData PaymentData `json:"payment_data"`
	OrderData   OrderData   `json:"order_data"`
}

// Result swagger:model CheckoutResult
type Result struct {
	OrderID   string `json:"order_id,omitempty"`
	PaymentID string `json:"payment_id,omitempty"`
	Total     int64  `json:"total"`
	Currency  string `json:"currency,omitempty"`
	Outcome   string `json:"outcome"`
	// Warnings lists side effects that failed without failing the checkout.
	Warnings []string `json:"warnings,omitempty"`
	Stage    string   `json:"-"`
}

func (r *Result) Degraded() bool { return len(r.Warnings) > 0 }

// IntentRequest swagger:model CreateIntentRequest
type IntentRequest struct {
	Amount          money.Minor     `json:"amount" example:"11000"`
	Currency        string          `json:"currency,omitempty" example:"mxn"`
	UserID          string          `json:"user_id,omitempty"`
	ShippingAddress json.RawMessage `json:"shipping_address,omitempty"`
}

// IntentResponse swagger:model CreateIntentResponse
type IntentResponse struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
}
