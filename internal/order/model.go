package order

import (
	"encoding/json"
	"time"
)

type Order struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	ProviderTxnID string `json:"provider_txn_id,omitempty"`
	// Total is in minor units and equals the sum of its items at creation.
	Total           int64           `json:"total"`
	Currency        string          `json:"currency"`
	Status          Status          `json:"status"`
	PaymentMethod   string          `json:"payment_method"`
	ShippingAddress json.RawMessage `json:"shipping_address,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	CanceledAt      *time.Time      `json:"canceled_at,omitempty"`
	Items           []Item          `json:"items,omitempty"`
}

type Item struct {
	ID          string `json:"id"`
	OrderID     string `json:"order_id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    int    `json:"quantity"`
	// Price is the unit price frozen at purchase, in minor units.
	Price int64 `json:"price"`
}

// Subtotal is price × quantity.
func (it Item) Subtotal() int64 { return it.Price * int64(it.Quantity) }

// SumItems is Σ price × quantity over items.
func SumItems(items []Item) int64 {
	var total int64
	for _, it := range items {
		total += it.Subtotal()
	}
	return total
}
