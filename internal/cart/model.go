package cart

import "time"

// Line is one product in a cart. Owner is a session id for the temp cart
// and a user id for the persistent one.
type Line struct {
	ID           string    `json:"id"`
	Owner        string    `json:"owner"`
	ProductID    string    `json:"product_id"`
	ProductName  string    `json:"product_name"`
	ProductImage string    `json:"product_image,omitempty"`
	ProductPrice int64     `json:"product_price"`
	Quantity     int       `json:"quantity"`
	AddedAt      time.Time `json:"added_at"`
}

func (l Line) Subtotal() int64 { return l.ProductPrice * int64(l.Quantity) }

// Count is the number of items, not rows.
func Count(lines []Line) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// AddRequest swagger:model AddToCartRequest
type AddRequest struct {
	SessionID string `json:"session_id,omitempty"`
	ProductID string `json:"product_id" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Quantity  int    `json:"quantity"   example:"1"`
}

// QuantityRequest swagger:model CartQuantityRequest
type QuantityRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Quantity  int    `json:"quantity" example:"3"`
}

// TransferRequest swagger:model CartTransferRequest
type TransferRequest struct {
	SessionID string `json:"session_id"`
}

// View is a cart with its derived totals.
// swagger:model CartView
type View struct {
	Items []Line `json:"items"`
	Count int    `json:"count"`
	Total int64  `json:"total"`
}

func NewView(lines []Line) View {
	v := View{Items: lines, Count: Count(lines)}
	if v.Items == nil {
		v.Items = []Line{}
	}
	for _, l := range lines {
		v.Total += l.Subtotal()
	}
	return v
}
