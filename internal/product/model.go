package product

import (
	"time"

	"github.com/MikeMC777/cafeteria-api/internal/money"
)

type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// Price is in minor units (cents).
	Price     int64     `json:"price"`
	Category  string    `json:"category,omitempty"`
	Image     string    `json:"image,omitempty"`
	Available bool      `json:"available"`
	Featured  bool      `json:"featured"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListResponse represents the paginated response of products.
// swagger:model
type ListResponse struct {
	// search query applied
	Q string `json:"q,omitempty"`
	// limit applied
	Limit int `json:"limit"`
	// offset applied
	Offset int       `json:"offset"`
	Items  []Product `json:"items"`
}

// CreateProductRequest payload of creation.
// swagger:model CreateProductRequest
type CreateProductRequest struct {
	Name        string       `json:"name"        example:"Latte"`
	Description string       `json:"description" example:"Espresso con leche vaporizada"`
	Price       *money.Minor `json:"price"       example:"6500"`
	Category    string       `json:"category"    example:"bebidas"`
	Image       string       `json:"image"`
	Available   *bool        `json:"available"`
	Featured    bool         `json:"featured"`
}

// UpdateProductRequest payload of partial update. Nil fields are left as is.
// swagger:model UpdateProductRequest
type UpdateProductRequest struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Price       *money.Minor `json:"price"`
	Category    string       `json:"category"`
	Image       string       `json:"image"`
	Available   *bool        `json:"available"`
	Featured    *bool        `json:"featured"`
}
