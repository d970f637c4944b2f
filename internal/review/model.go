package review

import "time"

type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Comment   string    `json:"comment"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Request swagger:model ReviewRequest
type Request struct {
	ProductID string `json:"product_id" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Comment   string `json:"comment"    example:"El mejor latte de la colonia"`
	Rating    int    `json:"rating"     example:"5"`
}

// UpdateRequest swagger:model ReviewUpdateRequest
type UpdateRequest struct {
	Comment *string `json:"comment"`
	Rating  *int    `json:"rating"`
}

// ProductReviews is a product's reviews with the average rating.
// swagger:model ProductReviews
type ProductReviews struct {
	ProductID string   `json:"product_id"`
	Count     int      `json:"count"`
	Average   float64  `json:"average"`
	Items     []Review `json:"items"`
}
