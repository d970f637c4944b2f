package cart

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("cart line not found")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrMissingOwner    = errors.New("cart owner is required")
	ErrUnavailable     = errors.New("product is not available")
)

// Store holds cart lines for one kind of owner. At most one line exists
// per (owner, product).
type Store interface {
	// Add inserts the line or, when the owner already has the product,
	// increments its quantity and refreshes the snapshot.
	Add(ctx context.Context, owner string, l Line) (Line, error)
	List(ctx context.Context, owner string) ([]Line, error)
	Remove(ctx context.Context, owner, lineID string) error
	SetQuantity(ctx context.Context, owner, lineID string, qty int) error
	Clear(ctx context.Context, owner string) error
	// ReplaceProducts upserts lines, overwriting the quantity of any line
	// for the same product.
	ReplaceProducts(ctx context.Context, owner string, lines []Line) error
}
