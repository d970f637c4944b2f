package cart

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/MikeMC777/cafeteria-api/internal/product"
)

type Scope int

const (
	// Session is the anonymous, pre-login cart keyed by session id.
	Session Scope = iota
	// User is the persistent cart keyed by user id.
	User
)

func (s Scope) String() string {
	if s == Session {
		return "session"
	}
	return "user"
}

// Catalog is the part of the product repository the cart reads snapshots from.
type Catalog interface {
	GetByID(ctx context.Context, id string) (*product.Product, error)
}

type Service struct {
	session  Store
	user     Store
	products Catalog
}

func NewService(session, user Store, products Catalog) *Service {
	return &Service{session: session, user: user, products: products}
}

func (s *Service) store(scope Scope) Store {
	if scope == Session {
		return s.session
	}
	return s.user
}

func checkOwner(owner string) error {
	if strings.TrimSpace(owner) == "" {
		return ErrMissingOwner
	}
	return nil
}

// AddLine adds qty of a product, merging with an existing line, and returns
// the owner's item count afterwards. The snapshot comes from the catalog.
func (s *Service) AddLine(ctx context.Context, scope Scope, owner, productID string, qty int) (int, error) {
	if err := checkOwner(owner); err != nil {
		return 0, err
	}
	if qty <= 0 {
		return 0, ErrInvalidQuantity
	}
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	if !p.Available {
		return 0, fmt.Errorf("%w: %s", ErrUnavailable, p.Name)
	}
	st := s.store(scope)
	if _, err := st.Add(ctx, owner, Line{
		ProductID:    p.ID,
		ProductName:  p.Name,
		ProductImage: p.Image,
		ProductPrice: p.Price,
		Quantity:     qty,
	}); err != nil {
		return 0, err
	}
	return s.Count(ctx, scope, owner)
}

func (s *Service) Lines(ctx context.Context, scope Scope, owner string) ([]Line, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	return s.store(scope).List(ctx, owner)
}

func (s *Service) Count(ctx context.Context, scope Scope, owner string) (int, error) {
	ls, err := s.Lines(ctx, scope, owner)
	if err != nil {
		return 0, err
	}
	return Count(ls), nil
}

func (s *Service) RemoveLine(ctx context.Context, scope Scope, owner, lineID string) error {
	if err := checkOwner(owner); err != nil {
		return err
	}
	return s.store(scope).Remove(ctx, owner, lineID)
}

func (s *Service) SetQuantity(ctx context.Context, scope Scope, owner, lineID string, qty int) error {
	if err := checkOwner(owner); err != nil {
		return err
	}
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	return s.store(scope).SetQuantity(ctx, owner, lineID, qty)
}

func (s *Service) Clear(ctx context.Context, scope Scope, owner string) error {
	if err := checkOwner(owner); err != nil {
		return err
	}
	return s.store(scope).Clear(ctx, owner)
}

// Transfer moves the session cart into the user cart; session lines win on
// conflicting products. A failed copy leaves the session cart untouched. A
// failed delete after the copy is tolerated: running it again converges.
func (s *Service) Transfer(ctx context.Context, sessionID, userID string) (int, error) {
	if err := checkOwner(sessionID); err != nil {
		return 0, err
	}
	if err := checkOwner(userID); err != nil {
		return 0, err
	}
	lines, err := s.session.List(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if len(lines) == 0 {
		return 0, nil
	}
	if err := s.user.ReplaceProducts(ctx, userID, lines); err != nil {
		return 0, fmt.Errorf("copy session cart: %w", err)
	}
	if err := s.session.Clear(ctx, sessionID); err != nil {
		log.Warn().Err(err).Str("session", sessionID).Str("user_id", userID).
			Msg("[cart] session cart copied but not cleared")
	}
	return len(lines), nil
}

// IsValidation reports errors caused by the caller's input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidQuantity) || errors.Is(err, ErrMissingOwner) || errors.Is(err, ErrUnavailable)
}

func sortByAdded(ls []Line) {
	sort.SliceStable(ls, func(i, j int) bool {
		if ls[i].AddedAt.Equal(ls[j].AddedAt) {
			return ls[i].ID < ls[j].ID
		}
		return ls[i].AddedAt.Before(ls[j].AddedAt)
	})
}
