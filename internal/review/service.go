package review

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/MikeMC777/cafeteria-api/internal/product"
)

const maxComment = 2000

// Catalog confirms the reviewed product exists.
type Catalog interface {
	GetByID(ctx context.Context, id string) (*product.Product, error)
}

type Service struct {
	repo     Repository
	products Catalog
}

func NewService(repo Repository, products Catalog) *Service {
	return &Service{repo: repo, products: products}
}

func validate(comment string, rating int) error {
	switch {
	case comment == "":
		return fmt.Errorf("%w: comment is required", ErrInvalidInput)
	case utf8.RuneCountInString(comment) > maxComment:
		return fmt.Errorf("%w: comment is longer than %d characters", ErrInvalidInput, maxComment)
	case rating < 1 || rating > 5:
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}
	return nil
}

// Create stores a review by userID for an existing product.
func (s *Service) Create(ctx context.Context, userID string, in Request) (*Review, error) {
	r := &Review{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProductID: strings.TrimSpace(in.ProductID),
		Comment:   strings.TrimSpace(in.Comment),
		Rating:    in.Rating,
	}
	if err := validate(r.Comment, r.Rating); err != nil {
		return nil, err
	}
	if _, err := s.products.GetByID(ctx, r.ProductID); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// ForProduct lists a product's reviews, newest first, with the average
// rating rounded to one decimal.
func (s *Service) ForProduct(ctx context.Context, productID string) (*ProductReviews, error) {
	list, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := &ProductReviews{ProductID: productID, Count: len(list), Items: list}
	if out.Items == nil {
		out.Items = []Review{}
	}
	if len(list) > 0 {
		sum := 0
		for _, r := range list {
			sum += r.Rating
		}
		out.Average = math.Round(float64(sum)/float64(len(list))*10) / 10
	}
	return out, nil
}

func (s *Service) ForUser(ctx context.Context, userID string) ([]Review, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if list == nil && err == nil {
		list = []Review{}
	}
	return list, err
}

// owned loads the review when the caller wrote it or is an admin.
func (s *Service) owned(ctx context.Context, id, callerID string, admin bool) (*Review, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !admin && r.UserID != callerID {
		return nil, ErrForbidden
	}
	return r, nil
}

// Update changes comment and rating; nil fields keep their value.
func (s *Service) Update(ctx context.Context, id, callerID string, admin bool, in UpdateRequest) (*Review, error) {
	r, err := s.owned(ctx, id, callerID, admin)
	if err != nil {
		return nil, err
	}
	if in.Comment != nil {
		r.Comment = strings.TrimSpace(*in.Comment)
	}
	if in.Rating != nil {
		r.Rating = *in.Rating
	}
	if err := validate(r.Comment, r.Rating); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) Delete(ctx context.Context, id, callerID string, admin bool) error {
	if _, err := s.owned(ctx, id, callerID, admin); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
