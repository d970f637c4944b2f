package address

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type Service struct{ repo Repository }

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) List(ctx context.Context, userID string) ([]Address, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Add stores a new address. A user's first address becomes the default.
func (s *Service) Add(ctx context.Context, userID string, in Request) (*Address, error) {
	if strings.TrimSpace(in.AddressLine1) == "" {
		return nil, ErrInvalidInput
	}
	existing, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	a := fromRequest(in)
	a.ID = uuid.NewString()
	a.UserID = userID
	a.IsDefault = in.IsDefault || len(existing) == 0
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Update(ctx context.Context, userID, id string, in Request) (*Address, error) {
	if strings.TrimSpace(in.AddressLine1) == "" {
		return nil, ErrInvalidInput
	}
	a := fromRequest(in)
	a.ID = id
	a.UserID = userID
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, id, userID)
}

// Default returns the user's default address, or ErrNotFound.
func (s *Service) Default(ctx context.Context, userID string) (*Address, error) {
	return s.repo.GetDefault(ctx, userID)
}

func fromRequest(in Request) *Address {
	return &Address{
		AddressLine1: strings.TrimSpace(in.AddressLine1),
		AddressLine2: strings.TrimSpace(in.AddressLine2),
		City:         strings.TrimSpace(in.City),
		State:        strings.TrimSpace(in.State),
		PostalCode:   strings.TrimSpace(in.PostalCode),
		Country:      strings.TrimSpace(in.Country),
		Phone:        strings.TrimSpace(in.Phone),
		IsDefault:    in.IsDefault,
	}
}
