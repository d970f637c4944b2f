package order

import "context"

// Service holds the admin-driven status changes.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) SetStatus(ctx context.Context, id, status string) (*Order, error) {
	to, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	o, items, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CheckTransition(o.Status, to); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, o.Status, to); err != nil {
		return nil, err
	}
	o.Status = to
	o.Items = items
	return o, nil
}
