package reservation

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
	// MaxPartySize is the largest group taken online; bigger groups call the shop.
	MaxPartySize = 20
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) validate(r *Reservation, checkPast bool) error {
	if r.FullName == "" {
		return fmt.Errorf("%w: full_name is required", ErrInvalidInput)
	}
	addr, err := mail.ParseAddress(r.Email)
	if err != nil {
		return fmt.Errorf("%w: email: %v", ErrInvalidInput, err)
	}
	r.Email = addr.Address
	day, err := time.Parse(dateLayout, r.VisitDate)
	if err != nil {
		return fmt.Errorf("%w: visit_date must be YYYY-MM-DD", ErrInvalidInput)
	}
	if _, err := time.Parse(timeLayout, r.VisitTime); err != nil {
		return fmt.Errorf("%w: visit_time must be HH:MM", ErrInvalidInput)
	}
	if r.PartySize < 1 || r.PartySize > MaxPartySize {
		return fmt.Errorf("%w: party_size must be between 1 and %d", ErrInvalidInput, MaxPartySize)
	}
	if !r.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, r.Status)
	}
	if checkPast {
		now := s.now()
		today, _ := time.Parse(dateLayout, now.Format(dateLayout))
		if day.Before(today) {
			return fmt.Errorf("%w: visit_date is in the past", ErrInvalidInput)
		}
	}
	return nil
}

// Create books a table. userID is empty for anonymous visitors.
func (s *Service) Create(ctx context.Context, userID string, in Request) (*Reservation, error) {
	r := &Reservation{
		ID:        uuid.NewString(),
		UserID:    userID,
		FullName:  strings.TrimSpace(in.FullName),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		VisitDate: strings.TrimSpace(in.VisitDate),
		VisitTime: strings.TrimSpace(in.VisitTime),
		PartySize: in.PartySize,
		Notes:     strings.TrimSpace(in.Notes),
		Status:    StatusPending,
	}
	if err := s.validate(r, true); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Reservation, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, q Query) ([]Reservation, error) {
	if q.Date != "" {
		if _, err := time.Parse(dateLayout, q.Date); err != nil {
			return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
		}
	}
	if q.Status != "" && !q.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, q.Status)
	}
	list, err := s.repo.List(ctx, q)
	if list == nil && err == nil {
		list = []Reservation{}
	}
	return list, err
}

// Update applies the non-nil fields. A moved visit_date may not land in the past.
func (s *Service) Update(ctx context.Context, id string, in UpdateRequest) (*Reservation, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	oldDate := r.VisitDate
	set(&r.FullName, in.FullName)
	set(&r.Email, in.Email)
	set(&r.Phone, in.Phone)
	set(&r.VisitDate, in.VisitDate)
	set(&r.VisitTime, in.VisitTime)
	set(&r.Notes, in.Notes)
	if in.PartySize != nil {
		r.PartySize = *in.PartySize
	}
	if in.Status != nil {
		r.Status = *in.Status
	}
	if err := s.validate(r, r.VisitDate != oldDate); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
