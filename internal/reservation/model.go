package reservation

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCanceled  Status = "canceled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCanceled:
		return true
	}
	return false
}

// Reservation is a table booking. VisitDate is YYYY-MM-DD and VisitTime
// HH:MM in the shop's local time.
type Reservation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	VisitDate string    `json:"visit_date"`
	VisitTime string    `json:"visit_time"`
	PartySize int       `json:"party_size"`
	Notes     string    `json:"notes,omitempty"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Request swagger:model ReservationRequest
type Request struct {
	FullName  string `json:"full_name"  example:"Ana Torres"`
	Email     string `json:"email"      example:"ana@example.com"`
	Phone     string `json:"phone"      example:"+52 55 1234 5678"`
	VisitDate string `json:"visit_date" example:"2026-11-20"`
	VisitTime string `json:"visit_time" example:"18:30"`
	PartySize int    `json:"party_size" example:"4"`
	Notes     string `json:"notes"      example:"Mesa junto a la ventana"`
}

// UpdateRequest swagger:model ReservationUpdateRequest
type UpdateRequest struct {
	FullName  *string `json:"full_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	VisitDate *string `json:"visit_date"`
	VisitTime *string `json:"visit_time"`
	PartySize *int    `json:"party_size"`
	Notes     *string `json:"notes"`
	Status    *Status `json:"status"`
}

type Query struct {
	Date   string
	Status Status
}
