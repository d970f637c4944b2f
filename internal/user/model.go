package user

import "time"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegisterRequest swagger:model RegisterRequest
type RegisterRequest struct {
	Name     string `json:"name"     example:"Ana"`
	Email    string `json:"email"    example:"ana@example.com"`
	Password string `json:"password" example:"s3creto!"`
}

// LoginRequest swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse swagger:model AuthResponse
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
