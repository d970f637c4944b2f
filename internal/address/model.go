package address

import (
	"strings"
	"time"
)

type Address struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	AddressLine1 string    `json:"address_line1"`
	AddressLine2 string    `json:"address_line2,omitempty"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	PostalCode   string    `json:"postal_code"`
	Country      string    `json:"country"`
	Phone        string    `json:"phone,omitempty"`
	IsDefault    bool      `json:"is_default"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Lines renders the address for documents.
func (a *Address) Lines() []string {
	var out []string
	for _, l := range []string{
		a.AddressLine1,
		a.AddressLine2,
		joinNonEmpty(", ", a.City, a.State, a.PostalCode),
		a.Country,
		a.Phone,
	} {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

// Request swagger:model AddressRequest
type Request struct {
	AddressLine1 string `json:"address_line1" example:"Av. Juárez 10"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"          example:"CDMX"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"   example:"06000"`
	Country      string `json:"country"       example:"MX"`
	Phone        string `json:"phone"`
	IsDefault    bool   `json:"is_default"`
}

func joinNonEmpty(sep string, parts ...string) string {
	var keep []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keep = append(keep, p)
		}
	}
	return strings.Join(keep, sep)
}
