package users

import (
	"github.com/google/uuid"

	"github.com/merko/merko-backend/pkg/db/models"
)

// Summary is the public shape of an account embedded in other responses.
type Summary struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	CompanyName *string   `json:"companyName,omitempty"`
	Phone       *string   `json:"phoneNumber,omitempty"`
	Role        string    `json:"role"`
}

// FromModel maps a user row to its summary.
func FromModel(u *models.User) Summary {
	if u == nil {
		return Summary{}
	}
	return Summary{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		CompanyName: u.CompanyName,
		Phone:       u.PhoneNumber,
		Role:        string(u.Role),
	}
}
