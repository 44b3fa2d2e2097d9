package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merko/merko-backend/pkg/enums"
)

// User is a marketplace account. Accounts are owned by the identity service;
// this module only reads them.
type User struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Email       string     `gorm:"column:email;not null;uniqueIndex"`
	FirstName   string     `gorm:"column:first_name"`
	LastName    string     `gorm:"column:last_name"`
	CompanyName *string    `gorm:"column:company_name"`
	PhoneNumber *string    `gorm:"column:phone_number"`
	Role        enums.Role `gorm:"column:role;not null"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	assignID(&u.ID)
	return nil
}

// DisplayName prefers the company name and falls back to "first last".
func (u User) DisplayName() string {
	if u.CompanyName != nil && strings.TrimSpace(*u.CompanyName) != "" {
		return *u.CompanyName
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
