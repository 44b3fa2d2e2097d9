package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/merko/merko-backend/pkg/enums"
)

// AccessTokenPayload is what a caller supplies to MintAccessToken. A blank
// JTI gets a random one.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Email  string
	Role   enums.Role
	JTI    string
}

// AccessTokenClaims is the decoded body of a merko access token.
type AccessTokenClaims struct {
	UserID uuid.UUID  `json:"user_id"`
	Email  string     `json:"email,omitempty"`
	Role   enums.Role `json:"role"`
	jwt.RegisteredClaims
}

// Validate runs after the registered claims pass. It also normalizes the
// role's case.
func (c *AccessTokenClaims) Validate() error {
	if c.UserID == uuid.Nil {
		return errors.New("token missing user id")
	}
	if c.Subject != "" && c.Subject != c.UserID.String() {
		return errors.New("token subject does not match user id")
	}
	role, err := enums.ParseRole(string(c.Role))
	if err != nil {
		return err
	}
	c.Role = role
	return nil
}

var _ jwt.ClaimsValidator = (*AccessTokenClaims)(nil)
