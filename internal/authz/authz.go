// Package authz holds the role and ownership checks shared by every domain service.
package authz

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/merko/merko-backend/pkg/enums"
	pkgerrors "github.com/merko/merko-backend/pkg/errors"
)

// Actor is the authenticated caller as seen by domain services.
type Actor struct {
	UserID uuid.UUID
	Role   enums.Role
}

// System is the actor used by background jobs.
var System = Actor{Role: enums.RoleAdmin}

// NewActor validates the raw identity carried by a request.
func NewActor(userID uuid.UUID, role enums.Role) (Actor, error) {
	if userID == uuid.Nil {
		return Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !role.IsValid() {
		return Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown role")
	}
	return Actor{UserID: userID, Role: role}, nil
}

// RequireRole fails with FORBIDDEN unless the actor holds one of roles.
func RequireRole(actor Actor, roles ...enums.Role) error {
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	for _, role := range roles {
		if actor.Role == role {
			return nil
		}
	}
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("access denied: requires role %s", strings.Join(names, " or ")))
}

// RequireOwner fails with FORBIDDEN unless ownerID is the actor. what names
// the resource in the message ("cart item", "order", ...).
func RequireOwner(actor Actor, ownerID uuid.UUID, what string) error {
	if actor.UserID == uuid.Nil || actor.UserID != ownerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("access denied: this %s does not belong to you", what))
	}
	return nil
}
