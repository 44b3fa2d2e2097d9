package authz

import (
	"testing"

	"github.com/google/uuid"

	"github.com/merko/merko-backend/pkg/enums"
	pkgerrors "github.com/merko/merko-backend/pkg/errors"
)

func TestRequireRole(t *testing.T) {
	merchant := Actor{UserID: uuid.New(), Role: enums.RoleMerchant}
	if err := RequireRole(merchant, enums.RoleMerchant); err != nil {
		t.Fatalf("merchant should pass: %v", err)
	}
	err := RequireRole(merchant, enums.RoleDelivery, enums.RoleAdmin)
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := RequireRole(Actor{Role: enums.RoleMerchant}, enums.RoleMerchant); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("anonymous actor should be unauthorized, got %v", err)
	}
}

func TestRequireOwner(t *testing.T) {
	actor := Actor{UserID: uuid.New(), Role: enums.RoleMerchant}
	if err := RequireOwner(actor, actor.UserID, "order"); err != nil {
		t.Fatalf("owner should pass: %v", err)
	}
	err := RequireOwner(actor, uuid.New(), "cart item")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if typed.Message() != "access denied: this cart item does not belong to you" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestNewActor(t *testing.T) {
	if _, err := NewActor(uuid.Nil, enums.RoleAdmin); err == nil {
		t.Fatal("expected error for missing user")
	}
	if _, err := NewActor(uuid.New(), enums.Role("GUEST")); err == nil {
		t.Fatal("expected error for unknown role")
	}
	actor, err := NewActor(uuid.New(), enums.RoleSupplier)
	if err != nil || actor.Role != enums.RoleSupplier {
		t.Fatalf("unexpected actor %+v err=%v", actor, err)
	}
}
