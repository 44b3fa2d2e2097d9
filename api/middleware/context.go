package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/merko/merko-backend/internal/authz"
	"github.com/merko/merko-backend/pkg/enums"
	pkgerrors "github.com/merko/merko-backend/pkg/errors"
)

type (
	actorKey     struct{}
	requestIDKey struct{}
)

// RequestIDFromContext returns the id assigned by RequestID.
func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// WithActor stores the authenticated caller on ctx.
func WithActor(ctx context.Context, actor authz.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the caller seeded by Auth.
func ActorFromContext(ctx context.Context) (authz.Actor, error) {
	actor, ok := ctx.Value(actorKey{}).(authz.Actor)
	if !ok || actor.UserID == uuid.Nil {
		return authz.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return actor, nil
}

// UserIDFromContext is the caller's id, or "" for anonymous requests.
func UserIDFromContext(ctx context.Context) string {
	if actor, err := ActorFromContext(ctx); err == nil {
		return actor.UserID.String()
	}
	return ""
}

func RoleFromContext(ctx context.Context) enums.Role {
	actor, _ := ctx.Value(actorKey{}).(authz.Actor)
	return actor.Role
}
