package auth

import (
	"context"

	pkgerrors "mindmap-backend/pkg/errors"
)

// contextKey is a private type to prevent context key collisions
type contextKey string

const userContextKey contextKey = "user"

// UserContext carries the authenticated user's identity through a request
type UserContext struct {
	UserID string
	Email  string
}

// WithUser returns a context carrying the authenticated user
func WithUser(ctx context.Context, user UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetUserFromContext extracts the authenticated user from the context
func GetUserFromContext(ctx context.Context) (UserContext, error) {
	user, ok := ctx.Value(userContextKey).(UserContext)
	if !ok || user.UserID == "" {
		return UserContext{}, pkgerrors.NewUnauthorizedError("no authenticated user in context")
	}
	return user, nil
}
