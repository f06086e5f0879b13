package authctx

import (
	"context"

	"crediario-backend/internal/domain"
	"crediario-backend/internal/ledger"
)

type contextKey string

const userContextKey contextKey = "currentUser"

type CurrentUser struct {
	Pin  string
	Name string
	Role domain.Role
}

// Credentials are the values forwarded to the ledger backend.
func (u CurrentUser) Credentials() ledger.Credentials {
	return ledger.Credentials{Role: u.Role, Pin: u.Pin}
}

func WithCurrentUser(ctx context.Context, user CurrentUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func FromContext(ctx context.Context) *CurrentUser {
	val, ok := ctx.Value(userContextKey).(CurrentUser)
	if !ok {
		return nil
	}
	return &val
}
