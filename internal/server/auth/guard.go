package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/eventhub/internal/common"
	"github.com/dmitrijs2005/eventhub/internal/server/models"
)

type ctxKey string

const identityKey ctxKey = "identity"

// Identity is what the bearer middleware learned from a validated token.
type Identity struct {
	UserID   string
	Email    string
	UserName string
}

// IdentityFromClaims copies the identity claims of a validated token.
func IdentityFromClaims(c *Claims) Identity {
	return Identity{UserID: c.Subject, Email: c.Email, UserName: c.UserName}
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// UserFinder is the slice of the users repository the guard needs.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// ResolveCurrentUser loads the user named by the identity in ctx. The user
// is read from the store on every call so deleted accounts stop working even
// while their tokens are still valid.
func ResolveCurrentUser(ctx context.Context, users UserFinder) (*models.User, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok || id.UserID == "" {
		return nil, common.ErrUnauthenticated
	}
	user, err := users.FindByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("resolve current user: %w", err)
	}
	return user, nil
}

// CheckOwnership reports whether currentUserID owns a resource owned by
// ownerID.
func CheckOwnership(ownerID, currentUserID string) bool {
	return ownerID != "" && ownerID == currentUserID
}
