// Package users declares the server-side repository contract for credential
// records and the refresh session stored on them.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/eventhub/internal/server/models"
)

// Repository defines the persistence operations for users.
type Repository interface {
	// Create inserts user. A taken email or username yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// FindByEmail and FindByID return common.ErrorNotFound when absent.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)

	// SetRefreshSession unconditionally replaces the stored refresh session.
	SetRefreshSession(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	// RotateRefreshSession replaces the refresh session only while the stored
	// digest still equals oldHash. When it does not (a concurrent refresh won
	// or the token was never current) it returns common.ErrRefreshTokenInvalid.
	RotateRefreshSession(ctx context.Context, userID, oldHash, newHash string, expiresAt time.Time) error
}
