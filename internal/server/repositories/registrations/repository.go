// Package registrations declares the repository contract for event
// registrations.
package registrations

import (
	"context"

	"github.com/dmitrijs2005/eventhub/internal/server/models"
)

type Repository interface {
	// Create inserts registration. A second registration of the same user for
	// the same event yields common.ErrAlreadyRegistered.
	Create(ctx context.Context, registration *models.Registration) (*models.Registration, error)
	// FindByEventAndUser returns common.ErrRegistrationNotFound when absent.
	FindByEventAndUser(ctx context.Context, eventID, userID string) (*models.Registration, error)
	// Get loads a registration with its Event and User, or
	// common.ErrRegistrationNotFound.
	Get(ctx context.Context, id string) (*models.Registration, error)
	// ListForOwner returns registrations of events owned by ownerID.
	ListForOwner(ctx context.Context, ownerID string) ([]models.Registration, error)
	Delete(ctx context.Context, id string) error
}
