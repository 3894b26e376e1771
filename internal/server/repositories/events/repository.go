// Package events declares the repository contract for events.
package events

import (
	"context"

	"github.com/dmitrijs2005/eventhub/internal/server/models"
)

type Repository interface {
	// List returns every event ordered by date, with Owner loaded.
	List(ctx context.Context) ([]models.Event, error)
	// Get returns the event with Owner loaded, or common.ErrEventNotFound.
	Get(ctx context.Context, id string) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) (*models.Event, error)
	// Update stores the scalar fields of event.
	Update(ctx context.Context, event *models.Event) error
	// Delete removes the event together with its registrations.
	Delete(ctx context.Context, id string) error
}
