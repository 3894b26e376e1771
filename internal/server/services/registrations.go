package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/eventhub/internal/common"
	"github.com/dmitrijs2005/eventhub/internal/logging"
	"github.com/dmitrijs2005/eventhub/internal/server/auth"
	"github.com/dmitrijs2005/eventhub/internal/server/models"
	"github.com/dmitrijs2005/eventhub/internal/server/notify"
	"github.com/dmitrijs2005/eventhub/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RegistrationService struct {
	db          *gorm.DB
	repomanager repomanager.RepositoryManager
	notifier    notify.Notifier
	logger      logging.Logger
	now         func() time.Time
}

func NewRegistrationService(db *gorm.DB, m repomanager.RepositoryManager, n notify.Notifier, l logging.Logger) *RegistrationService {
	if n == nil {
		n = notify.Nop{}
	}
	return &RegistrationService{
		db:          db,
		repomanager: m,
		notifier:    n,
		logger:      l.With("module", "registration_service"),
		now:         time.Now,
	}
}

// Register signs the current user up for eventID.
func (s *RegistrationService) Register(ctx context.Context, eventID string) (*models.Registration, error) {
	if err := validateID(eventID); err != nil {
		return nil, err
	}
	user, err := auth.ResolveCurrentUser(ctx, s.repomanager.Users(s.db))
	if err != nil {
		return nil, err
	}
	event, err := s.repomanager.Events(s.db).Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if auth.CheckOwnership(event.OwnerID, user.ID) {
		return nil, common.ErrCannotRegisterForOwnEvent
	}

	repo := s.repomanager.Registrations(s.db)
	_, err = repo.FindByEventAndUser(ctx, event.ID, user.ID)
	switch {
	case err == nil:
		return nil, common.ErrAlreadyRegistered
	case !errors.Is(err, common.ErrRegistrationNotFound):
		return nil, fmt.Errorf("error searching registration: %w", err)
	}

	// the unique index catches a concurrent duplicate
	reg, err := repo.Create(ctx, &models.Registration{EventID: event.ID, UserID: user.ID})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyRegistered) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating registration: %w", err)
	}
	reg.Event = *event
	reg.User = *user

	s.logger.Info(ctx, "user registered for event", "event_id", event.ID, "user_id", user.ID)
	s.notify(ctx, notify.KindRegistrationCreated, reg)
	return reg, nil
}

// Unregister removes the current user's registration for eventID.
func (s *RegistrationService) Unregister(ctx context.Context, eventID string) error {
	if err := validateID(eventID); err != nil {
		return err
	}
	user, err := auth.ResolveCurrentUser(ctx, s.repomanager.Users(s.db))
	if err != nil {
		return err
	}

	repo := s.repomanager.Registrations(s.db)
	reg, err := repo.FindByEventAndUser(ctx, eventID, user.ID)
	if err != nil {
		return err
	}
	if err := repo.Delete(ctx, reg.ID); err != nil {
		return err
	}

	reg.User = *user
	if event, err := s.repomanager.Events(s.db).Get(ctx, eventID); err == nil {
		reg.Event = *event
	}
	s.notify(ctx, notify.KindRegistrationDeleted, reg)
	return nil
}

// ListForOwnedEvents returns the registrations of every event the current
// user owns.
func (s *RegistrationService) ListForOwnedEvents(ctx context.Context) ([]models.Registration, error) {
	user, err := auth.ResolveCurrentUser(ctx, s.repomanager.Users(s.db))
	if err != nil {
		return nil, err
	}
	regs, err := s.repomanager.Registrations(s.db).ListForOwner(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing registrations: %w", err)
	}
	return regs, nil
}

// GetForOwner returns registration id if its event belongs to the current
// user. Registrations of foreign events are reported as not found.
func (s *RegistrationService) GetForOwner(ctx context.Context, id string) (*models.Registration, error) {
	user, err := auth.ResolveCurrentUser(ctx, s.repomanager.Users(s.db))
	if err != nil {
		return nil, err
	}
	reg, err := s.repomanager.Registrations(s.db).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CheckOwnership(reg.Event.OwnerID, user.ID) {
		return nil, common.ErrRegistrationNotFound
	}
	return reg, nil
}

func (s *RegistrationService) notify(ctx context.Context, kind string, r *models.Registration) {
	s.notifier.Notify(ctx, notify.Notice{
		Kind:           kind,
		EventID:        r.EventID,
		EventTitle:     r.Event.Title,
		OwnerID:        r.Event.OwnerID,
		OwnerEmail:     r.Event.Owner.Email,
		RegistrationID: r.ID,
		UserID:         r.UserID,
		UserName:       r.User.UserName,
		At:             s.now(),
	})
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.NewValidationError("Invalid id.")
	}
	return nil
}
