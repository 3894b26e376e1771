package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/eventhub/internal/common"
	"github.com/dmitrijs2005/eventhub/internal/dbx"
	"github.com/dmitrijs2005/eventhub/internal/logging"
	"github.com/dmitrijs2005/eventhub/internal/server/auth"
	"github.com/dmitrijs2005/eventhub/internal/server/models"
	"github.com/dmitrijs2005/eventhub/internal/server/notify"
	"github.com/dmitrijs2005/eventhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/eventhub/internal/server/storage"
	"gorm.io/gorm"
)

// Field limits for events.
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
	MaxLocationLength    = 200
)

// AllowedImageExtensions lists the accepted event image types.
var AllowedImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif"}

// EventInput is the writable part of an event.
type EventInput struct {
	Title       string
	Description string
	Date        time.Time
	Location    string
}

func (in EventInput) validate() error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return common.NewValidationError("Title is required.")
	case utf8.RuneCountInString(in.Title) > MaxTitleLength:
		return common.NewValidationError(fmt.Sprintf("Title must be at most %d characters.", MaxTitleLength))
	case utf8.RuneCountInString(in.Description) > MaxDescriptionLength:
		return common.NewValidationError(fmt.Sprintf("Description must be at most %d characters.", MaxDescriptionLength))
	case in.Date.IsZero():
		return common.NewValidationError("Date is required.")
	case strings.TrimSpace(in.Location) == "":
		return common.NewValidationError("Location is required.")
	case utf8.RuneCountInString(in.Location) > MaxLocationLength:
		return common.NewValidationError(fmt.Sprintf("Location must be at most %d characters.", MaxLocationLength))
	}
	return nil
}

// ImageUpload tells the owner where to PUT the picture.
type ImageUpload struct {
	UploadURL string
	ImageKey  string
	ImageURL  string
}

type EventService struct {
	db          *gorm.DB
	repomanager repomanager.RepositoryManager
	images      storage.ImageStore
	notifier    notify.Notifier
	logger      logging.Logger
	now         func() time.Time
}

func NewEventService(db *gorm.DB, m repomanager.RepositoryManager, images storage.ImageStore, n notify.Notifier, l logging.Logger) *EventService {
	if images == nil {
		images = storage.Disabled{}
	}
	if n == nil {
		n = notify.Nop{}
	}
	return &EventService{
		db:          db,
		repomanager: m,
		images:      images,
		notifier:    n,
		logger:      l.With("module", "event_service"),
		now:         time.Now,
	}
}

func (s *EventService) List(ctx context.Context) ([]models.Event, error) {
	events, err := s.repomanager.Events(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing events: %w", err)
	}
	return events, nil
}

func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	return s.repomanager.Events(s.db).Get(ctx, id)
}

// Create stores a new event owned by the current user.
func (s *EventService) Create(ctx context.Context, in EventInput) (*models.Event, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	user, err := auth.ResolveCurrentUser(ctx, s.repomanager.Users(s.db))
	if err != nil {
		return nil, err
	}

	event, err := s.repomanager.Events(s.db).Create(ctx, &models.Event{
		Title:       in.Title,
		Description: in.Description,
		Date:        in.Date,
		Location:    in.Location,
		OwnerID:     user.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating event: %w", err)
	}
	event.Owner = *user

	s.notify(ctx, notify.KindEventCreated, event)
	return event, nil
}

// Update applies in to the event. The event must exist before ownership is
// checked, so strangers get ErrorForbidden and missing ids ErrEventNotFound.
func (s *EventService) Update(ctx context.Context, id string, in EventInput) (*models.Event, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var event *models.Event
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *gorm.DB) error {
		var err error
		event, err = s.getOwned(ctx, tx, id)
		if err != nil {
			return err
		}
		event.Title = in.Title
		event.Description = in.Description
		event.Date = in.Date
		event.Location = in.Location
		return s.repomanager.Events(tx).Update(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, notify.KindEventUpdated, event)
	return event, nil
}

// Delete removes an owned event and its registrations.
func (s *EventService) Delete(ctx context.Context, id string) error {
	var event *models.Event
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *gorm.DB) error {
		var err error
		event, err = s.getOwned(ctx, tx, id)
		if err != nil {
			return err
		}
		return s.repomanager.Events(tx).Delete(ctx, event.ID)
	})
	if err != nil {
		return err
	}

	s.notify(ctx, notify.KindEventDeleted, event)
	return nil
}

// PresignImageUpload reserves a storage key for a new picture of an owned
// event and returns a presigned PUT URL for it.
func (s *EventService) PresignImageUpload(ctx context.Context, id, fileName string) (*ImageUpload, error) {
	var upload *ImageUpload
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *gorm.DB) error {
		event, err := s.getOwned(ctx, tx, id)
		if err != nil {
			return err
		}

		ext := strings.ToLower(filepath.Ext(fileName))
		if !isAllowedImage(ext) {
			return fmt.Errorf("%w: only %s files are allowed", common.ErrInvalidImage, strings.Join(AllowedImageExtensions, ", "))
		}

		key := storage.NewImageKey(event.ID, ext, s.now())
		url, err := s.images.PresignUpload(ctx, key)
		if err != nil {
			return err
		}

		event.ImageKey = key
		if err := s.repomanager.Events(tx).Update(ctx, event); err != nil {
			return err
		}
		upload = &ImageUpload{UploadURL: url, ImageKey: key}
		return nil
	})
	if err != nil {
		return nil, err
	}

	upload.ImageURL = s.ImageURL(ctx, &models.Event{ImageKey: upload.ImageKey})
	return upload, nil
}

// ImageURL returns a presigned download URL for the event picture, or ""
// when there is none or storage is unavailable.
func (s *EventService) ImageURL(ctx context.Context, event *models.Event) string {
	if event.ImageKey == "" {
		return ""
	}
	url, err := s.images.PresignDownload(ctx, event.ImageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrDisabled) {
			s.logger.Warn(ctx, "presign image download failed", "event_id", event.ID, "error", err)
		}
		return ""
	}
	return url
}

// getOwned loads event id and checks that the current user owns it.
func (s *EventService) getOwned(ctx context.Context, db *gorm.DB, id string) (*models.Event, error) {
	user, err := auth.ResolveCurrentUser(ctx, s.repomanager.Users(db))
	if err != nil {
		return nil, err
	}
	event, err := s.repomanager.Events(db).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CheckOwnership(event.OwnerID, user.ID) {
		return nil, common.ErrorForbidden
	}
	return event, nil
}

func (s *EventService) notify(ctx context.Context, kind string, e *models.Event) {
	s.notifier.Notify(ctx, notify.Notice{
		Kind:       kind,
		EventID:    e.ID,
		EventTitle: e.Title,
		OwnerID:    e.OwnerID,
		At:         s.now(),
	})
}

func isAllowedImage(ext string) bool {
	for _, a := range AllowedImageExtensions {
		if ext == a {
			return true
		}
	}
	return false
}
