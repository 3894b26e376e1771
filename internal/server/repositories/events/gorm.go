package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/eventhub/internal/common"
	"github.com/dmitrijs2005/eventhub/internal/server/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) List(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Order("date ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return events, nil
}

func (r *GormRepository) Get(ctx context.Context, id string) (*models.Event, error) {
	event := &models.Event{}
	err := r.db.WithContext(ctx).Preload("Owner").Where("id = ?", id).First(event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrEventNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return event, nil
}

func (r *GormRepository) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(event).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return event, nil
}

func (r *GormRepository) Update(ctx context.Context, event *models.Event) error {
	res := r.db.WithContext(ctx).Model(&models.Event{ID: event.ID}).
		Select("title", "description", "date", "location", "image_key", "updated_at").
		Updates(event)
	if res.Error != nil {
		return fmt.Errorf("db error: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrEventNotFound
	}
	return nil
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("event_id = ?", id).Delete(&models.Registration{}).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	res := db.Where("id = ?", id).Delete(&models.Event{})
	if res.Error != nil {
		return fmt.Errorf("db error: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrEventNotFound
	}
	return nil
}
