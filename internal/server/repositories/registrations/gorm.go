package registrations

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

func (r *GormRepository) Create(ctx context.Context, registration *models.Registration) (*models.Registration, error) {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(registration).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, common.ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return registration, nil
}

func (r *GormRepository) FindByEventAndUser(ctx context.Context, eventID, userID string) (*models.Registration, error) {
	registration := &models.Registration{}
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		First(registration).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return registration, nil
}

func (r *GormRepository) Get(ctx context.Context, id string) (*models.Registration, error) {
	registration := &models.Registration{}
	err := r.db.WithContext(ctx).
		Preload("Event").
		Preload("User").
		Where("id = ?", id).
		First(registration).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return registration, nil
}

func (r *GormRepository) ListForOwner(ctx context.Context, ownerID string) ([]models.Registration, error) {
	var list []models.Registration
	err := r.db.WithContext(ctx).
		Joins("JOIN events ON events.id = registrations.event_id").
		Where("events.owner_id = ?", ownerID).
		Preload("Event").
		Preload("User").
		Order("registrations.created_at ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return list, nil
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Registration{})
	if res.Error != nil {
		return fmt.Errorf("db error: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrRegistrationNotFound
	}
	return nil
}
