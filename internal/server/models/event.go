package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event is owned by exactly one user. ImageKey is the object-storage key of
// the event picture, empty until one is uploaded.
type Event struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Title       string    `gorm:"size:100;not null"`
	Description string    `gorm:"size:500"`
	Date        time.Time `gorm:"not null;index"`
	Location    string    `gorm:"size:200;not null"`
	ImageKey    string    `gorm:"size:512"`
	OwnerID     string    `gorm:"size:36;not null;index"`
	Owner       User      `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (e *Event) BeforeCreate(*gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
