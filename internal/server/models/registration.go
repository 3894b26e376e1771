package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Registration links one user to one event. The composite unique index is
// the final arbiter for concurrent duplicate registrations.
type Registration struct {
	ID        string `gorm:"primaryKey;size:36"`
	EventID   string `gorm:"size:36;not null;uniqueIndex:idx_registrations_event_user"`
	UserID    string `gorm:"size:36;not null;uniqueIndex:idx_registrations_event_user;index"`
	Event     Event  `gorm:"constraint:OnDelete:CASCADE"`
	User      User   `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

func (r *Registration) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// All lists every model in dependency order, for AutoMigrate.
func All() []any {
	return []any{&User{}, &Event{}, &Registration{}}
}
