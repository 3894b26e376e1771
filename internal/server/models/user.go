// Package models defines server-side data models persisted in the database.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the credential record. RefreshToken holds the SHA-256 hex digest
// of the user's current refresh token; it is non-nil exactly when
// RefreshTokenExpiresAt is non-nil.
type User struct {
	ID                    string     `gorm:"primaryKey;size:36"`
	Email                 string     `gorm:"size:256;not null;uniqueIndex"`
	UserName              string     `gorm:"column:username;size:256;not null;uniqueIndex"`
	PasswordHash          string     `gorm:"not null"`
	RefreshToken          *string    `gorm:"size:64"`
	RefreshTokenExpiresAt *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
