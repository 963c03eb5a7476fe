package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID                   string     `gorm:"primaryKey;size:36" json:"id"`
	Email                string     `gorm:"index;size:255;not null" json:"email"`
	PasswordHash         string     `gorm:"size:255;not null" json:"-"`
	Name                 string     `gorm:"size:255;not null" json:"name"`
	ImageURL             string     `gorm:"size:1024" json:"imageUrl,omitempty"`
	IsActive             bool       `gorm:"not null;default:false" json:"isActive"`
	ResetToken           *string    `gorm:"size:64;index" json:"-"`
	ResetTokenExpiration *time.Time `json:"-"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// SetResetToken opens a reset window. Token and expiry always move together.
// The expiry is kept in UTC so stores comparing timestamps as text agree
// with the UTC bound used by lookups.
func (u *User) SetResetToken(token string, expiresAt time.Time) {
	expiresAt = expiresAt.UTC()
	u.ResetToken = &token
	u.ResetTokenExpiration = &expiresAt
}

func (u *User) ClearResetToken() {
	u.ResetToken = nil
	u.ResetTokenExpiration = nil
}

// HasValidResetToken reports whether token matches an open window at now.
func (u *User) HasValidResetToken(token string, now time.Time) bool {
	if u.ResetToken == nil || u.ResetTokenExpiration == nil {
		return false
	}
	return *u.ResetToken == token && now.Before(*u.ResetTokenExpiration)
}

// Author is the public projection of a user embedded in recipe responses.
type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (u *User) Author() Author {
	return Author{ID: u.ID, Name: u.Name}
}
