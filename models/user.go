package models

import (
	"time"
)

// Profile is a user account.
type Profile struct {
	ID           string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255)" json:"-"`
	DisplayName  string    `gorm:"type:varchar(100)" json:"display_name"`
	AvatarURL    string    `gorm:"type:varchar(255)" json:"avatar_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) GetDisplayName() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Email
}

type NotificationCadence string

const (
	CadenceOff    NotificationCadence = "off"
	CadenceDaily  NotificationCadence = "daily"
	CadenceWeekly NotificationCadence = "weekly"
)

func (c NotificationCadence) Valid() bool {
	switch c {
	case CadenceOff, CadenceDaily, CadenceWeekly:
		return true
	}
	return false
}

// UserSettings holds per-owner preferences.
type UserSettings struct {
	UserID              string              `gorm:"type:varchar(50);primaryKey" json:"user_id"`
	NotificationCadence NotificationCadence `gorm:"type:varchar(10);default:daily" json:"notification_cadence"`
	DefaultColor        string              `gorm:"type:varchar(20)" json:"default_color"`
	AutoEnrich          bool                `json:"auto_enrich"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

func (UserSettings) TableName() string {
	return "user_settings"
}

// DefaultSettings is used when an owner has never saved preferences.
func DefaultSettings(userID string) UserSettings {
	return UserSettings{
		UserID:              userID,
		NotificationCadence: CadenceDaily,
		DefaultColor:        DefaultNoteColor,
		AutoEnrich:          true,
	}
}
