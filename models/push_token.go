package models

import "time"

// PushToken holds the single current push token for a user. Registering a
// new token replaces the previous one rather than appending.
type PushToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex" json:"-"`
	Token     string    `gorm:"size:512;not null" json:"-"`
	Platform  string    `gorm:"size:16" json:"platform"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
