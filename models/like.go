package models

import "time"

// Like records one user liking one post. The composite unique index is the
// concurrency guard for the toggle: a second insert for the same pair fails
// at the store instead of producing a duplicate row.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_likes_post_user" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_post_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
