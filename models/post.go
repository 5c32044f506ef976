package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList stores an ordered list of stored-file IDs as a JSON text column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type %T for StringList", value)
	}
}

// Post carries denormalized like/comment counters maintained by the write
// path; they must always equal the number of extant Like/Comment rows.
type Post struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	AuthorUserID uint       `gorm:"index;not null" json:"author_user_id"`
	Caption      string     `gorm:"type:text" json:"caption"`
	ImageFileIDs StringList `gorm:"type:text" json:"image_file_ids"`
	LikeCount    int        `gorm:"not null;default:0" json:"like_count"`
	CommentCount int        `gorm:"not null;default:0" json:"comment_count"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Author       User       `gorm:"foreignKey:AuthorUserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
