package models

import "time"

// StoredFile maps an opaque file ID to a locally stored photo. The rest of
// the code only ever sees the ID; URL resolution may fail and is tolerated.
type StoredFile struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	FilePath  string    `gorm:"size:1024;not null" json:"-"`
	URL       string    `gorm:"size:1024;not null" json:"url"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// All lists every model for migration.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Post{},
		&Like{},
		&Comment{},
		&PushToken{},
		&StoredFile{},
	}
}
