package utils

import (
	"time"

	"gorm.io/gorm"

	"github.com/cicc-pucmm/open-house-social-app-2026/models"
)

// StartOrphanFileCleaner launches a background goroutine that periodically
// deletes stored photos no post references anymore (upload abandoned before
// publishing, or left behind by an interrupted cascade). Best-effort.
func StartOrphanFileCleaner(db *gorm.DB, store *FileStore, interval, minAge time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if minAge <= 0 {
		minAge = 24 * time.Hour
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			sweepOrphanFiles(db, store, minAge)
		}
	}()
}

func sweepOrphanFiles(db *gorm.DB, store *FileStore, minAge time.Duration) {
	cutoff := time.Now().Add(-minAge)
	var files []models.StoredFile
	if err := db.Where("created_at <= ?", cutoff).Limit(100).Find(&files).Error; err != nil {
		if Sugar != nil {
			Sugar.Warnf("orphan sweep query failed: %v", err)
		}
		return
	}
	for _, f := range files {
		// IDs are UUIDs, substring match is exact
		var refs int64
		if err := db.Model(&models.Post{}).Where("image_file_ids LIKE ?", "%"+f.ID+"%").Count(&refs).Error; err != nil {
			continue
		}
		if refs > 0 {
			continue
		}
		if err := store.Delete(f.ID); err != nil && Sugar != nil {
			Sugar.Warnf("orphan sweep delete failed for %s: %v", f.ID, err)
		}
	}
}
