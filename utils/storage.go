package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cicc-pucmm/open-house-social-app-2026/models"
)

// FileStore keeps uploaded photos on local disk, keyed by opaque UUIDs
// recorded in the stored_files table. Callers hold only the IDs; URL
// resolution can fail (deleted file) and must be tolerated.
type FileStore struct {
	db      *gorm.DB
	dir     string
	baseURL string
}

// NewFileStore builds a store rooted at dir, serving files under baseURL.
func NewFileStore(db *gorm.DB, dir, baseURL string) *FileStore {
	return &FileStore{db: db, dir: dir, baseURL: baseURL}
}

// Save writes the uploaded content under a date-sharded path and records it.
func (s *FileStore) Save(r io.Reader, originalName string, maxSize int64) (*models.StoredFile, error) {
	now := time.Now()
	shard := filepath.Join(now.Format("2006"), now.Format("01"), now.Format("02"))
	baseDir := filepath.Join(s.dir, shard)
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	name := id + safeExt(originalName)
	dstPath := filepath.Join(baseDir, name)

	out, err := os.Create(dstPath)
	if err != nil {
		return nil, err
	}
	defer out.Close()

	lr := &io.LimitedReader{R: r, N: maxSize + 1}
	written, err := io.Copy(out, lr)
	if err != nil {
		_ = os.Remove(dstPath)
		return nil, err
	}
	if written > maxSize {
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("file exceeds %d bytes", maxSize)
	}

	file := &models.StoredFile{
		ID:       id,
		FilePath: dstPath,
		URL:      fmt.Sprintf("%s/%s/%s", s.baseURL, filepath.ToSlash(shard), name),
	}
	if err := s.db.Create(file).Error; err != nil {
		_ = os.Remove(dstPath)
		return nil, err
	}
	return file, nil
}

// URL resolves a file ID to its public URL; ok is false when the file is gone.
func (s *FileStore) URL(fileID string) (string, bool) {
	var file models.StoredFile
	if err := s.db.First(&file, "id = ?", fileID).Error; err != nil {
		return "", false
	}
	return file.URL, true
}

// URLs resolves each ID in order, keeping a nil slot for unresolvable files
// so clients can rely on position and length.
func (s *FileStore) URLs(fileIDs []string) []*string {
	urls := make([]*string, len(fileIDs))
	if len(fileIDs) == 0 {
		return urls
	}
	var files []models.StoredFile
	if err := s.db.Where("id IN ?", []string(fileIDs)).Find(&files).Error; err != nil {
		return urls
	}
	byID := make(map[string]string, len(files))
	for _, f := range files {
		byID[f.ID] = f.URL
	}
	for i, id := range fileIDs {
		if u, ok := byID[id]; ok {
			url := u
			urls[i] = &url
		}
	}
	return urls
}

// Delete removes the record and the underlying file. A missing record is not
// an error; the file is treated as already cleaned up.
func (s *FileStore) Delete(fileID string) error {
	var file models.StoredFile
	err := s.db.First(&file, "id = ?", fileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.db.Delete(&models.StoredFile{}, "id = ?", fileID).Error; err != nil {
		return err
	}
	if file.FilePath != "" {
		_ = os.Remove(file.FilePath)
	}
	return nil
}

func safeExt(name string) string {
	ext := filepath.Ext(filepath.Base(name))
	if len(ext) > 10 {
		return ""
	}
	return ext
}
