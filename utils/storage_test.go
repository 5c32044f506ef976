package utils

import (
	"os"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/cicc-pucmm/open-house-social-app-2026/config"
	"github.com/cicc-pucmm/open-house-social-app-2026/models"
)

func storageTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.Open(sqlite.Open(":memory:"), "silent", &models.StoredFile{})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestFileStoreSaveAndResolve(t *testing.T) {
	store := NewFileStore(storageTestDB(t), t.TempDir(), "/static/uploads")

	file, err := store.Save(strings.NewReader("jpegbytes"), "My Photo.JPG", 1<<20)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if file.ID == "" {
		t.Fatal("expected a generated id")
	}
	if !strings.HasPrefix(file.URL, "/static/uploads/") || !strings.HasSuffix(file.URL, ".JPG") {
		t.Fatalf("url = %q", file.URL)
	}
	if _, err := os.Stat(file.FilePath); err != nil {
		t.Fatalf("file not on disk: %v", err)
	}

	url, ok := store.URL(file.ID)
	if !ok || url != file.URL {
		t.Fatalf("URL() = %q, %v", url, ok)
	}
}

func TestFileStoreSizeLimit(t *testing.T) {
	store := NewFileStore(storageTestDB(t), t.TempDir(), "/static/uploads")

	if _, err := store.Save(strings.NewReader("0123456789"), "big.jpg", 5); err == nil {
		t.Fatal("expected an error for an oversized file")
	}
}

func TestFileStoreURLsKeepPositions(t *testing.T) {
	store := NewFileStore(storageTestDB(t), t.TempDir(), "/static/uploads")

	a, err := store.Save(strings.NewReader("a"), "a.jpg", 1<<20)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	b, err := store.Save(strings.NewReader("b"), "b.jpg", 1<<20)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	urls := store.URLs([]string{a.ID, "missing", b.ID})
	if len(urls) != 3 {
		t.Fatalf("len = %d, want 3", len(urls))
	}
	if urls[0] == nil || *urls[0] != a.URL {
		t.Fatalf("slot 0 = %v", urls[0])
	}
	if urls[1] != nil {
		t.Fatalf("slot 1 = %v, want nil for missing file", *urls[1])
	}
	if urls[2] == nil || *urls[2] != b.URL {
		t.Fatalf("slot 2 = %v", urls[2])
	}
}

func TestFileStoreDeleteIdempotent(t *testing.T) {
	store := NewFileStore(storageTestDB(t), t.TempDir(), "/static/uploads")

	file, err := store.Save(strings.NewReader("x"), "x.jpg", 1<<20)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(file.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(file.FilePath); !os.IsNotExist(err) {
		t.Fatalf("file still on disk: %v", err)
	}
	if _, ok := store.URL(file.ID); ok {
		t.Fatal("deleted file still resolves")
	}
	if err := store.Delete(file.ID); err != nil {
		t.Fatalf("second delete must be a no-op: %v", err)
	}
	if err := store.Delete("never-existed"); err != nil {
		t.Fatalf("deleting an unknown id must be a no-op: %v", err)
	}
}
