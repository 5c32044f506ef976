package controllers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cicc-pucmm/open-house-social-app-2026/models"
)

func TestUploadPhoto(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "juan", "juan@example.com", false)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "photo.jpg")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte("jpegbytes")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	wantStatus(t, w, http.StatusOK)

	var env2 envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env2); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	var got struct {
		FileID string `json:"file_id"`
		URL    string `json:"url"`
	}
	decodeData(t, env2, &got)
	if got.FileID == "" || got.URL == "" {
		t.Fatalf("missing file id or url: %+v", got)
	}

	var row models.StoredFile
	if err := env.db.First(&row, "id = ?", got.FileID).Error; err != nil {
		t.Fatalf("stored file row missing: %v", err)
	}
	if url, ok := env.store.URL(got.FileID); !ok || url != got.URL {
		t.Fatalf("URL() = %q, %v; want %q", url, ok, got.URL)
	}
}

func TestUploadPhotoRequiresFile(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "juan", "juan@example.com", false)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	wantStatus(t, w, http.StatusBadRequest)
}
