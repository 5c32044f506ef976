package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cicc-pucmm/open-house-social-app-2026/config"
	"github.com/cicc-pucmm/open-house-social-app-2026/utils"
)

// UploadController accepts photo uploads and hands back opaque file IDs that
// posts reference.
type UploadController struct {
	store *utils.FileStore
}

// NewUploadController creates a new UploadController instance.
func NewUploadController(store *utils.FileStore) *UploadController {
	return &UploadController{store: store}
}

// UploadPhoto stores a multipart photo and returns its file ID and URL.
func (u *UploadController) UploadPhoto(ctx *gin.Context) {
	if _, ok := getUserID(ctx); !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40118, "unauthorized")
		return
	}

	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		// accept the short field name too
		file, header, err = ctx.Request.FormFile("f")
		if err != nil {
			utils.ValidationError(ctx, 40050, "no file uploaded")
			return
		}
	}
	defer file.Close()

	cfg := config.Get()
	maxSize := int64(cfg.UploadMaxSizeMB) * 1024 * 1024
	if header.Size > 0 && header.Size > maxSize {
		utils.ValidationError(ctx, 40051, "file too large")
		return
	}

	stored, err := u.store.Save(file, header.Filename, maxSize)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to store file")
		return
	}

	utils.Success(ctx, gin.H{"file_id": stored.ID, "url": stored.URL})
}
