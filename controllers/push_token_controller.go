package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cicc-pucmm/open-house-social-app-2026/models"
	"github.com/cicc-pucmm/open-house-social-app-2026/utils"
)

// PushTokenController registers the caller's push token. One active token
// per user: registering a new one replaces the previous.
type PushTokenController struct {
	db *gorm.DB
}

// NewPushTokenController creates a new PushTokenController instance.
func NewPushTokenController(db *gorm.DB) *PushTokenController {
	return &PushTokenController{db: db}
}

// RegisterPushToken stores or replaces the authenticated user's token.
func (p *PushTokenController) RegisterPushToken(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40119, "unauthorized")
		return
	}

	var req struct {
		Token    string `json:"token" binding:"required"`
		Platform string `json:"platform"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(ctx, 40060, "invalid request payload")
		return
	}
	token := strings.TrimSpace(req.Token)
	if token == "" {
		utils.ValidationError(ctx, 40061, "token cannot be empty")
		return
	}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		var existing models.PushToken
		err := tx.Where("user_id = ?", userID).First(&existing).Error
		if err == nil {
			return tx.Model(&existing).Updates(map[string]interface{}{
				"token":      token,
				"platform":   req.Platform,
				"updated_at": time.Now(),
			}).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&models.PushToken{
			UserID:   userID,
			Token:    token,
			Platform: req.Platform,
		}).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to register push token")
		return
	}

	utils.Success(ctx, gin.H{"message": "push token registered"})
}
