package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cicc-pucmm/open-house-social-app-2026/config"
	"github.com/cicc-pucmm/open-house-social-app-2026/middleware"
	"github.com/cicc-pucmm/open-house-social-app-2026/models"
	"github.com/cicc-pucmm/open-house-social-app-2026/utils"
)

// SessionController upserts users from session info and issues session tokens.
// There is no credential check: whoever presents the configured admin triple
// (username, email, phone) is the administrator.
type SessionController struct {
	db *gorm.DB
}

// NewSessionController creates a new SessionController instance.
func NewSessionController(db *gorm.DB) *SessionController {
	return &SessionController{db: db}
}

// UpsertSession creates or refreshes the user identified by email and
// returns a bearer token. Username and phone are overwritten on every call
// and the admin flag is recomputed.
func (s *SessionController) UpsertSession(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Phone    string `json:"phone"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(ctx, 40010, "invalid request payload")
		return
	}

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	phone := strings.TrimSpace(req.Phone)
	if username == "" {
		utils.ValidationError(ctx, 40011, "username cannot be empty")
		return
	}

	cfg := config.Get()
	isAdmin := username == cfg.AdminUsername &&
		email == cfg.AdminEmail &&
		phone == cfg.AdminPhone

	var user models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", email).First(&user).Error
		if err == nil {
			return tx.Model(&user).Updates(map[string]interface{}{
				"username": username,
				"phone":    phone,
				"is_admin": isAdmin,
			}).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		user = models.User{
			Username: username,
			Email:    email,
			Phone:    phone,
			IsAdmin:  isAdmin,
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to upsert user")
		return
	}

	user.Username = username
	user.Phone = phone
	user.IsAdmin = isAdmin

	ttl := time.Duration(cfg.SessionTTLHours) * time.Hour
	token, err := utils.GenerateToken(user.ID, user.Username, ttl)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to issue session token")
		return
	}

	utils.Success(ctx, gin.H{"user": user, "token": token})
}

// Me returns the authenticated user.
func (s *SessionController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		utils.NotFoundError(ctx, 40410, "user not found")
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}

// Logout revokes the current session token until its natural expiration.
func (s *SessionController) Logout(ctx *gin.Context) {
	tokenVal, exists := ctx.Get(middleware.ContextTokenKey)
	if !exists {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}
	token, _ := tokenVal.(string)
	if claims, err := utils.ParseToken(token); err == nil && claims.ExpiresAt != nil {
		utils.BlacklistToken(token, claims.ExpiresAt.Time)
	}
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// GetUser returns a user by ID.
func (s *SessionController) GetUser(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.ValidationError(ctx, 40012, "invalid user id")
		return
	}
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		utils.NotFoundError(ctx, 40411, "user not found")
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}

// GetUserByEmail returns a user by email (the upsert merge key).
func (s *SessionController) GetUserByEmail(ctx *gin.Context) {
	email := strings.TrimSpace(ctx.Query("email"))
	if email == "" {
		utils.ValidationError(ctx, 40013, "missing email")
		return
	}
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		utils.NotFoundError(ctx, 40412, "user not found")
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}
