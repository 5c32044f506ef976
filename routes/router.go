package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cicc-pucmm/open-house-social-app-2026/config"
	"github.com/cicc-pucmm/open-house-social-app-2026/controllers"
	"github.com/cicc-pucmm/open-house-social-app-2026/middleware"
	"github.com/cicc-pucmm/open-house-social-app-2026/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, store *utils.FileStore, dispatcher *utils.Dispatcher) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	r.Use(cors.New(corsCfg))

	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	sessionController := controllers.NewSessionController(db)
	postController := controllers.NewPostController(db, store)
	likeController := controllers.NewLikeController(db, dispatcher)
	commentController := controllers.NewCommentController(db, dispatcher)
	uploadController := controllers.NewUploadController(store)
	pushTokenController := controllers.NewPushTokenController(db)

	api := r.Group("/api/v1")

	sessionGroup := api.Group("/session")
	sessionGroup.Use(middleware.RateLimitMiddleware())
	sessionGroup.POST("", sessionController.UpsertSession)
	sessionGroup.POST("/logout", middleware.AuthRequired(), sessionController.Logout)
	sessionGroup.GET("/me", middleware.AuthRequired(), sessionController.Me)

	// Public reads
	api.GET("/users/:id", sessionController.GetUser)
	api.GET("/users/by-email", sessionController.GetUserByEmail)
	api.GET("/posts/recent", postController.ListRecent)
	api.GET("/posts/popular", postController.ListPopular)
	api.GET("/posts/:id", postController.GetPost)
	api.GET("/posts/:id/comments", commentController.ListComments)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	protected.POST("/files", uploadController.UploadPhoto)
	protected.POST("/posts", postController.CreatePost)
	protected.DELETE("/posts/:id", postController.DeletePost)
	protected.POST("/posts/:id/like", likeController.ToggleLike)
	protected.GET("/posts/:id/like", likeController.GetLikeStatus)
	protected.POST("/posts/:id/comments", commentController.AddComment)
	protected.DELETE("/comments/:id", commentController.DeleteComment)
	protected.POST("/posts/:id/email", postController.EmailPostPhotos)
	protected.POST("/push-token", pushTokenController.RegisterPushToken)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
