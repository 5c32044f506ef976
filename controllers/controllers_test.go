package controllers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/cicc-pucmm/open-house-social-app-2026/config"
	"github.com/cicc-pucmm/open-house-social-app-2026/middleware"
	"github.com/cicc-pucmm/open-house-social-app-2026/models"
	"github.com/cicc-pucmm/open-house-social-app-2026/utils"
)

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
	store  *utils.FileStore
}

// newTestEnv builds an in-memory database and a router mirroring the
// production route table.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	config.Set(config.AppConfig{
		JWTSecret:     "test-secret",
		AdminUsername: "Dean",
		AdminEmail:    "dean@example.edu",
		AdminPhone:    "8095551234",
		GinMode:       "test",
		LogLevel:      "silent",
		// nothing listens here; every cache access degrades to a miss
		RedisHost: "127.0.0.1",
		RedisPort: 1,
	})
	gin.SetMode(gin.TestMode)

	db, err := config.Open(sqlite.Open(":memory:"), "silent", models.All()...)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	// in-memory sqlite: a second connection would see an empty database
	sqlDB.SetMaxOpenConns(1)

	store := utils.NewFileStore(db, t.TempDir(), "/static/uploads")
	dispatcher := utils.NewDispatcher(db, utils.NewPushSender("http://127.0.0.1:1"))

	sessionController := NewSessionController(db)
	postController := NewPostController(db, store)
	likeController := NewLikeController(db, dispatcher)
	commentController := NewCommentController(db, dispatcher)
	uploadController := NewUploadController(store)
	pushTokenController := NewPushTokenController(db)

	r := gin.New()
	api := r.Group("/api/v1")
	api.POST("/session", sessionController.UpsertSession)
	api.GET("/users/:id", sessionController.GetUser)
	api.GET("/users/by-email", sessionController.GetUserByEmail)
	api.GET("/posts/recent", postController.ListRecent)
	api.GET("/posts/popular", postController.ListPopular)
	api.GET("/posts/:id", postController.GetPost)
	api.GET("/posts/:id/comments", commentController.ListComments)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired())
	protected.GET("/session/me", sessionController.Me)
	protected.POST("/session/logout", sessionController.Logout)
	protected.POST("/files", uploadController.UploadPhoto)
	protected.POST("/posts", postController.CreatePost)
	protected.DELETE("/posts/:id", postController.DeletePost)
	protected.POST("/posts/:id/like", likeController.ToggleLike)
	protected.GET("/posts/:id/like", likeController.GetLikeStatus)
	protected.POST("/posts/:id/comments", commentController.AddComment)
	protected.DELETE("/comments/:id", commentController.DeleteComment)
	protected.POST("/posts/:id/email", postController.EmailPostPhotos)
	protected.POST("/push-token", pushTokenController.RegisterPushToken)

	return &testEnv{db: db, router: r, store: store}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// doJSON performs a request with an optional JSON body and bearer token.
func (e *testEnv) doJSON(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return w, env
}

// createUser seeds a user row directly and returns it with a session token.
func (e *testEnv) createUser(t *testing.T, username, email string, isAdmin bool) (models.User, string) {
	t.Helper()

	user := models.User{Username: username, Email: email, IsAdmin: isAdmin}
	if err := e.db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	token, err := utils.GenerateToken(user.ID, user.Username, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return user, token
}

// createPost seeds a post row directly.
func (e *testEnv) createPost(t *testing.T, authorID uint, caption string, imageIDs []string) models.Post {
	t.Helper()

	post := models.Post{
		AuthorUserID: authorID,
		Caption:      caption,
		ImageFileIDs: models.StringList(imageIDs),
	}
	if err := e.db.Create(&post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}

func wantStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, want, w.Body.String())
	}
}

func decodeData(t *testing.T, env envelope, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data %q: %v", env.Data, err)
	}
}
