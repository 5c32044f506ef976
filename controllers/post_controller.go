package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cicc-pucmm/open-house-social-app-2026/models"
	"github.com/cicc-pucmm/open-house-social-app-2026/utils"
)

const (
	// MaxCaptionLength caps captions (same as Instagram).
	MaxCaptionLength = 2200
	// MaxImagesPerPost caps photos per post.
	MaxImagesPerPost = 10

	feedLimit = 50
	// Popular ranking only considers the most recent candidates; posts that
	// age out of this window disappear from the popular feed regardless of
	// like count. Deliberate scalability trade-off.
	popularCandidates = 200

	unknownAuthor = "Unknown"
)

// PostController manages post creation, the two feed orderings and the
// admin-only cascade delete.
type PostController struct {
	db    *gorm.DB
	store *utils.FileStore
}

// NewPostController creates a new PostController instance.
func NewPostController(db *gorm.DB, store *utils.FileStore) *PostController {
	return &PostController{db: db, store: store}
}

// PostView is a post joined with its author's username and resolved image
// URLs. URL slots keep their position; a nil entry means the file no longer
// resolves.
type PostView struct {
	ID             uint      `json:"id"`
	AuthorUserID   uint      `json:"author_user_id"`
	AuthorUsername string    `json:"author_username"`
	Caption        string    `json:"caption"`
	ImageURLs      []*string `json:"image_urls"`
	LikeCount      int       `json:"like_count"`
	CommentCount   int       `json:"comment_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreatePost publishes a new post authored by the authenticated user.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req struct {
		Caption      string   `json:"caption"`
		ImageFileIDs []string `json:"image_file_ids"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(ctx, 40020, "invalid request payload")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	caption := utils.Sanitize(req.Caption)
	if utf8.RuneCountInString(caption) > MaxCaptionLength {
		utils.ValidationError(ctx, 40021, fmt.Sprintf("caption cannot exceed %d characters", MaxCaptionLength))
		return
	}
	if len(req.ImageFileIDs) == 0 {
		utils.ValidationError(ctx, 40022, "at least one photo is required")
		return
	}
	if len(req.ImageFileIDs) > MaxImagesPerPost {
		utils.ValidationError(ctx, 40023, fmt.Sprintf("at most %d photos per post", MaxImagesPerPost))
		return
	}

	var author models.User
	if err := p.db.First(&author, userID).Error; err != nil {
		utils.NotFoundError(ctx, 40420, "user not found")
		return
	}

	post := models.Post{
		AuthorUserID: userID,
		Caption:      caption,
		ImageFileIDs: models.StringList(req.ImageFileIDs),
		LikeCount:    0,
		CommentCount: 0,
	}
	if err := p.db.Create(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create post")
		return
	}

	utils.InvalidateByPrefix("cache:feed:")

	utils.Success(ctx, gin.H{"post": p.assembleViews([]models.Post{post})[0]})
}

// ListRecent returns up to 50 posts, newest first.
func (p *PostController) ListRecent(ctx *gin.Context) {
	const cacheKey = "cache:feed:recent"
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var posts []models.Post
	if err := p.db.Order("created_at DESC, id DESC").Limit(feedLimit).Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to list posts")
		return
	}

	payload := gin.H{"items": p.assembleViews(posts)}
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

// ListPopular ranks the most recent candidates by like count (recency breaks
// ties) and returns the top 50.
func (p *PostController) ListPopular(ctx *gin.Context) {
	const cacheKey = "cache:feed:popular"
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var posts []models.Post
	if err := p.db.Order("created_at DESC, id DESC").Limit(popularCandidates).Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list posts")
		return
	}

	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].LikeCount != posts[j].LikeCount {
			return posts[i].LikeCount > posts[j].LikeCount
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	if len(posts) > feedLimit {
		posts = posts[:feedLimit]
	}

	payload := gin.H{"items": p.assembleViews(posts)}
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

// GetPost returns a single post with the feed join.
func (p *PostController) GetPost(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.ValidationError(ctx, 40024, "invalid post id")
		return
	}

	cacheKey := fmt.Sprintf("cache:post:detail:%d", id)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var post models.Post
	if err := p.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFoundError(ctx, 40421, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load post")
		return
	}

	payload := gin.H{"post": p.assembleViews([]models.Post{post})[0]}
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

// DeletePost removes a post together with its likes, comments and stored
// photos. Admin only. The row cascade runs in one transaction so no reader
// ever sees a post without its counters or orphaned likes; file removal from
// disk happens after commit, best-effort.
func (p *PostController) DeletePost(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.ValidationError(ctx, 40025, "invalid post id")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40112, "unauthorized")
		return
	}
	var requester models.User
	if err := p.db.First(&requester, userID).Error; err != nil || !requester.IsAdmin {
		utils.AuthorizationError(ctx, 40320, "only the administrator can delete posts")
		return
	}

	var filePaths []string
	err := p.db.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, id).Error; err != nil {
			return err
		}

		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		if len(post.ImageFileIDs) > 0 {
			var files []models.StoredFile
			if err := tx.Where("id IN ?", []string(post.ImageFileIDs)).Find(&files).Error; err != nil {
				return err
			}
			for _, f := range files {
				filePaths = append(filePaths, f.FilePath)
			}
			if err := tx.Where("id IN ?", []string(post.ImageFileIDs)).Delete(&models.StoredFile{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&post).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFoundError(ctx, 40422, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to delete post")
		return
	}

	for _, path := range filePaths {
		if path != "" {
			_ = os.Remove(path)
		}
	}

	utils.InvalidateByPrefix("cache:feed:")
	utils.InvalidateByPrefix(fmt.Sprintf("cache:post:detail:%d", id))
	utils.InvalidateByPrefix(fmt.Sprintf("cache:post:comments:%d", id))

	utils.Success(ctx, gin.H{"message": "post deleted"})
}

// EmailPostPhotos sends the caller their post's photos by email (opt-in after
// publishing). Validation is synchronous; delivery is not awaited.
func (p *PostController) EmailPostPhotos(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.ValidationError(ctx, 40026, "invalid post id")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40113, "unauthorized")
		return
	}
	var user models.User
	if err := p.db.First(&user, userID).Error; err != nil {
		utils.NotFoundError(ctx, 40423, "user not found")
		return
	}

	var post models.Post
	if err := p.db.First(&post, id).Error; err != nil {
		utils.NotFoundError(ctx, 40424, "post not found")
		return
	}

	var validURLs []string
	for _, url := range p.store.URLs(post.ImageFileIDs) {
		if url != nil {
			validURLs = append(validURLs, *url)
		}
	}
	if len(validURLs) == 0 {
		utils.ValidationError(ctx, 40027, "no photos available to send")
		return
	}

	html := utils.RenderPostPhotosHTML(user.Username, post.Caption, validURLs)
	toEmail := user.Email
	go func() {
		if err := utils.SendHTMLMail(toEmail, "📸 Your OpenHouse 2026 photos", html); err != nil && utils.Sugar != nil {
			utils.Sugar.Warnf("post photos email to %s failed: %v", toEmail, err)
		}
	}()

	utils.Success(ctx, gin.H{"message": "email scheduled"})
}

// assembleViews joins posts with author usernames and resolved image URLs.
func (p *PostController) assembleViews(posts []models.Post) []PostView {
	authorIDs := make([]uint, 0, len(posts))
	for _, post := range posts {
		authorIDs = append(authorIDs, post.AuthorUserID)
	}
	authorIDs = utils.UniqueUint(authorIDs)

	usernames := make(map[uint]string, len(authorIDs))
	if len(authorIDs) > 0 {
		var authors []models.User
		if err := p.db.Find(&authors, authorIDs).Error; err == nil {
			for _, a := range authors {
				usernames[a.ID] = a.Username
			}
		}
	}

	views := make([]PostView, 0, len(posts))
	for _, post := range posts {
		username, ok := usernames[post.AuthorUserID]
		if !ok {
			username = unknownAuthor
		}
		views = append(views, PostView{
			ID:             post.ID,
			AuthorUserID:   post.AuthorUserID,
			AuthorUsername: username,
			Caption:        post.Caption,
			ImageURLs:      p.store.URLs(post.ImageFileIDs),
			LikeCount:      post.LikeCount,
			CommentCount:   post.CommentCount,
			CreatedAt:      post.CreatedAt,
		})
	}
	return views
}
