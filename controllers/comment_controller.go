package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cicc-pucmm/open-house-social-app-2026/models"
	"github.com/cicc-pucmm/open-house-social-app-2026/utils"
)

// commentPreviewLength caps the comment excerpt embedded in the push body.
const commentPreviewLength = 50

// CommentController manages comments and the denormalized comment counter.
type CommentController struct {
	db         *gorm.DB
	dispatcher *utils.Dispatcher
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(db *gorm.DB, dispatcher *utils.Dispatcher) *CommentController {
	return &CommentController{db: db, dispatcher: dispatcher}
}

// CommentView is a comment joined with the commenter's username.
type CommentView struct {
	ID        uint      `json:"id"`
	PostID    uint      `json:"post_id"`
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// AddComment inserts a comment with trimmed text and bumps the post's
// counter in the same transaction. The post owner is notified afterwards
// with a truncated preview, unless they commented on their own post.
func (c *CommentController) AddComment(ctx *gin.Context) {
	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.ValidationError(ctx, 40040, "invalid post id")
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40116, "unauthorized")
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(ctx, 40041, "invalid request payload")
		return
	}

	text := strings.TrimSpace(utils.Sanitize(req.Text))
	if text == "" {
		utils.ValidationError(ctx, 40042, "comment cannot be empty")
		return
	}

	var (
		comment      models.Comment
		authorUserID uint
	)
	err := c.db.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, postID).Error; err != nil {
			return err
		}
		authorUserID = post.AuthorUserID

		comment = models.Comment{
			PostID: post.ID,
			UserID: userID,
			Text:   text,
		}
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).
			Where("id = ?", post.ID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFoundError(ctx, 40440, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to add comment")
		return
	}

	utils.InvalidateByPrefix("cache:feed:")
	utils.InvalidateByPrefix(fmt.Sprintf("cache:post:detail:%d", postID))
	utils.InvalidateByPrefix(fmt.Sprintf("cache:post:comments:%d", postID))

	if authorUserID != userID {
		var commenter models.User
		commenterName := "Someone"
		if err := c.db.First(&commenter, userID).Error; err == nil {
			commenterName = commenter.Username
		}
		c.dispatcher.Enqueue(utils.Notification{
			UserID: authorUserID,
			Title:  "💬 New Comment",
			Body:   fmt.Sprintf("%s commented: \"%s\"", commenterName, commentPreview(text)),
		})
	}

	utils.Success(ctx, gin.H{"comment": comment})
}

// ListComments returns all comments on a post in ascending creation order.
func (c *CommentController) ListComments(ctx *gin.Context) {
	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.ValidationError(ctx, 40043, "invalid post id")
		return
	}

	cacheKey := fmt.Sprintf("cache:post:comments:%d", postID)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var comments []models.Comment
	if err := c.db.Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to list comments")
		return
	}

	userIDs := make([]uint, 0, len(comments))
	for _, cm := range comments {
		userIDs = append(userIDs, cm.UserID)
	}
	userIDs = utils.UniqueUint(userIDs)

	usernames := make(map[uint]string, len(userIDs))
	if len(userIDs) > 0 {
		var users []models.User
		if err := c.db.Find(&users, userIDs).Error; err == nil {
			for _, u := range users {
				usernames[u.ID] = u.Username
			}
		}
	}

	views := make([]CommentView, 0, len(comments))
	for _, cm := range comments {
		username, ok := usernames[cm.UserID]
		if !ok {
			username = unknownAuthor
		}
		views = append(views, CommentView{
			ID:        cm.ID,
			PostID:    cm.PostID,
			UserID:    cm.UserID,
			Username:  username,
			Text:      cm.Text,
			CreatedAt: cm.CreatedAt,
		})
	}

	payload := gin.H{"items": views}
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

// DeleteComment removes a comment and decrements the parent post's counter.
// Admin only. A missing parent post is tolerated (already cleaned up).
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	commentID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.ValidationError(ctx, 40044, "invalid comment id")
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40117, "unauthorized")
		return
	}
	var requester models.User
	if err := c.db.First(&requester, userID).Error; err != nil || !requester.IsAdmin {
		utils.AuthorizationError(ctx, 40340, "only the administrator can delete comments")
		return
	}

	var postID uint
	err := c.db.Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.First(&comment, commentID).Error; err != nil {
			return err
		}
		postID = comment.PostID

		removed, err := removeComment(tx, comment.ID)
		if err != nil {
			return err
		}
		if !removed {
			return nil
		}
		// guarded decrement, floored at zero; missing post matches no row
		return tx.Model(&models.Post{}).
			Where("id = ? AND comment_count > 0", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count - 1")).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFoundError(ctx, 40441, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to delete comment")
		return
	}

	utils.InvalidateByPrefix("cache:feed:")
	utils.InvalidateByPrefix(fmt.Sprintf("cache:post:detail:%d", postID))
	utils.InvalidateByPrefix(fmt.Sprintf("cache:post:comments:%d", postID))

	utils.Success(ctx, gin.H{"message": "comment deleted"})
}

// removeComment deletes the comment row and reports whether this call
// removed it. Only the delete that affected a row may decrement the
// parent post's counter.
func removeComment(tx *gorm.DB, commentID uint) (bool, error) {
	res := tx.Delete(&models.Comment{}, commentID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// commentPreview truncates text for the notification body: first 50
// characters plus an ellipsis when longer.
func commentPreview(text string) string {
	runes := []rune(text)
	if len(runes) <= commentPreviewLength {
		return text
	}
	return string(runes[:commentPreviewLength]) + "..."
}
