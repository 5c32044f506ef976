package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cicc-pucmm/open-house-social-app-2026/models"
	"github.com/cicc-pucmm/open-house-social-app-2026/utils"
)

// LikeController implements the per (post, user) like toggle.
type LikeController struct {
	db         *gorm.DB
	dispatcher *utils.Dispatcher
}

// NewLikeController creates a new LikeController instance.
func NewLikeController(db *gorm.DB, dispatcher *utils.Dispatcher) *LikeController {
	return &LikeController{db: db, dispatcher: dispatcher}
}

// ToggleLike flips the like state for the authenticated user on a post. The
// like row and the counter patch commit in one transaction. The composite
// unique index on (post_id, user_id) rejects duplicate inserts, and the
// decrement only runs when this transaction's delete removed the row.
func (l *LikeController) ToggleLike(ctx *gin.Context) {
	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.ValidationError(ctx, 40030, "invalid post id")
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40114, "unauthorized")
		return
	}

	var (
		liked        bool
		likeCount    int
		authorUserID uint
	)
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, postID).Error; err != nil {
			return err
		}
		authorUserID = post.AuthorUserID

		var like models.Like
		err := tx.Where("post_id = ? AND user_id = ?", post.ID, userID).First(&like).Error
		switch {
		case err == nil:
			removed, err := removeLike(tx, post.ID, userID)
			if err != nil {
				return err
			}
			if removed {
				// guarded decrement, floored at zero
				if err := tx.Model(&models.Post{}).
					Where("id = ? AND like_count > 0", post.ID).
					UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error; err != nil {
					return err
				}
			}
			liked = false
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&models.Like{PostID: post.ID, UserID: userID}).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Post{}).
				Where("id = ?", post.ID).
				UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error; err != nil {
				return err
			}
			liked = true
		default:
			return err
		}

		var fresh models.Post
		if err := tx.Select("like_count").First(&fresh, post.ID).Error; err != nil {
			return err
		}
		likeCount = fresh.LikeCount
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.NotFoundError(ctx, 40430, "post not found")
		case errors.Is(err, gorm.ErrDuplicatedKey):
			// the like already exists; report current state
			l.respondCurrentState(ctx, postID, userID)
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to toggle like")
		}
		return
	}

	utils.InvalidateByPrefix("cache:feed:")
	utils.InvalidateByPrefix(fmt.Sprintf("cache:post:detail:%d", postID))

	if liked && authorUserID != userID {
		var liker models.User
		likerName := "Someone"
		if err := l.db.First(&liker, userID).Error; err == nil {
			likerName = liker.Username
		}
		l.dispatcher.Enqueue(utils.Notification{
			UserID: authorUserID,
			Title:  "❤️ New Like",
			Body:   fmt.Sprintf("%s liked your post", likerName),
		})
	}

	utils.Success(ctx, gin.H{"liked": liked, "like_count": likeCount})
}

// GetLikeStatus reports whether the authenticated user has liked the post.
func (l *LikeController) GetLikeStatus(ctx *gin.Context) {
	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.ValidationError(ctx, 40031, "invalid post id")
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40115, "unauthorized")
		return
	}

	var count int64
	if err := l.db.Model(&models.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to load like status")
		return
	}
	utils.Success(ctx, gin.H{"liked": count > 0})
}

// removeLike deletes the pair's like row and reports whether this call
// removed it. Two overlapping un-likes both read the row, but only the
// delete that affected a row may decrement the counter.
func removeLike(tx *gorm.DB, postID, userID uint) (bool, error) {
	res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (l *LikeController) respondCurrentState(ctx *gin.Context, postID, userID uint) {
	var post models.Post
	if err := l.db.First(&post, postID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to load post")
		return
	}
	utils.Success(ctx, gin.H{"liked": true, "like_count": post.LikeCount})
}
