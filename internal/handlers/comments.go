package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/database"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/metrics"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/models"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/util"
)

type createCommentRequest struct {
	Content  string  `json:"content" binding:"required,min=1,max=5000"`
	ParentID *string `json:"parent_id" binding:"omitempty,uuid"`
}

type updateCommentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=5000"`
}

// ListComments returns a post's top-level comments with replies nested
// one level deep, oldest first
// GET /api/v1/posts/:id/comments
func (h *Handlers) ListComments(c *gin.Context) {
	post, ok := h.loadVisiblePost(c)
	if !ok {
		return
	}

	limit := util.ClampInt(util.ParseInt(c.DefaultQuery("limit", "50"), 50), 1, 200)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)
	if offset < 0 {
		offset = 0
	}

	var comments []*models.Comment
	if err := database.DB.
		Preload("User").
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Preload("User")
		}).
		Where("post_id = ? AND parent_id IS NULL", post.ID).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&comments).Error; err != nil {
		util.RespondInternalError(c, "failed to load comments")
		return
	}

	// Removed comments keep their slot but lose their content
	for _, comment := range comments {
		redactDeleted(comment)
		for _, reply := range comment.Replies {
			redactDeleted(reply)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"comments": comments,
		"meta": gin.H{
			"limit":  limit,
			"offset": offset,
			"count":  len(comments),
		},
	})
}

// CreateComment adds a comment or a single-level reply to a post
// POST /api/v1/posts/:id/comments
func (h *Handlers) CreateComment(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	post, ok := h.loadVisiblePost(c)
	if !ok {
		return
	}

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	var parent *models.Comment
	if req.ParentID != nil {
		var p models.Comment
		if err := database.DB.First(&p, "id = ? AND post_id = ?", *req.ParentID, post.ID).Error; err != nil {
			util.RespondNotFound(c, "parent comment")
			return
		}
		// Threads stay one level deep: replying to a reply attaches
		// to the top-level comment instead
		if p.ParentID != nil {
			req.ParentID = p.ParentID
			if err := database.DB.First(&p, "id = ?", *req.ParentID).Error; err != nil {
				util.RespondNotFound(c, "parent comment")
				return
			}
		}
		parent = &p
	}

	comment := models.Comment{
		PostID:   post.ID,
		UserID:   user.ID,
		Content:  req.Content,
		ParentID: req.ParentID,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return tx.Model(post).UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error
	})
	if err != nil {
		util.RespondInternalError(c, "failed to create comment")
		return
	}

	metrics.Get().CommentsTotal.WithLabelValues().Inc()

	actorName := user.DisplayName
	if actorName == "" {
		actorName = user.Username
	}
	if parent != nil {
		h.notifier.NotifyReplied(c.Request.Context(), parent.UserID, user.ID, actorName, post.ID)
	} else {
		h.notifier.NotifyCommented(c.Request.Context(), post.UserID, user.ID, actorName, post.ID)
	}

	comment.User = *user
	c.JSON(http.StatusCreated, comment)
}

// UpdateComment edits the caller's own comment
// PATCH /api/v1/comments/:id
func (h *Handlers) UpdateComment(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var comment models.Comment
	if err := database.DB.First(&comment, "id = ?", c.Param("id")).Error; err != nil {
		util.RespondNotFound(c, "comment")
		return
	}
	if comment.UserID != user.ID {
		util.RespondForbidden(c, "not your comment")
		return
	}
	if comment.IsDeleted {
		util.RespondNotFound(c, "comment")
		return
	}

	var req updateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	now := time.Now().UTC()
	if err := database.DB.Model(&comment).Updates(map[string]interface{}{
		"content":   req.Content,
		"is_edited": true,
		"edited_at": now,
	}).Error; err != nil {
		util.RespondInternalError(c, "failed to update comment")
		return
	}

	c.JSON(http.StatusOK, comment)
}

// DeleteComment soft-removes a comment, keeping the thread shape
// DELETE /api/v1/comments/:id
func (h *Handlers) DeleteComment(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var comment models.Comment
	if err := database.DB.First(&comment, "id = ?", c.Param("id")).Error; err != nil {
		util.RespondNotFound(c, "comment")
		return
	}
	if comment.UserID != user.ID && !user.IsModerator() {
		util.RespondForbidden(c, "not your comment")
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&comment).Updates(map[string]interface{}{
			"is_deleted": true,
			"content":    "",
		}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).
			Where("id = ? AND comment_count > 0", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count - 1")).Error
	})
	if err != nil {
		util.RespondInternalError(c, "failed to delete comment")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// LikeComment likes a comment, once per user
// POST /api/v1/comments/:id/like
func (h *Handlers) LikeComment(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var comment models.Comment
	if err := database.DB.First(&comment, "id = ?", c.Param("id")).Error; err != nil || comment.IsDeleted {
		util.RespondNotFound(c, "comment")
		return
	}

	like := models.CommentLike{CommentID: comment.ID, UserID: user.ID}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&like).Error; err != nil {
			return err
		}
		return tx.Model(&comment).UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			util.RespondConflict(c, "like")
			return
		}
		util.RespondInternalError(c, "failed to like comment")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "liked", "like_count": comment.LikeCount + 1})
}

// UnlikeComment removes the caller's like from a comment
// DELETE /api/v1/comments/:id/like
func (h *Handlers) UnlikeComment(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("comment_id = ? AND user_id = ?", c.Param("id"), user.ID).
			Delete(&models.CommentLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.Comment{}).
			Where("id = ? AND like_count > 0", c.Param("id")).
			UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.RespondNotFound(c, "like")
			return
		}
		util.RespondInternalError(c, "failed to unlike comment")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "unliked"})
}

func redactDeleted(comment *models.Comment) {
	if comment.IsDeleted {
		comment.Content = ""
		comment.User = models.User{}
	}
}
