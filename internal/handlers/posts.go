package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/database"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/metrics"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/models"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/util"
)

const maxPostImageBytes = 10 << 20 // 10 MB

type createPostRequest struct {
	Type      string     `json:"type" binding:"omitempty,oneof=post event"`
	Title     string     `json:"title" binding:"required,min=1,max=200"`
	Body      string     `json:"body" binding:"max=10000"`
	City      string     `json:"city" binding:"required,max=100"`
	Area      string     `json:"area" binding:"max=100"`
	EventDate *time.Time `json:"event_date"`
	Venue     string     `json:"venue" binding:"max=200"`
	ImageURL  string     `json:"image_url" binding:"omitempty,url"`
}

type updatePostRequest struct {
	Title     *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Body      *string    `json:"body" binding:"omitempty,max=10000"`
	EventDate *time.Time `json:"event_date"`
	Venue     *string    `json:"venue" binding:"omitempty,max=200"`
	ImageURL  *string    `json:"image_url" binding:"omitempty,url"`
}

// CreatePost creates a community post or event in the author's city feed
// POST /api/v1/posts
func (h *Handlers) CreatePost(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	postType := models.PostType(req.Type)
	if postType == "" {
		postType = models.PostTypePost
	}
	if postType == models.PostTypeEvent && req.EventDate == nil {
		util.RespondValidationError(c, "event_date", "required for events")
		return
	}

	post := models.Post{
		UserID:    user.ID,
		Type:      postType,
		Title:     req.Title,
		Body:      req.Body,
		City:      req.City,
		Area:      req.Area,
		EventDate: req.EventDate,
		Venue:     req.Venue,
		ImageURL:  req.ImageURL,
		Status:    models.PostStatusActive,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", user.ID).
			UpdateColumn("post_count", gorm.Expr("post_count + 1")).Error
	})
	if err != nil {
		util.RespondInternalError(c, "failed to create post")
		return
	}

	metrics.Get().PostsCreated.WithLabelValues(string(postType), post.City).Inc()

	post.User = *user
	c.JSON(http.StatusCreated, post)
}

// GetPosts returns the city feed, newest first
// GET /api/v1/posts?city=...&type=...&limit=&offset=
func (h *Handlers) GetPosts(c *gin.Context) {
	limit := util.ClampInt(util.ParseInt(c.DefaultQuery("limit", "20"), 20), 1, 100)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)
	if offset < 0 {
		offset = 0
	}

	q := database.DB.Model(&models.Post{}).
		Preload("User").
		Where("status = ?", models.PostStatusActive)

	if city := c.Query("city"); city != "" {
		q = q.Where("city = ?", city)
	}
	if t := c.Query("type"); t == string(models.PostTypePost) || t == string(models.PostTypeEvent) {
		q = q.Where("type = ?", t)
	}
	if userParam := c.Query("user_id"); userParam != "" {
		q = q.Where("user_id = ?", userParam)
	}

	var posts []models.Post
	if err := q.Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error; err != nil {
		util.RespondInternalError(c, "failed to load feed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": posts,
		"meta": gin.H{
			"limit":  limit,
			"offset": offset,
			"count":  len(posts),
		},
	})
}

// GetPost returns a single post with its author
// GET /api/v1/posts/:id
func (h *Handlers) GetPost(c *gin.Context) {
	post, ok := h.loadVisiblePost(c)
	if !ok {
		return
	}

	resp := gin.H{"post": post}

	// Annotate like/bookmark state for authenticated viewers
	if viewerID, exists := c.Get("user_id"); exists {
		var likes, bookmarks int64
		database.DB.Model(&models.PostLike{}).
			Where("post_id = ? AND user_id = ?", post.ID, viewerID).Count(&likes)
		database.DB.Model(&models.Bookmark{}).
			Where("post_id = ? AND user_id = ?", post.ID, viewerID).Count(&bookmarks)
		resp["liked"] = likes > 0
		resp["bookmarked"] = bookmarks > 0
	}

	c.JSON(http.StatusOK, resp)
}

// UpdatePost edits the caller's own post
// PATCH /api/v1/posts/:id
func (h *Handlers) UpdatePost(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	post, ok := h.loadVisiblePost(c)
	if !ok {
		return
	}
	if post.UserID != user.ID {
		util.RespondForbidden(c, "not your post")
		return
	}

	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Body != nil {
		updates["body"] = *req.Body
	}
	if req.EventDate != nil {
		updates["event_date"] = *req.EventDate
	}
	if req.Venue != nil {
		updates["venue"] = *req.Venue
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}

	if len(updates) > 0 {
		if err := database.DB.Model(post).Updates(updates).Error; err != nil {
			util.RespondInternalError(c, "failed to update post")
			return
		}
	}

	c.JSON(http.StatusOK, post)
}

// DeletePost soft-deletes the caller's own post
// DELETE /api/v1/posts/:id
func (h *Handlers) DeletePost(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	post, ok := h.loadVisiblePost(c)
	if !ok {
		return
	}
	if post.UserID != user.ID && !user.IsModerator() {
		util.RespondForbidden(c, "not your post")
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(post).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ? AND post_count > 0", post.UserID).
			UpdateColumn("post_count", gorm.Expr("post_count - 1")).Error
	})
	if err != nil {
		util.RespondInternalError(c, "failed to delete post")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// UploadPostImage stores an image for embedding in a post
// POST /api/v1/posts/image
func (h *Handlers) UploadPostImage(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	if h.uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "uploads_unavailable"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		util.RespondBadRequest(c, "image file is required")
		return
	}
	if fileHeader.Size > maxPostImageBytes {
		util.RespondBadRequest(c, "image exceeds 10MB limit")
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !isImageExtension(ext) {
		util.RespondValidationError(c, "image", "must be a jpg, png, gif or webp image")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		util.RespondInternalError(c, "failed to read upload")
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxPostImageBytes+1))
	if err != nil || int64(len(data)) > maxPostImageBytes {
		util.RespondBadRequest(c, "image exceeds 10MB limit")
		return
	}

	url, err := h.uploader.UploadPostImage(c.Request.Context(), user.ID, data, ext)
	if err != nil {
		util.RespondInternalError(c, "failed to store image")
		return
	}

	c.JSON(http.StatusOK, gin.H{"image_url": url})
}

// LikePost likes a post, once per user
// POST /api/v1/posts/:id/like
func (h *Handlers) LikePost(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	post, ok := h.loadVisiblePost(c)
	if !ok {
		return
	}

	like := models.PostLike{PostID: post.ID, UserID: user.ID}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&like).Error; err != nil {
			return err
		}
		return tx.Model(post).UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			util.RespondConflict(c, "like")
			return
		}
		util.RespondInternalError(c, "failed to like post")
		return
	}

	metrics.Get().LikesTotal.WithLabelValues().Inc()

	actorName := user.DisplayName
	if actorName == "" {
		actorName = user.Username
	}
	h.notifier.NotifyLiked(c.Request.Context(), post.UserID, user.ID, actorName, post.ID)

	c.JSON(http.StatusOK, gin.H{"status": "liked", "like_count": post.LikeCount + 1})
}

// UnlikePost removes the caller's like
// DELETE /api/v1/posts/:id/like
func (h *Handlers) UnlikePost(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	post, ok := h.loadVisiblePost(c)
	if !ok {
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("post_id = ? AND user_id = ?", post.ID, user.ID).
			Delete(&models.PostLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(post).Where("like_count > 0").
			UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.RespondNotFound(c, "like")
			return
		}
		util.RespondInternalError(c, "failed to unlike post")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "unliked"})
}

// BookmarkPost saves a post to the caller's reading list
// POST /api/v1/posts/:id/bookmark
func (h *Handlers) BookmarkPost(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	post, ok := h.loadVisiblePost(c)
	if !ok {
		return
	}

	bookmark := models.Bookmark{UserID: user.ID, PostID: post.ID}
	if err := database.DB.Create(&bookmark).Error; err != nil {
		if isUniqueViolation(err) {
			util.RespondConflict(c, "bookmark")
			return
		}
		util.RespondInternalError(c, "failed to bookmark post")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "bookmarked"})
}

// UnbookmarkPost removes a saved post
// DELETE /api/v1/posts/:id/bookmark
func (h *Handlers) UnbookmarkPost(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	res := database.DB.Where("user_id = ? AND post_id = ?", user.ID, c.Param("id")).
		Delete(&models.Bookmark{})
	if res.Error != nil {
		util.RespondInternalError(c, "failed to remove bookmark")
		return
	}
	if res.RowsAffected == 0 {
		util.RespondNotFound(c, "bookmark")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

// ListBookmarks returns the caller's saved posts, newest save first
// GET /api/v1/bookmarks
func (h *Handlers) ListBookmarks(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	limit := util.ClampInt(util.ParseInt(c.DefaultQuery("limit", "20"), 20), 1, 100)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)
	if offset < 0 {
		offset = 0
	}

	var bookmarks []models.Bookmark
	if err := database.DB.
		Preload("Post").Preload("Post.User").
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&bookmarks).Error; err != nil {
		util.RespondInternalError(c, "failed to load bookmarks")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookmarks": bookmarks,
		"meta": gin.H{
			"limit":  limit,
			"offset": offset,
			"count":  len(bookmarks),
		},
	})
}

// loadVisiblePost fetches the :id post and rejects hidden/removed ones
// for non-owners. Responds on failure and returns ok=false.
func (h *Handlers) loadVisiblePost(c *gin.Context) (*models.Post, bool) {
	var post models.Post
	err := database.DB.Preload("User").First(&post, "id = ?", c.Param("id")).Error
	if err != nil {
		util.RespondNotFound(c, "post")
		return nil, false
	}

	if post.Status != models.PostStatusActive {
		viewerID, _ := c.Get("user_id")
		if viewerID != post.UserID {
			if u, exists := c.Get("user"); !exists || !u.(*models.User).IsModerator() {
				util.RespondNotFound(c, "post")
				return nil, false
			}
		}
	}

	return &post, true
}

// isUniqueViolation reports whether an insert hit a unique index.
// Matches Postgres (23505) and sqlite's constraint message so the
// duplicate path behaves the same under test.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if err == gorm.ErrDuplicatedKey {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
