package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/database"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/dto"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/models"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/util"
)

const maxAvatarBytes = 5 << 20 // 5 MB

// GetMe returns the authenticated user's full profile
// GET /api/v1/users/me
func (h *Handlers) GetMe(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDetailResponse(user))
}

// UpdateMe updates the authenticated user's profile
// PATCH /api/v1/users/me
func (h *Handlers) UpdateMe(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		updates["display_name"] = *req.DisplayName
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.Area != nil {
		updates["area"] = *req.Area
	}
	if req.IsArtist != nil {
		updates["is_artist"] = *req.IsArtist
	}
	if req.ArtistCategory != nil {
		updates["artist_category"] = *req.ArtistCategory
	}
	if req.HourlyRateMin != nil {
		updates["hourly_rate_min"] = *req.HourlyRateMin
	}

	if len(updates) > 0 {
		if err := database.DB.Model(user).Updates(updates).Error; err != nil {
			util.RespondInternalError(c, "failed to update profile")
			return
		}
	}

	// SocialLinks is jsonb, updated through the struct field
	if req.SocialLinks != nil {
		user.SocialLinks = req.SocialLinks
		if err := database.DB.Model(user).Update("social_links", req.SocialLinks).Error; err != nil {
			util.RespondInternalError(c, "failed to update social links")
			return
		}
	}

	var fresh models.User
	if err := database.DB.First(&fresh, "id = ?", user.ID).Error; err != nil {
		util.RespondInternalError(c, "failed to reload profile")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDetailResponse(&fresh))
}

// UploadAvatar replaces the authenticated user's profile picture
// POST /api/v1/users/me/avatar
func (h *Handlers) UploadAvatar(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	if h.uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "uploads_unavailable"})
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		util.RespondBadRequest(c, "avatar file is required")
		return
	}
	if fileHeader.Size > maxAvatarBytes {
		util.RespondBadRequest(c, "avatar exceeds 5MB limit")
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !isImageExtension(ext) {
		util.RespondValidationError(c, "avatar", "must be a jpg, png, gif or webp image")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		util.RespondInternalError(c, "failed to read upload")
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxAvatarBytes+1))
	if err != nil || int64(len(data)) > maxAvatarBytes {
		util.RespondBadRequest(c, "avatar exceeds 5MB limit")
		return
	}

	url, err := h.uploader.UploadAvatar(c.Request.Context(), user.ID, data, ext)
	if err != nil {
		util.RespondInternalError(c, "failed to store avatar")
		return
	}

	oldURL := user.AvatarURL
	if err := database.DB.Model(user).Update("avatar_url", url).Error; err != nil {
		util.RespondInternalError(c, "failed to save avatar")
		return
	}

	// Old avatar cleanup is best-effort
	if oldURL != "" {
		_ = h.uploader.DeleteFile(c.Request.Context(), oldURL)
	}

	c.JSON(http.StatusOK, gin.H{"avatar_url": url})
}

// GetUserProfile returns a public user profile by ID or username
// GET /api/v1/users/:id
func (h *Handlers) GetUserProfile(c *gin.Context) {
	user, err := findUserByIDOrUsername(c.Param("id"))
	if err != nil {
		util.RespondNotFound(c, "user")
		return
	}

	resp := dto.ToUserResponse(user)

	// Annotate subscription state for authenticated viewers of artists
	if viewerID, exists := c.Get("user_id"); exists && user.IsArtist {
		var count int64
		database.DB.Model(&models.ArtistSubscription{}).
			Where("artist_id = ? AND subscriber_id = ?", user.ID, viewerID).
			Count(&count)
		subscribed := count > 0
		resp.IsSubscribed = &subscribed
	}

	c.JSON(http.StatusOK, resp)
}

// ListArtists returns artists in a city, most subscribed first
// GET /api/v1/artists
func (h *Handlers) ListArtists(c *gin.Context) {
	limit := util.ClampInt(util.ParseInt(c.DefaultQuery("limit", "20"), 20), 1, 100)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)
	if offset < 0 {
		offset = 0
	}

	q := database.DB.Model(&models.User{}).
		Where("is_artist = ? AND is_banned = ?", true, false)

	if city := c.Query("city"); city != "" {
		q = q.Where("city = ?", city)
	}
	if category := c.Query("category"); category != "" {
		q = q.Where("artist_category = ?", category)
	}

	var artists []*models.User
	if err := q.Order("subscriber_count DESC, created_at DESC").
		Limit(limit).Offset(offset).
		Find(&artists).Error; err != nil {
		util.RespondInternalError(c, "failed to list artists")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"artists": dto.ToUserResponses(artists),
		"meta": gin.H{
			"limit":  limit,
			"offset": offset,
			"count":  len(artists),
		},
	})
}

// findUserByIDOrUsername resolves a path param that may be a UUID or a
// username. Postgres rejects non-UUID text in a uuid comparison, so the
// shape decides which lookup runs.
func findUserByIDOrUsername(idOrUsername string) (*models.User, error) {
	var user models.User
	var err error
	if _, uuidErr := uuid.Parse(idOrUsername); uuidErr == nil {
		err = database.DB.First(&user, "id = ?", idOrUsername).Error
	} else {
		err = database.DB.First(&user, "LOWER(username) = LOWER(?)", idOrUsername).Error
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func isImageExtension(ext string) bool {
	switch strings.TrimPrefix(ext, ".") {
	case "jpg", "jpeg", "png", "gif", "webp":
		return true
	}
	return false
}
