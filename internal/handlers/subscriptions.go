package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/database"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/dto"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/metrics"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/models"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/util"
)

// SubscribeToArtist follows an artist's updates
// POST /api/v1/artists/:id/subscribe
func (h *Handlers) SubscribeToArtist(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	artistID := c.Param("id")
	if artistID == user.ID {
		util.RespondValidationError(c, "artist_id", "cannot subscribe to yourself")
		return
	}

	var artist models.User
	if err := database.DB.First(&artist, "id = ? AND is_artist = ?", artistID, true).Error; err != nil {
		util.RespondNotFound(c, "artist")
		return
	}

	sub := models.ArtistSubscription{ArtistID: artist.ID, SubscriberID: user.ID}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&sub).Error; err != nil {
			return err
		}
		return tx.Model(&artist).
			UpdateColumn("subscriber_count", gorm.Expr("subscriber_count + 1")).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			util.RespondConflict(c, "subscription")
			return
		}
		util.RespondInternalError(c, "failed to subscribe")
		return
	}

	metrics.Get().SubscriptionsTotal.WithLabelValues("subscribe").Inc()

	subscriberName := user.DisplayName
	if subscriberName == "" {
		subscriberName = user.Username
	}
	h.notifier.NotifySubscribed(c.Request.Context(), artist.ID, user.ID, subscriberName)

	c.JSON(http.StatusOK, gin.H{
		"status":           "subscribed",
		"subscriber_count": artist.SubscriberCount + 1,
	})
}

// UnsubscribeFromArtist stops following an artist
// DELETE /api/v1/artists/:id/subscribe
func (h *Handlers) UnsubscribeFromArtist(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	artistID := c.Param("id")

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("artist_id = ? AND subscriber_id = ?", artistID, user.ID).
			Delete(&models.ArtistSubscription{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.User{}).
			Where("id = ? AND subscriber_count > 0", artistID).
			UpdateColumn("subscriber_count", gorm.Expr("subscriber_count - 1")).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.RespondNotFound(c, "subscription")
			return
		}
		util.RespondInternalError(c, "failed to unsubscribe")
		return
	}

	metrics.Get().SubscriptionsTotal.WithLabelValues("unsubscribe").Inc()

	c.JSON(http.StatusOK, gin.H{"status": "unsubscribed"})
}

// ListMySubscriptions returns the artists the caller follows
// GET /api/v1/subscriptions
func (h *Handlers) ListMySubscriptions(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	limit := util.ClampInt(util.ParseInt(c.DefaultQuery("limit", "50"), 50), 1, 200)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)
	if offset < 0 {
		offset = 0
	}

	var subs []models.ArtistSubscription
	if err := database.DB.
		Preload("Artist").
		Where("subscriber_id = ?", user.ID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&subs).Error; err != nil {
		util.RespondInternalError(c, "failed to load subscriptions")
		return
	}

	artists := make([]*models.User, 0, len(subs))
	for i := range subs {
		artists = append(artists, &subs[i].Artist)
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

// ListArtistSubscribers returns who follows the calling artist
// GET /api/v1/artists/me/subscribers
func (h *Handlers) ListArtistSubscribers(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	if !user.IsArtist {
		util.RespondForbidden(c, "artist account required")
		return
	}

	limit := util.ClampInt(util.ParseInt(c.DefaultQuery("limit", "50"), 50), 1, 200)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)
	if offset < 0 {
		offset = 0
	}

	var subs []models.ArtistSubscription
	if err := database.DB.
		Preload("Subscriber").
		Where("artist_id = ?", user.ID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&subs).Error; err != nil {
		util.RespondInternalError(c, "failed to load subscribers")
		return
	}

	subscribers := make([]*models.User, 0, len(subs))
	for i := range subs {
		subscribers = append(subscribers, &subs[i].Subscriber)
	}

	c.JSON(http.StatusOK, gin.H{
		"subscribers": dto.ToUserResponses(subscribers),
		"meta": gin.H{
			"limit":  limit,
			"offset": offset,
			"count":  len(subscribers),
		},
	})
}
