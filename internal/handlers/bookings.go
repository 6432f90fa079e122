package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/database"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/metrics"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/models"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/util"
)

type createBookingRequest struct {
	ArtistID  string    `json:"artist_id" binding:"required,uuid"`
	EventDate time.Time `json:"event_date" binding:"required"`
	Venue     string    `json:"venue" binding:"required,max=200"`
	Note      string    `json:"note" binding:"max=2000"`
}

type decideBookingRequest struct {
	// Quoted amount in minor currency units, set on accept
	QuotedAmount int64 `json:"quoted_amount" binding:"omitempty,min=0"`
}

// CreateBooking requests an artist for an event
// POST /api/v1/bookings
func (h *Handlers) CreateBooking(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}
	if req.ArtistID == user.ID {
		util.RespondValidationError(c, "artist_id", "cannot book yourself")
		return
	}
	if !req.EventDate.After(time.Now()) {
		util.RespondValidationError(c, "event_date", "must be in the future")
		return
	}

	var artist models.User
	if err := database.DB.First(&artist, "id = ? AND is_artist = ?", req.ArtistID, true).Error; err != nil {
		util.RespondNotFound(c, "artist")
		return
	}

	booking := models.Booking{
		ArtistID:  artist.ID,
		ClientID:  user.ID,
		EventDate: req.EventDate,
		Venue:     req.Venue,
		Note:      req.Note,
		Status:    models.BookingPending,
	}
	if err := database.DB.Create(&booking).Error; err != nil {
		util.RespondInternalError(c, "failed to create booking")
		return
	}

	metrics.Get().BookingsCreated.WithLabelValues().Inc()

	clientName := user.DisplayName
	if clientName == "" {
		clientName = user.Username
	}
	h.notifier.NotifyBookingRequested(c.Request.Context(), artist.ID, user.ID, clientName, booking.ID)

	booking.Client = *user
	booking.Artist = artist
	c.JSON(http.StatusCreated, booking)
}

// ListMyBookings returns bookings where the caller is artist or client
// GET /api/v1/bookings?role=artist|client&status=
func (h *Handlers) ListMyBookings(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	limit := util.ClampInt(util.ParseInt(c.DefaultQuery("limit", "20"), 20), 1, 100)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)
	if offset < 0 {
		offset = 0
	}

	q := database.DB.Model(&models.Booking{}).
		Preload("Artist").Preload("Client")

	switch c.Query("role") {
	case "artist":
		q = q.Where("artist_id = ?", user.ID)
	case "client":
		q = q.Where("client_id = ?", user.ID)
	default:
		q = q.Where("artist_id = ? OR client_id = ?", user.ID, user.ID)
	}

	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var bookings []models.Booking
	if err := q.Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&bookings).Error; err != nil {
		util.RespondInternalError(c, "failed to load bookings")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"meta": gin.H{
			"limit":  limit,
			"offset": offset,
			"count":  len(bookings),
		},
	})
}

// AcceptBooking lets the artist accept a pending request, with a quote
// POST /api/v1/bookings/:id/accept
func (h *Handlers) AcceptBooking(c *gin.Context) {
	h.decideBooking(c, models.BookingAccepted)
}

// DeclineBooking lets the artist decline a pending request
// POST /api/v1/bookings/:id/decline
func (h *Handlers) DeclineBooking(c *gin.Context) {
	h.decideBooking(c, models.BookingDeclined)
}

func (h *Handlers) decideBooking(c *gin.Context, decision models.BookingStatus) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var booking models.Booking
	if err := database.DB.First(&booking, "id = ?", c.Param("id")).Error; err != nil {
		util.RespondNotFound(c, "booking")
		return
	}
	if booking.ArtistID != user.ID {
		util.RespondForbidden(c, "only the artist can decide this booking")
		return
	}
	if booking.Status != models.BookingPending {
		util.RespondConflict(c, "booking decision")
		return
	}

	updates := map[string]interface{}{"status": decision}
	if decision == models.BookingAccepted {
		var req decideBookingRequest
		// Body is optional; an empty accept carries no quote
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				util.RespondBadRequest(c, err.Error())
				return
			}
		}
		updates["quoted_amount"] = req.QuotedAmount
	}

	if err := database.DB.Model(&booking).Updates(updates).Error; err != nil {
		util.RespondInternalError(c, "failed to update booking")
		return
	}

	artistName := user.DisplayName
	if artistName == "" {
		artistName = user.Username
	}
	h.notifier.NotifyBookingDecided(c.Request.Context(), booking.ClientID, user.ID, artistName,
		booking.ID, decision == models.BookingAccepted)

	c.JSON(http.StatusOK, gin.H{"status": string(decision)})
}

// CancelBooking lets the client cancel before completion
// POST /api/v1/bookings/:id/cancel
func (h *Handlers) CancelBooking(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var booking models.Booking
	if err := database.DB.First(&booking, "id = ?", c.Param("id")).Error; err != nil {
		util.RespondNotFound(c, "booking")
		return
	}
	if booking.ClientID != user.ID {
		util.RespondForbidden(c, "only the client can cancel this booking")
		return
	}
	if booking.Status != models.BookingPending && booking.Status != models.BookingAccepted {
		util.RespondConflict(c, "booking cancellation")
		return
	}

	if err := database.DB.Model(&booking).
		Update("status", models.BookingCancelled).Error; err != nil {
		util.RespondInternalError(c, "failed to cancel booking")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": string(models.BookingCancelled)})
}

// CompleteBooking marks an accepted booking done after the event
// POST /api/v1/bookings/:id/complete
func (h *Handlers) CompleteBooking(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var booking models.Booking
	if err := database.DB.First(&booking, "id = ?", c.Param("id")).Error; err != nil {
		util.RespondNotFound(c, "booking")
		return
	}
	if booking.ArtistID != user.ID {
		util.RespondForbidden(c, "only the artist can complete this booking")
		return
	}
	if booking.Status != models.BookingAccepted {
		util.RespondConflict(c, "booking completion")
		return
	}

	if err := database.DB.Model(&booking).
		Update("status", models.BookingCompleted).Error; err != nil {
		util.RespondInternalError(c, "failed to complete booking")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": string(models.BookingCompleted)})
}
