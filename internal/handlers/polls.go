package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/cache"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/database"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/metrics"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/middleware"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/models"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/polls"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/telemetry"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/util"
)

type createPollRequest struct {
	Question  string     `json:"question" binding:"required,min=1,max=300"`
	City      string     `json:"city" binding:"required,max=100"`
	Options   []string   `json:"options" binding:"required,min=2,max=10,dive,required,max=200"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type voteRequest struct {
	OptionID string `json:"option_id" binding:"required,uuid"`
}

type pollResultsResponse struct {
	PollID     string               `json:"poll_id"`
	Question   string               `json:"question"`
	TotalVotes int                  `json:"total_votes"`
	IsActive   bool                 `json:"is_active"`
	ExpiresAt  *time.Time           `json:"expires_at,omitempty"`
	Options    []polls.OptionResult `json:"options"`
}

// CreatePoll creates a poll with 2-10 options
// POST /api/v1/polls
func (h *Handlers) CreatePoll(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req createPollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(time.Now()) {
		util.RespondValidationError(c, "expires_at", "must be in the future")
		return
	}

	poll := models.Poll{
		UserID:    user.ID,
		Question:  req.Question,
		City:      req.City,
		ExpiresAt: req.ExpiresAt,
	}
	for i, text := range req.Options {
		poll.Options = append(poll.Options, models.PollOption{
			Text:     text,
			Position: i,
		})
	}

	if err := database.DB.Create(&poll).Error; err != nil {
		util.RespondInternalError(c, "failed to create poll")
		return
	}

	poll.User = *user
	c.JSON(http.StatusCreated, poll)
}

// ListPolls returns polls for a city, newest first
// GET /api/v1/polls
func (h *Handlers) ListPolls(c *gin.Context) {
	limit := util.ClampInt(util.ParseInt(c.DefaultQuery("limit", "20"), 20), 1, 100)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)
	if offset < 0 {
		offset = 0
	}

	q := database.DB.Model(&models.Poll{}).
		Preload("User").
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})

	if city := c.Query("city"); city != "" {
		q = q.Where("city = ?", city)
	}
	if c.Query("active") == "true" {
		q = q.Where("expires_at IS NULL OR expires_at > ?", time.Now())
	}

	var pollRows []models.Poll
	if err := q.Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&pollRows).Error; err != nil {
		util.RespondInternalError(c, "failed to load polls")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"polls": pollRows,
		"meta": gin.H{
			"limit":  limit,
			"offset": offset,
			"count":  len(pollRows),
		},
	})
}

// GetPoll returns a poll with its options
// GET /api/v1/polls/:id
func (h *Handlers) GetPoll(c *gin.Context) {
	poll, ok := h.loadPoll(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"poll":      poll,
		"is_active": polls.IsPollActive(poll.ExpiresAt),
	})
}

// Vote casts an anonymous ballot. The ballot row stores only the derived
// voter hash - the user ID never reaches the poll_votes table, and the
// unique index on (poll_id, voter_hash) is what enforces one vote per
// user, so concurrent duplicates race to the index rather than to an
// application check.
// POST /api/v1/polls/:id/vote
func (h *Handlers) Vote(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	poll, ok := h.loadPoll(c)
	if !ok {
		return
	}

	if !polls.IsPollActive(poll.ExpiresAt) {
		c.JSON(http.StatusGone, gin.H{"error": "poll_closed"})
		return
	}

	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	var option models.PollOption
	if err := database.DB.First(&option, "id = ? AND poll_id = ?", req.OptionID, poll.ID).Error; err != nil {
		util.RespondNotFound(c, "poll option")
		return
	}

	token, err := polls.DeriveVotingToken(user.ID, poll.ID, h.voteSecret)
	if err != nil {
		util.RespondInternalError(c, "voting unavailable")
		return
	}
	anonID, err := polls.DeriveAnonymousVoterID(token)
	if err != nil {
		util.RespondInternalError(c, "voting unavailable")
		return
	}

	vote := models.PollVote{
		PollID:      poll.ID,
		OptionID:    option.ID,
		VoterHash:   token,
		AnonVoterID: anonID,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&vote).Error; err != nil {
			return err
		}
		if err := tx.Model(&option).
			UpdateColumn("vote_count", gorm.Expr("vote_count + 1")).Error; err != nil {
			return err
		}
		return tx.Model(poll).
			UpdateColumn("total_votes", gorm.Expr("total_votes + 1")).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			util.RespondConflict(c, "vote")
			return
		}
		util.RespondInternalError(c, "failed to record vote")
		return
	}

	metrics.Get().PollVotesCast.WithLabelValues().Inc()
	telemetry.RecordVoteCast(c.Request.Context(), poll.ID)
	h.invalidatePollResults(c, poll.ID)

	c.JSON(http.StatusCreated, gin.H{
		"status":        "voted",
		"anon_voter_id": anonID,
		"option_id":     option.ID,
	})
}

// MyVote reports whether (and how) the caller voted, by recomputing the
// voting token and looking the ballot up - no user-to-vote link is read
// GET /api/v1/polls/:id/my-vote
func (h *Handlers) MyVote(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	poll, ok := h.loadPoll(c)
	if !ok {
		return
	}

	token, err := polls.DeriveVotingToken(user.ID, poll.ID, h.voteSecret)
	if err != nil {
		util.RespondInternalError(c, "voting unavailable")
		return
	}

	var vote models.PollVote
	err = database.DB.First(&vote, "poll_id = ? AND voter_hash = ?", poll.ID, token).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusOK, gin.H{"voted": false})
		return
	}
	if err != nil {
		util.RespondInternalError(c, "failed to look up vote")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"voted":         true,
		"option_id":     vote.OptionID,
		"anon_voter_id": vote.AnonVoterID,
		"voted_at":      vote.CreatedAt,
	})
}

// RetractVote removes the caller's ballot while the poll is open
// DELETE /api/v1/polls/:id/vote
func (h *Handlers) RetractVote(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	poll, ok := h.loadPoll(c)
	if !ok {
		return
	}

	if !polls.IsPollActive(poll.ExpiresAt) {
		c.JSON(http.StatusGone, gin.H{"error": "poll_closed"})
		return
	}

	token, err := polls.DeriveVotingToken(user.ID, poll.ID, h.voteSecret)
	if err != nil {
		util.RespondInternalError(c, "voting unavailable")
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var vote models.PollVote
		if err := tx.First(&vote, "poll_id = ? AND voter_hash = ?", poll.ID, token).Error; err != nil {
			return err
		}
		if err := tx.Delete(&vote).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.PollOption{}).
			Where("id = ? AND vote_count > 0", vote.OptionID).
			UpdateColumn("vote_count", gorm.Expr("vote_count - 1")).Error; err != nil {
			return err
		}
		return tx.Model(poll).Where("total_votes > 0").
			UpdateColumn("total_votes", gorm.Expr("total_votes - 1")).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.RespondNotFound(c, "vote")
			return
		}
		util.RespondInternalError(c, "failed to retract vote")
		return
	}

	h.invalidatePollResults(c, poll.ID)

	c.JSON(http.StatusOK, gin.H{"status": "retracted"})
}

// GetPollResults returns per-option counts and percentages. Results are
// cached in redis briefly; vote writes invalidate the key and the TTL
// backstops missed invalidations.
// GET /api/v1/polls/:id/results
func (h *Handlers) GetPollResults(c *gin.Context) {
	pollID := c.Param("id")

	if rc := cache.GetRedisClient(); rc != nil {
		if raw, err := rc.Get(c.Request.Context(), cache.PollResultsKey(pollID)); err == nil {
			var cached pollResultsResponse
			if json.Unmarshal([]byte(raw), &cached) == nil {
				middleware.RecordCacheHit("poll_results")
				c.JSON(http.StatusOK, cached)
				return
			}
		} else if cache.IsMiss(err) {
			middleware.RecordCacheMiss("poll_results")
		}
	}

	poll, ok := h.loadPoll(c)
	if !ok {
		return
	}

	resp := pollResultsResponse{
		PollID:     poll.ID,
		Question:   poll.Question,
		TotalVotes: poll.TotalVotes,
		IsActive:   polls.IsPollActive(poll.ExpiresAt),
		ExpiresAt:  poll.ExpiresAt,
		Options:    polls.CalculateResults(poll.Options),
	}

	if rc := cache.GetRedisClient(); rc != nil {
		if raw, err := json.Marshal(resp); err == nil {
			_ = rc.SetEx(c.Request.Context(), cache.PollResultsKey(poll.ID), raw, cache.PollResultsTTL)
		}
	}

	c.JSON(http.StatusOK, resp)
}

// DeletePoll soft-deletes the caller's own poll
// DELETE /api/v1/polls/:id
func (h *Handlers) DeletePoll(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	poll, ok := h.loadPoll(c)
	if !ok {
		return
	}
	if poll.UserID != user.ID && !user.IsModerator() {
		util.RespondForbidden(c, "not your poll")
		return
	}

	if err := database.DB.Delete(poll).Error; err != nil {
		util.RespondInternalError(c, "failed to delete poll")
		return
	}

	h.invalidatePollResults(c, poll.ID)

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handlers) loadPoll(c *gin.Context) (*models.Poll, bool) {
	var poll models.Poll
	err := database.DB.
		Preload("User").
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&poll, "id = ?", c.Param("id")).Error
	if err != nil {
		util.RespondNotFound(c, "poll")
		return nil, false
	}
	return &poll, true
}

// invalidatePollResults drops the cached results after a vote write.
// Best effort; the short TTL bounds staleness if this fails.
func (h *Handlers) invalidatePollResults(c *gin.Context, pollID string) {
	if rc := cache.GetRedisClient(); rc != nil {
		_ = rc.Del(c.Request.Context(), cache.PollResultsKey(pollID))
	}
}
