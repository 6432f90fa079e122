package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/database"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/dto"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/metrics"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/models"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/telemetry"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/util"
)

type createReportRequest struct {
	TargetType  string `json:"target_type" binding:"required,oneof=post comment user"`
	TargetID    string `json:"target_id" binding:"required,uuid"`
	Reason      string `json:"reason" binding:"required"`
	Description string `json:"description" binding:"max=2000"`
}

type resolveReportRequest struct {
	// Action decides what happens to the reported content
	Action string `json:"action" binding:"required,oneof=dismiss hide remove ban"`
	Note   string `json:"note" binding:"max=2000"`
}

// CreateReport files a moderation report against a post, comment or user
// POST /api/v1/reports
func (h *Handlers) CreateReport(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}
	if !models.ValidReportReason(req.Reason) {
		util.RespondValidationError(c, "reason", "unknown report reason")
		return
	}

	targetUserID, err := resolveTargetAuthor(models.ReportTargetType(req.TargetType), req.TargetID)
	if err != nil {
		util.RespondNotFound(c, req.TargetType)
		return
	}
	if targetUserID != nil && *targetUserID == user.ID {
		util.RespondValidationError(c, "target_id", "cannot report your own content")
		return
	}

	report := models.Report{
		ReporterID:   user.ID,
		TargetType:   models.ReportTargetType(req.TargetType),
		TargetID:     req.TargetID,
		TargetUserID: targetUserID,
		Reason:       models.ReportReason(req.Reason),
		Description:  req.Description,
		Status:       models.ReportStatusPending,
	}
	if err := database.DB.Create(&report).Error; err != nil {
		if isUniqueViolation(err) {
			util.RespondConflict(c, "report")
			return
		}
		util.RespondInternalError(c, "failed to file report")
		return
	}

	metrics.Get().ReportsFiled.WithLabelValues(req.TargetType, req.Reason).Inc()

	c.JSON(http.StatusCreated, gin.H{"status": "filed", "report_id": report.ID})
}

// ListReports returns reports for the moderation queue
// GET /api/v1/admin/reports?status=
func (h *Handlers) ListReports(c *gin.Context) {
	limit := util.ClampInt(util.ParseInt(c.DefaultQuery("limit", "50"), 50), 1, 200)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)
	if offset < 0 {
		offset = 0
	}

	q := database.DB.Model(&models.Report{}).
		Preload("Reporter").Preload("Moderator")

	status := c.DefaultQuery("status", string(models.ReportStatusPending))
	if status != "all" {
		q = q.Where("status = ?", status)
	}

	var reports []models.Report
	if err := q.Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&reports).Error; err != nil {
		util.RespondInternalError(c, "failed to load reports")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reports": reports,
		"meta": gin.H{
			"limit":  limit,
			"offset": offset,
			"count":  len(reports),
		},
	})
}

// ResolveReport acts on a report: dismiss it, hide or remove the
// content, or ban the offending user. The reported user is notified of
// content actions; the moderator stays anonymous in the notification.
// POST /api/v1/admin/reports/:id/resolve
func (h *Handlers) ResolveReport(c *gin.Context) {
	moderator, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var report models.Report
	if err := database.DB.First(&report, "id = ?", c.Param("id")).Error; err != nil {
		util.RespondNotFound(c, "report")
		return
	}
	if report.Status == models.ReportStatusResolved || report.Status == models.ReportStatusDismissed {
		util.RespondConflict(c, "report resolution")
		return
	}

	var req resolveReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	status := models.ReportStatusResolved
	if req.Action == "dismiss" {
		status = models.ReportStatusDismissed
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := applyModerationAction(tx, &report, req.Action); err != nil {
			return err
		}
		return tx.Model(&report).Updates(map[string]interface{}{
			"status":       status,
			"moderator_id": moderator.ID,
			"action_taken": req.Action,
		}).Error
	})
	if err != nil {
		util.RespondInternalError(c, "failed to resolve report")
		return
	}

	telemetry.RecordModerationAction(c.Request.Context(), req.Action, string(report.TargetType))

	if req.Action != "dismiss" && report.TargetUserID != nil {
		h.notifier.NotifyModeration(c.Request.Context(), *report.TargetUserID,
			"Content moderated",
			"Your "+string(report.TargetType)+" was actioned after a community report",
			string(report.TargetType), report.TargetID)
	}

	c.JSON(http.StatusOK, gin.H{"status": string(status), "action": req.Action})
}

// ListUsers returns accounts for the admin console
// GET /api/v1/admin/users?banned=true&q=
func (h *Handlers) ListUsers(c *gin.Context) {
	limit := util.ClampInt(util.ParseInt(c.DefaultQuery("limit", "50"), 50), 1, 200)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)
	if offset < 0 {
		offset = 0
	}

	q := database.DB.Model(&models.User{})
	if c.Query("banned") == "true" {
		q = q.Where("is_banned = ?", true)
	}
	if search := c.Query("q"); search != "" {
		pattern := "%" + search + "%"
		q = q.Where("LOWER(username) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", pattern, pattern)
	}

	var users []*models.User
	if err := q.Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&users).Error; err != nil {
		util.RespondInternalError(c, "failed to load users")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": dto.ToUserResponses(users),
		"meta": gin.H{
			"limit":  limit,
			"offset": offset,
			"count":  len(users),
		},
	})
}

// BanUser bans an account; banned users fail login and token validation
// POST /api/v1/admin/users/:id/ban
func (h *Handlers) BanUser(c *gin.Context) {
	h.setBanState(c, true)
}

// UnbanUser lifts a ban
// DELETE /api/v1/admin/users/:id/ban
func (h *Handlers) UnbanUser(c *gin.Context) {
	h.setBanState(c, false)
}

func (h *Handlers) setBanState(c *gin.Context, banned bool) {
	moderator, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var target models.User
	if err := database.DB.First(&target, "id = ?", c.Param("id")).Error; err != nil {
		util.RespondNotFound(c, "user")
		return
	}
	if target.ID == moderator.ID {
		util.RespondValidationError(c, "id", "cannot ban yourself")
		return
	}
	// Moderators cannot ban each other; only admins can
	if target.IsModerator() && moderator.Role != models.RoleAdmin {
		util.RespondForbidden(c, "admin access required to ban staff")
		return
	}

	if err := database.DB.Model(&target).Update("is_banned", banned).Error; err != nil {
		util.RespondInternalError(c, "failed to update user")
		return
	}

	action := "ban"
	status := "banned"
	if !banned {
		action = "unban"
		status = "active"
	}
	telemetry.RecordModerationAction(c.Request.Context(), action, "user")

	c.JSON(http.StatusOK, gin.H{"status": status, "user_id": target.ID})
}

// resolveTargetAuthor looks up who authored the reported content so the
// report can be routed and the author notified on action.
func resolveTargetAuthor(targetType models.ReportTargetType, targetID string) (*string, error) {
	switch targetType {
	case models.ReportTargetPost:
		var post models.Post
		if err := database.DB.First(&post, "id = ?", targetID).Error; err != nil {
			return nil, err
		}
		return &post.UserID, nil
	case models.ReportTargetComment:
		var comment models.Comment
		if err := database.DB.First(&comment, "id = ?", targetID).Error; err != nil {
			return nil, err
		}
		return &comment.UserID, nil
	case models.ReportTargetUser:
		var user models.User
		if err := database.DB.First(&user, "id = ?", targetID).Error; err != nil {
			return nil, err
		}
		return &user.ID, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// applyModerationAction mutates the reported content inside the
// resolution transaction.
func applyModerationAction(tx *gorm.DB, report *models.Report, action string) error {
	switch action {
	case "dismiss":
		return nil
	case "hide":
		if report.TargetType == models.ReportTargetPost {
			return tx.Model(&models.Post{}).Where("id = ?", report.TargetID).
				Update("status", models.PostStatusHidden).Error
		}
		return nil
	case "remove":
		switch report.TargetType {
		case models.ReportTargetPost:
			return tx.Model(&models.Post{}).Where("id = ?", report.TargetID).
				Update("status", models.PostStatusRemoved).Error
		case models.ReportTargetComment:
			return tx.Model(&models.Comment{}).Where("id = ?", report.TargetID).
				Updates(map[string]interface{}{"is_deleted": true, "content": ""}).Error
		}
		return nil
	case "ban":
		if report.TargetUserID == nil {
			return nil
		}
		return tx.Model(&models.User{}).Where("id = ?", *report.TargetUserID).
			Update("is_banned", true).Error
	}
	return nil
}
