package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/database"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/notifications"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/util"
)

// GetNotifications returns one page of the caller's inbox, newest first.
// The cursor token is opaque; clients echo next_cursor back unchanged to
// resume. A garbage or stale cursor silently restarts from the top.
// GET /api/v1/notifications?limit=&filter=&cursor=
func (h *Handlers) GetNotifications(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	filter, valid := notifications.ParseFilter(c.DefaultQuery("filter", "all"))
	if !valid {
		util.RespondValidationError(c, "filter", "must be all, unread or read")
		return
	}

	page, err := notifications.GetPage(database.DB, user.ID, notifications.Params{
		Filter: filter,
		Limit:  util.ParseInt(c.DefaultQuery("limit", "20"), 20),
		Cursor: c.Query("cursor"),
	})
	if err != nil {
		util.RespondInternalError(c, "failed to load notifications")
		return
	}

	unread, err := notifications.CachedUnreadCount(c.Request.Context(), database.DB, user.ID)
	if err != nil {
		util.RespondInternalError(c, "failed to count unread notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": page.Items,
		"has_more":      page.HasMore,
		"next_cursor":   page.NextCursor,
		"unread_count":  unread,
	})
}

// GetUnreadCount returns just the unread badge number
// GET /api/v1/notifications/unread-count
func (h *Handlers) GetUnreadCount(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	unread, err := notifications.CachedUnreadCount(c.Request.Context(), database.DB, user.ID)
	if err != nil {
		util.RespondInternalError(c, "failed to count unread notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread_count": unread})
}

// MarkNotificationRead marks one of the caller's notifications read
// POST /api/v1/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	found, err := notifications.MarkRead(c.Request.Context(), database.DB, user.ID, c.Param("id"))
	if err != nil {
		util.RespondInternalError(c, "failed to mark notification read")
		return
	}
	if !found {
		util.RespondNotFound(c, "notification")
		return
	}

	h.notifier.PushUnreadCount(c.Request.Context(), user.ID)
	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

// MarkAllNotificationsRead clears the caller's unread set
// POST /api/v1/notifications/read-all
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	updated, err := notifications.MarkAllRead(c.Request.Context(), database.DB, user.ID)
	if err != nil {
		util.RespondInternalError(c, "failed to mark notifications read")
		return
	}

	if updated > 0 {
		h.notifier.PushUnreadCount(c.Request.Context(), user.ID)
	}
	c.JSON(http.StatusOK, gin.H{"status": "read", "updated": updated})
}

// DeleteNotification removes one of the caller's notifications
// DELETE /api/v1/notifications/:id
func (h *Handlers) DeleteNotification(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	found, err := notifications.Delete(c.Request.Context(), database.DB, user.ID, c.Param("id"))
	if err != nil {
		util.RespondInternalError(c, "failed to delete notification")
		return
	}
	if !found {
		util.RespondNotFound(c, "notification")
		return
	}

	h.notifier.PushUnreadCount(c.Request.Context(), user.ID)
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
