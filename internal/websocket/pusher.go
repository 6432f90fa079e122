package websocket

import (
	"time"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/metrics"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/notifications"
)

// NotificationPusher adapts the hub to the notifications.Pusher interface.
type NotificationPusher struct {
	hub *Hub
}

// NewNotificationPusher wraps a hub for notification fan-out
func NewNotificationPusher(hub *Hub) *NotificationPusher {
	return &NotificationPusher{hub: hub}
}

// PushNotification delivers a notification to the user's live connections.
// Offline users simply miss the push; the row is waiting in their inbox.
func (p *NotificationPusher) PushNotification(userID string, item notifications.Item) {
	if !p.hub.IsUserOnline(userID) {
		return
	}
	p.hub.SendToUser(userID, NewMessage(MessageTypeNotification, item))
	metrics.Get().NotificationsPushed.WithLabelValues().Inc()
}

// PushUnreadCount tells the user's connections the unread counter changed
func (p *NotificationPusher) PushUnreadCount(userID string, count int64) {
	if !p.hub.IsUserOnline(userID) {
		return
	}
	p.hub.SendToUser(userID, NewMessage(MessageTypeNotificationCount, NotificationCountPayload{
		UnreadCount: count,
		Timestamp:   time.Now().UnixMilli(),
	}))
}

var _ notifications.Pusher = (*NotificationPusher)(nil)
