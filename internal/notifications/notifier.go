package notifications

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/cache"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/logger"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/models"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/telemetry"
)

// Pusher delivers a freshly created notification to the recipient's live
// connections. Implementations must not block; delivery is best-effort.
type Pusher interface {
	PushNotification(userID string, item Item)
	PushUnreadCount(userID string, count int64)
}

// Notifier creates notification rows and fans them out to realtime
// connections. Handlers call it after the domain write commits so a failed
// request never leaves a dangling notification.
type Notifier struct {
	db     *gorm.DB
	pusher Pusher
}

// NewNotifier builds a Notifier. pusher may be nil (e.g. in tests or CLI
// tools), in which case only the database row is written.
func NewNotifier(db *gorm.DB, pusher Pusher) *Notifier {
	return &Notifier{db: db, pusher: pusher}
}

// Event describes a notification to deliver.
type Event struct {
	UserID     string
	ActorID    string // empty for system/moderation events
	Type       models.NotificationType
	Title      string
	Body       string
	TargetType string
	TargetID   string
}

// Notify persists the event and pushes it to the recipient. Events where the
// actor is the recipient are dropped: users don't get notified about their
// own activity.
func (n *Notifier) Notify(ctx context.Context, ev Event) error {
	if ev.ActorID != "" && ev.ActorID == ev.UserID {
		return nil
	}

	notif := models.Notification{
		UserID:     ev.UserID,
		Type:       ev.Type,
		Title:      ev.Title,
		Body:       ev.Body,
		TargetType: ev.TargetType,
		TargetID:   ev.TargetID,
	}
	if ev.ActorID != "" {
		notif.ActorID = &ev.ActorID
	}

	if err := n.db.WithContext(ctx).Create(&notif).Error; err != nil {
		return err
	}

	invalidateUnreadCount(ctx, ev.UserID)

	if n.pusher != nil {
		item := projectItem(notif)
		if ev.ActorID != "" {
			var actor models.User
			if err := n.db.WithContext(ctx).
				Select("id", "username", "display_name", "avatar_url").
				First(&actor, "id = ?", ev.ActorID).Error; err == nil {
				item.Actor = &ItemActor{
					ID:          actor.ID,
					Username:    actor.Username,
					DisplayName: actor.DisplayName,
					AvatarURL:   actor.AvatarURL,
				}
			}
		}
		n.pusher.PushNotification(ev.UserID, item)
		n.PushUnreadCount(ctx, ev.UserID)
	}

	telemetry.RecordNotificationFanout(ctx, string(ev.Type), n.pusher != nil)

	return nil
}

// PushUnreadCount recomputes the recipient's unread counter and pushes it
// to their live connections so badges update without polling.
func (n *Notifier) PushUnreadCount(ctx context.Context, userID string) {
	if n.pusher == nil {
		return
	}
	count, err := CachedUnreadCount(ctx, n.db, userID)
	if err != nil {
		logger.Log.Warn("Failed to compute unread count for push",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return
	}
	n.pusher.PushUnreadCount(userID, count)
}

// NotifyCommented tells a post author someone commented on their post.
func (n *Notifier) NotifyCommented(ctx context.Context, postAuthorID, actorID, actorName, postID string) {
	n.deliver(ctx, Event{
		UserID:     postAuthorID,
		ActorID:    actorID,
		Type:       models.NotificationComment,
		Title:      actorName + " commented on your post",
		TargetType: "post",
		TargetID:   postID,
	})
}

// NotifyReplied tells a comment author someone replied to their comment.
func (n *Notifier) NotifyReplied(ctx context.Context, commentAuthorID, actorID, actorName, postID string) {
	n.deliver(ctx, Event{
		UserID:     commentAuthorID,
		ActorID:    actorID,
		Type:       models.NotificationComment,
		Title:      actorName + " replied to your comment",
		TargetType: "post",
		TargetID:   postID,
	})
}

// NotifyLiked tells a post author someone liked their post.
func (n *Notifier) NotifyLiked(ctx context.Context, postAuthorID, actorID, actorName, postID string) {
	n.deliver(ctx, Event{
		UserID:     postAuthorID,
		ActorID:    actorID,
		Type:       models.NotificationLike,
		Title:      actorName + " liked your post",
		TargetType: "post",
		TargetID:   postID,
	})
}

// NotifySubscribed tells an artist they have a new subscriber.
func (n *Notifier) NotifySubscribed(ctx context.Context, artistID, actorID, actorName string) {
	n.deliver(ctx, Event{
		UserID:     artistID,
		ActorID:    actorID,
		Type:       models.NotificationSubscription,
		Title:      actorName + " subscribed to you",
		TargetType: "user",
		TargetID:   actorID,
	})
}

// NotifyBookingRequested tells an artist a client requested a booking.
func (n *Notifier) NotifyBookingRequested(ctx context.Context, artistID, clientID, clientName, bookingID string) {
	n.deliver(ctx, Event{
		UserID:     artistID,
		ActorID:    clientID,
		Type:       models.NotificationBooking,
		Title:      "New booking request from " + clientName,
		TargetType: "booking",
		TargetID:   bookingID,
	})
}

// NotifyBookingDecided tells a client the artist accepted or declined.
func (n *Notifier) NotifyBookingDecided(ctx context.Context, clientID, artistID, artistName, bookingID string, accepted bool) {
	title := artistName + " declined your booking request"
	if accepted {
		title = artistName + " accepted your booking request"
	}
	n.deliver(ctx, Event{
		UserID:     clientID,
		ActorID:    artistID,
		Type:       models.NotificationBooking,
		Title:      title,
		TargetType: "booking",
		TargetID:   bookingID,
	})
}

// NotifyModeration tells a user a moderator acted on their content. No actor
// is recorded so moderators stay anonymous to the notified user.
func (n *Notifier) NotifyModeration(ctx context.Context, userID, title, body, targetType, targetID string) {
	n.deliver(ctx, Event{
		UserID:     userID,
		Type:       models.NotificationModeration,
		Title:      title,
		Body:       body,
		TargetType: targetType,
		TargetID:   targetID,
	})
}

// deliver wraps Notify for fire-and-forget call sites: notification failures
// are logged, never surfaced to the request that triggered them.
func (n *Notifier) deliver(ctx context.Context, ev Event) {
	if err := n.Notify(ctx, ev); err != nil {
		logger.Log.Error("Failed to create notification",
			zap.String("user_id", ev.UserID),
			zap.String("type", string(ev.Type)),
			zap.Error(err),
		)
	}
}

// invalidateUnreadCount drops the cached unread counter so the next read
// recomputes it. Best-effort: a lost invalidation expires with the TTL.
func invalidateUnreadCount(ctx context.Context, userID string) {
	rc := cache.GetRedisClient()
	if rc == nil {
		return
	}
	if err := rc.Del(ctx, cache.UnreadCountKey(userID)); err != nil {
		logger.Log.Warn("Failed to invalidate unread count cache",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}
