package notifications

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/cache"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/logger"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/models"
)

// Filter selects which read-states a page includes
type Filter string

const (
	FilterAll    Filter = "all"
	FilterUnread Filter = "unread"
	FilterRead   Filter = "read"
)

// ParseFilter maps a query parameter to a Filter; empty means all.
// Unknown values are rejected so typos don't silently widen a page.
func ParseFilter(s string) (Filter, bool) {
	switch s {
	case "", "all":
		return FilterAll, true
	case "unread":
		return FilterUnread, true
	case "read":
		return FilterRead, true
	}
	return "", false
}

const (
	// DefaultLimit is the page size when the client does not ask
	DefaultLimit = 20
	// MaxLimit caps the page size; larger requests are clamped, not rejected
	MaxLimit = 100
)

// Params describes one page request
type Params struct {
	Filter Filter
	Limit  int
	Cursor string
}

// Item is the allow-listed projection of a notification row returned to
// clients. Internal columns (recipient id, update timestamps) stay out.
type Item struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Title      string     `json:"title"`
	Body       string     `json:"body,omitempty"`
	Actor      *ItemActor `json:"actor,omitempty"`
	TargetType string     `json:"target_type,omitempty"`
	TargetID   string     `json:"target_id,omitempty"`
	IsRead     bool       `json:"is_read"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ItemActor is the sub-projection of the user who triggered the item
type ItemActor struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// Page is one resumable slice of a user's inbox
type Page struct {
	Items      []Item  `json:"notifications"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// GetPage returns up to Limit notifications for the user, starting
// strictly after the supplied cursor position (or from the top), newest
// first with the notification ID breaking timestamp ties.
//
// The fetch asks for limit+1 rows - the extra row is the has-more probe.
// The keyset predicate is pushed down to the query AND re-checked in
// memory, and the read-state filter is likewise applied at both layers:
// the in-memory pass guards against a storage layer that did not honor
// the predicates exactly. Because the probe row is drawn from the
// already-filtered set, filtering does not under-count has_more.
func GetPage(db *gorm.DB, userID string, p Params) (*Page, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	cursor, hasCursor := DecodeCursor(p.Cursor)

	q := db.Model(&models.Notification{}).
		Preload("Actor").
		Where("user_id = ?", userID)

	switch p.Filter {
	case FilterUnread:
		q = q.Where("is_read = ?", false)
	case FilterRead:
		q = q.Where("is_read = ?", true)
	}

	if hasCursor {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Notification
	err := q.Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	// Defensive in-memory pass over the fetched window
	filtered := rows[:0]
	for _, row := range rows {
		if hasCursor && !cursor.After(row.CreatedAt, row.ID) {
			continue
		}
		switch p.Filter {
		case FilterUnread:
			if row.IsRead {
				continue
			}
		case FilterRead:
			if !row.IsRead {
				continue
			}
		}
		filtered = append(filtered, row)
	}

	hasMore := len(filtered) > limit
	if hasMore {
		filtered = filtered[:limit]
	}

	page := &Page{
		Items:   make([]Item, 0, len(filtered)),
		HasMore: hasMore,
	}
	for _, row := range filtered {
		page.Items = append(page.Items, projectItem(row))
	}

	if hasMore {
		last := filtered[len(filtered)-1]
		token := Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
		page.NextCursor = &token
	}

	return page, nil
}

// UnreadCount returns the user's unread notification count
func UnreadCount(db *gorm.DB, userID string) (int64, error) {
	var count int64
	err := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// CachedUnreadCount serves the unread count from Redis when possible,
// falling back to the database and repopulating the cache on a miss.
// Without a Redis client it behaves exactly like UnreadCount.
func CachedUnreadCount(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	rc := cache.GetRedisClient()
	key := cache.UnreadCountKey(userID)

	if rc != nil {
		if count, err := rc.GetInt(ctx, key); err == nil {
			return count, nil
		} else if !cache.IsMiss(err) {
			logger.Log.Warn("Unread count cache read failed",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
	}

	count, err := UnreadCount(db, userID)
	if err != nil {
		return 0, err
	}

	if rc != nil {
		if err := rc.SetEx(ctx, key, count, cache.UnreadCountTTL); err != nil {
			logger.Log.Warn("Unread count cache write failed",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
	}

	return count, nil
}

// MarkRead marks a single notification read, scoped to the owner
func MarkRead(ctx context.Context, db *gorm.DB, userID, notificationID string) (bool, error) {
	res := db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if res.Error == nil && res.RowsAffected > 0 {
		invalidateUnreadCount(ctx, userID)
	}
	return res.RowsAffected > 0, res.Error
}

// MarkAllRead marks every unread notification for the user as read
func MarkAllRead(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	res := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if res.Error == nil && res.RowsAffected > 0 {
		invalidateUnreadCount(ctx, userID)
	}
	return res.RowsAffected, res.Error
}

// Delete removes a notification, scoped to the owner
func Delete(ctx context.Context, db *gorm.DB, userID, notificationID string) (bool, error) {
	res := db.Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&models.Notification{})
	if res.Error == nil && res.RowsAffected > 0 {
		invalidateUnreadCount(ctx, userID)
	}
	return res.RowsAffected > 0, res.Error
}

func projectItem(n models.Notification) Item {
	item := Item{
		ID:         n.ID,
		Type:       string(n.Type),
		Title:      n.Title,
		Body:       n.Body,
		TargetType: n.TargetType,
		TargetID:   n.TargetID,
		IsRead:     n.IsRead,
		CreatedAt:  n.CreatedAt,
	}
	if n.Actor != nil {
		item.Actor = &ItemActor{
			ID:          n.Actor.ID,
			Username:    n.Actor.Username,
			DisplayName: n.Actor.DisplayName,
			AvatarURL:   n.Actor.AvatarURL,
		}
	}
	return item
}
