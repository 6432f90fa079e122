package models

import (
	"time"

	"gorm.io/gorm"
)

// NotificationType classifies what a notification is about
type NotificationType string

const (
	NotificationComment      NotificationType = "comment"
	NotificationLike         NotificationType = "like"
	NotificationSubscription NotificationType = "subscription"
	NotificationBooking      NotificationType = "booking"
	NotificationPoll         NotificationType = "poll"
	NotificationModeration   NotificationType = "moderation"
	NotificationSystem       NotificationType = "system"
)

// Notification is a single inbox entry for a user.
// Rows are totally ordered by (created_at DESC, id DESC); the ID breaks
// ties when two rows share a timestamp, which keyset pagination needs.
type Notification struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID string `gorm:"not null;index:idx_notifications_user_created,priority:1" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"-"`

	// Actor is the user who triggered the notification, if any
	ActorID *string `gorm:"type:uuid" json:"actor_id,omitempty"`
	Actor   *User   `gorm:"foreignKey:ActorID" json:"actor,omitempty"`

	Type  NotificationType `gorm:"not null" json:"type"`
	Title string           `gorm:"not null" json:"title"`
	Body  string           `gorm:"type:text" json:"body"`

	// What the notification points at ("post", "poll", "booking", ...)
	TargetType string `json:"target_type,omitempty"`
	TargetID   string `json:"target_id,omitempty"`

	IsRead bool `gorm:"default:false" json:"is_read"`

	CreatedAt time.Time `gorm:"index:idx_notifications_user_created,priority:2" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the default table name
func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = generateUUID()
	}
	return nil
}
