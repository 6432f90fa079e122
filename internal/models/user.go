package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRole represents the access level of an account
type UserRole string

const (
	RoleUser      UserRole = "user"
	RoleModerator UserRole = "moderator"
	RoleAdmin     UserRole = "admin"
)

// SocialLinks stores a user's external profile links
type SocialLinks struct {
	Instagram string `json:"instagram,omitempty"`
	YouTube   string `json:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Website   string `json:"website,omitempty"`
}

// User represents a Glocal community account with unified auth
type User struct {
	ID          string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Email       string `gorm:"uniqueIndex;not null" json:"email"`
	Username    string `gorm:"uniqueIndex;not null" json:"username"`
	DisplayName string `gorm:"not null" json:"display_name"`
	Bio         string `gorm:"type:text" json:"bio"`

	// Locality ties the account to a city feed
	City string `gorm:"index" json:"city"`
	Area string `json:"area"`

	// Native auth fields
	PasswordHash  *string `gorm:"type:text" json:"-"`
	EmailVerified bool    `gorm:"default:false" json:"email_verified"`

	// OAuth provider ID (nullable - users can have native accounts)
	GoogleID *string `gorm:"uniqueIndex" json:"-"`

	// Profile data
	AvatarURL   string       `json:"avatar_url"`
	SocialLinks *SocialLinks `gorm:"type:jsonb;serializer:json" json:"social_links"`

	// Role and artist flag
	Role     UserRole `gorm:"type:text;default:user" json:"role"`
	IsArtist bool     `gorm:"default:false;index" json:"is_artist"`

	// Artist profile, only meaningful when IsArtist is set
	ArtistCategory string `json:"artist_category,omitempty"`
	HourlyRateMin  int64  `gorm:"default:0" json:"hourly_rate_min,omitempty"` // minor currency units

	// Cached counters
	SubscriberCount int `gorm:"default:0" json:"subscriber_count"`
	PostCount       int `gorm:"default:0" json:"post_count"`

	// Moderation
	IsBanned bool `gorm:"default:false" json:"is_banned"`

	// Activity tracking
	LastActiveAt *time.Time `json:"last_active_at"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the default table name
func (User) TableName() string {
	return "users"
}

// IsModerator reports whether the user can act on moderation reports
func (u *User) IsModerator() bool {
	return u.Role == RoleModerator || u.Role == RoleAdmin
}

// BeforeCreate assigns a UUID when the database default is unavailable
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = generateUUID()
	}
	return nil
}

func generateUUID() string {
	return uuid.New().String()
}
