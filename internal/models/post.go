package models

import (
	"time"

	"gorm.io/gorm"
)

// PostType distinguishes plain posts from community events
type PostType string

const (
	PostTypePost  PostType = "post"
	PostTypeEvent PostType = "event"
)

// PostStatus tracks moderation state of a post
type PostStatus string

const (
	PostStatusActive  PostStatus = "active"
	PostStatusHidden  PostStatus = "hidden"
	PostStatusRemoved PostStatus = "removed"
)

// Post represents a community post or event in a city feed
type Post struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID string `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Type  PostType `gorm:"type:text;default:post" json:"type"`
	Title string   `gorm:"not null" json:"title"`
	Body  string   `gorm:"type:text" json:"body"`

	// Locality
	City string `gorm:"index" json:"city"`
	Area string `json:"area"`

	// Event-only fields
	EventDate *time.Time `json:"event_date,omitempty"`
	Venue     string     `json:"venue,omitempty"`

	ImageURL string `json:"image_url,omitempty"`

	// Cached engagement counters
	LikeCount    int `gorm:"default:0" json:"like_count"`
	CommentCount int `gorm:"default:0" json:"comment_count"`

	Status PostStatus `gorm:"type:text;default:active;index" json:"status"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the default table name
func (Post) TableName() string {
	return "posts"
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	return nil
}

// Comment represents a comment on a Post
type Comment struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	PostID string `gorm:"not null;index" json:"post_id"`
	Post   Post   `gorm:"foreignKey:PostID" json:"-"`
	UserID string `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Content string `gorm:"type:text;not null" json:"content"`

	// Threading - parent_id is null for top-level comments, one level deep
	ParentID *string    `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Parent   *Comment   `gorm:"foreignKey:ParentID" json:"-"`
	Replies  []*Comment `gorm:"foreignKey:ParentID" json:"replies,omitempty"`

	LikeCount int `gorm:"default:0" json:"like_count"`

	// Edit tracking
	IsEdited bool       `gorm:"default:false" json:"is_edited"`
	EditedAt *time.Time `json:"edited_at,omitempty"`

	// Soft removal keeps the thread shape ("comment removed")
	IsDeleted bool `gorm:"default:false" json:"is_deleted"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the default table name
func (Comment) TableName() string {
	return "comments"
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateUUID()
	}
	return nil
}

// PostLike records a single user's like on a post
type PostLike struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	PostID string `gorm:"not null;index" json:"post_id"`
	UserID string `gorm:"not null;index" json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides the default table name
func (PostLike) TableName() string {
	return "post_likes"
}

func (l *PostLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = generateUUID()
	}
	return nil
}

// Bookmark saves a post to a user's reading list
type Bookmark struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID string `gorm:"not null;index" json:"user_id"`
	PostID string `gorm:"not null;index" json:"post_id"`
	Post   Post   `gorm:"foreignKey:PostID" json:"post,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides the default table name
func (Bookmark) TableName() string {
	return "bookmarks"
}

func (b *Bookmark) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = generateUUID()
	}
	return nil
}

// CommentLike records a single user's like on a comment
type CommentLike struct {
	ID        string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	CommentID string `gorm:"not null;index" json:"comment_id"`
	UserID    string `gorm:"not null;index" json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides the default table name
func (CommentLike) TableName() string {
	return "comment_likes"
}

func (l *CommentLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = generateUUID()
	}
	return nil
}
