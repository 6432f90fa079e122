package models

import (
	"time"

	"gorm.io/gorm"
)

// Poll represents a community poll with anonymous voting.
// Votes carry a derived voter hash instead of a user ID, so the poll
// table never links a ballot back to an account.
type Poll struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID string `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Question string `gorm:"not null" json:"question"`
	City     string `gorm:"index" json:"city"`

	// Nil means the poll never expires
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	// Cached sum of option vote counts
	TotalVotes int `gorm:"default:0" json:"total_votes"`

	Options []PollOption `gorm:"foreignKey:PollID" json:"options,omitempty"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the default table name
func (Poll) TableName() string {
	return "polls"
}

func (p *Poll) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	return nil
}

// PollOption is a single answer choice within a poll
type PollOption struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	PollID string `gorm:"not null;index" json:"poll_id"`

	Text      string `gorm:"not null" json:"text"`
	Position  int    `gorm:"not null;default:0" json:"position"`
	VoteCount int    `gorm:"default:0" json:"vote_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the default table name
func (PollOption) TableName() string {
	return "poll_options"
}

func (o *PollOption) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = generateUUID()
	}
	return nil
}

// PollVote is one ballot. VoterHash is the keyed hash of (user, poll) -
// deterministic for dedup, irreversible, and unlinkable across polls.
// The unique index on (poll_id, voter_hash) is what actually enforces
// one vote per user per poll; the application never check-then-inserts.
type PollVote struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	PollID   string `gorm:"not null;index:idx_poll_votes_voter,unique,priority:1" json:"poll_id"`
	OptionID string `gorm:"not null;index" json:"option_id"`

	VoterHash   string `gorm:"not null;index:idx_poll_votes_voter,unique,priority:2" json:"-"`
	AnonVoterID int    `gorm:"not null" json:"anon_voter_id"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides the default table name
func (PollVote) TableName() string {
	return "poll_votes"
}

func (v *PollVote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = generateUUID()
	}
	return nil
}
