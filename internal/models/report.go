package models

import (
	"time"

	"gorm.io/gorm"
)

// ReportReason represents the reason for a report
type ReportReason string

const (
	ReportReasonSpam          ReportReason = "spam"
	ReportReasonHarassment    ReportReason = "harassment"
	ReportReasonInappropriate ReportReason = "inappropriate"
	ReportReasonMisinfo       ReportReason = "misinformation"
	ReportReasonViolence      ReportReason = "violence"
	ReportReasonOther         ReportReason = "other"
)

// ValidReportReason reports whether the given reason is one we accept
func ValidReportReason(r string) bool {
	switch ReportReason(r) {
	case ReportReasonSpam, ReportReasonHarassment, ReportReasonInappropriate,
		ReportReasonMisinfo, ReportReasonViolence, ReportReasonOther:
		return true
	}
	return false
}

// ReportStatus represents the status of a report
type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusReviewing ReportStatus = "reviewing"
	ReportStatusResolved  ReportStatus = "resolved"
	ReportStatusDismissed ReportStatus = "dismissed"
)

// ReportTargetType represents what type of content is being reported
type ReportTargetType string

const (
	ReportTargetPost    ReportTargetType = "post"
	ReportTargetComment ReportTargetType = "comment"
	ReportTargetUser    ReportTargetType = "user"
)

// Report represents a user report for moderation
type Report struct {
	ID         string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ReporterID string `gorm:"not null;index" json:"reporter_id"`
	Reporter   User   `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`

	// Target of the report
	TargetType   ReportTargetType `gorm:"not null" json:"target_type"`
	TargetID     string           `gorm:"not null;index" json:"target_id"`
	TargetUserID *string          `gorm:"index" json:"target_user_id"` // author of the reported content

	Reason      ReportReason `gorm:"not null" json:"reason"`
	Description string       `gorm:"type:text" json:"description"`
	Status      ReportStatus `gorm:"default:pending;index" json:"status"`

	// Moderation action
	ModeratorID *string `gorm:"index" json:"moderator_id"`
	Moderator   *User   `gorm:"foreignKey:ModeratorID" json:"moderator,omitempty"`
	ActionTaken string  `gorm:"type:text" json:"action_taken"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the default table name
func (Report) TableName() string {
	return "reports"
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = generateUUID()
	}
	return nil
}
