package models

import (
	"time"

	"gorm.io/gorm"
)

// BookingStatus tracks the lifecycle of an artist booking
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingAccepted  BookingStatus = "accepted"
	BookingDeclined  BookingStatus = "declined"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// Booking is a client's request to hire an artist for an event
type Booking struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ArtistID string `gorm:"not null;index" json:"artist_id"`
	Artist   User   `gorm:"foreignKey:ArtistID" json:"artist,omitempty"`
	ClientID string `gorm:"not null;index" json:"client_id"`
	Client   User   `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	EventDate time.Time `gorm:"not null" json:"event_date"`
	Venue     string    `gorm:"not null" json:"venue"`
	Note      string    `gorm:"type:text" json:"note"`

	// Quoted amount in minor currency units; 0 until the artist quotes
	QuotedAmount int64 `gorm:"default:0" json:"quoted_amount"`

	Status BookingStatus `gorm:"type:text;default:pending;index" json:"status"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the default table name
func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = generateUUID()
	}
	return nil
}

// ArtistSubscription follows an artist's updates.
// Soft delete keeps resubscribe cheap while the unique partial index
// prevents double subscriptions.
type ArtistSubscription struct {
	ID           string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ArtistID     string `gorm:"not null;index" json:"artist_id"`
	Artist       User   `gorm:"foreignKey:ArtistID" json:"artist,omitempty"`
	SubscriberID string `gorm:"not null;index" json:"subscriber_id"`
	Subscriber   User   `gorm:"foreignKey:SubscriberID" json:"subscriber,omitempty"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the default table name
func (ArtistSubscription) TableName() string {
	return "artist_subscriptions"
}

func (s *ArtistSubscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = generateUUID()
	}
	return nil
}
