package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB holds the database connection
var DB *gorm.DB

// Initialize creates and configures the database connection
func Initialize(databaseURL string) error {
	gormLogger := logger.Default
	if os.Getenv("ENVIRONMENT") == "development" {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	DB = db
	log.Println("Database connected")

	return nil
}

// Migrate runs auto-migration for all models
func Migrate() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	// Enable UUID extension for PostgreSQL
	if err := DB.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		log.Printf("Warning: Could not create uuid-ossp extension: %v", err)
	}

	err := DB.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.PostLike{},
		&models.CommentLike{},
		&models.Bookmark{},
		&models.Poll{},
		&models.PollOption{},
		&models.PollVote{},
		&models.Notification{},
		&models.Booking{},
		&models.ArtistSubscription{},
		&models.Report{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed")
	return nil
}

// createIndexes creates performance and integrity indexes
func createIndexes() error {
	// User lookups are case-insensitive
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_users_email_lower ON users (LOWER(email))")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_users_username_lower ON users (LOWER(username))")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_users_artists ON users (city, is_artist) WHERE is_artist = true")

	// Post feed queries
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_posts_city_created ON posts (city, created_at DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_posts_user_created ON posts (user_id, created_at DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_posts_active ON posts (city, created_at DESC) WHERE status = 'active'")

	// Comment retrieval
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_comments_post_created ON comments (post_id, created_at DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_comments_parent ON comments (parent_id) WHERE parent_id IS NOT NULL")

	// One like / one bookmark per user per post
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_post_likes_unique ON post_likes (post_id, user_id)")
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_comment_likes_unique ON comment_likes (comment_id, user_id)")
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_bookmarks_unique ON bookmarks (user_id, post_id)")

	// Keyset pagination over the notification inbox walks
	// (user_id, created_at DESC, id DESC); the composite index serves
	// both the first page and every cursor continuation.
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_user_keyset ON notifications (user_id, created_at DESC, id DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_unread ON notifications (user_id, created_at DESC, id DESC) WHERE is_read = false")

	// One vote per voter hash per poll. This is the authoritative
	// duplicate-vote guard: concurrent submissions race to the index,
	// not to an application-level existence check.
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_poll_votes_voter ON poll_votes (poll_id, voter_hash)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_poll_votes_option ON poll_votes (option_id)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_polls_city_created ON polls (city, created_at DESC)")

	// Bookings per artist / client dashboards
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_bookings_artist_status ON bookings (artist_id, status)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_bookings_client_created ON bookings (client_id, created_at DESC)")

	// One live subscription per (artist, subscriber)
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_artist_subs_unique ON artist_subscriptions (artist_id, subscriber_id) WHERE deleted_at IS NULL")

	// One live report per (reporter, target)
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_reports_unique ON reports (reporter_id, target_type, target_id) WHERE deleted_at IS NULL")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_reports_status ON reports (status)")

	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// Health checks database connectivity
func Health() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Ping()
}
