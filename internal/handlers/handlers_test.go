package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/database"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/logger"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/models"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/notifications"
)

const testVoteSecret = "test-vote-secret-for-handler-tests"

var handlerTestDDL = []string{
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		username TEXT NOT NULL,
		display_name TEXT NOT NULL,
		bio TEXT,
		city TEXT,
		area TEXT,
		password_hash TEXT,
		email_verified INTEGER DEFAULT 0,
		google_id TEXT,
		avatar_url TEXT,
		social_links TEXT,
		role TEXT DEFAULT 'user',
		is_artist INTEGER DEFAULT 0,
		artist_category TEXT,
		hourly_rate_min INTEGER DEFAULT 0,
		subscriber_count INTEGER DEFAULT 0,
		post_count INTEGER DEFAULT 0,
		is_banned INTEGER DEFAULT 0,
		last_active_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	)`,
	`CREATE TABLE posts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		type TEXT DEFAULT 'post',
		title TEXT NOT NULL,
		body TEXT,
		city TEXT,
		area TEXT,
		event_date DATETIME,
		venue TEXT,
		image_url TEXT,
		like_count INTEGER DEFAULT 0,
		comment_count INTEGER DEFAULT 0,
		status TEXT DEFAULT 'active',
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	)`,
	`CREATE TABLE comments (
		id TEXT PRIMARY KEY,
		post_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		content TEXT NOT NULL,
		parent_id TEXT,
		like_count INTEGER DEFAULT 0,
		is_edited INTEGER DEFAULT 0,
		edited_at DATETIME,
		is_deleted INTEGER DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	)`,
	`CREATE TABLE post_likes (
		id TEXT PRIMARY KEY,
		post_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		created_at DATETIME
	)`,
	`CREATE UNIQUE INDEX idx_post_likes_unique ON post_likes (post_id, user_id)`,
	`CREATE TABLE comment_likes (
		id TEXT PRIMARY KEY,
		comment_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		created_at DATETIME
	)`,
	`CREATE UNIQUE INDEX idx_comment_likes_unique ON comment_likes (comment_id, user_id)`,
	`CREATE TABLE bookmarks (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		post_id TEXT NOT NULL,
		created_at DATETIME
	)`,
	`CREATE UNIQUE INDEX idx_bookmarks_unique ON bookmarks (user_id, post_id)`,
	`CREATE TABLE polls (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		question TEXT NOT NULL,
		city TEXT,
		expires_at DATETIME,
		total_votes INTEGER DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	)`,
	`CREATE TABLE poll_options (
		id TEXT PRIMARY KEY,
		poll_id TEXT NOT NULL,
		text TEXT NOT NULL,
		position INTEGER DEFAULT 0,
		vote_count INTEGER DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE poll_votes (
		id TEXT PRIMARY KEY,
		poll_id TEXT NOT NULL,
		option_id TEXT NOT NULL,
		voter_hash TEXT NOT NULL,
		anon_voter_id INTEGER NOT NULL,
		created_at DATETIME
	)`,
	`CREATE UNIQUE INDEX idx_poll_votes_voter ON poll_votes (poll_id, voter_hash)`,
	`CREATE TABLE notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		actor_id TEXT,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		body TEXT,
		target_type TEXT,
		target_id TEXT,
		is_read INTEGER DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE bookings (
		id TEXT PRIMARY KEY,
		artist_id TEXT NOT NULL,
		client_id TEXT NOT NULL,
		event_date DATETIME NOT NULL,
		venue TEXT NOT NULL,
		note TEXT,
		quoted_amount INTEGER DEFAULT 0,
		status TEXT DEFAULT 'pending',
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	)`,
	`CREATE TABLE artist_subscriptions (
		id TEXT PRIMARY KEY,
		artist_id TEXT NOT NULL,
		subscriber_id TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	)`,
	`CREATE UNIQUE INDEX idx_artist_subs_unique ON artist_subscriptions (artist_id, subscriber_id)
		WHERE deleted_at IS NULL`,
	`CREATE TABLE reports (
		id TEXT PRIMARY KEY,
		reporter_id TEXT NOT NULL,
		target_type TEXT NOT NULL,
		target_id TEXT NOT NULL,
		target_user_id TEXT,
		reason TEXT NOT NULL,
		description TEXT,
		status TEXT DEFAULT 'pending',
		moderator_id TEXT,
		action_taken TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	)`,
	`CREATE UNIQUE INDEX idx_reports_unique ON reports (reporter_id, target_type, target_id)
		WHERE deleted_at IS NULL`,
}

// setupHandlerTest builds an in-memory database with the full schema,
// points the package-global connection at it, and returns a router with
// all routes mounted behind a header-based test auth middleware.
func setupHandlerTest(t *testing.T) (*gorm.DB, *gin.Engine, *Handlers) {
	t.Helper()
	_ = logger.Initialize("error", "")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// AutoMigrate emits PostgreSQL defaults, so the schema is created
	// with raw SQLite-compatible DDL instead
	for _, stmt := range handlerTestDDL {
		require.NoError(t, db.Exec(stmt).Error)
	}

	database.DB = db

	h := NewHandlers(nil, notifications.NewNotifier(db, nil), []byte(testVoteSecret))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	mountTestRoutes(router, db, h)

	return db, router, h
}

// testAuth resolves X-User-ID into a context user, standing in for the
// JWT middleware so handler tests exercise authorization, not parsing
func testAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_bearer_token"})
			return
		}
		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}
		c.Set("user", &user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}

// testOptionalAuth mirrors OptionalAuthMiddleware for the test router:
// header present and valid loads the user, otherwise anonymous.
func testOptionalAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			var user models.User
			if err := db.First(&user, "id = ?", userID).Error; err == nil {
				c.Set("user", &user)
				c.Set("user_id", user.ID)
			}
		}
		c.Next()
	}
}

func mountTestRoutes(router *gin.Engine, db *gorm.DB, h *Handlers) {
	auth := testAuth(db)
	api := router.Group("/api/v1")

	public := api.Group("")
	public.Use(testOptionalAuth(db))
	public.GET("/posts", h.GetPosts)
	public.GET("/posts/:id", h.GetPost)
	public.GET("/posts/:id/comments", h.ListComments)
	public.GET("/polls", h.ListPolls)
	public.GET("/polls/:id", h.GetPoll)
	public.GET("/polls/:id/results", h.GetPollResults)
	public.GET("/artists", h.ListArtists)
	public.GET("/users/:id", h.GetUserProfile)

	authed := api.Group("")
	authed.Use(auth)
	{
		authed.GET("/users/me", h.GetMe)
		authed.PATCH("/users/me", h.UpdateMe)

		authed.POST("/posts", h.CreatePost)
		authed.PATCH("/posts/:id", h.UpdatePost)
		authed.DELETE("/posts/:id", h.DeletePost)
		authed.POST("/posts/:id/like", h.LikePost)
		authed.DELETE("/posts/:id/like", h.UnlikePost)
		authed.POST("/posts/:id/bookmark", h.BookmarkPost)
		authed.DELETE("/posts/:id/bookmark", h.UnbookmarkPost)
		authed.GET("/bookmarks", h.ListBookmarks)

		authed.POST("/posts/:id/comments", h.CreateComment)
		authed.PATCH("/comments/:id", h.UpdateComment)
		authed.DELETE("/comments/:id", h.DeleteComment)
		authed.POST("/comments/:id/like", h.LikeComment)
		authed.DELETE("/comments/:id/like", h.UnlikeComment)

		authed.POST("/polls", h.CreatePoll)
		authed.POST("/polls/:id/vote", h.Vote)
		authed.GET("/polls/:id/my-vote", h.MyVote)
		authed.DELETE("/polls/:id/vote", h.RetractVote)
		authed.DELETE("/polls/:id", h.DeletePoll)

		authed.GET("/notifications", h.GetNotifications)
		authed.GET("/notifications/unread-count", h.GetUnreadCount)
		authed.POST("/notifications/:id/read", h.MarkNotificationRead)
		authed.POST("/notifications/read-all", h.MarkAllNotificationsRead)
		authed.DELETE("/notifications/:id", h.DeleteNotification)

		authed.POST("/bookings", h.CreateBooking)
		authed.GET("/bookings", h.ListMyBookings)
		authed.POST("/bookings/:id/accept", h.AcceptBooking)
		authed.POST("/bookings/:id/decline", h.DeclineBooking)
		authed.POST("/bookings/:id/cancel", h.CancelBooking)
		authed.POST("/bookings/:id/complete", h.CompleteBooking)

		authed.POST("/artists/:id/subscribe", h.SubscribeToArtist)
		authed.DELETE("/artists/:id/subscribe", h.UnsubscribeFromArtist)
		authed.GET("/subscriptions", h.ListMySubscriptions)
		authed.GET("/artists/me/subscribers", h.ListArtistSubscribers)

		authed.POST("/reports", h.CreateReport)

		admin := authed.Group("/admin")
		admin.Use(func(c *gin.Context) {
			user := c.MustGet("user").(*models.User)
			if !user.IsModerator() {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "moderator_access_required"})
				return
			}
			c.Next()
		})
		admin.GET("/reports", h.ListReports)
		admin.POST("/reports/:id/resolve", h.ResolveReport)
		admin.GET("/users", h.ListUsers)
		admin.POST("/users/:id/ban", h.BanUser)
		admin.DELETE("/users/:id/ban", h.UnbanUser)
	}
}

var testUserSeq int

func createTestUser(t *testing.T, db *gorm.DB, mutate ...func(*models.User)) *models.User {
	t.Helper()
	testUserSeq++
	user := &models.User{
		Email:       fmt.Sprintf("user%d@test.local", testUserSeq),
		Username:    fmt.Sprintf("user%d", testUserSeq),
		DisplayName: fmt.Sprintf("User %d", testUserSeq),
		City:        "Indore",
	}
	for _, m := range mutate {
		m(user)
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, author *models.User) *models.Post {
	t.Helper()
	post := &models.Post{
		UserID: author.ID,
		Type:   models.PostTypePost,
		Title:  "Pothole on MG Road",
		Body:   "Has been there for weeks",
		City:   author.City,
		Status: models.PostStatusActive,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

func createTestPoll(t *testing.T, db *gorm.DB, author *models.User, expiresAt *time.Time, optionTexts ...string) *models.Poll {
	t.Helper()
	poll := &models.Poll{
		UserID:    author.ID,
		Question:  "Where should the new park go?",
		City:      author.City,
		ExpiresAt: expiresAt,
	}
	for i, text := range optionTexts {
		poll.Options = append(poll.Options, models.PollOption{Text: text, Position: i})
	}
	require.NoError(t, db.Create(poll).Error)
	return poll
}

// doJSON performs a request with an optional JSON body and acting user
func doJSON(router *gin.Engine, method, path string, body interface{}, asUser *models.User) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if asUser != nil {
		req.Header.Set("X-User-ID", asUser.ID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		err      error
		expected bool
	}{
		{nil, false},
		{gorm.ErrDuplicatedKey, true},
		{errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"), true},
		{errors.New("UNIQUE constraint failed: poll_votes.poll_id, poll_votes.voter_hash"), true},
		{errors.New("connection refused"), false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.expected, isUniqueViolation(tc.err), "err: %v", tc.err)
	}
}
