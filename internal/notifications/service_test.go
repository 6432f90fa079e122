package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/logger"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/models"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	_ = logger.Initialize("error", "")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// Create tables manually with SQLite-compatible syntax
	// (AutoMigrate emits PostgreSQL defaults like gen_random_uuid)
	err = db.Exec(`
		CREATE TABLE users (
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
			hourly_rate_min INTEGER,
			subscriber_count INTEGER DEFAULT 0,
			post_count INTEGER DEFAULT 0,
			is_banned INTEGER DEFAULT 0,
			last_active_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		)
	`).Error
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE notifications (
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
		)
	`).Error
	require.NoError(t, err)

	return db
}

func createNotification(t *testing.T, db *gorm.DB, userID string, createdAt time.Time, read bool) models.Notification {
	n := models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      models.NotificationSystem,
		Title:     "test notification",
		IsRead:    read,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(&n).Error)
	return n
}

func itemIDs(page *Page) []string {
	ids := make([]string, 0, len(page.Items))
	for _, it := range page.Items {
		ids = append(ids, it.ID)
	}
	return ids
}

func TestGetPagePaginationWalk(t *testing.T) {
	db := setupTestDB(t)
	userID := uuid.NewString()

	// Five notifications at strictly increasing timestamps T1..T5
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	var created []models.Notification
	for i := 0; i < 5; i++ {
		created = append(created, createNotification(t, db, userID, base.Add(time.Duration(i)*time.Minute), false))
	}

	// Page 1: newest first, [T5, T4]
	page1, err := GetPage(db, userID, Params{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{created[4].ID, created[3].ID}, itemIDs(page1))
	assert.True(t, page1.HasMore)
	require.NotNil(t, page1.NextCursor)

	// Page 2: [T3, T2]
	page2, err := GetPage(db, userID, Params{Limit: 2, Cursor: *page1.NextCursor})
	require.NoError(t, err)
	assert.Equal(t, []string{created[2].ID, created[1].ID}, itemIDs(page2))
	assert.True(t, page2.HasMore)
	require.NotNil(t, page2.NextCursor)

	// Page 3: [T1], exhausted
	page3, err := GetPage(db, userID, Params{Limit: 2, Cursor: *page2.NextCursor})
	require.NoError(t, err)
	assert.Equal(t, []string{created[0].ID}, itemIDs(page3))
	assert.False(t, page3.HasMore)
	assert.Nil(t, page3.NextCursor)

	// The walk enumerated every notification exactly once
	seen := map[string]int{}
	for _, id := range append(append(itemIDs(page1), itemIDs(page2)...), itemIDs(page3)...) {
		seen[id]++
	}
	assert.Len(t, seen, 5)
	for id, count := range seen {
		assert.Equal(t, 1, count, "notification %s appeared %d times", id, count)
	}
}

func TestGetPageExactMultipleHasNoFinalPage(t *testing.T) {
	db := setupTestDB(t)
	userID := uuid.NewString()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		createNotification(t, db, userID, base.Add(time.Duration(i)*time.Minute), false)
	}

	page1, err := GetPage(db, userID, Params{Limit: 2})
	require.NoError(t, err)
	require.True(t, page1.HasMore)

	page2, err := GetPage(db, userID, Params{Limit: 2, Cursor: *page1.NextCursor})
	require.NoError(t, err)
	assert.Len(t, page2.Items, 2)
	assert.False(t, page2.HasMore)
	assert.Nil(t, page2.NextCursor)
}

func TestGetPageTimestampTieBrokenByID(t *testing.T) {
	db := setupTestDB(t)
	userID := uuid.NewString()

	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	low := models.Notification{
		ID: "aaaaaaaa-0000-0000-0000-000000000000", UserID: userID,
		Type: models.NotificationSystem, Title: "low id", CreatedAt: at,
	}
	high := models.Notification{
		ID: "bbbbbbbb-0000-0000-0000-000000000000", UserID: userID,
		Type: models.NotificationSystem, Title: "high id", CreatedAt: at,
	}
	require.NoError(t, db.Create(&low).Error)
	require.NoError(t, db.Create(&high).Error)

	page1, err := GetPage(db, userID, Params{Limit: 1})
	require.NoError(t, err)
	require.Len(t, page1.Items, 1)
	assert.Equal(t, high.ID, page1.Items[0].ID)
	require.True(t, page1.HasMore)

	page2, err := GetPage(db, userID, Params{Limit: 1, Cursor: *page1.NextCursor})
	require.NoError(t, err)
	require.Len(t, page2.Items, 1)
	assert.Equal(t, low.ID, page2.Items[0].ID)
	assert.False(t, page2.HasMore)
}

func TestGetPageFilterWithCursor(t *testing.T) {
	db := setupTestDB(t)
	userID := uuid.NewString()

	// Alternate read/unread so the filter has to skip interleaved rows
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	var unread []models.Notification
	for i := 0; i < 6; i++ {
		n := createNotification(t, db, userID, base.Add(time.Duration(i)*time.Minute), i%2 == 0)
		if i%2 != 0 {
			unread = append(unread, n)
		}
	}

	page1, err := GetPage(db, userID, Params{Filter: FilterUnread, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{unread[2].ID, unread[1].ID}, itemIDs(page1))
	assert.True(t, page1.HasMore)
	require.NotNil(t, page1.NextCursor)

	page2, err := GetPage(db, userID, Params{Filter: FilterUnread, Limit: 2, Cursor: *page1.NextCursor})
	require.NoError(t, err)
	assert.Equal(t, []string{unread[0].ID}, itemIDs(page2))
	assert.False(t, page2.HasMore)

	// The read filter sees the complementary set
	readPage, err := GetPage(db, userID, Params{Filter: FilterRead, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, readPage.Items, 3)
	for _, it := range readPage.Items {
		assert.True(t, it.IsRead)
	}
}

func TestGetPageLimitClamping(t *testing.T) {
	db := setupTestDB(t)
	userID := uuid.NewString()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i := 0; i < DefaultLimit+5; i++ {
		createNotification(t, db, userID, base.Add(time.Duration(i)*time.Second), false)
	}

	// Zero and negative limits fall back to the default page size
	page, err := GetPage(db, userID, Params{Limit: 0})
	require.NoError(t, err)
	assert.Len(t, page.Items, DefaultLimit)
	assert.True(t, page.HasMore)

	page, err = GetPage(db, userID, Params{Limit: -3})
	require.NoError(t, err)
	assert.Len(t, page.Items, DefaultLimit)

	// An oversized limit is clamped, not rejected
	page, err = GetPage(db, userID, Params{Limit: 100000})
	require.NoError(t, err)
	assert.Len(t, page.Items, DefaultLimit+5)
	assert.False(t, page.HasMore)
}

func TestGetPageGarbageCursorStartsFromTop(t *testing.T) {
	db := setupTestDB(t)
	userID := uuid.NewString()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	newest := createNotification(t, db, userID, base.Add(time.Minute), false)
	createNotification(t, db, userID, base, false)

	page, err := GetPage(db, userID, Params{Limit: 1, Cursor: "!!!garbage!!!"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, newest.ID, page.Items[0].ID)
}

func TestGetPageCursorPastEnd(t *testing.T) {
	db := setupTestDB(t)
	userID := uuid.NewString()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	createNotification(t, db, userID, base, false)

	// A cursor older than every row yields an empty terminal page
	past := Cursor{CreatedAt: base.Add(-time.Hour), ID: uuid.NewString()}.Encode()
	page, err := GetPage(db, userID, Params{Limit: 10, Cursor: past})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore)
	assert.Nil(t, page.NextCursor)
}

func TestGetPageScopedToUser(t *testing.T) {
	db := setupTestDB(t)
	alice := uuid.NewString()
	bob := uuid.NewString()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	mine := createNotification(t, db, alice, base, false)
	createNotification(t, db, bob, base.Add(time.Minute), false)

	page, err := GetPage(db, alice, Params{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{mine.ID}, itemIDs(page))
}

func TestGetPageIncludesActorProjection(t *testing.T) {
	db := setupTestDB(t)
	userID := uuid.NewString()

	actor := models.User{
		ID: uuid.NewString(), Email: "actor@example.com",
		Username: "actor", DisplayName: "Actor McActorface",
	}
	require.NoError(t, db.Create(&actor).Error)

	n := models.Notification{
		ID: uuid.NewString(), UserID: userID, ActorID: &actor.ID,
		Type: models.NotificationLike, Title: "Actor McActorface liked your post",
		TargetType: "post", TargetID: uuid.NewString(),
		CreatedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(&n).Error)

	page, err := GetPage(db, userID, Params{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	item := page.Items[0]
	require.NotNil(t, item.Actor)
	assert.Equal(t, actor.ID, item.Actor.ID)
	assert.Equal(t, "actor", item.Actor.Username)
	assert.Equal(t, "like", item.Type)
	assert.Equal(t, "post", item.TargetType)
}

func TestParseFilter(t *testing.T) {
	for _, input := range []string{"", "all", "unread", "read"} {
		_, ok := ParseFilter(input)
		assert.True(t, ok, "input %q", input)
	}
	for _, input := range []string{"unred", "ALL", "everything", " read"} {
		_, ok := ParseFilter(input)
		assert.False(t, ok, "input %q", input)
	}
}

func TestReadStateOperations(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	userID := uuid.NewString()
	other := uuid.NewString()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	n1 := createNotification(t, db, userID, base, false)
	n2 := createNotification(t, db, userID, base.Add(time.Minute), false)
	theirs := createNotification(t, db, other, base, false)

	count, err := UnreadCount(db, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// Marking someone else's notification is a no-op
	ok, err := MarkRead(ctx, db, userID, theirs.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = MarkRead(ctx, db, userID, n1.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	count, err = UnreadCount(db, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	affected, err := MarkAllRead(ctx, db, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	count, err = UnreadCount(db, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// The other user's inbox is untouched
	count, err = UnreadCount(db, other)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Delete is owner-scoped too
	ok, err = Delete(ctx, db, other, n2.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = Delete(ctx, db, userID, n2.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	var remaining int64
	require.NoError(t, db.Model(&models.Notification{}).Where("user_id = ?", userID).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)
}

type capturePusher struct {
	userIDs []string
	items   []Item
	counts  []int64
}

func (p *capturePusher) PushNotification(userID string, item Item) {
	p.userIDs = append(p.userIDs, userID)
	p.items = append(p.items, item)
}

func (p *capturePusher) PushUnreadCount(userID string, count int64) {
	p.counts = append(p.counts, count)
}

func TestNotifierCreatesAndPushes(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	actor := models.User{
		ID: uuid.NewString(), Email: "amit@example.com",
		Username: "amit", DisplayName: "Amit",
	}
	require.NoError(t, db.Create(&actor).Error)
	recipient := uuid.NewString()

	pusher := &capturePusher{}
	notifier := NewNotifier(db, pusher)

	err := notifier.Notify(ctx, Event{
		UserID:     recipient,
		ActorID:    actor.ID,
		Type:       models.NotificationComment,
		Title:      "Amit commented on your post",
		TargetType: "post",
		TargetID:   uuid.NewString(),
	})
	require.NoError(t, err)

	var stored models.Notification
	require.NoError(t, db.First(&stored, "user_id = ?", recipient).Error)
	assert.Equal(t, models.NotificationComment, stored.Type)
	require.NotNil(t, stored.ActorID)
	assert.Equal(t, actor.ID, *stored.ActorID)
	assert.False(t, stored.IsRead)

	require.Len(t, pusher.items, 1)
	assert.Equal(t, recipient, pusher.userIDs[0])
	require.NotNil(t, pusher.items[0].Actor)
	assert.Equal(t, "amit", pusher.items[0].Actor.Username)

	// New notification carries a fresh badge count to the same user
	require.Len(t, pusher.counts, 1)
	assert.Equal(t, int64(1), pusher.counts[0])
}

func TestPushUnreadCountTracksReadState(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	userID := uuid.NewString()

	pusher := &capturePusher{}
	notifier := NewNotifier(db, pusher)

	for i := 0; i < 3; i++ {
		require.NoError(t, notifier.Notify(ctx, Event{
			UserID: userID,
			Type:   models.NotificationSystem,
			Title:  "announcement",
		}))
	}
	require.Len(t, pusher.counts, 3)
	assert.Equal(t, int64(3), pusher.counts[2])

	var first models.Notification
	require.NoError(t, db.First(&first, "user_id = ?", userID).Error)
	found, err := MarkRead(ctx, db, userID, first.ID)
	require.NoError(t, err)
	require.True(t, found)

	notifier.PushUnreadCount(ctx, userID)
	require.Len(t, pusher.counts, 4)
	assert.Equal(t, int64(2), pusher.counts[3])

	updated, err := MarkAllRead(ctx, db, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	notifier.PushUnreadCount(ctx, userID)
	require.Len(t, pusher.counts, 5)
	assert.Equal(t, int64(0), pusher.counts[4])
}

func TestNotifierSkipsSelfNotification(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	userID := uuid.NewString()

	pusher := &capturePusher{}
	notifier := NewNotifier(db, pusher)

	err := notifier.Notify(ctx, Event{
		UserID:  userID,
		ActorID: userID,
		Type:    models.NotificationLike,
		Title:   "you liked your own post",
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
	assert.Empty(t, pusher.items)
}
