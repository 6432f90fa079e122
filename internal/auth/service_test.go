package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/database"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/models"
)

const testJWTSecret = "test-jwt-secret-for-auth-tests"

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

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

	database.DB = db
	return db
}

func newTestService(t *testing.T) *Service {
	setupTestDB(t)
	return NewService([]byte(testJWTSecret), "client-id", "client-secret", "http://localhost:8080")
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Register(RegisterRequest{
		Email:       "priya@example.com",
		Username:    "priya",
		Password:    "correct-horse-battery",
		DisplayName: "Priya",
		City:        "Bengaluru",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "priya", resp.User.Username)
	assert.Equal(t, models.RoleUser, resp.User.Role)
	require.NotNil(t, resp.User.PasswordHash)
	assert.NotEqual(t, "correct-horse-battery", *resp.User.PasswordHash)

	login, err := svc.Login(LoginRequest{
		Email:    "priya@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	// Email lookup is case-insensitive
	login, err = svc.Login(LoginRequest{
		Email:    "PRIYA@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)
}

func TestRegisterDuplicates(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(RegisterRequest{
		Email: "a@example.com", Username: "alice",
		Password: "password123", DisplayName: "Alice",
	})
	require.NoError(t, err)

	_, err = svc.Register(RegisterRequest{
		Email: "A@Example.com", Username: "alice2",
		Password: "password123", DisplayName: "Alice Again",
	})
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = svc.Register(RegisterRequest{
		Email: "b@example.com", Username: "ALICE",
		Password: "password123", DisplayName: "Impostor",
	})
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestLoginFailures(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(RegisterRequest{
		Email: "bob@example.com", Username: "bob",
		Password: "password123", DisplayName: "Bob",
	})
	require.NoError(t, err)

	_, err = svc.Login(LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Login(LoginRequest{Email: "bob@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginBannedUser(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Register(RegisterRequest{
		Email: "troll@example.com", Username: "troll",
		Password: "password123", DisplayName: "Troll",
	})
	require.NoError(t, err)

	require.NoError(t, database.DB.Model(&models.User{}).
		Where("id = ?", resp.User.ID).
		Update("is_banned", true).Error)

	_, err = svc.Login(LoginRequest{Email: "troll@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrUserBanned)

	// Existing tokens stop working too
	_, err = svc.ValidateToken(resp.Token)
	assert.ErrorIs(t, err, ErrUserBanned)
}

func TestValidateToken(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Register(RegisterRequest{
		Email: "carol@example.com", Username: "carol",
		Password: "password123", DisplayName: "Carol",
	})
	require.NoError(t, err)

	user, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)

	_, err = svc.ValidateToken("not.a.token")
	assert.Error(t, err)

	// Token signed with a different secret is rejected
	other := NewService([]byte("different-secret"), "", "", "")
	otherResp, err := other.Register(RegisterRequest{
		Email: "dave@example.com", Username: "dave",
		Password: "password123", DisplayName: "Dave",
	})
	require.NoError(t, err)
	_, err = svc.ValidateToken(otherResp.Token)
	assert.Error(t, err)
}

func TestTokenCarriesRoleClaim(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Register(RegisterRequest{
		Email: "mod@example.com", Username: "mod",
		Password: "password123", DisplayName: "Mod",
	})
	require.NoError(t, err)

	token, err := jwt.Parse(resp.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, resp.User.ID, claims["user_id"])
	assert.Equal(t, "user", claims["role"])
}

func TestRegisterUpgradesGoogleOnlyAccount(t *testing.T) {
	svc := newTestService(t)

	googleID := "google-sub-123"
	existing := models.User{
		ID: "11111111-0000-0000-0000-000000000000", Email: "eve@example.com",
		Username: "eve", DisplayName: "Eve", GoogleID: &googleID,
	}
	require.NoError(t, database.DB.Create(&existing).Error)

	resp, err := svc.Register(RegisterRequest{
		Email: "eve@example.com", Username: "eve-ignored",
		Password: "password123", DisplayName: "Eve",
	})
	require.NoError(t, err)

	// Same account, now with a password set
	assert.Equal(t, existing.ID, resp.User.ID)
	require.NotNil(t, resp.User.PasswordHash)

	login, err := svc.Login(LoginRequest{Email: "eve@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, login.User.ID)
}

func TestGenerateUsernameFromName(t *testing.T) {
	assert.Equal(t, "priyasharma", generateUsernameFromName("Priya Sharma"))
	assert.Equal(t, "dj42", generateUsernameFromName("DJ 42!"))
	assert.Equal(t, "neighbor", generateUsernameFromName("!!!"))
	assert.Len(t, generateUsernameFromName("averyveryverylongdisplayname"), 20)
}

func TestEnsureUniqueUsername(t *testing.T) {
	svc := newTestService(t)

	name, err := svc.ensureUniqueUsername("sam")
	require.NoError(t, err)
	assert.Equal(t, "sam", name)

	require.NoError(t, database.DB.Create(&models.User{
		ID: "22222222-0000-0000-0000-000000000000", Email: "sam@example.com",
		Username: "sam", DisplayName: "Sam",
	}).Error)

	name, err = svc.ensureUniqueUsername("sam")
	require.NoError(t, err)
	assert.Equal(t, "sam1", name)
}
