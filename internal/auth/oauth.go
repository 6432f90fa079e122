package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/database"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/models"
)

// GoogleUserInfo represents the Google userinfo response
type GoogleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// HandleGoogleCallback exchanges the authorization code and signs the user in,
// creating or linking an account as needed.
func (s *Service) HandleGoogleCallback(ctx context.Context, code string) (*AuthResponse, error) {
	userInfo, err := s.getGoogleUserInfo(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google user info: %w", err)
	}

	return s.findOrCreateGoogleUser(userInfo)
}

// findOrCreateGoogleUser implements email-based account unification:
// an existing account with the same email gets the Google identity linked
// instead of a duplicate account being created.
func (s *Service) findOrCreateGoogleUser(userInfo *GoogleUserInfo) (*AuthResponse, error) {
	// Already linked
	var user models.User
	err := database.DB.Where("google_id = ?", userInfo.Sub).First(&user).Error
	if err == nil {
		if user.IsBanned {
			return nil, ErrUserBanned
		}
		return s.generateAuthResponse(&user)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	// Same email, different sign-in method: link
	existing, err := s.FindUserByEmail(userInfo.Email)
	if err == nil {
		if existing.IsBanned {
			return nil, ErrUserBanned
		}
		existing.GoogleID = &userInfo.Sub
		if existing.AvatarURL == "" && userInfo.Picture != "" {
			existing.AvatarURL = userInfo.Picture
		}
		if err := database.DB.Save(existing).Error; err != nil {
			return nil, fmt.Errorf("failed to link Google account: %w", err)
		}
		return s.generateAuthResponse(existing)
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	// New account
	username, err := s.ensureUniqueUsername(generateUsernameFromName(userInfo.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to generate unique username: %w", err)
	}

	newUser := models.User{
		ID:          uuid.New().String(),
		Email:       userInfo.Email,
		Username:    username,
		DisplayName: userInfo.Name,
		AvatarURL:   userInfo.Picture,
		GoogleID:    &userInfo.Sub,
		Role:        models.RoleUser,
	}
	if err := database.DB.Create(&newUser).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.generateAuthResponse(&newUser)
}

// getGoogleUserInfo exchanges the code and fetches the user's profile
func (s *Service) getGoogleUserInfo(ctx context.Context, code string) (*GoogleUserInfo, error) {
	token, err := s.googleConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	client := s.googleConfig.Client(ctx, token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v3/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var googleUser GoogleUserInfo
	if err := json.Unmarshal(body, &googleUser); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}

	if googleUser.Email == "" {
		return nil, errors.New("google profile has no email")
	}

	return &googleUser, nil
}

// ensureUniqueUsername appends a counter until the username is free
func (s *Service) ensureUniqueUsername(baseUsername string) (string, error) {
	username := baseUsername
	counter := 1

	for {
		var existingUser models.User
		err := database.DB.Where("LOWER(username) = LOWER(?)", username).First(&existingUser).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return username, nil
		} else if err != nil {
			return "", fmt.Errorf("database error: %w", err)
		}

		username = fmt.Sprintf("%s%d", baseUsername, counter)
		counter++

		if counter > 999 {
			return "", errors.New("unable to generate unique username")
		}
	}
}

// generateUsernameFromName creates a username from a display name
func generateUsernameFromName(name string) string {
	username := strings.ToLower(strings.ReplaceAll(name, " ", ""))

	cleaned := ""
	for _, char := range username {
		if (char >= 'a' && char <= 'z') || (char >= '0' && char <= '9') {
			cleaned += string(char)
		}
	}

	if cleaned == "" {
		cleaned = "neighbor"
	}
	if len(cleaned) > 20 {
		cleaned = cleaned[:20]
	}

	return cleaned
}
