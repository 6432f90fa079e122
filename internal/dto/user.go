package dto

import (
	"time"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/models"
)

// UserResponse is the public user representation (safe for API responses)
type UserResponse struct {
	ID          string              `json:"id"`
	Username    string              `json:"username"`
	DisplayName string              `json:"display_name"`
	Bio         string              `json:"bio"`
	AvatarURL   string              `json:"avatar_url"`
	City        string              `json:"city"`
	Area        string              `json:"area,omitempty"`
	SocialLinks *models.SocialLinks `json:"social_links,omitempty"`

	IsArtist       bool   `json:"is_artist"`
	ArtistCategory string `json:"artist_category,omitempty"`
	HourlyRateMin  int64  `json:"hourly_rate_min,omitempty"`

	SubscriberCount int `json:"subscriber_count"`
	PostCount       int `json:"post_count"`

	CreatedAt time.Time `json:"created_at"`

	// Only set when the viewer is authenticated
	IsSubscribed *bool `json:"is_subscribed,omitempty"`
}

// UserDetailResponse adds private fields for a user viewing their own profile
type UserDetailResponse struct {
	UserResponse
	Email         string          `json:"email"`
	EmailVerified bool            `json:"email_verified"`
	Role          models.UserRole `json:"role"`
}

// UpdateUserRequest for profile updates; nil fields are left unchanged
type UpdateUserRequest struct {
	DisplayName    *string             `json:"display_name,omitempty" binding:"omitempty,min=1,max=50"`
	Bio            *string             `json:"bio,omitempty" binding:"omitempty,max=500"`
	City           *string             `json:"city,omitempty" binding:"omitempty,max=100"`
	Area           *string             `json:"area,omitempty" binding:"omitempty,max=100"`
	SocialLinks    *models.SocialLinks `json:"social_links,omitempty"`
	IsArtist       *bool               `json:"is_artist,omitempty"`
	ArtistCategory *string             `json:"artist_category,omitempty" binding:"omitempty,max=100"`
	HourlyRateMin  *int64              `json:"hourly_rate_min,omitempty" binding:"omitempty,min=0"`
}

// ToUserResponse converts models.User to UserResponse, excluding
// sensitive fields like email and password hash
func ToUserResponse(user *models.User) *UserResponse {
	if user == nil {
		return nil
	}

	return &UserResponse{
		ID:              user.ID,
		Username:        user.Username,
		DisplayName:     user.DisplayName,
		Bio:             user.Bio,
		AvatarURL:       user.AvatarURL,
		City:            user.City,
		Area:            user.Area,
		SocialLinks:     user.SocialLinks,
		IsArtist:        user.IsArtist,
		ArtistCategory:  user.ArtistCategory,
		HourlyRateMin:   user.HourlyRateMin,
		SubscriberCount: user.SubscriberCount,
		PostCount:       user.PostCount,
		CreatedAt:       user.CreatedAt,
	}
}

// ToUserDetailResponse converts models.User to UserDetailResponse
func ToUserDetailResponse(user *models.User) *UserDetailResponse {
	if user == nil {
		return nil
	}

	return &UserDetailResponse{
		UserResponse:  *ToUserResponse(user),
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		Role:          user.Role,
	}
}

// ToUserResponses converts a slice of users to responses
func ToUserResponses(users []*models.User) []*UserResponse {
	responses := make([]*UserResponse, len(users))
	for i, user := range users {
		responses[i] = ToUserResponse(user)
	}
	return responses
}
