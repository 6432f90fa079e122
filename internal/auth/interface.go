package auth

import (
	"context"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/models"
)

// ServiceInterface defines the contract for authentication operations.
// This enables mocking for unit tests without requiring a real database.
type ServiceInterface interface {
	Register(req RegisterRequest) (*AuthResponse, error)
	Login(req LoginRequest) (*AuthResponse, error)

	FindUserByEmail(email string) (*models.User, error)
	ValidateToken(tokenString string) (*models.User, error)

	GetGoogleOAuthURL(state string) string
	HandleGoogleCallback(ctx context.Context, code string) (*AuthResponse, error)
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
