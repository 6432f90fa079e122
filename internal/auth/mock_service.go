package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/models"
)

// MockCall records a method call for assertion
type MockCall struct {
	Method string
	Args   []interface{}
}

// MockAuthService is a mock implementation of ServiceInterface for testing.
type MockAuthService struct {
	mu sync.Mutex

	// Call tracking
	Calls []MockCall

	// Configurable function overrides
	RegisterFunc             func(req RegisterRequest) (*AuthResponse, error)
	LoginFunc                func(req LoginRequest) (*AuthResponse, error)
	FindUserByEmailFunc      func(email string) (*models.User, error)
	ValidateTokenFunc        func(tokenString string) (*models.User, error)
	GetGoogleOAuthURLFunc    func(state string) string
	HandleGoogleCallbackFunc func(ctx context.Context, code string) (*AuthResponse, error)

	// Default error to return
	DefaultError error

	// Pre-configured users for testing, keyed by email
	Users map[string]*models.User
}

// NewMockAuthService creates a new mock auth service with sensible defaults
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{
		Calls: make([]MockCall, 0),
		Users: make(map[string]*models.User),
	}
}

func (m *MockAuthService) recordCall(method string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
}

// GetCalls returns all recorded calls (thread-safe)
func (m *MockAuthService) GetCalls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]MockCall, len(m.Calls))
	copy(result, m.Calls)
	return result
}

// Register mocks user registration
func (m *MockAuthService) Register(req RegisterRequest) (*AuthResponse, error) {
	m.recordCall("Register", req)
	if m.RegisterFunc != nil {
		return m.RegisterFunc(req)
	}
	if m.DefaultError != nil {
		return nil, m.DefaultError
	}

	user := models.User{
		ID:          uuid.New().String(),
		Email:       req.Email,
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Role:        models.RoleUser,
	}
	m.mu.Lock()
	m.Users[req.Email] = &user
	m.mu.Unlock()

	return &AuthResponse{
		Token:     "mock-token-" + user.ID,
		User:      user,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}, nil
}

// Login mocks email/password login
func (m *MockAuthService) Login(req LoginRequest) (*AuthResponse, error) {
	m.recordCall("Login", req)
	if m.LoginFunc != nil {
		return m.LoginFunc(req)
	}
	if m.DefaultError != nil {
		return nil, m.DefaultError
	}

	m.mu.Lock()
	user, ok := m.Users[req.Email]
	m.mu.Unlock()
	if !ok {
		return nil, ErrUserNotFound
	}

	return &AuthResponse{
		Token:     "mock-token-" + user.ID,
		User:      *user,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}, nil
}

// FindUserByEmail mocks user lookup
func (m *MockAuthService) FindUserByEmail(email string) (*models.User, error) {
	m.recordCall("FindUserByEmail", email)
	if m.FindUserByEmailFunc != nil {
		return m.FindUserByEmailFunc(email)
	}

	m.mu.Lock()
	user, ok := m.Users[email]
	m.mu.Unlock()
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ValidateToken mocks token validation
func (m *MockAuthService) ValidateToken(tokenString string) (*models.User, error) {
	m.recordCall("ValidateToken", tokenString)
	if m.ValidateTokenFunc != nil {
		return m.ValidateTokenFunc(tokenString)
	}
	if m.DefaultError != nil {
		return nil, m.DefaultError
	}

	// Default behavior: match by mock token format
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.Users {
		if tokenString == "mock-token-"+user.ID {
			return user, nil
		}
	}
	return nil, ErrUserNotFound
}

// GetGoogleOAuthURL mocks the OAuth URL builder
func (m *MockAuthService) GetGoogleOAuthURL(state string) string {
	m.recordCall("GetGoogleOAuthURL", state)
	if m.GetGoogleOAuthURLFunc != nil {
		return m.GetGoogleOAuthURLFunc(state)
	}
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

// HandleGoogleCallback mocks the OAuth callback exchange
func (m *MockAuthService) HandleGoogleCallback(ctx context.Context, code string) (*AuthResponse, error) {
	m.recordCall("HandleGoogleCallback", code)
	if m.HandleGoogleCallbackFunc != nil {
		return m.HandleGoogleCallbackFunc(ctx, code)
	}
	return nil, m.DefaultError
}

// Ensure MockAuthService implements ServiceInterface
var _ ServiceInterface = (*MockAuthService)(nil)
