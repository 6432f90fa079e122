package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/oauth2/google"
)

func TestGoogleOAuthConfig(t *testing.T) {
	cfg := GoogleOAuthConfig("client-id", "client-secret", "https://api.glocal.example")

	assert.Equal(t, "client-id", cfg.ClientID)
	assert.Equal(t, "client-secret", cfg.ClientSecret)
	assert.Equal(t, "https://api.glocal.example/api/v1/auth/google/callback", cfg.RedirectURL)
	assert.Equal(t, []string{"openid", "profile", "email"}, cfg.Scopes)
	assert.Equal(t, google.Endpoint, cfg.Endpoint)
}

func TestGoogleOAuthConfigDefaultBaseURL(t *testing.T) {
	cfg := GoogleOAuthConfig("id", "secret", "")

	assert.Equal(t, "http://localhost:8080/api/v1/auth/google/callback", cfg.RedirectURL)
}
