package config

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleOAuthConfig builds the oauth2 config for the Google sign-in
// flow. apiBaseURL is the public base URL of this API; the callback
// path is fixed by the router.
func GoogleOAuthConfig(clientID, clientSecret, apiBaseURL string) *oauth2.Config {
	if apiBaseURL == "" {
		apiBaseURL = "http://localhost:8080"
	}

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  apiBaseURL + "/api/v1/auth/google/callback",
		Scopes:       []string{"openid", "profile", "email"},
		Endpoint:     google.Endpoint,
	}
}
