package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/auth"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/util"
)

// Register creates a new account with email/password
// POST /api/v1/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	resp, err := h.auth.Register(req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			util.RespondConflict(c, "email")
		case errors.Is(err, auth.ErrUsernameExists):
			util.RespondConflict(c, "username")
		default:
			util.RespondInternalError(c, "registration failed")
		}
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Login authenticates with email/password
// POST /api/v1/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	resp, err := h.auth.Login(req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, auth.ErrInvalidCredentials):
			util.RespondUnauthorized(c, "invalid email or password")
		case errors.Is(err, auth.ErrUserBanned):
			util.RespondForbidden(c, "account is banned")
		default:
			util.RespondInternalError(c, "login failed")
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GoogleLogin redirects to Google's consent screen
// GET /api/v1/auth/google
func (h *Handlers) GoogleLogin(c *gin.Context) {
	state := uuid.New().String()
	c.SetCookie("oauth_state", state, 300, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, h.auth.GetGoogleOAuthURL(state))
}

// GoogleCallback completes the OAuth flow
// GET /api/v1/auth/google/callback
func (h *Handlers) GoogleCallback(c *gin.Context) {
	state, err := c.Cookie("oauth_state")
	if err != nil || state == "" || state != c.Query("state") {
		util.RespondBadRequest(c, "invalid oauth state")
		return
	}
	c.SetCookie("oauth_state", "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		util.RespondBadRequest(c, "missing authorization code")
		return
	}

	resp, err := h.auth.HandleGoogleCallback(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, auth.ErrUserBanned) {
			util.RespondForbidden(c, "account is banned")
			return
		}
		util.RespondInternalError(c, "google sign-in failed")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// OptionalAuthMiddleware loads the user when a valid bearer token is
// present but lets anonymous requests through. Used on public read
// routes that personalize for signed-in viewers.
func (h *Handlers) OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token != "" && token != header {
			if user, err := h.auth.ValidateToken(token); err == nil {
				c.Set("user", user)
				c.Set("user_id", user.ID)
			}
		}
		c.Next()
	}
}

// AuthMiddleware validates the bearer token and loads the current user
// into the request context under "user" and "user_id".
func (h *Handlers) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_bearer_token"})
			return
		}

		user, err := h.auth.ValidateToken(token)
		if err != nil {
			if errors.Is(err, auth.ErrUserBanned) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account_banned"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}
