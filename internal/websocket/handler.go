package websocket

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/auth"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/logger"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/models"
)

// Handler handles WebSocket HTTP upgrade requests
type Handler struct {
	hub         *Hub
	authService auth.ServiceInterface
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, authService auth.ServiceInterface) *Handler {
	return &Handler{
		hub:         hub,
		authService: authService,
	}
}

// HandleWebSocket upgrades the HTTP connection. Authentication is a JWT in
// the token query param or an Authorization bearer header; browsers can't
// set headers on WebSocket requests, hence the query param.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	user, err := h.authenticateRequest(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "authentication_failed",
			"message": err.Error(),
		})
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // origin is enforced by the CORS layer in front
		CompressionMode:    websocket.CompressionContextTakeover,
	})
	if err != nil {
		logger.Log.Warn("WebSocket upgrade failed",
			logger.WithUserID(user.ID),
			zap.Error(err),
		)
		return
	}

	client := NewClient(h.hub, conn, user.ID, user.Username)
	client.RemoteAddr = c.ClientIP()

	h.hub.Register(client)

	_ = client.Send(NewMessage(MessageTypeSystem, SystemPayload{
		Event: "connected",
		Data: map[string]interface{}{
			"user_id":     user.ID,
			"server_time": time.Now().UTC().UnixMilli(),
		},
	}))

	go client.WritePump()
	client.ReadPump() // blocks until the client disconnects
}

// authenticateRequest validates the JWT and returns the current user
func (h *Handler) authenticateRequest(c *gin.Context) (*models.User, error) {
	tokenString := c.Query("token")
	if header := c.GetHeader("Authorization"); header != "" {
		tokenString = strings.TrimPrefix(header, "Bearer ")
	}

	if tokenString == "" {
		return nil, errNoToken
	}

	return h.authService.ValidateToken(tokenString)
}

var errNoToken = errors.New("no authentication token provided")

// HandleStats returns hub counters for monitoring
func (h *Handler) HandleStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"websocket": h.hub.GetStats(),
		"timestamp": time.Now().UTC(),
	})
}
