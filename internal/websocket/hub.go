// Package websocket provides the realtime push channel for notifications
// and live counter updates, built on github.com/coder/websocket.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/logger"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/metrics"
)

// Hub maintains the set of active clients and routes messages to them.
type Hub struct {
	// Registered clients by user ID for targeted messaging
	clients map[string]map[*Client]struct{}

	// All clients for broadcasting
	allClients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	unicast    chan *UnicastMessage

	mu sync.RWMutex

	stats *Stats

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Stats tracks WebSocket counters
type Stats struct {
	TotalConnections   atomic.Int64
	ActiveConnections  atomic.Int64
	MessagesReceived   atomic.Int64
	MessagesSent       atomic.Int64
	Errors             atomic.Int64
	ConnectionsDropped atomic.Int64
}

// UnicastMessage is a message targeted at a specific user
type UnicastMessage struct {
	UserID  string
	Message *Message
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		allClients: make(map[*Client]struct{}),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *Message, 256),
		unicast:    make(chan *UnicastMessage, 256),
		stats:      &Stats{},
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run starts the hub's main event loop
func (h *Hub) Run() {
	logger.Log.Info("WebSocket hub starting")

	for {
		select {
		case <-h.ctx.Done():
			logger.Log.Info("WebSocket hub shutting down")
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case unicast := <-h.unicast:
			h.sendToUser(unicast.UserID, unicast.Message)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.UserID] == nil {
		h.clients[client.UserID] = make(map[*Client]struct{})
	}
	h.clients[client.UserID][client] = struct{}{}
	h.allClients[client] = struct{}{}

	h.stats.TotalConnections.Add(1)
	h.stats.ActiveConnections.Add(1)
	metrics.Get().WebsocketConnections.WithLabelValues().Inc()

	logger.Log.Info("WebSocket client connected",
		logger.WithUserID(client.UserID),
		zap.Int64("active", h.stats.ActiveConnections.Load()),
	)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.allClients[client]; !ok {
		return
	}
	delete(h.allClients, client)

	if clients, ok := h.clients[client.UserID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clients, client.UserID)
		}
	}

	close(client.send)
	h.stats.ActiveConnections.Add(-1)
	metrics.Get().WebsocketConnections.WithLabelValues().Dec()

	logger.Log.Info("WebSocket client disconnected",
		logger.WithUserID(client.UserID),
		zap.Int64("active", h.stats.ActiveConnections.Load()),
	)
}

func (h *Hub) broadcastMessage(message *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, err := json.Marshal(message)
	if err != nil {
		logger.ErrorWithFields("Failed to marshal broadcast message", err)
		return
	}

	for client := range h.allClients {
		h.trySend(client, data)
	}
}

func (h *Hub) sendToUser(userID string, message *Message) {
	h.mu.RLock()
	clients, ok := h.clients[userID]
	h.mu.RUnlock()

	if !ok || len(clients) == 0 {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		logger.ErrorWithFields("Failed to marshal unicast message", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range clients {
		h.trySend(client, data)
	}
}

// trySend queues data for a client, dropping the connection when its
// buffer is full rather than blocking the hub loop.
func (h *Hub) trySend(client *Client, data []byte) {
	select {
	case client.send <- data:
		h.stats.MessagesSent.Add(1)
	default:
		h.stats.ConnectionsDropped.Add(1)
		go func(c *Client) {
			h.unregister <- c
		}(client)
	}
}

// Broadcast sends a message to all connected clients
func (h *Hub) Broadcast(message *Message) {
	select {
	case h.broadcast <- message:
	case <-h.ctx.Done():
	}
}

// SendToUser sends a message to all of a user's connections
func (h *Hub) SendToUser(userID string, message *Message) {
	select {
	case h.unicast <- &UnicastMessage{UserID: userID, Message: message}:
	case <-h.ctx.Done():
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// IsUserOnline checks if a user has any active connections
func (h *Hub) IsUserOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients, ok := h.clients[userID]
	return ok && len(clients) > 0
}

// GetStats returns a point-in-time snapshot of hub counters
func (h *Hub) GetStats() StatsSnapshot {
	return StatsSnapshot{
		TotalConnections:   h.stats.TotalConnections.Load(),
		ActiveConnections:  h.stats.ActiveConnections.Load(),
		MessagesReceived:   h.stats.MessagesReceived.Load(),
		MessagesSent:       h.stats.MessagesSent.Load(),
		Errors:             h.stats.Errors.Load(),
		ConnectionsDropped: h.stats.ConnectionsDropped.Load(),
	}
}

// StatsSnapshot is a point-in-time snapshot of hub counters
type StatsSnapshot struct {
	TotalConnections   int64 `json:"total_connections"`
	ActiveConnections  int64 `json:"active_connections"`
	MessagesReceived   int64 `json:"messages_received"`
	MessagesSent       int64 `json:"messages_sent"`
	Errors             int64 `json:"errors"`
	ConnectionsDropped int64 `json:"connections_dropped"`
}

// Shutdown gracefully shuts down the hub
func (h *Hub) Shutdown(ctx context.Context) error {
	h.cancel()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Log.Info("WebSocket hub shutdown complete")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout: %w", ctx.Err())
	}
}

// closeAll closes every client connection during shutdown
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	shutdownMsg := NewMessage(MessageTypeSystem, SystemPayload{Event: "server_shutdown"})
	data, _ := json.Marshal(shutdownMsg)

	for client := range h.allClients {
		select {
		case client.send <- data:
		default:
		}
		close(client.send)
	}

	h.clients = make(map[string]map[*Client]struct{})
	h.allClients = make(map[*Client]struct{})
}
