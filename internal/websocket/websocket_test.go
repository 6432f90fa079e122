package websocket

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/logger"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/notifications"
)

func TestMain(m *testing.M) {
	_ = logger.Initialize("error", "")
	os.Exit(m.Run())
}

func TestNewHub(t *testing.T) {
	hub := NewHub()
	assert.NotNil(t, hub)
	assert.NotNil(t, hub.clients)
	assert.NotNil(t, hub.allClients)
	assert.NotNil(t, hub.register)
	assert.NotNil(t, hub.unregister)
	assert.NotNil(t, hub.broadcast)
	assert.NotNil(t, hub.unicast)
	assert.NotNil(t, hub.stats)
}

func TestMessageLimiter(t *testing.T) {
	// 5 per second with burst of 10
	rl := newMessageLimiter(5, 10)

	for i := 0; i < 10; i++ {
		assert.True(t, rl.allow(), "Request %d should be allowed", i+1)
	}

	assert.False(t, rl.allow(), "Request 11 should be denied")

	time.Sleep(300 * time.Millisecond)
	assert.True(t, rl.allow(), "Request after wait should be allowed")
}

func TestNewMessage(t *testing.T) {
	payload := map[string]string{"test": "data"}
	msg := NewMessage(MessageTypeNotification, payload)

	assert.Equal(t, MessageTypeNotification, msg.Type)
	assert.NotNil(t, msg.Payload)
	assert.False(t, msg.Timestamp.IsZero())
}

func TestNewErrorMessage(t *testing.T) {
	msg := NewErrorMessage("test_error", "Something went wrong")

	assert.Equal(t, MessageTypeError, msg.Type)

	payload, ok := msg.Payload.(ErrorPayload)
	assert.True(t, ok)
	assert.Equal(t, "test_error", payload.Code)
	assert.Equal(t, "Something went wrong", payload.Message)
}

func TestMessageParsePayload(t *testing.T) {
	msg := NewMessage(MessageTypePing, map[string]interface{}{
		"client_time": float64(1234567890),
	})

	var ping PingPayload
	err := msg.ParsePayload(&ping)
	assert.NoError(t, err)
	assert.Equal(t, int64(1234567890), ping.ClientTime)
}

func TestMessageJSONSerialization(t *testing.T) {
	msg := NewMessage(MessageTypeNotification, notifications.Item{
		ID:    "notif-123",
		Type:  "comment",
		Title: "someone commented on your post",
	})
	msg.ID = "msg-id"

	data, err := json.Marshal(msg)
	assert.NoError(t, err)

	var parsed Message
	err = json.Unmarshal(data, &parsed)
	assert.NoError(t, err)

	assert.Equal(t, MessageTypeNotification, parsed.Type)
	assert.Equal(t, "msg-id", parsed.ID)
	assert.NotNil(t, parsed.Payload)
}

func TestFlexibleTimeUnmarshal(t *testing.T) {
	var ft FlexibleTime

	// Unix milliseconds
	err := json.Unmarshal([]byte("1700000000000"), &ft)
	assert.NoError(t, err)
	assert.Equal(t, int64(1700000000000), ft.UnixMilli())

	// RFC3339
	err = json.Unmarshal([]byte(`"2026-03-14T09:26:53Z"`), &ft)
	assert.NoError(t, err)
	assert.Equal(t, 2026, ft.Year())

	// Garbage
	err = json.Unmarshal([]byte(`{"not":"a time"}`), &ft)
	assert.Error(t, err)
}

func TestHubUserTracking(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.cancel()

	assert.False(t, hub.IsUserOnline("user-1"))

	client := &Client{
		hub:    hub,
		UserID: "user-1",
		send:   make(chan []byte, 8),
	}
	hub.register <- client

	// The hub loop processes registrations asynchronously
	assert.Eventually(t, func() bool {
		return hub.IsUserOnline("user-1")
	}, time.Second, 10*time.Millisecond)

	stats := hub.GetStats()
	assert.Equal(t, int64(1), stats.ActiveConnections)

	hub.unregister <- client
	assert.Eventually(t, func() bool {
		return !hub.IsUserOnline("user-1")
	}, time.Second, 10*time.Millisecond)
}

func TestSendToUserQueuesMessage(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.cancel()

	client := &Client{
		hub:    hub,
		UserID: "user-2",
		send:   make(chan []byte, 8),
	}
	hub.register <- client
	assert.Eventually(t, func() bool {
		return hub.IsUserOnline("user-2")
	}, time.Second, 10*time.Millisecond)

	hub.SendToUser("user-2", NewMessage(MessageTypeNotificationCount, NotificationCountPayload{
		UnreadCount: 3,
	}))

	select {
	case data := <-client.send:
		var msg Message
		assert.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, MessageTypeNotificationCount, msg.Type)
	case <-time.After(time.Second):
		t.Fatal("expected a queued message for the user")
	}

	// Messages for other users don't reach this client
	hub.SendToUser("someone-else", NewMessage(MessageTypeNotification, nil))
	select {
	case <-client.send:
		t.Fatal("received a message addressed to another user")
	case <-time.After(100 * time.Millisecond):
	}
}
