// Package notifications implements the notification inbox: keyset
// pagination with opaque cursors, read-state tracking, and fan-out of
// new notifications to websocket subscribers.
package notifications

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Cursor pins an absolute position in the (created_at DESC, id DESC)
// total order over a user's notifications. It is only ever built from a
// row that was actually returned, so following it never skips forward.
type Cursor struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
}

// Encode serializes the cursor to a URL-safe opaque token:
// base64url over a small JSON object. Clients pass it back verbatim.
func (c Cursor) Encode() string {
	payload, err := json.Marshal(c)
	if err != nil {
		// Cursor marshals two concrete fields; this cannot fail
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(payload)
}

// DecodeCursor parses an opaque cursor token. Any defect - bad base64,
// bad JSON, unknown fields, a non-UUID id, a zero timestamp - yields
// ok=false, which callers treat as "no cursor" rather than an error.
// Stale bookmarked cursors degrade to page one instead of failing.
func DecodeCursor(token string) (Cursor, bool) {
	if token == "" {
		return Cursor{}, false
	}

	payload, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, false
	}

	var c Cursor
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Cursor{}, false
	}
	// Reject trailing garbage after the JSON object
	if dec.More() {
		return Cursor{}, false
	}

	if c.CreatedAt.IsZero() {
		return Cursor{}, false
	}
	if _, err := uuid.Parse(c.ID); err != nil {
		return Cursor{}, false
	}

	return c, true
}

// After reports whether a row at (createdAt, id) sorts strictly after
// the cursor position in the descending total order - that is, whether
// the row belongs on a page fetched with this cursor.
func (c Cursor) After(createdAt time.Time, id string) bool {
	if createdAt.Before(c.CreatedAt) {
		return true
	}
	if createdAt.Equal(c.CreatedAt) {
		return id < c.ID
	}
	return false
}
