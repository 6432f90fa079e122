package handlers

import (
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/auth"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/notifications"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/storage"
)

// Handlers contains all HTTP handlers for the API. The database is the
// package-global connection in internal/database; everything else is
// injected so tests can swap in in-memory doubles.
type Handlers struct {
	auth     auth.ServiceInterface
	notifier *notifications.Notifier
	uploader storage.ImageUploader

	// Server-held secret for poll voting token derivation. Never
	// logged and never sent to clients.
	voteSecret []byte
}

// NewHandlers creates a new handlers instance
func NewHandlers(authService auth.ServiceInterface, notifier *notifications.Notifier, voteSecret []byte) *Handlers {
	return &Handlers{
		auth:       authService,
		notifier:   notifier,
		voteSecret: voteSecret,
	}
}

// SetUploader sets the image uploader for avatar and post images.
// When unset, upload endpoints return 503.
func (h *Handlers) SetUploader(uploader storage.ImageUploader) {
	h.uploader = uploader
}
