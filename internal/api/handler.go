package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"room-status-backend/internal/snapshot"
	"room-status-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	snaps   *snapshot.Cache
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, snaps *snapshot.Cache, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:   s,
		snaps:   snaps,
		webpush: webpushOptions,
	}
}
