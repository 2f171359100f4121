package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"room-status-backend/config"
	"room-status-backend/internal/mw"
	"room-status-backend/internal/snapshot"
	"room-status-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, snaps *snapshot.Cache, webpushOptions *webpush.Options, srv *config.ServerConfig) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, snaps, webpushOptions)

	// Initialize middleware
	rateLimiter := mw.RateLimiter(rate.Limit(srv.RateLimitPerSec), srv.RateLimitBurst)

	cacheTTL := time.Duration(srv.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// GET /api/rooms
		api.GET("/rooms", caching, handler.GetRooms)

		// GET /api/rooms/{room}
		api.GET("/rooms/:room", caching, handler.GetRoom)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
