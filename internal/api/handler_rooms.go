package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"room-status-backend/internal/availability"
	"room-status-backend/internal/room"
)

const (
	statusFree    = "free"
	statusBooked  = "booked"
	statusUnknown = "unknown"
)

// roomStatusResponse is one room's entry in the status listing.
type roomStatusResponse struct {
	Room       string     `json:"room"`
	Location   string     `json:"location"`
	Status     string     `json:"status"`
	Until      *time.Time `json:"until,omitempty"`
	ObservedAt *time.Time `json:"observedAt,omitempty"`
}

// roomDetailResponse adds the full day schedule, reasons included.
type roomDetailResponse struct {
	roomStatusResponse
	Bookings availability.Schedule `json:"bookings"`
}

// statusFor re-infers the room's status against the request-time clock, so
// a booking that ended between scrapes reads as free immediately.
func statusFor(snap availability.Schedule, now time.Time) (string, *time.Time) {
	st := availability.Infer(snap, now)
	if st.Booked {
		return statusBooked, st.Until
	}
	return statusFree, st.Until
}

// GetRooms handles GET /api/rooms: every tracked room with its current
// status. A room whose snapshot is missing or expired is reported as
// unknown rather than dropped.
func (h *Handler) GetRooms(c *gin.Context) {
	now := time.Now()
	responses := make([]roomStatusResponse, 0, len(room.All()))
	for _, id := range room.All() {
		snap, ok := h.snaps.Get(id)
		if !ok {
			responses = append(responses, roomStatusResponse{
				Room:     string(id),
				Location: id.Location(),
				Status:   statusUnknown,
			})
			continue
		}
		label, until := statusFor(snap.Schedule, now)
		observed := snap.ScrapedAt
		responses = append(responses, roomStatusResponse{
			Room:       string(id),
			Location:   id.Location(),
			Status:     label,
			Until:      until,
			ObservedAt: &observed,
		})
	}
	c.JSON(http.StatusOK, responses)
}

// GetRoom handles GET /api/rooms/:room: one room's status plus its full
// schedule for today.
func (h *Handler) GetRoom(c *gin.Context) {
	id, err := room.Parse(c.Param("room"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("%q is invalid: must be one of %s", c.Param("room"), strings.Join(room.Codes(), ", ")),
		})
		return
	}

	snap, ok := h.snaps.Get(id)
	if !ok {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "no recent data for this room"})
		return
	}

	label, until := statusFor(snap.Schedule, time.Now())
	observed := snap.ScrapedAt
	c.JSON(http.StatusOK, roomDetailResponse{
		roomStatusResponse: roomStatusResponse{
			Room:       string(id),
			Location:   id.Location(),
			Status:     label,
			Until:      until,
			ObservedAt: &observed,
		},
		Bookings: snap.Schedule,
	})
}
