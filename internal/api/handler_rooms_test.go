package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"room-status-backend/internal/availability"
	"room-status-backend/internal/room"
	"room-status-backend/internal/snapshot"
)

func setupRoomRouter(snaps *snapshot.Cache) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(nil, snaps, nil)
	r.GET("/api/rooms", handler.GetRooms)
	r.GET("/api/rooms/:room", handler.GetRoom)
	return r
}

func putSnapshot(snaps *snapshot.Cache, id room.ID, sched availability.Schedule, now time.Time) {
	snaps.Put(snapshot.RoomSnapshot{
		Room:      id,
		Location:  id.Location(),
		Schedule:  sched,
		Status:    availability.Infer(sched, now),
		ScrapedAt: now,
	})
}

func TestGetRooms(t *testing.T) {
	now := time.Now()
	snaps := snapshot.NewCache(time.Minute)

	// DR6 is inside a booking, DR7 is free all day, the rest have no
	// snapshot at all.
	putSnapshot(snaps, room.DR6, availability.Schedule{
		{Start: now.Add(-time.Hour), End: now.Add(time.Hour), Reason: "workshop"},
	}, now)
	putSnapshot(snaps, room.DR7, availability.Schedule{}, now)

	router := setupRoomRouter(snaps)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/rooms", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp []roomStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 6)

	byRoom := make(map[string]roomStatusResponse, len(resp))
	for _, r := range resp {
		byRoom[r.Room] = r
	}

	assert.Equal(t, statusBooked, byRoom["DR6"].Status)
	require.NotNil(t, byRoom["DR6"].Until)
	assert.Equal(t, statusFree, byRoom["DR7"].Status)
	assert.Nil(t, byRoom["DR7"].Until)
	assert.Equal(t, statusUnknown, byRoom["DR8"].Status)
	assert.Nil(t, byRoom["DR8"].ObservedAt)
	assert.Equal(t, "COM2-02-12", byRoom["DR6"].Location)
}

func TestGetRoom(t *testing.T) {
	now := time.Now()
	snaps := snapshot.NewCache(time.Minute)
	putSnapshot(snaps, room.DR9, availability.Schedule{
		{Start: now.Add(-2 * time.Hour), End: now.Add(-time.Hour), Reason: "over"},
		{Start: now.Add(time.Hour), End: now.Add(2 * time.Hour), Reason: "Exam briefing."},
	}, now)

	router := setupRoomRouter(snaps)

	t.Run("detail includes the full schedule with verbatim reasons", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/rooms/dr9", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp roomDetailResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "DR9", resp.Room)
		assert.Equal(t, "COM2-04-06", resp.Location)
		assert.Equal(t, statusFree, resp.Status)
		require.NotNil(t, resp.Until, "free room with an upcoming booking must report it")
		require.Len(t, resp.Bookings, 2)
		assert.Equal(t, "over", resp.Bookings[0].Reason)
		assert.Equal(t, "Exam briefing.", resp.Bookings[1].Reason)
	})

	t.Run("unknown room code is a 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/rooms/DR5", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("known room without a snapshot is a 503", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/rooms/DR11", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
