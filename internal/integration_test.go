package internal

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"room-status-backend/config"
	"room-status-backend/internal/model"
	"room-status-backend/internal/room"
	"room-status-backend/internal/scraper"
	"room-status-backend/internal/snapshot"
	"room-status-backend/internal/store"
)

// TestRoomStateLifecycle simulates the lifecycle of a room's availability,
// from booked to free, and verifies the database state at each step.
func TestRoomStateLifecycle(t *testing.T) {
	// --- Test Setup ---

	// 1. Setup an in-memory SQLite database for testing.
	testDB, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to the in-memory database: %v", err)
	}
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()

	// Run database migrations.
	err = testDB.AutoMigrate(&model.Room{}, &model.RoomState{}, &model.PushSubscription{})
	require.NoError(t, err)

	// 2. Create a mock configuration.
	loc, err := time.LoadLocation("Asia/Singapore")
	require.NoError(t, err)
	mockConfig := &config.Config{}
	mockConfig.Scraper.Timezone = "Asia/Singapore"
	mockConfig.Scraper.Location = loc
	mockConfig.WorkerPool.Size = 4

	// 3. Mock calendar server. On the first cycle DR6 is booked for the
	// whole day; on the second cycle every room is empty.
	var cycle int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cycle == 0 && r.URL.Query().Get("room") == "DR6" {
			fmt.Fprint(w, `<html><table><tr><td>12:00AM - 11:59PM</td><td>Recruitment talks.</td></tr></table></html>`)
			return
		}
		fmt.Fprint(w, `<html><table><tr><td>No bookings made.</td></tr></table></html>`)
	}))
	defer server.Close()
	mockConfig.Scraper.CalendarURL = server.URL

	// 4. Instantiate the store, snapshot cache and scraper service.
	gormStore := store.NewGormStore(testDB)
	require.NoError(t, gormStore.SeedRooms(context.Background()))
	snaps := snapshot.NewCache(time.Minute)
	scraperService := scraper.NewService(mockConfig, gormStore, snaps)

	// --- Cycle 1: DR6 is booked ---
	t.Run("Cycle 1: DR6 Is Booked", func(t *testing.T) {
		scraperService.ScrapeOnce(context.Background())

		var states []model.RoomState
		require.NoError(t, testDB.Find(&states).Error)
		assert.Len(t, states, 6, "every room should have a state row")

		var dr6 model.RoomState
		require.NoError(t, testDB.First(&dr6, "room_code = ?", "DR6").Error)
		assert.True(t, dr6.Booked)
		require.NotNil(t, dr6.Until, "a booked room always carries the end of its busy run")
		assert.WithinDuration(t, time.Now(), dr6.ObservedAt, 5*time.Second)

		var dr7 model.RoomState
		require.NoError(t, testDB.First(&dr7, "room_code = ?", "DR7").Error)
		assert.False(t, dr7.Booked)
		assert.Nil(t, dr7.Until)

		snap, ok := snaps.Get(room.DR6)
		require.True(t, ok)
		require.Len(t, snap.Schedule, 1)
		assert.Equal(t, "Recruitment talks.", snap.Schedule[0].Reason)
	})

	// --- Cycle 2: DR6 becomes free ---
	t.Run("Cycle 2: DR6 Becomes Free", func(t *testing.T) {
		cycle = 1
		scraperService.ScrapeOnce(context.Background())

		var dr6 model.RoomState
		require.NoError(t, testDB.First(&dr6, "room_code = ?", "DR6").Error)
		assert.False(t, dr6.Booked, "DR6 should now read as free")
		assert.Nil(t, dr6.Until)

		snap, ok := snaps.Get(room.DR6)
		require.True(t, ok)
		assert.Empty(t, snap.Schedule)
		assert.False(t, snap.Status.Booked)
	})
}

// TestRoomCatalogueSeeding verifies the fixed room set lands in the
// database exactly once, no matter how often it is reseeded.
func TestRoomCatalogueSeeding(t *testing.T) {
	testDB, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()

	require.NoError(t, testDB.AutoMigrate(&model.Room{}))

	gormStore := store.NewGormStore(testDB)
	require.NoError(t, gormStore.SeedRooms(context.Background()))
	require.NoError(t, gormStore.SeedRooms(context.Background()))

	var count int64
	testDB.Model(&model.Room{}).Count(&count)
	assert.Equal(t, int64(6), count)

	var dr10 model.Room
	require.NoError(t, testDB.First(&dr10, "code = ?", "DR10").Error)
	assert.Equal(t, "COM2-02-24", dr10.Location)
}
