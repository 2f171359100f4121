package snapshot

import (
	"time"

	"github.com/patrickmn/go-cache"

	"room-status-backend/internal/availability"
	"room-status-backend/internal/room"
)

// RoomSnapshot is the result of one scrape of one room: the day's parsed
// schedule plus the status inferred at scrape time. The API re-infers
// against the request-time clock, so the schedule is the authoritative
// part; Status is what the store layer diffs for notifications.
type RoomSnapshot struct {
	Room      room.ID
	Location  string
	Schedule  availability.Schedule
	Status    availability.Status
	ScrapedAt time.Time
}

// Cache holds the latest snapshot per room. Entries expire so a room whose
// scrapes keep failing reads as unavailable rather than serving stale data
// indefinitely.
type Cache struct {
	c *cache.Cache
}

// NewCache creates a snapshot cache whose entries live for ttl.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{c: cache.New(ttl, 2*ttl)}
}

// Put stores the latest snapshot for its room.
func (s *Cache) Put(snap RoomSnapshot) {
	s.c.SetDefault(string(snap.Room), snap)
}

// Get returns the latest snapshot for a room, if one exists and has not
// expired.
func (s *Cache) Get(id room.ID) (RoomSnapshot, bool) {
	v, ok := s.c.Get(string(id))
	if !ok {
		return RoomSnapshot{}, false
	}
	return v.(RoomSnapshot), true
}
