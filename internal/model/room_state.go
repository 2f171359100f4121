package model

import "time"

// RoomState is the latest observed availability of a room. It exists so
// booked-to-free transitions can be detected between scrape cycles; it is
// not a booking history.
type RoomState struct {
	RoomCode   string    `gorm:"primaryKey;size:16"`
	ObservedAt time.Time `gorm:"not null"`
	Booked     bool      `gorm:"not null"`
	Until      *time.Time
}
