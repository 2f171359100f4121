package model

import "time"

// Room is one entry of the fixed room catalogue, seeded at startup so
// subscriptions can reference rooms relationally.
type Room struct {
	Code      string    `gorm:"primaryKey;size:16" json:"code"`
	Location  string    `gorm:"size:64;not null" json:"location"`
	CreatedAt time.Time `gorm:"not null" json:"-"`
	UpdatedAt time.Time `gorm:"not null" json:"-"`
}
