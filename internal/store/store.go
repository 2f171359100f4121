package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"room-status-backend/internal/model"
	"room-status-backend/internal/room"
	"room-status-backend/internal/snapshot"
)

// Store defines the interface for all database operations.
type Store interface {
	SeedRooms(ctx context.Context) error
	UpdateRoomStates(ctx context.Context, now time.Time, snaps []snapshot.RoomSnapshot) ([]string, error)
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying gorm handle for the API layer.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// SeedRooms upserts the fixed room catalogue. Rooms never change at
// runtime; this only reconciles the table with the compiled-in set.
func (s *gormStore) SeedRooms(ctx context.Context) error {
	rooms := make([]model.Room, 0, len(room.All()))
	for _, id := range room.All() {
		rooms = append(rooms, model.Room{Code: string(id), Location: id.Location()})
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"location", "updated_at"}),
	}).Create(&rooms).Error; err != nil {
		return fmt.Errorf("seed rooms failed: %w", err)
	}
	return nil
}

// UpdateRoomStates reconciles the latest scrape results with the stored
// per-room states and returns the codes of rooms that transitioned from
// booked to free, so subscribers can be notified. Rooms absent from snaps
// (failed scrapes) keep their previous state untouched.
func (s *gormStore) UpdateRoomStates(ctx context.Context, now time.Time, snaps []snapshot.RoomSnapshot) ([]string, error) {
	currentStates, err := s.fetchAllRoomStates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch room states: %w", err)
	}

	var becameFree []string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, snap := range snaps {
			code := string(snap.Room)
			newState := model.RoomState{
				RoomCode:   code,
				ObservedAt: now,
				Booked:     snap.Status.Booked,
				Until:      snap.Status.Until,
			}

			oldState, exists := currentStates[code]
			if !exists {
				if err := tx.Create(&newState).Error; err != nil {
					return fmt.Errorf("failed to create state for room %s: %w", code, err)
				}
				continue
			}

			if oldState.Booked == newState.Booked && sameInstant(oldState.Until, newState.Until) {
				// unchanged, skip the write
				continue
			}
			if oldState.Booked && !newState.Booked {
				becameFree = append(becameFree, code)
			}
			if err := tx.Save(&newState).Error; err != nil {
				return fmt.Errorf("failed to update state for room %s: %w", code, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return becameFree, nil
}

func (s *gormStore) fetchAllRoomStates(ctx context.Context) (map[string]model.RoomState, error) {
	var states []model.RoomState
	if err := s.db.WithContext(ctx).Find(&states).Error; err != nil {
		return nil, err
	}
	stateMap := make(map[string]model.RoomState, len(states))
	for _, st := range states {
		stateMap[st.RoomCode] = st
	}
	return stateMap, nil
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
