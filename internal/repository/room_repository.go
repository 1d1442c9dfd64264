package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/hotel-booking/internal/model"
)

const roomColumns = `id, name, capacity, hotel_id, created_at, updated_at`

// RoomRepo reads the hotel room catalog.  Capacity is treated as immutable
// for the duration of a booking decision.
type RoomRepo struct {
	db *sql.DB
}

func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// FindByID returns the room or ErrNotFound.
func (r *RoomRepo) FindByID(ctx context.Context, roomID uint64) (*model.Room, error) {
	return findRoom(ctx, r.db, roomID, "")
}

// findRoom loads a room through q, appending suffix (e.g. a locking clause)
// to the SELECT.
func findRoom(ctx context.Context, q queryer, roomID uint64, suffix string) (*model.Room, error) {
	var room model.Room
	err := q.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`+suffix, roomID).Scan(
		&room.ID, &room.Name, &room.Capacity, &room.HotelID, &room.CreatedAt, &room.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find room: %w", err)
	}
	return &room, nil
}
