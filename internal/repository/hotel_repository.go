package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// HotelRepo reads hotels and their rooms for browsing.  It never writes.
type HotelRepo struct {
	db *sql.DB
}

func NewHotelRepo(db *sql.DB) *HotelRepo { return &HotelRepo{db: db} }

// ListAll returns every hotel ordered by ID.
func (r *HotelRepo) ListAll(ctx context.Context) ([]model.Hotel, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, image FROM hotels ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list hotels: %w", err)
	}
	defer rows.Close()

	var out []model.Hotel
	for rows.Next() {
		var h model.Hotel
		if err := rows.Scan(&h.ID, &h.Name, &h.Image); err != nil {
			return nil, fmt.Errorf("scan hotel: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// FindByID returns the hotel or ErrNotFound.
func (r *HotelRepo) FindByID(ctx context.Context, id uint64) (*model.Hotel, error) {
	var h model.Hotel
	err := r.db.QueryRowContext(ctx, `SELECT id, name, image FROM hotels WHERE id = ?`, id).Scan(&h.ID, &h.Name, &h.Image)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find hotel: %w", err)
	}
	return &h, nil
}

// RoomsWithOccupancy lists the rooms of a hotel with their booking counts.
// Counts are a point-in-time read and may be stale by the time a client
// books.
func (r *HotelRepo) RoomsWithOccupancy(ctx context.Context, hotelID uint64) ([]model.RoomOccupancy, error) {
	const q = `SELECT r.id, r.name, r.capacity, r.hotel_id, r.created_at, r.updated_at, COUNT(b.id)
	           FROM rooms r
	           LEFT JOIN bookings b ON b.room_id = r.id
	           WHERE r.hotel_id = ?
	           GROUP BY r.id, r.name, r.capacity, r.hotel_id, r.created_at, r.updated_at
	           ORDER BY r.id`
	rows, err := r.db.QueryContext(ctx, q, hotelID)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var out []model.RoomOccupancy
	for rows.Next() {
		var ro model.RoomOccupancy
		if err := rows.Scan(&ro.ID, &ro.Name, &ro.Capacity, &ro.HotelID, &ro.CreatedAt, &ro.UpdatedAt, &ro.Booked); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		out = append(out, ro)
	}
	return out, rows.Err()
}
