package model

import "time"

// Booking is a user's claim on one room.  A user holds at most one booking
// (bookings.user_id is unique) and bookings are never deleted; changing
// rooms rewrites RoomID in place.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the booking.
//  RoomID    – room the booking occupies a slot in.
//  Room      – the referenced room, populated by reads that join rooms.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last room change.
type Booking struct {
	ID        uint64    // bookings.id
	UserID    uint64    // bookings.user_id
	RoomID    uint64    // bookings.room_id
	Room      Room      // rooms.* joined on room_id
	CreatedAt time.Time // bookings.created_at
	UpdatedAt time.Time // bookings.updated_at
}
