package model

import "time"

// Hotel groups rooms offered to attendees.  Catalog data is read-only here.
type Hotel struct {
	ID    uint64 // hotels.id
	Name  string // hotels.name
	Image string // hotels.image
}

// Room is a lodging unit.  Capacity is the maximum number of simultaneous
// occupants, i.e. bookings that may reference the room.  The json tags match
// the payload returned by GET /booking.
type Room struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	HotelID   uint64    `json:"hotelId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RoomOccupancy pairs a room with the number of bookings referencing it.
type RoomOccupancy struct {
	Room
	Booked int `json:"booked"`
}

// Vacancies returns the free slots left in the room.
func (r RoomOccupancy) Vacancies() int {
	if r.Booked >= r.Capacity {
		return 0
	}
	return r.Capacity - r.Booked
}
