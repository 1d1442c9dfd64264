// Package queue defines the booking-change events and the brokers that
// carry them.
package queue

import (
	"encoding/json"
	"time"
)

// Event types.
const (
	BookingCreated = "booking.created"
	BookingUpdated = "booking.updated"
)

// BookingEvent is published after a booking transaction commits.  It carries
// enough detail for downstream consumers to log or notify without querying
// the primary database.  PreviousRoomID is zero for booking.created.
type BookingEvent struct {
	Type           string    `json:"type"`
	BookingID      uint64    `json:"booking_id"`
	UserID         uint64    `json:"user_id"`
	RoomID         uint64    `json:"room_id"`
	PreviousRoomID uint64    `json:"previous_room_id,omitempty"`
	HotelID        uint64    `json:"hotel_id"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Key partitions events by user so one user's changes stay ordered.
func (e BookingEvent) Key() string {
	return "user-" + uitoa(e.UserID)
}

func (e BookingEvent) encode() ([]byte, error) { return json.Marshal(e) }

func decodeEvent(body []byte) (BookingEvent, error) {
	var ev BookingEvent
	err := json.Unmarshal(body, &ev)
	return ev, err
}
