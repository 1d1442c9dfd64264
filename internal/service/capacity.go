package service

import (
	"context"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// OccupancyCounter counts bookings currently referencing a room.
type OccupancyCounter interface {
	CountByRoomID(ctx context.Context, roomID uint64) (int, error)
}

// CapacityEvaluator answers whether a room can take one more occupant.
type CapacityEvaluator struct{}

// HasVacancy reports occupancy < capacity.  The answer is only stable while
// the caller holds the room lock taken by the enclosing transaction.
func (CapacityEvaluator) HasVacancy(ctx context.Context, counter OccupancyCounter, room model.Room) (bool, error) {
	n, err := counter.CountByRoomID(ctx, room.ID)
	if err != nil {
		return false, err
	}
	return n < room.Capacity, nil
}
