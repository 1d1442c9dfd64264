package service

import (
	"context"
	"errors"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

// ErrHotelNotFound is returned when a browsed hotel does not exist.
var ErrHotelNotFound = &Error{Kind: ErrNotFound, Reason: "hotel not found"}

type HotelCatalog interface {
	ListAll(ctx context.Context) ([]model.Hotel, error)
	FindByID(ctx context.Context, id uint64) (*model.Hotel, error)
	RoomsWithOccupancy(ctx context.Context, hotelID uint64) ([]model.RoomOccupancy, error)
}

// HotelService lets eligible attendees browse hotels and room occupancy
// before booking.  The same eligibility rule as booking applies.
type HotelService struct {
	eligibility *EligibilityChecker
	catalog     HotelCatalog
}

func NewHotelService(eligibility *EligibilityChecker, catalog HotelCatalog) *HotelService {
	return &HotelService{eligibility: eligibility, catalog: catalog}
}

func (s *HotelService) List(ctx context.Context, userID uint64) ([]model.Hotel, error) {
	if err := s.eligibility.Check(ctx, userID); err != nil {
		return nil, err
	}
	return s.catalog.ListAll(ctx)
}

// Rooms returns the hotel and its rooms with current occupancy.
func (s *HotelService) Rooms(ctx context.Context, userID, hotelID uint64) (*model.Hotel, []model.RoomOccupancy, error) {
	if err := s.eligibility.Check(ctx, userID); err != nil {
		return nil, nil, err
	}
	hotel, err := s.catalog.FindByID(ctx, hotelID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrHotelNotFound
		}
		return nil, nil, err
	}
	rooms, err := s.catalog.RoomsWithOccupancy(ctx, hotelID)
	if err != nil {
		return nil, nil, err
	}
	return hotel, rooms, nil
}
