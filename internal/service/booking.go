package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/hotel-booking/internal/logger"
	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/queue"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

const publishTimeout = 5 * time.Second

// BookingStore is the persistence surface the booking service needs.
// repository.BookingRepo satisfies it.
type BookingStore interface {
	FindByUserID(ctx context.Context, userID uint64) (*model.Booking, error)
	InTx(ctx context.Context, fn func(tx repository.BookingTx) error) error
}

// BookingService reads, creates and moves hotel bookings.
type BookingService struct {
	eligibility *EligibilityChecker
	bookings    BookingStore
	capacity    CapacityEvaluator
	events      queue.Publisher
	log         *logger.Logger
	now         func() time.Time
}

func NewBookingService(eligibility *EligibilityChecker, bookings BookingStore, events queue.Publisher, log *logger.Logger) *BookingService {
	if events == nil {
		events = queue.Nop{}
	}
	return &BookingService{
		eligibility: eligibility,
		bookings:    bookings,
		events:      events,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Current returns the user's booking with its room.
func (s *BookingService) Current(ctx context.Context, userID uint64) (*model.Booking, error) {
	if err := s.eligibility.Check(ctx, userID); err != nil {
		return nil, err
	}
	b, err := s.bookings.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

// Create books roomID for the user and returns the new booking ID.  The
// room row stays locked from the occupancy count until commit.
func (s *BookingService) Create(ctx context.Context, userID, roomID uint64) (uint64, error) {
	if err := s.eligibility.Check(ctx, userID); err != nil {
		return 0, err
	}
	if roomID == 0 {
		return 0, ErrRoomNotFound
	}

	var booking model.Booking
	err := s.bookings.InTx(ctx, func(tx repository.BookingTx) error {
		room, err := lockRoom(ctx, tx, roomID)
		if err != nil {
			return err
		}
		if _, err := tx.FindByUserID(ctx, userID); err == nil {
			return ErrAlreadyBooked
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		ok, err := s.capacity.HasVacancy(ctx, tx, *room)
		if err != nil {
			return err
		}
		if !ok {
			return ErrRoomFull
		}

		now := s.now()
		booking = model.Booking{UserID: userID, RoomID: room.ID, Room: *room, CreatedAt: now, UpdatedAt: now}
		if err := tx.Create(ctx, &booking); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrAlreadyBooked
			}
			return err
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.publish(ctx, queue.BookingEvent{
		Type:       queue.BookingCreated,
		BookingID:  booking.ID,
		UserID:     userID,
		RoomID:     booking.RoomID,
		HotelID:    booking.Room.HotelID,
		OccurredAt: booking.CreatedAt,
	})
	return booking.ID, nil
}

// Update moves the user's booking bookingID to roomID and returns the
// booking ID.  Moving to the room already held succeeds without a write.
func (s *BookingService) Update(ctx context.Context, userID, bookingID, roomID uint64) (uint64, error) {
	if err := s.eligibility.Check(ctx, userID); err != nil {
		return 0, err
	}

	var (
		event   queue.BookingEvent
		changed bool
	)
	err := s.bookings.InTx(ctx, func(tx repository.BookingTx) error {
		// The room lock is taken before any other read in the transaction so
		// the occupancy count below sees every booking committed before it.
		// A missing room is reported only after the booking checks.
		var (
			room    *model.Room
			roomErr error = ErrRoomNotFound
		)
		if roomID != 0 {
			room, roomErr = lockRoom(ctx, tx, roomID)
			if roomErr != nil && !errors.Is(roomErr, ErrRoomNotFound) {
				return roomErr
			}
		}

		current, err := tx.FindByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookingNotFound
			}
			return err
		}
		if current.ID != bookingID {
			return ErrBookingMismatch
		}
		if roomErr != nil {
			return roomErr
		}
		if current.RoomID == room.ID {
			return nil
		}
		ok, err := s.capacity.HasVacancy(ctx, tx, *room)
		if err != nil {
			return err
		}
		if !ok {
			return ErrRoomFull
		}

		now := s.now()
		if err := tx.UpdateRoom(ctx, current.ID, room.ID, now); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookingNotFound
			}
			return err
		}
		changed = true
		event = queue.BookingEvent{
			Type:           queue.BookingUpdated,
			BookingID:      current.ID,
			UserID:         userID,
			RoomID:         room.ID,
			PreviousRoomID: current.RoomID,
			HotelID:        room.HotelID,
			OccurredAt:     now,
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if changed {
		s.publish(ctx, event)
	}
	return bookingID, nil
}

func lockRoom(ctx context.Context, tx repository.BookingTx, roomID uint64) (*model.Room, error) {
	room, err := tx.LockRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

// publish runs after commit, so a broker failure cannot undo the booking.
// It is logged and otherwise ignored.
func (s *BookingService) publish(ctx context.Context, ev queue.BookingEvent) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.events.Publish(pctx, ev); err != nil {
		s.log.Warn("publish booking event failed", "type", ev.Type, "booking_id", ev.BookingID, "error", err)
	}
}
