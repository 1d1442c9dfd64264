package service

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/queue"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

type mockEnrollments struct {
	FindByUserIDFn func(ctx context.Context, userID uint64) (*model.Enrollment, error)
}

func (m *mockEnrollments) FindByUserID(ctx context.Context, userID uint64) (*model.Enrollment, error) {
	return m.FindByUserIDFn(ctx, userID)
}

type mockTickets struct {
	FindByEnrollmentIDFn func(ctx context.Context, enrollmentID uint64) (*model.Ticket, error)
}

func (m *mockTickets) FindByEnrollmentID(ctx context.Context, enrollmentID uint64) (*model.Ticket, error) {
	return m.FindByEnrollmentIDFn(ctx, enrollmentID)
}

// eligibleFor returns a checker that accepts exactly the given users with a
// paid, on-site, hotel-inclusive ticket.
func eligibleFor(users ...uint64) *EligibilityChecker {
	ok := make(map[uint64]bool, len(users))
	for _, u := range users {
		ok[u] = true
	}
	return NewEligibilityChecker(
		&mockEnrollments{FindByUserIDFn: func(_ context.Context, userID uint64) (*model.Enrollment, error) {
			if !ok[userID] {
				return nil, repository.ErrNotFound
			}
			return &model.Enrollment{ID: userID + 1000, UserID: userID}, nil
		}},
		&mockTickets{FindByEnrollmentIDFn: func(_ context.Context, id uint64) (*model.Ticket, error) {
			return &model.Ticket{ID: id, EnrollmentID: id, Status: model.TicketPaid,
				TicketType: model.TicketType{IncludesHotel: true}}, nil
		}},
	)
}

// memStore is an in-memory BookingStore.  InTx holds a store-wide lock and
// applies changes only when fn succeeds.
type memStore struct {
	mu       sync.Mutex
	rooms    map[uint64]model.Room
	bookings map[uint64]model.Booking // by booking ID
	nextID   uint64
	countErr error
	calls    int
}

func newMemStore(rooms ...model.Room) *memStore {
	s := &memStore{rooms: map[uint64]model.Room{}, bookings: map[uint64]model.Booking{}, nextID: 1}
	for _, r := range rooms {
		s.rooms[r.ID] = r
	}
	return s
}

func (s *memStore) seed(userID, roomID uint64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.bookings[id] = model.Booking{ID: id, UserID: userID, RoomID: roomID, Room: s.rooms[roomID]}
	return id
}

func (s *memStore) occupancy(roomID uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return countRoom(s.bookings, roomID)
}

func (s *memStore) FindByUserID(_ context.Context, userID uint64) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return findUser(s.bookings, s.rooms, userID)
}

func (s *memStore) InTx(_ context.Context, fn func(tx repository.BookingTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	tx := &memTx{s: s, bookings: make(map[uint64]model.Booking, len(s.bookings)), nextID: s.nextID}
	for k, v := range s.bookings {
		tx.bookings[k] = v
	}
	if err := fn(tx); err != nil {
		return err
	}
	s.bookings = tx.bookings
	s.nextID = tx.nextID
	return nil
}

type memTx struct {
	s        *memStore
	bookings map[uint64]model.Booking
	nextID   uint64
}

func (t *memTx) LockRoom(_ context.Context, roomID uint64) (*model.Room, error) {
	r, ok := t.s.rooms[roomID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (t *memTx) FindByUserID(_ context.Context, userID uint64) (*model.Booking, error) {
	return findUser(t.bookings, t.s.rooms, userID)
}

func (t *memTx) CountByRoomID(_ context.Context, roomID uint64) (int, error) {
	if t.s.countErr != nil {
		return 0, t.s.countErr
	}
	return countRoom(t.bookings, roomID), nil
}

func (t *memTx) Create(_ context.Context, b *model.Booking) error {
	for _, existing := range t.bookings {
		if existing.UserID == b.UserID {
			return repository.ErrDuplicate
		}
	}
	b.ID = t.nextID
	t.nextID++
	t.bookings[b.ID] = *b
	return nil
}

func (t *memTx) UpdateRoom(_ context.Context, bookingID, roomID uint64, at time.Time) error {
	b, ok := t.bookings[bookingID]
	if !ok {
		return repository.ErrNotFound
	}
	b.RoomID = roomID
	b.UpdatedAt = at
	t.bookings[bookingID] = b
	return nil
}

func findUser(bookings map[uint64]model.Booking, rooms map[uint64]model.Room, userID uint64) (*model.Booking, error) {
	for _, b := range bookings {
		if b.UserID == userID {
			b.Room = rooms[b.RoomID]
			return &b, nil
		}
	}
	return nil, repository.ErrNotFound
}

func countRoom(bookings map[uint64]model.Booking, roomID uint64) int {
	n := 0
	for _, b := range bookings {
		if b.RoomID == roomID {
			n++
		}
	}
	return n
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []queue.BookingEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]queue.BookingEvent(nil), p.events...)
}

// recordingStore wraps memStore and logs the BookingTx calls made inside
// each transaction, in order.
type recordingStore struct {
	*memStore
	mu  sync.Mutex
	log []string
}

func (r *recordingStore) InTx(ctx context.Context, fn func(tx repository.BookingTx) error) error {
	return r.memStore.InTx(ctx, func(tx repository.BookingTx) error {
		return fn(&recordingTx{BookingTx: tx, r: r})
	})
}

func (r *recordingStore) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, call)
}

func (r *recordingStore) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.log...)
}

type recordingTx struct {
	repository.BookingTx
	r *recordingStore
}

func (t *recordingTx) LockRoom(ctx context.Context, roomID uint64) (*model.Room, error) {
	t.r.record("LockRoom")
	return t.BookingTx.LockRoom(ctx, roomID)
}

func (t *recordingTx) FindByUserID(ctx context.Context, userID uint64) (*model.Booking, error) {
	t.r.record("FindByUserID")
	return t.BookingTx.FindByUserID(ctx, userID)
}

func (t *recordingTx) CountByRoomID(ctx context.Context, roomID uint64) (int, error) {
	t.r.record("CountByRoomID")
	return t.BookingTx.CountByRoomID(ctx, roomID)
}

func (t *recordingTx) Create(ctx context.Context, b *model.Booking) error {
	t.r.record("Create")
	return t.BookingTx.Create(ctx, b)
}

func (t *recordingTx) UpdateRoom(ctx context.Context, bookingID, roomID uint64, at time.Time) error {
	t.r.record("UpdateRoom")
	return t.BookingTx.UpdateRoom(ctx, bookingID, roomID, at)
}
