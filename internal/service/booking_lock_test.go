package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/hotel-booking/internal/database"
	"github.com/iliyamo/hotel-booking/internal/logger"
	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

// Every write path must lock the target room before any other read in its
// transaction, otherwise a MySQL snapshot taken by an earlier plain read
// hides bookings committed while the lock was awaited.
func TestBookingService_LockRoomComesFirst(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		run     func(svc *BookingService, bookingID uint64) error
		wantErr error
		want    []string
	}{
		{
			name: "create",
			run: func(svc *BookingService, _ uint64) error {
				_, err := svc.Create(ctx, bob, roomB.ID)
				return err
			},
			want: []string{"LockRoom", "FindByUserID", "CountByRoomID", "Create"},
		},
		{
			name: "update",
			run: func(svc *BookingService, bookingID uint64) error {
				_, err := svc.Update(ctx, alice, bookingID, roomB.ID)
				return err
			},
			want: []string{"LockRoom", "FindByUserID", "CountByRoomID", "UpdateRoom"},
		},
		{
			name: "update to same room",
			run: func(svc *BookingService, bookingID uint64) error {
				_, err := svc.Update(ctx, alice, bookingID, roomA.ID)
				return err
			},
			want: []string{"LockRoom", "FindByUserID"},
		},
		{
			name: "update to missing room",
			run: func(svc *BookingService, bookingID uint64) error {
				_, err := svc.Update(ctx, alice, bookingID, 999)
				return err
			},
			wantErr: ErrRoomNotFound,
			want:    []string{"LockRoom", "FindByUserID"},
		},
		{
			name: "update with foreign booking id",
			run: func(svc *BookingService, bookingID uint64) error {
				_, err := svc.Update(ctx, alice, bookingID+100, 999)
				return err
			},
			wantErr: ErrBookingMismatch,
			want:    []string{"LockRoom", "FindByUserID"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &recordingStore{memStore: newMemStore(roomA, roomB)}
			bookingID := store.seed(alice, roomA.ID)
			svc := NewBookingService(eligibleFor(alice, bob), store, nil, logger.Discard())

			if err := tt.run(svc, bookingID); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if got := store.calls(); !slices.Equal(got, tt.want) {
				t.Fatalf("expected tx calls %v, got %v", tt.want, got)
			}
		})
	}
}

func TestBookingService_UpdateWithoutBookingReportedBeforeMissingRoom(t *testing.T) {
	store := &recordingStore{memStore: newMemStore(roomA)}
	svc := NewBookingService(eligibleFor(alice), store, nil, logger.Discard())

	if _, err := svc.Update(context.Background(), alice, 1, 999); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
}

// newSQLiteStore returns a BookingRepo over a migrated SQLite file.
func newSQLiteStore(t *testing.T) (*sql.DB, *repository.BookingRepo) {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "booking.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.Migrate(context.Background(), db, database.SQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db, repository.NewBookingRepo(db, database.SQLite)
}

func insertID(t *testing.T, db *sql.DB, q string, args ...any) uint64 {
	t.Helper()
	res, err := db.Exec(q, args...)
	if err != nil {
		t.Fatalf("exec %q: %v", q, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("last insert id: %v", err)
	}
	return uint64(id)
}

// Several moves and a fresh booking compete for the last bed of a room.
// Exactly one wins and the room never goes over capacity.
func TestBookingService_RaceForLastSlot(t *testing.T) {
	db, repo := newSQLiteStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	hotel := insertID(t, db, `INSERT INTO hotels (name) VALUES ('Lakeside')`)
	source := insertID(t, db, `INSERT INTO rooms (name, capacity, hotel_id) VALUES ('A', 10, ?)`, hotel)
	target := insertID(t, db, `INSERT INTO rooms (name, capacity, hotel_id) VALUES ('B', 2, ?)`, hotel)

	newUser := func(i int) uint64 {
		return insertID(t, db, `INSERT INTO users (email, password_hash) VALUES (?, 'x')`, fmt.Sprintf("guest%d@example.com", i))
	}
	book := func(userID, roomID uint64) uint64 {
		return insertID(t, db, `INSERT INTO bookings (user_id, room_id, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			userID, roomID, now, now)
	}

	holder := newUser(0)
	book(holder, target)

	type mover struct{ user, booking uint64 }
	movers := make([]mover, 5)
	for i := range movers {
		u := newUser(i + 1)
		movers[i] = mover{user: u, booking: book(u, source)}
	}
	newcomer := newUser(len(movers) + 1)

	users := []uint64{holder, newcomer}
	for _, m := range movers {
		users = append(users, m.user)
	}
	svc := NewBookingService(eligibleFor(users...), repo, nil, logger.Discard())

	var wg sync.WaitGroup
	errs := make(chan error, len(movers)+1)
	for _, m := range movers {
		wg.Add(1)
		go func(m mover) {
			defer wg.Done()
			_, err := svc.Update(ctx, m.user, m.booking, target)
			errs <- err
		}(m)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.Create(ctx, newcomer, target)
		errs <- err
	}()
	wg.Wait()
	close(errs)

	won := 0
	for err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrNoVacancy):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won != 1 {
		t.Fatalf("expected exactly one winner, got %d", won)
	}
	n, err := repo.CountByRoomID(ctx, target)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected room at capacity 2, got %d", n)
	}
}

func TestBookingService_ConcurrentMovesNeverOverbook(t *testing.T) {
	target := model.Room{ID: 40, Capacity: 2, HotelID: 1}
	source := model.Room{ID: 41, Capacity: 20, HotelID: 1}
	store := newMemStore(target, source)

	users := make([]uint64, 8)
	bookings := make(map[uint64]uint64, len(users))
	for i := range users {
		users[i] = uint64(200 + i)
		bookings[users[i]] = store.seed(users[i], source.ID)
	}
	svc := newTestService(store, nil, users...)

	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(1)
		go func(u uint64) {
			defer wg.Done()
			if _, err := svc.Update(context.Background(), u, bookings[u], target.ID); err != nil && !errors.Is(err, ErrNoVacancy) {
				t.Errorf("unexpected error: %v", err)
			}
		}(u)
	}
	wg.Wait()

	if n := store.occupancy(target.ID); n != target.Capacity {
		t.Fatalf("expected %d bookings in target, got %d", target.Capacity, n)
	}
}
