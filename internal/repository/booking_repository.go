package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/hotel-booking/internal/database"
	"github.com/iliyamo/hotel-booking/internal/model"
)

// queryer is satisfied by both *sql.DB and *sql.Tx so that read queries
// can run inside or outside a transaction.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// BookingTx is the set of booking operations available inside a
// transaction opened by BookingRepo.InTx.  LockRoom must be called before
// counting occupancy so that concurrent writers for the same room are
// serialized until commit.
type BookingTx interface {
	LockRoom(ctx context.Context, roomID uint64) (*model.Room, error)
	FindByUserID(ctx context.Context, userID uint64) (*model.Booking, error)
	CountByRoomID(ctx context.Context, roomID uint64) (int, error)
	Create(ctx context.Context, b *model.Booking) error
	UpdateRoom(ctx context.Context, bookingID, roomID uint64, at time.Time) error
}

// BookingRepo provides access to the bookings table.  Every booking row
// references one room and belongs to exactly one user.
type BookingRepo struct {
	db         *sql.DB
	lockClause string
	txOpts     *sql.TxOptions
}

// NewBookingRepo returns a BookingRepo bound to db.  The dialect selects the
// row-locking clause: MySQL locks the room row with FOR UPDATE, SQLite
// relies on its single-writer connection pool.  MySQL transactions run at
// READ COMMITTED so reads after the room lock see the latest commits rather
// than a snapshot taken earlier in the transaction.
func NewBookingRepo(db *sql.DB, dialect database.Dialect) *BookingRepo {
	r := &BookingRepo{db: db}
	if dialect == database.MySQL {
		r.lockClause = " FOR UPDATE"
		r.txOpts = &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	}
	return r
}

// FindByUserID returns the user's booking with its Room populated, or
// ErrNotFound when the user has none.
func (r *BookingRepo) FindByUserID(ctx context.Context, userID uint64) (*model.Booking, error) {
	return findBookingByUser(ctx, r.db, userID)
}

// CountByRoomID returns the current occupancy of a room.  Outside of a
// transaction this is a point-in-time read with no locking guarantee.
func (r *BookingRepo) CountByRoomID(ctx context.Context, roomID uint64) (int, error) {
	return countByRoom(ctx, r.db, roomID)
}

// InTx runs fn inside a database transaction.  The transaction commits
// when fn returns nil and rolls back otherwise; fn's error is returned
// unchanged so callers can match domain errors with errors.Is.
func (r *BookingRepo) InTx(ctx context.Context, fn func(tx BookingTx) error) error {
	tx, err := r.db.BeginTx(ctx, r.txOpts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&bookingTx{tx: tx, lockClause: r.lockClause}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}

type bookingTx struct {
	tx         *sql.Tx
	lockClause string
}

func (t *bookingTx) LockRoom(ctx context.Context, roomID uint64) (*model.Room, error) {
	return findRoom(ctx, t.tx, roomID, t.lockClause)
}

func (t *bookingTx) FindByUserID(ctx context.Context, userID uint64) (*model.Booking, error) {
	return findBookingByUser(ctx, t.tx, userID)
}

func (t *bookingTx) CountByRoomID(ctx context.Context, roomID uint64) (int, error) {
	return countByRoom(ctx, t.tx, roomID)
}

// Create inserts b and populates its ID.  A second booking for the same
// user violates bookings.user_id uniqueness and yields ErrDuplicate.
func (t *bookingTx) Create(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings (user_id, room_id, created_at, updated_at) VALUES (?, ?, ?, ?)`
	res, err := t.tx.ExecContext(ctx, q, b.UserID, b.RoomID, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	b.ID = uint64(id)
	return nil
}

// UpdateRoom points an existing booking at another room.
func (t *bookingTx) UpdateRoom(ctx context.Context, bookingID, roomID uint64, at time.Time) error {
	const q = `UPDATE bookings SET room_id = ?, updated_at = ? WHERE id = ?`
	res, err := t.tx.ExecContext(ctx, q, roomID, at, bookingID)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func findBookingByUser(ctx context.Context, q queryer, userID uint64) (*model.Booking, error) {
	const sel = `SELECT b.id, b.user_id, b.room_id, b.created_at, b.updated_at,
	                    r.id, r.name, r.capacity, r.hotel_id, r.created_at, r.updated_at
	             FROM bookings b
	             JOIN rooms r ON r.id = b.room_id
	             WHERE b.user_id = ?
	             LIMIT 1`
	var b model.Booking
	err := q.QueryRowContext(ctx, sel, userID).Scan(
		&b.ID, &b.UserID, &b.RoomID, &b.CreatedAt, &b.UpdatedAt,
		&b.Room.ID, &b.Room.Name, &b.Room.Capacity, &b.Room.HotelID, &b.Room.CreatedAt, &b.Room.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return &b, nil
}

func countByRoom(ctx context.Context, q queryer, roomID uint64) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE room_id = ?`, roomID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return n, nil
}
