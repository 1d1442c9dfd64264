package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/iliyamo/hotel-booking/internal/database"
)

// newTestDB opens a migrated SQLite database in a temp dir.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "booking.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.Migrate(context.Background(), db, database.SQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func mustExec(t *testing.T, db *sql.DB, q string, args ...any) int64 {
	t.Helper()
	res, err := db.Exec(q, args...)
	if err != nil {
		t.Fatalf("exec %q: %v", q, err)
	}
	id, _ := res.LastInsertId()
	return id
}

func seedUser(t *testing.T, db *sql.DB, email string) uint64 {
	t.Helper()
	return uint64(mustExec(t, db, `INSERT INTO users (email, password_hash) VALUES (?, 'x')`, email))
}

func seedRoom(t *testing.T, db *sql.DB, capacity int) uint64 {
	t.Helper()
	hotel := mustExec(t, db, `INSERT INTO hotels (name) VALUES ('Driven Resort')`)
	return uint64(mustExec(t, db, `INSERT INTO rooms (name, capacity, hotel_id) VALUES ('101', ?, ?)`, capacity, hotel))
}

func seedBooking(t *testing.T, db *sql.DB, userID, roomID uint64) uint64 {
	t.Helper()
	now := time.Now().UTC()
	return uint64(mustExec(t, db,
		`INSERT INTO bookings (user_id, room_id, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		userID, roomID, now, now))
}
