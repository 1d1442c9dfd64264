package repository

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/hotel-booking/internal/utils"
)

func TestUserRepo_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	id, err := repo.Create(ctx, " Alice@Example.com ", "secret123", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	u, err := repo.GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if u.ID != id || u.Email != "alice@example.com" {
		t.Fatalf("unexpected user %+v", u)
	}
	if !utils.VerifyPassword(u.PasswordHash, "secret123") {
		t.Fatal("stored hash does not verify")
	}

	if _, err := repo.Create(ctx, "alice@example.com", "other", bcrypt.MinCost); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
	if _, err := repo.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepo(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepo(db)
	ctx := context.Background()
	user := seedUser(t, db, "a@example.com")

	if _, err := repo.UserIDByToken(ctx, "tok"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Create(ctx, user, "tok"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := repo.UserIDByToken(ctx, "tok")
	if err != nil || got != user {
		t.Fatalf("expected user %d, got %d (%v)", user, got, err)
	}
	if err := repo.DeleteByUser(ctx, user); err != nil {
		t.Fatalf("DeleteByUser: %v", err)
	}
	if _, err := repo.UserIDByToken(ctx, "tok"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestEligibilityReads(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "a@example.com")

	enrollments := NewEnrollmentRepo(db)
	tickets := NewTicketRepo(db)

	if _, err := enrollments.FindByUserID(ctx, user); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	enr := mustExec(t, db, `INSERT INTO enrollments (user_id, name) VALUES (?, 'Alice')`, user)
	e, err := enrollments.FindByUserID(ctx, user)
	if err != nil || e.ID != uint64(enr) {
		t.Fatalf("unexpected enrollment %+v (%v)", e, err)
	}

	if _, err := tickets.FindByEnrollmentID(ctx, e.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	tt := mustExec(t, db, `INSERT INTO ticket_types (name, price, is_remote, includes_hotel) VALUES ('Presencial + Hotel', 600, 0, 1)`)
	mustExec(t, db, `INSERT INTO tickets (enrollment_id, ticket_type_id, status) VALUES (?, ?, 'PAID')`, e.ID, tt)

	tk, err := tickets.FindByEnrollmentID(ctx, e.ID)
	if err != nil {
		t.Fatalf("FindByEnrollmentID: %v", err)
	}
	if !tk.EntitlesLodging() || tk.TicketType.Price != 600 {
		t.Fatalf("unexpected ticket %+v", tk)
	}

	rooms := NewRoomRepo(db)
	if _, err := rooms.FindByID(ctx, 12345); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
