package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SessionRepo persists the access tokens handed out at sign-in.  A token
// that verifies cryptographically is still rejected when no session row
// holds it.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Create stores a session for the user.
func (r *SessionRepo) Create(ctx context.Context, userID uint64, token string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (user_id, token, created_at) VALUES (?,?,?)",
		userID, token, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// UserIDByToken returns the owner of the session holding token, or
// ErrNotFound.
func (r *SessionRepo) UserIDByToken(ctx context.Context, token string) (uint64, error) {
	var userID uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id FROM sessions WHERE token=? LIMIT 1", token).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("find session: %w", err)
	}
	return userID, nil
}

// DeleteByUser removes every session of a user (sign-out everywhere).
func (r *SessionRepo) DeleteByUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE user_id=?", userID)
	return err
}
