package model

import "time"

// Enrollment records that a user registered for the event.  It is owned by
// the enrollment subsystem and read-only here: its existence is the first
// precondition for any booking action.
type Enrollment struct {
	ID        uint64    // enrollments.id
	UserID    uint64    // enrollments.user_id (unique)
	Name      string    // enrollments.name
	CreatedAt time.Time // enrollments.created_at
	UpdatedAt time.Time // enrollments.updated_at
}
