package model

import "time"

// User represents an account record as stored in the `users` table.
// The json tags are omitted because handlers expose their own response
// types; PasswordHash never leaves the repository and auth layers.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Session models a row in the `sessions` table.  An access token is only
// honoured while a session holding it exists.
type Session struct {
	ID        uint64    // sessions.id
	UserID    uint64    // sessions.user_id
	Token     string    // sessions.token
	CreatedAt time.Time // sessions.created_at
}
