package service

import "errors"

// Error kinds.  Handlers map a kind to an HTTP status; match them with
// errors.Is.
var (
	ErrNotEligible = errors.New("not eligible")
	ErrNotFound    = errors.New("not found")
	ErrNoVacancy   = errors.New("no vacancy")
	ErrConflict    = errors.New("conflict")
)

// Error is a domain failure tagged with its kind.  errors.Is matches both
// the *Error value itself and its Kind.
type Error struct {
	Kind   error
	Reason string
}

func (e *Error) Error() string { return e.Reason }
func (e *Error) Unwrap() error { return e.Kind }

var (
	ErrEnrollmentNotFound = &Error{Kind: ErrNotFound, Reason: "enrollment not found"}
	ErrIneligibleTicket   = &Error{Kind: ErrNotEligible, Reason: "ticket does not include lodging or is not paid"}
	ErrBookingNotFound    = &Error{Kind: ErrNotFound, Reason: "booking not found"}
	ErrBookingMismatch    = &Error{Kind: ErrNotFound, Reason: "booking does not belong to user"}
	ErrRoomNotFound       = &Error{Kind: ErrNotFound, Reason: "room not found"}
	ErrRoomFull           = &Error{Kind: ErrNoVacancy, Reason: "room is full"}
	ErrAlreadyBooked      = &Error{Kind: ErrConflict, Reason: "user already has a booking"}
)
