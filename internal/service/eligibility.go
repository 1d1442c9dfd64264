// Package service holds the booking rules: who may hold a room, and
// whether a room still has a free slot.
package service

import (
	"context"
	"errors"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

type EnrollmentReader interface {
	FindByUserID(ctx context.Context, userID uint64) (*model.Enrollment, error)
}

type TicketReader interface {
	FindByEnrollmentID(ctx context.Context, enrollmentID uint64) (*model.Ticket, error)
}

// EligibilityChecker decides whether a user may hold a hotel booking.
type EligibilityChecker struct {
	enrollments EnrollmentReader
	tickets     TicketReader
}

func NewEligibilityChecker(enrollments EnrollmentReader, tickets TicketReader) *EligibilityChecker {
	return &EligibilityChecker{enrollments: enrollments, tickets: tickets}
}

// Check returns nil when the user is enrolled and holds a paid, on-site
// ticket that includes hotel.  A missing enrollment is reported as
// ErrEnrollmentNotFound; every ticket problem as ErrIneligibleTicket.
func (c *EligibilityChecker) Check(ctx context.Context, userID uint64) error {
	enrollment, err := c.enrollments.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEnrollmentNotFound
		}
		return err
	}
	ticket, err := c.tickets.FindByEnrollmentID(ctx, enrollment.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrIneligibleTicket
		}
		return err
	}
	if !ticket.EntitlesLodging() {
		return ErrIneligibleTicket
	}
	return nil
}
