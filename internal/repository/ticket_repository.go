package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// TicketRepo reads tickets together with their ticket type.
type TicketRepo struct {
	db *sql.DB
}

func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// FindByEnrollmentID returns the ticket issued for an enrollment, with
// TicketType populated, or ErrNotFound when none was issued.
func (r *TicketRepo) FindByEnrollmentID(ctx context.Context, enrollmentID uint64) (*model.Ticket, error) {
	const q = `SELECT t.id, t.enrollment_id, t.ticket_type_id, t.status,
	                  tt.id, tt.name, tt.price, tt.is_remote, tt.includes_hotel
	           FROM tickets t
	           JOIN ticket_types tt ON tt.id = t.ticket_type_id
	           WHERE t.enrollment_id = ?
	           LIMIT 1`
	var t model.Ticket
	var status string
	err := r.db.QueryRowContext(ctx, q, enrollmentID).Scan(
		&t.ID, &t.EnrollmentID, &t.TicketTypeID, &status,
		&t.TicketType.ID, &t.TicketType.Name, &t.TicketType.Price, &t.TicketType.IsRemote, &t.TicketType.IncludesHotel,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find ticket: %w", err)
	}
	t.Status = model.TicketStatus(status)
	return &t, nil
}
