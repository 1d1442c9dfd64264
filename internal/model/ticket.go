package model

// TicketStatus is the payment state of a ticket.
type TicketStatus string

const (
	TicketReserved TicketStatus = "RESERVED" // issued but not paid
	TicketPaid     TicketStatus = "PAID"
)

// TicketType is the tier a ticket was bought under.  IsRemote marks
// attendees who will not be on site; IncludesHotel marks tiers that entitle
// the holder to lodging.
type TicketType struct {
	ID            uint64 // ticket_types.id
	Name          string // ticket_types.name
	Price         uint32 // ticket_types.price
	IsRemote      bool   // ticket_types.is_remote
	IncludesHotel bool   // ticket_types.includes_hotel
}

// Ticket belongs to exactly one enrollment and embeds its type so that
// eligibility can be decided from a single lookup.
type Ticket struct {
	ID           uint64       // tickets.id
	EnrollmentID uint64       // tickets.enrollment_id
	TicketTypeID uint64       // tickets.ticket_type_id
	Status       TicketStatus // tickets.status
	TicketType   TicketType
}

// EntitlesLodging reports whether the ticket allows its holder to book a
// hotel room: it must be paid, for on-site attendance, and include hotel.
func (t Ticket) EntitlesLodging() bool {
	return t.Status == TicketPaid && !t.TicketType.IsRemote && t.TicketType.IncludesHotel
}
