package domain

import "time"

// TicketResponse is a free-text follow-up recorded against a ticket.
type TicketResponse struct {
	ID        string
	TicketID  string
	AuthorID  *string
	Body      string
	CreatedAt time.Time
}
