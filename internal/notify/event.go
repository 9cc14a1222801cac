package notify

import (
	"time"

	"github.com/NotAnonymousUser/Ticket-System/internal/models"
)

type Event string

const (
	TicketCreated  Event = "ticketCreated"
	TicketAssigned Event = "ticketAssigned"
	TicketResolved Event = "ticketResolved"
	TicketClosed   Event = "ticketClosed"
	NewComment     Event = "newComment"
)

// Actor is the user an event is about: the creator, assignee, resolver
// or commenter depending on the event.
type Actor struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// Notification is a snapshot taken when the event happened; later
// edits to the ticket do not change what gets sent.
type Notification struct {
	Event      Event           `json:"event"`
	Ticket     models.Ticket   `json:"ticket"`
	Actor      Actor           `json:"actor"`
	Comment    *models.Comment `json:"comment,omitempty"`
	Recipients []string        `json:"recipients"`
	At         time.Time       `json:"at"`
}
