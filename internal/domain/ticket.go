package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen         TicketStatus = "OPEN"
	TicketStatusTriaged      TicketStatus = "TRIAGED"
	TicketStatusWaitingHuman TicketStatus = "WAITING_HUMAN"
	TicketStatusResolved     TicketStatus = "RESOLVED"
	TicketStatusClosed       TicketStatus = "CLOSED"
)

// TicketCategory enumerates ticket classification buckets. The classifier
// predicts one of these; the zero value means the ticket is unclassified.
type TicketCategory string

const (
	CategoryBilling  TicketCategory = "billing"
	CategoryTech     TicketCategory = "tech"
	CategoryShipping TicketCategory = "shipping"
	CategoryOther    TicketCategory = "other"
)

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c TicketCategory) bool {
	switch c {
	case CategoryBilling, CategoryTech, CategoryShipping, CategoryOther:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests. Tickets are never deleted;
// the triage workflow and agents only move them through statuses.
type Ticket struct {
	ID                string
	ExternalKey       string
	CreatedBy         string
	AssigneeID        *string
	AgentSuggestionID *string
	Title             string
	Description       string
	Category          TicketCategory
	Status            TicketStatus
	Replies           []Reply
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Reply is a message in a ticket thread. Agent-authored replies produced by
// the triage workflow carry IsAgent=true and no author.
type Reply struct {
	ID        string
	TicketID  string
	AuthorID  *string
	Content   string
	IsAgent   bool
	CreatedAt time.Time
}
