package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketReplied       EventType = "ticket_replied"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTriageCompleted     EventType = "triage_completed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string            `json:"id"`
	Type      EventType         `json:"type"`
	TicketID  string            `json:"ticket_id"`
	Actor     domain.AuditActor `json:"actor"`
	Timestamp time.Time         `json:"timestamp"`
	Payload   interface{}       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title     string                `json:"title"`
	Category  domain.TicketCategory `json:"category,omitempty"`
	CreatedBy string                `json:"created_by"`
}

// TicketRepliedPayload payload.
type TicketRepliedPayload struct {
	ReplyID     string `json:"reply_id"`
	IsAgent     bool   `json:"is_agent"`
	ReplyLength int    `json:"reply_length"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeID string `json:"assignee_id"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TriageCompletedPayload payload.
type TriageCompletedPayload struct {
	SuggestionID string  `json:"suggestion_id"`
	AutoClosed   bool    `json:"auto_closed"`
	Confidence   float64 `json:"confidence"`
}
