package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    domain.TicketCategory `json:"category,omitempty"`
}

// CreateReplyRequest payload.
type CreateReplyRequest struct {
	Content string `json:"content"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// TicketSummary response.
type TicketSummary struct {
	ID          string                `json:"id"`
	ExternalKey string                `json:"external_key"`
	Title       string                `json:"title"`
	Category    domain.TicketCategory `json:"category,omitempty"`
	Status      domain.TicketStatus   `json:"status"`
	AssigneeID  *string               `json:"assignee_id,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info including the reply thread.
type TicketDetailResponse struct {
	ID                string                `json:"id"`
	ExternalKey       string                `json:"external_key"`
	CreatedBy         string                `json:"created_by"`
	Title             string                `json:"title"`
	Description       string                `json:"description"`
	Category          domain.TicketCategory `json:"category,omitempty"`
	Status            domain.TicketStatus   `json:"status"`
	AssigneeID        *string               `json:"assignee_id,omitempty"`
	AgentSuggestionID *string               `json:"agent_suggestion_id,omitempty"`
	Replies           []ReplyResponse       `json:"replies"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// ReplyResponse represents a thread entry.
type ReplyResponse struct {
	ID        string    `json:"id"`
	AuthorID  *string   `json:"author_id,omitempty"`
	Content   string    `json:"content"`
	IsAgent   bool      `json:"is_agent"`
	CreatedAt time.Time `json:"created_at"`
}
