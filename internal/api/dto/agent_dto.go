package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TriageRequest payload.
type TriageRequest struct {
	TicketID string `json:"ticket_id"`
}

// SuggestionResponse serializes a triage outcome.
type SuggestionResponse struct {
	ID                string                `json:"id"`
	TicketID          string                `json:"ticket_id"`
	PredictedCategory domain.TicketCategory `json:"predicted_category"`
	ArticleIDs        []string              `json:"article_ids"`
	DraftReply        string                `json:"draft_reply"`
	Confidence        float64               `json:"confidence"`
	AutoClosed        bool                  `json:"auto_closed"`
	Provider          string                `json:"provider"`
	Model             string                `json:"model"`
	PromptVersion     string                `json:"prompt_version"`
	LatencyMs         int64                 `json:"latency_ms"`
	CreatedAt         time.Time             `json:"created_at"`
}

// PolicyRequest payload for triage policy updates.
type PolicyRequest struct {
	AutoCloseEnabled    *bool    `json:"auto_close_enabled"`
	ConfidenceThreshold *float64 `json:"confidence_threshold"`
	SLAHours            *int     `json:"sla_hours"`
}

// PolicyResponse serializes the triage policy.
type PolicyResponse struct {
	AutoCloseEnabled    bool      `json:"auto_close_enabled"`
	ConfidenceThreshold float64   `json:"confidence_threshold"`
	SLAHours            int       `json:"sla_hours"`
	UpdatedAt           time.Time `json:"updated_at"`
}
