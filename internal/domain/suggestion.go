package domain

import "time"

// ModelInfo records which classifier produced a suggestion and how long the
// triage run took end to end.
type ModelInfo struct {
	Provider      string
	Model         string
	PromptVersion string
	LatencyMs     int64
}

// Suggestion is the persisted outcome of one triage run. At most one
// suggestion exists per ticket; the store enforces uniqueness on TicketID.
// Immutable after creation except for the AutoClosed flag set during the
// decision step.
type Suggestion struct {
	ID                string
	TicketID          string
	PredictedCategory TicketCategory
	ArticleIDs        []string
	DraftReply        string
	Confidence        float64
	AutoClosed        bool
	ModelInfo         ModelInfo
	CreatedAt         time.Time
}
