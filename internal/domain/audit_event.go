package domain

import "time"

// AuditActor identifies who performed an audited action.
type AuditActor string

const (
	ActorSystem AuditActor = "system"
	ActorAgent  AuditActor = "agent"
	ActorUser   AuditActor = "user"
)

// AuditAction tags an audit event. New actions extend forward-compatibly
// through the Meta payload rather than free-form strings.
type AuditAction string

const (
	ActionTicketCreated    AuditAction = "TICKET_CREATED"
	ActionTriageStarted    AuditAction = "TRIAGE_STARTED"
	ActionAgentClassified  AuditAction = "AGENT_CLASSIFIED"
	ActionKBRetrieved      AuditAction = "KB_RETRIEVED"
	ActionDraftGenerated   AuditAction = "DRAFT_GENERATED"
	ActionAutoClosed       AuditAction = "AUTO_CLOSED"
	ActionAssignedToHuman  AuditAction = "ASSIGNED_TO_HUMAN"
	ActionTriageFailed     AuditAction = "TRIAGE_FAILED"
	ActionReplySent        AuditAction = "REPLY_SENT"
	ActionTicketAssigned   AuditAction = "TICKET_ASSIGNED"
	ActionStatusChanged    AuditAction = "STATUS_CHANGED"
)

// AuditEvent is an append-only trail entry. TraceID groups all events of one
// triage run. JSON tags define the NDJSON export shape.
type AuditEvent struct {
	ID        string         `json:"id"`
	TicketID  string         `json:"ticket_id"`
	TraceID   string         `json:"trace_id"`
	Actor     AuditActor     `json:"actor"`
	Action    AuditAction    `json:"action"`
	Meta      map[string]any `json:"meta,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}
