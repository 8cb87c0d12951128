package service

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// AuditService records the append-only trail. Persistence failures are
// logged and swallowed so that auditing can never break the primary
// workflow.
type AuditService struct {
	events repository.AuditEventRepository
	logger *zap.Logger
}

// NewAuditService constructs the service.
func NewAuditService(events repository.AuditEventRepository, logger *zap.Logger) *AuditService {
	return &AuditService{events: events, logger: logger}
}

// NewTraceID generates a fresh identifier grouping the events of one run.
func (s *AuditService) NewTraceID() string {
	return uuid.NewString()
}

// Record appends one event. The returned event has its id and timestamp
// populated even when persistence failed.
func (s *AuditService) Record(ctx context.Context, ticketID, traceID string, actor domain.AuditActor, action domain.AuditAction, meta map[string]any) *domain.AuditEvent {
	event := &domain.AuditEvent{
		ID:        uuid.NewString(),
		TicketID:  ticketID,
		TraceID:   traceID,
		Actor:     actor,
		Action:    action,
		Meta:      meta,
		Timestamp: time.Now(),
	}
	if err := s.events.Create(ctx, event); err != nil {
		s.logger.Warn("failed to persist audit event",
			zap.String("ticket_id", ticketID),
			zap.String("action", string(action)),
			zap.Error(err))
		return event
	}
	s.logger.Info("audit",
		zap.String("action", string(action)),
		zap.String("ticket_id", ticketID),
		zap.String("trace_id", traceID))
	return event
}

// TicketAudit returns a ticket's events ordered ascending by timestamp.
func (s *AuditService) TicketAudit(ctx context.Context, ticketID string) ([]domain.AuditEvent, error) {
	return s.events.ListByTicket(ctx, ticketID)
}

// ExportNDJSON writes the ticket's ordered audit trail as newline-delimited
// JSON, one event per line.
func (s *AuditService) ExportNDJSON(ctx context.Context, ticketID string, w io.Writer) error {
	eventList, err := s.events.ListByTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	for _, event := range eventList {
		if err := encoder.Encode(event); err != nil {
			return err
		}
	}
	return nil
}
