package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	util "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketService coordinates ticket workflows outside of triage.
type TicketService struct {
	tickets    repository.TicketRepository
	replies    repository.ReplyRepository
	users      repository.UserRepository
	audit      *AuditService
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	ReplyRepo  repository.ReplyRepository
	UserRepo   repository.UserRepository
	Audit      *AuditService
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Category    domain.TicketCategory
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		replies:    deps.ReplyRepo,
		users:      deps.UserRepo,
		audit:      deps.Audit,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// CreateTicket creates a ticket for a user and publishes the creation event
// that triggers asynchronous triage. Ticket creation succeeds regardless of
// what later happens to the triage run.
func (s *TicketService) CreateTicket(ctx context.Context, userID string, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, util.NewValidationError("title and description required", nil)
	}
	if input.Category != "" && !domain.ValidCategory(input.Category) {
		return nil, util.NewValidationError("invalid category", map[string]any{"category": input.Category})
	}

	ticket := &domain.Ticket{
		ExternalKey: generateTicketKey(),
		CreatedBy:   userID,
		Title:       title,
		Description: description,
		Category:    input.Category,
		Status:      domain.TicketStatusOpen,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ticket.ID, s.audit.NewTraceID(), domain.ActorUser, domain.ActionTicketCreated, map[string]any{
		"title":    ticket.Title,
		"category": ticket.Category,
	})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    domain.ActorUser,
		Payload: events.TicketCreatedPayload{
			Title:     ticket.Title,
			Category:  ticket.Category,
			CreatedBy: ticket.CreatedBy,
		},
	})
	return ticket, nil
}

// GetTicket fetches a ticket with its replies, enforcing that end-users only
// see their own tickets.
func (s *TicketService) GetTicket(ctx context.Context, viewer *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !canAccessTicket(viewer, ticket) {
		return nil, util.NewForbidden("access denied")
	}
	replies, err := s.replies.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	ticket.Replies = replies
	return ticket, nil
}

// ListTickets returns tickets visible to the viewer.
func (s *TicketService) ListTickets(ctx context.Context, viewer *domain.User, statuses []domain.TicketStatus, limit, offset int) ([]domain.Ticket, error) {
	filter := repository.TicketFilter{
		Statuses: statuses,
		Limit:    limit,
		Offset:   offset,
	}
	if !viewer.Role.IsStaff() {
		userID := viewer.ID
		filter.CreatedBy = &userID
	}
	return s.tickets.List(ctx, filter)
}

// AddReply appends a reply to a ticket thread.
func (s *TicketService) AddReply(ctx context.Context, author *domain.User, ticketID, content string) (*domain.Reply, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, util.NewValidationError("content required", nil)
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !canAccessTicket(author, ticket) {
		return nil, util.NewForbidden("access denied")
	}

	authorID := author.ID
	reply := &domain.Reply{
		TicketID: ticket.ID,
		AuthorID: &authorID,
		Content:  content,
	}
	if err := s.replies.Create(ctx, reply); err != nil {
		return nil, err
	}

	actor := domain.ActorUser
	if author.Role.IsStaff() {
		actor = domain.ActorAgent
	}
	s.audit.Record(ctx, ticket.ID, s.audit.NewTraceID(), actor, domain.ActionReplySent, map[string]any{
		"reply_length": len(reply.Content),
	})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketReplied,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload: events.TicketRepliedPayload{
			ReplyID:     reply.ID,
			IsAgent:     reply.IsAgent,
			ReplyLength: len(reply.Content),
		},
	})
	return reply, nil
}

// Assign sets the ticket assignee. Staff only.
func (s *TicketService) Assign(ctx context.Context, actor *domain.User, ticketID, assigneeID string) (*domain.Ticket, error) {
	if !actor.Role.IsStaff() {
		return nil, util.NewForbidden("staff required")
	}
	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		return nil, err
	}
	if !assignee.Role.IsStaff() {
		return nil, util.NewValidationError("assignee must be staff", map[string]any{"assignee_id": assigneeID})
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	ticket.AssigneeID = &assignee.ID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ticket.ID, s.audit.NewTraceID(), domain.ActorAgent, domain.ActionTicketAssigned, map[string]any{
		"assignee_id": assignee.ID,
	})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Actor:    domain.ActorAgent,
		Payload:  events.TicketAssignedPayload{AssigneeID: assignee.ID},
	})
	return ticket, nil
}

// UpdateStatus moves a ticket through its lifecycle. Staff only.
func (s *TicketService) UpdateStatus(ctx context.Context, actor *domain.User, ticketID string, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	if !actor.Role.IsStaff() {
		return nil, util.NewForbidden("staff required")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !isValidTransition(ticket.Status, newStatus) {
		return nil, util.NewValidationError("invalid status transition", map[string]any{
			"from": ticket.Status,
			"to":   newStatus,
		})
	}

	oldStatus := ticket.Status
	ticket.Status = newStatus
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ticket.ID, s.audit.NewTraceID(), domain.ActorAgent, domain.ActionStatusChanged, map[string]any{
		"old_status": oldStatus,
		"new_status": newStatus,
	})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    domain.ActorAgent,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	})
	return ticket, nil
}

func canAccessTicket(viewer *domain.User, ticket *domain.Ticket) bool {
	if viewer == nil {
		return false
	}
	if viewer.Role.IsStaff() {
		return true
	}
	return ticket.CreatedBy == viewer.ID
}

func generateTicketKey() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:         {domain.TicketStatusTriaged, domain.TicketStatusWaitingHuman, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusTriaged:      {domain.TicketStatusWaitingHuman, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusWaitingHuman: {domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusResolved:     {domain.TicketStatusClosed, domain.TicketStatusWaitingHuman},
	domain.TicketStatusClosed:       {},
}

func isValidTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
