package service

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
)

type ticketEnv struct {
	tickets    *memory.TicketRepository
	replies    *memory.ReplyRepository
	users      *memory.UserRepository
	audits     *memory.AuditEventRepository
	dispatcher events.Dispatcher
	svc        *TicketService
}

func newTicketEnv(t *testing.T) *ticketEnv {
	t.Helper()
	logger := zap.NewNop()
	env := &ticketEnv{
		tickets:    memory.NewTicketRepository(),
		replies:    memory.NewReplyRepository(),
		users:      memory.NewUserRepository(),
		audits:     memory.NewAuditEventRepository(),
		dispatcher: events.NewInMemoryDispatcher(),
	}
	env.svc = NewTicketService(TicketDependencies{
		TicketRepo: env.tickets,
		ReplyRepo:  env.replies,
		UserRepo:   env.users,
		Audit:      NewAuditService(env.audits, logger),
		Dispatcher: env.dispatcher,
		Logger:     logger,
	})
	return env
}

func (env *ticketEnv) seedUser(t *testing.T, name string, role domain.UserRole) *domain.User {
	t.Helper()
	user := &domain.User{Name: name, Email: name + "@example.com", PasswordHash: "x", Role: role}
	if err := env.users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestCreateTicketPublishesCreationEvent(t *testing.T) {
	env := newTicketEnv(t)
	ctx := context.Background()

	var received []events.Event
	env.dispatcher.Subscribe(events.EventTicketCreated, func(ctx context.Context, e events.Event) error {
		received = append(received, e)
		return nil
	})

	ticket, err := env.svc.CreateTicket(ctx, "user-1", TicketCreateInput{
		Title:       "Broken checkout",
		Description: "The payment page errors out",
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if ticket.Status != domain.TicketStatusOpen {
		t.Errorf("status = %q, want OPEN", ticket.Status)
	}
	if !strings.HasPrefix(ticket.ExternalKey, "TCK-") || len(ticket.ExternalKey) != 12 {
		t.Errorf("external key = %q", ticket.ExternalKey)
	}
	if len(received) != 1 || received[0].TicketID != ticket.ID {
		t.Errorf("creation events = %+v", received)
	}

	trail, _ := env.audits.ListByTicket(ctx, ticket.ID)
	if len(trail) != 1 || trail[0].Action != domain.ActionTicketCreated {
		t.Errorf("audit trail = %+v", trail)
	}
}

func TestCreateTicketValidation(t *testing.T) {
	env := newTicketEnv(t)
	ctx := context.Background()

	if _, err := env.svc.CreateTicket(ctx, "u", TicketCreateInput{Title: " ", Description: "d"}); err == nil {
		t.Error("expected error for blank title")
	}
	if _, err := env.svc.CreateTicket(ctx, "u", TicketCreateInput{Title: "t", Description: "d", Category: "nonsense"}); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestGetTicketVisibility(t *testing.T) {
	env := newTicketEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, "owner", domain.RoleUser)
	stranger := env.seedUser(t, "stranger", domain.RoleUser)
	agent := env.seedUser(t, "agent", domain.RoleAgent)

	ticket, err := env.svc.CreateTicket(ctx, owner.ID, TicketCreateInput{Title: "t", Description: "d"})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	if _, err := env.svc.GetTicket(ctx, owner, ticket.ID); err != nil {
		t.Errorf("owner denied: %v", err)
	}
	if _, err := env.svc.GetTicket(ctx, agent, ticket.ID); err != nil {
		t.Errorf("staff denied: %v", err)
	}
	if _, err := env.svc.GetTicket(ctx, stranger, ticket.ID); err == nil {
		t.Error("stranger allowed")
	}
}

func TestListTicketsScopesEndUsers(t *testing.T) {
	env := newTicketEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", domain.RoleUser)
	bob := env.seedUser(t, "bob", domain.RoleUser)
	agent := env.seedUser(t, "triager", domain.RoleAgent)

	if _, err := env.svc.CreateTicket(ctx, alice.ID, TicketCreateInput{Title: "a", Description: "d"}); err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if _, err := env.svc.CreateTicket(ctx, bob.ID, TicketCreateInput{Title: "b", Description: "d"}); err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	mine, err := env.svc.ListTickets(ctx, alice, nil, 10, 0)
	if err != nil {
		t.Fatalf("ListTickets: %v", err)
	}
	if len(mine) != 1 || mine[0].CreatedBy != alice.ID {
		t.Errorf("alice sees %+v", mine)
	}

	all, err := env.svc.ListTickets(ctx, agent, nil, 10, 0)
	if err != nil {
		t.Fatalf("ListTickets: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("staff sees %d tickets, want 2", len(all))
	}
}

func TestAddReplyRecordsActor(t *testing.T) {
	env := newTicketEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, "owner", domain.RoleUser)
	agent := env.seedUser(t, "agent", domain.RoleAgent)

	ticket, err := env.svc.CreateTicket(ctx, owner.ID, TicketCreateInput{Title: "t", Description: "d"})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	if _, err := env.svc.AddReply(ctx, owner, ticket.ID, "any update?"); err != nil {
		t.Fatalf("owner reply: %v", err)
	}
	if _, err := env.svc.AddReply(ctx, agent, ticket.ID, "looking into it"); err != nil {
		t.Fatalf("agent reply: %v", err)
	}
	if _, err := env.svc.AddReply(ctx, owner, ticket.ID, "  "); err == nil {
		t.Error("blank reply accepted")
	}

	trail, _ := env.audits.ListByTicket(ctx, ticket.ID)
	var replyActors []domain.AuditActor
	for _, event := range trail {
		if event.Action == domain.ActionReplySent {
			replyActors = append(replyActors, event.Actor)
		}
	}
	if len(replyActors) != 2 || replyActors[0] != domain.ActorUser || replyActors[1] != domain.ActorAgent {
		t.Errorf("reply actors = %v", replyActors)
	}
}

func TestAssignRequiresStaffAssignee(t *testing.T) {
	env := newTicketEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, "owner", domain.RoleUser)
	agent := env.seedUser(t, "agent", domain.RoleAgent)

	ticket, err := env.svc.CreateTicket(ctx, owner.ID, TicketCreateInput{Title: "t", Description: "d"})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	if _, err := env.svc.Assign(ctx, owner, ticket.ID, agent.ID); err == nil {
		t.Error("end-user allowed to assign")
	}
	if _, err := env.svc.Assign(ctx, agent, ticket.ID, owner.ID); err == nil {
		t.Error("end-user accepted as assignee")
	}

	updated, err := env.svc.Assign(ctx, agent, ticket.ID, agent.ID)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if updated.AssigneeID == nil || *updated.AssigneeID != agent.ID {
		t.Errorf("assignee = %v", updated.AssigneeID)
	}
}

func TestStatusTransitions(t *testing.T) {
	env := newTicketEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, "owner", domain.RoleUser)
	agent := env.seedUser(t, "agent", domain.RoleAgent)

	ticket, err := env.svc.CreateTicket(ctx, owner.ID, TicketCreateInput{Title: "t", Description: "d"})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	if _, err := env.svc.UpdateStatus(ctx, owner, ticket.ID, domain.TicketStatusClosed); err == nil {
		t.Error("end-user allowed to change status")
	}

	if _, err := env.svc.UpdateStatus(ctx, agent, ticket.ID, domain.TicketStatusWaitingHuman); err != nil {
		t.Fatalf("OPEN -> WAITING_HUMAN: %v", err)
	}
	if _, err := env.svc.UpdateStatus(ctx, agent, ticket.ID, domain.TicketStatusResolved); err != nil {
		t.Fatalf("WAITING_HUMAN -> RESOLVED: %v", err)
	}
	if _, err := env.svc.UpdateStatus(ctx, agent, ticket.ID, domain.TicketStatusClosed); err != nil {
		t.Fatalf("RESOLVED -> CLOSED: %v", err)
	}
	if _, err := env.svc.UpdateStatus(ctx, agent, ticket.ID, domain.TicketStatusOpen); err == nil {
		t.Error("CLOSED ticket reopened")
	}
}
