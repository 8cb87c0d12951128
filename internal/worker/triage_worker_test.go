package worker

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/agent"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

type workerEnv struct {
	tickets     *memory.TicketRepository
	suggestions *memory.SuggestionRepository
	dispatcher  events.Dispatcher
	triage      *service.TriageService
}

func newWorkerEnv(t *testing.T) *workerEnv {
	t.Helper()
	logger := zap.NewNop()
	env := &workerEnv{
		tickets:     memory.NewTicketRepository(),
		suggestions: memory.NewSuggestionRepository(),
		dispatcher:  events.NewInMemoryDispatcher(),
	}
	env.triage = service.NewTriageService(service.TriageDependencies{
		TicketRepo:     env.tickets,
		ReplyRepo:      memory.NewReplyRepository(),
		SuggestionRepo: env.suggestions,
		PolicyRepo:     memory.NewPolicyRepository(),
		KB:             service.NewKBService(memory.NewArticleRepository()),
		Classifier:     agent.NewClassifier(config.AgentConfig{}, agent.DefaultRetryPolicy(), logger, nil),
		Drafter:        agent.NewDrafter(),
		Audit:          service.NewAuditService(memory.NewAuditEventRepository(), logger),
		Dispatcher:     env.dispatcher,
		Logger:         logger,
	})
	return env
}

func (env *workerEnv) seedTicket(t *testing.T, title, description string) *domain.Ticket {
	t.Helper()
	ticket := &domain.Ticket{
		ExternalKey: "TCK-WORK",
		CreatedBy:   "user-1",
		Title:       title,
		Description: description,
		Status:      domain.TicketStatusOpen,
	}
	if err := env.tickets.Create(context.Background(), ticket); err != nil {
		t.Fatalf("seed ticket: %v", err)
	}
	return ticket
}

func (env *workerEnv) waitForSuggestion(t *testing.T, ticketID string) *domain.Suggestion {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		suggestion, err := env.suggestions.GetByTicketID(context.Background(), ticketID)
		if err == nil {
			return suggestion
		}
		select {
		case <-deadline:
			t.Fatalf("ticket %s never triaged", ticketID)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestWorkerTriagesCreatedTickets(t *testing.T) {
	env := newWorkerEnv(t)
	w := NewTriageWorker(env.triage, config.WorkerConfig{QueueSize: 4, Workers: 2}, zap.NewNop())
	w.Start(env.dispatcher)
	defer w.Stop()

	ticket := env.seedTicket(t, "Refund", "refund my invoice please")
	if err := env.dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
	}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	suggestion := env.waitForSuggestion(t, ticket.ID)
	if suggestion.PredictedCategory != domain.CategoryBilling {
		t.Errorf("category = %q, want billing", suggestion.PredictedCategory)
	}

	updated, _ := env.tickets.GetByID(context.Background(), ticket.ID)
	if updated.Status != domain.TicketStatusWaitingHuman {
		t.Errorf("status = %q, want WAITING_HUMAN", updated.Status)
	}
}

func TestWorkerRunsInlineWhenQueueFull(t *testing.T) {
	env := newWorkerEnv(t)
	// Zero-worker pool never drains, forcing the overflow path.
	w := &TriageWorker{
		triage: env.triage,
		logger: zap.NewNop(),
		queue:  make(chan string),
	}
	ticket := env.seedTicket(t, "Error", "api error on checkout")

	if err := w.handleTicketCreated(context.Background(), events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
	}); err != nil {
		t.Fatalf("handleTicketCreated: %v", err)
	}

	if _, err := env.suggestions.GetByTicketID(context.Background(), ticket.ID); err != nil {
		t.Errorf("inline run did not produce a suggestion: %v", err)
	}
}

func TestWorkerStopWaitsForInflight(t *testing.T) {
	env := newWorkerEnv(t)
	w := NewTriageWorker(env.triage, config.WorkerConfig{QueueSize: 8, Workers: 1}, zap.NewNop())
	w.Start(env.dispatcher)

	tickets := make([]*domain.Ticket, 0, 3)
	for i := 0; i < 3; i++ {
		tickets = append(tickets, env.seedTicket(t, "Refund", "refund my order"))
	}
	for _, ticket := range tickets {
		_ = env.dispatcher.Publish(context.Background(), events.Event{
			Type:     events.EventTicketCreated,
			TicketID: ticket.ID,
		})
	}

	w.Stop()

	for _, ticket := range tickets {
		if _, err := env.suggestions.GetByTicketID(context.Background(), ticket.ID); err != nil {
			t.Errorf("ticket %s not triaged before Stop returned: %v", ticket.ID, err)
		}
	}
}
