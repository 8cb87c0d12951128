package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/spec-kit/helpdesk-service/internal/agent"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	util "github.com/spec-kit/helpdesk-service/pkg/util"
)

const (
	retrievalLimit = 3
	promptVersion  = "1.0"
)

// TriageService orchestrates the classify-retrieve-draft-decide pipeline.
// It guarantees at most one suggestion per ticket: an existing suggestion is
// returned unchanged, concurrent same-process runs are collapsed by a
// singleflight group, and racing cross-process runs are resolved by the
// suggestion store's uniqueness constraint.
type TriageService struct {
	tickets     repository.TicketRepository
	replies     repository.ReplyRepository
	suggestions repository.SuggestionRepository
	policies    repository.PolicyRepository
	kb          *KBService
	classifier  *agent.Classifier
	drafter     *agent.Drafter
	audit       *AuditService
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	metrics     *observability.Metrics
	group       singleflight.Group
}

// TriageDependencies bundles collaborators for the orchestrator.
type TriageDependencies struct {
	TicketRepo     repository.TicketRepository
	ReplyRepo      repository.ReplyRepository
	SuggestionRepo repository.SuggestionRepository
	PolicyRepo     repository.PolicyRepository
	KB             *KBService
	Classifier     *agent.Classifier
	Drafter        *agent.Drafter
	Audit          *AuditService
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	Metrics        *observability.Metrics
}

// NewTriageService constructs the orchestrator.
func NewTriageService(deps TriageDependencies) *TriageService {
	return &TriageService{
		tickets:     deps.TicketRepo,
		replies:     deps.ReplyRepo,
		suggestions: deps.SuggestionRepo,
		policies:    deps.PolicyRepo,
		kb:          deps.KB,
		classifier:  deps.Classifier,
		drafter:     deps.Drafter,
		audit:       deps.Audit,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		metrics:     deps.Metrics,
	}
}

// ExecuteWorkflowForTicket fetches the ticket and runs the workflow. Used by
// the manual triage endpoint and the async worker.
func (s *TriageService) ExecuteWorkflowForTicket(ctx context.Context, ticketID string) (*domain.Suggestion, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	return s.ExecuteWorkflow(ctx, ticket)
}

// ExecuteWorkflow runs triage for the ticket, returning the existing
// suggestion unchanged when one is already present. Safe to invoke
// concurrently for the same ticket.
func (s *TriageService) ExecuteWorkflow(ctx context.Context, ticket *domain.Ticket) (*domain.Suggestion, error) {
	result, err, _ := s.group.Do(ticket.ID, func() (any, error) {
		return s.run(ctx, ticket)
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.Suggestion), nil
}

func (s *TriageService) run(ctx context.Context, ticket *domain.Ticket) (*domain.Suggestion, error) {
	// Idempotency check: a prior outcome is returned as-is, with no new
	// audit events.
	existing, err := s.suggestions.GetByTicketID(ctx, ticket.ID)
	if err == nil {
		s.logger.Info("triage already completed",
			zap.String("ticket_id", ticket.ID),
			zap.String("suggestion_id", existing.ID))
		s.metrics.RecordTriageOutcome(observability.TriageOutcomeIdempotent)
		return existing, nil
	}
	if !util.IsNotFound(err) {
		return nil, err
	}

	traceID := s.audit.NewTraceID()
	start := time.Now()

	s.audit.Record(ctx, ticket.ID, traceID, domain.ActorSystem, domain.ActionTriageStarted, map[string]any{
		"ticket_id": ticket.ID,
	})

	text := ticket.Title + " " + ticket.Description

	classification, err := s.classifier.Classify(ctx, text)
	if err != nil {
		return s.fail(ctx, ticket, traceID, err)
	}
	s.audit.Record(ctx, ticket.ID, traceID, domain.ActorSystem, domain.ActionAgentClassified, map[string]any{
		"predicted_category": classification.Category,
		"confidence":         classification.Confidence,
	})

	articles, err := s.kb.Search(ctx, text, classification.Category, retrievalLimit)
	if err != nil {
		return s.fail(ctx, ticket, traceID, err)
	}
	articleIDs := make([]string, 0, len(articles))
	for _, article := range articles {
		articleIDs = append(articleIDs, article.ID)
	}
	s.audit.Record(ctx, ticket.ID, traceID, domain.ActorSystem, domain.ActionKBRetrieved, map[string]any{
		"articles_found": len(articles),
		"article_ids":    articleIDs,
	})

	draft := s.drafter.Draft(text, articles)
	s.audit.Record(ctx, ticket.ID, traceID, domain.ActorSystem, domain.ActionDraftGenerated, map[string]any{
		"draft_length":    len(draft.Reply),
		"citations_count": len(draft.Citations),
	})

	suggestion := &domain.Suggestion{
		TicketID:          ticket.ID,
		PredictedCategory: classification.Category,
		ArticleIDs:        draft.Citations,
		DraftReply:        draft.Reply,
		Confidence:        classification.Confidence,
		ModelInfo: domain.ModelInfo{
			Provider:      classification.Provider,
			Model:         classification.Model,
			PromptVersion: promptVersion,
			LatencyMs:     time.Since(start).Milliseconds(),
		},
	}
	if err := s.suggestions.Create(ctx, suggestion); err != nil {
		if util.IsConflict(err) {
			// A concurrent run won the race; its suggestion is the outcome.
			winner, getErr := s.suggestions.GetByTicketID(ctx, ticket.ID)
			if getErr != nil {
				return s.fail(ctx, ticket, traceID, getErr)
			}
			s.logger.Info("concurrent triage detected, returning existing suggestion",
				zap.String("ticket_id", ticket.ID))
			s.metrics.RecordTriageOutcome(observability.TriageOutcomeIdempotent)
			return winner, nil
		}
		return s.fail(ctx, ticket, traceID, err)
	}

	if err := s.decide(ctx, ticket, suggestion, traceID); err != nil {
		return s.fail(ctx, ticket, traceID, err)
	}
	return suggestion, nil
}

func (s *TriageService) decide(ctx context.Context, ticket *domain.Ticket, suggestion *domain.Suggestion, traceID string) error {
	policy, err := s.policies.Get(ctx)
	if err != nil {
		if !util.IsNotFound(err) {
			return err
		}
		fallback := domain.DefaultTriagePolicy()
		policy = &fallback
	}

	if policy.AutoCloseEnabled && suggestion.Confidence >= policy.ConfidenceThreshold {
		if err := s.suggestions.SetAutoClosed(ctx, suggestion.ID, true); err != nil {
			return err
		}
		suggestion.AutoClosed = true

		if err := s.replies.Create(ctx, &domain.Reply{
			TicketID: ticket.ID,
			Content:  suggestion.DraftReply,
			IsAgent:  true,
		}); err != nil {
			return err
		}

		ticket.Status = domain.TicketStatusResolved
		ticket.AgentSuggestionID = &suggestion.ID
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return err
		}

		s.audit.Record(ctx, ticket.ID, traceID, domain.ActorSystem, domain.ActionAutoClosed, map[string]any{
			"confidence": suggestion.Confidence,
			"threshold":  policy.ConfidenceThreshold,
		})
		s.metrics.RecordTriageOutcome(observability.TriageOutcomeAutoClosed)
	} else {
		ticket.Status = domain.TicketStatusWaitingHuman
		ticket.AgentSuggestionID = &suggestion.ID
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return err
		}

		s.audit.Record(ctx, ticket.ID, traceID, domain.ActorSystem, domain.ActionAssignedToHuman, map[string]any{
			"confidence": suggestion.Confidence,
			"threshold":  policy.ConfidenceThreshold,
		})
		s.metrics.RecordTriageOutcome(observability.TriageOutcomeAssigned)
	}

	s.publishCompleted(ctx, ticket.ID, suggestion)
	return nil
}

func (s *TriageService) fail(ctx context.Context, ticket *domain.Ticket, traceID string, err error) (*domain.Suggestion, error) {
	s.audit.Record(ctx, ticket.ID, traceID, domain.ActorSystem, domain.ActionTriageFailed, map[string]any{
		"error": err.Error(),
	})
	s.metrics.RecordTriageOutcome(observability.TriageOutcomeFailed)
	s.logger.Error("triage workflow failed",
		zap.String("ticket_id", ticket.ID),
		zap.String("trace_id", traceID),
		zap.Error(err))
	return nil, err
}

func (s *TriageService) publishCompleted(ctx context.Context, ticketID string, suggestion *domain.Suggestion) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		Type:      events.EventTriageCompleted,
		TicketID:  ticketID,
		Actor:     domain.ActorSystem,
		Timestamp: time.Now(),
		Payload: events.TriageCompletedPayload{
			SuggestionID: suggestion.ID,
			AutoClosed:   suggestion.AutoClosed,
			Confidence:   suggestion.Confidence,
		},
	})
}

// SuggestionForTicket returns the stored suggestion for a ticket.
func (s *TriageService) SuggestionForTicket(ctx context.Context, ticketID string) (*domain.Suggestion, error) {
	return s.suggestions.GetByTicketID(ctx, ticketID)
}
