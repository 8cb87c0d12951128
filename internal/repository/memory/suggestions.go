package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	util "github.com/spec-kit/helpdesk-service/pkg/util"
)

// SuggestionRepository enforces the one-suggestion-per-ticket invariant the
// way the postgres unique index does: a second Create for the same ticket
// fails with a conflict error.
type SuggestionRepository struct {
	mu       sync.Mutex
	byTicket map[string]domain.Suggestion
	byID     map[string]string
}

// NewSuggestionRepository builds an empty store.
func NewSuggestionRepository() *SuggestionRepository {
	return &SuggestionRepository{
		byTicket: make(map[string]domain.Suggestion),
		byID:     make(map[string]string),
	}
}

func (r *SuggestionRepository) Create(ctx context.Context, suggestion *domain.Suggestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byTicket[suggestion.TicketID]; ok {
		return util.NewConflict("suggestion already exists", map[string]any{
			"ticket_id": suggestion.TicketID,
		})
	}
	if suggestion.ID == "" {
		suggestion.ID = uuid.NewString()
	}
	suggestion.CreatedAt = time.Now()
	r.byTicket[suggestion.TicketID] = cloneSuggestion(*suggestion)
	r.byID[suggestion.ID] = suggestion.TicketID
	return nil
}

func (r *SuggestionRepository) GetByTicketID(ctx context.Context, ticketID string) (*domain.Suggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	suggestion, ok := r.byTicket[ticketID]
	if !ok {
		return nil, util.NewNotFound("suggestion", nil)
	}
	copied := cloneSuggestion(suggestion)
	return &copied, nil
}

func (r *SuggestionRepository) SetAutoClosed(ctx context.Context, id string, autoClosed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticketID, ok := r.byID[id]
	if !ok {
		return util.NewNotFound("suggestion", nil)
	}
	suggestion := r.byTicket[ticketID]
	suggestion.AutoClosed = autoClosed
	r.byTicket[ticketID] = suggestion
	return nil
}

func cloneSuggestion(s domain.Suggestion) domain.Suggestion {
	s.ArticleIDs = append([]string(nil), s.ArticleIDs...)
	return s
}
