package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// AuditEventRepository is an append-only in-memory event store.
type AuditEventRepository struct {
	mu     sync.RWMutex
	events []domain.AuditEvent
	fail   bool
}

// NewAuditEventRepository builds an empty store.
func NewAuditEventRepository() *AuditEventRepository {
	return &AuditEventRepository{}
}

// FailWrites makes subsequent Create calls fail. Used by tests to verify
// that audit failures never break the primary workflow.
func (r *AuditEventRepository) FailWrites(fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = fail
}

func (r *AuditEventRepository) Create(ctx context.Context, event *domain.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("audit store unavailable")
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	r.events = append(r.events, cloneEvent(*event))
	return nil
}

func (r *AuditEventRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.AuditEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.AuditEvent
	for _, event := range r.events {
		if event.TicketID == ticketID {
			result = append(result, cloneEvent(event))
		}
	}
	// Stable: events with equal timestamps keep append order.
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return result, nil
}

func cloneEvent(e domain.AuditEvent) domain.AuditEvent {
	if e.Meta != nil {
		meta := make(map[string]any, len(e.Meta))
		for k, v := range e.Meta {
			meta[k] = v
		}
		e.Meta = meta
	}
	return e
}
