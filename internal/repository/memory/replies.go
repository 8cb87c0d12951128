package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ReplyRepository is a mutex-guarded reply store.
type ReplyRepository struct {
	mu      sync.RWMutex
	replies []domain.Reply
}

// NewReplyRepository builds an empty store.
func NewReplyRepository() *ReplyRepository {
	return &ReplyRepository{}
}

func (r *ReplyRepository) Create(ctx context.Context, reply *domain.Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reply.ID == "" {
		reply.ID = uuid.NewString()
	}
	reply.CreatedAt = time.Now()
	r.replies = append(r.replies, cloneReply(*reply))
	return nil
}

func (r *ReplyRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Reply, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Reply
	for _, reply := range r.replies {
		if reply.TicketID == ticketID {
			result = append(result, cloneReply(reply))
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func cloneReply(reply domain.Reply) domain.Reply {
	if reply.AuthorID != nil {
		v := *reply.AuthorID
		reply.AuthorID = &v
	}
	return reply
}
