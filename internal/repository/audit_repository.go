package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// AuditEventRepository is the append-only event store.
type AuditEventRepository interface {
	Create(ctx context.Context, event *domain.AuditEvent) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.AuditEvent, error)
}

type auditEventRepository struct {
	pool *pgxpool.Pool
}

// NewAuditEventRepository builds repository.
func NewAuditEventRepository(pool *pgxpool.Pool) AuditEventRepository {
	return &auditEventRepository{pool: pool}
}

func (r *auditEventRepository) Create(ctx context.Context, event *domain.AuditEvent) error {
	const query = `
        INSERT INTO audit_events (ticket_id, trace_id, actor, action, meta, timestamp)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	err := r.pool.QueryRow(ctx, query,
		event.TicketID,
		event.TraceID,
		event.Actor,
		event.Action,
		event.Meta,
		event.Timestamp,
	).Scan(&event.ID)
	return mapPgError(err, "audit event")
}

func (r *auditEventRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.AuditEvent, error) {
	const query = `
        SELECT id, ticket_id, trace_id, actor, action, meta, timestamp
        FROM audit_events WHERE ticket_id=$1 ORDER BY timestamp ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditEvent
	for rows.Next() {
		var event domain.AuditEvent
		if err := rows.Scan(
			&event.ID,
			&event.TicketID,
			&event.TraceID,
			&event.Actor,
			&event.Action,
			&event.Meta,
			&event.Timestamp,
		); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}
