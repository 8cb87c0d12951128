package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// SuggestionRepository stores triage outcomes. Create must fail with a
// conflict error when a suggestion already exists for the ticket; that
// uniqueness guarantee is the workflow's concurrency-correctness mechanism.
type SuggestionRepository interface {
	Create(ctx context.Context, suggestion *domain.Suggestion) error
	GetByTicketID(ctx context.Context, ticketID string) (*domain.Suggestion, error)
	SetAutoClosed(ctx context.Context, id string, autoClosed bool) error
}

type suggestionRepository struct {
	pool *pgxpool.Pool
}

// NewSuggestionRepository instantiates repository.
func NewSuggestionRepository(pool *pgxpool.Pool) SuggestionRepository {
	return &suggestionRepository{pool: pool}
}

func (r *suggestionRepository) Create(ctx context.Context, suggestion *domain.Suggestion) error {
	const query = `
        INSERT INTO agent_suggestions (ticket_id, predicted_category, article_ids, draft_reply, confidence,
            auto_closed, model_provider, model_name, prompt_version, latency_ms)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		suggestion.TicketID,
		suggestion.PredictedCategory,
		suggestion.ArticleIDs,
		suggestion.DraftReply,
		suggestion.Confidence,
		suggestion.AutoClosed,
		suggestion.ModelInfo.Provider,
		suggestion.ModelInfo.Model,
		suggestion.ModelInfo.PromptVersion,
		suggestion.ModelInfo.LatencyMs,
	).Scan(&suggestion.ID, &suggestion.CreatedAt)
	return mapPgError(err, "suggestion")
}

func (r *suggestionRepository) GetByTicketID(ctx context.Context, ticketID string) (*domain.Suggestion, error) {
	const query = `
        SELECT id, ticket_id, predicted_category, article_ids, draft_reply, confidence,
               auto_closed, model_provider, model_name, prompt_version, latency_ms, created_at
        FROM agent_suggestions WHERE ticket_id=$1`
	var s domain.Suggestion
	if err := r.pool.QueryRow(ctx, query, ticketID).Scan(
		&s.ID,
		&s.TicketID,
		&s.PredictedCategory,
		&s.ArticleIDs,
		&s.DraftReply,
		&s.Confidence,
		&s.AutoClosed,
		&s.ModelInfo.Provider,
		&s.ModelInfo.Model,
		&s.ModelInfo.PromptVersion,
		&s.ModelInfo.LatencyMs,
		&s.CreatedAt,
	); err != nil {
		return nil, mapPgError(err, "suggestion")
	}
	return &s, nil
}

func (r *suggestionRepository) SetAutoClosed(ctx context.Context, id string, autoClosed bool) error {
	const query = `UPDATE agent_suggestions SET auto_closed=$1 WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, autoClosed, id)
	if err != nil {
		return mapPgError(err, "suggestion")
	}
	if cmd.RowsAffected() == 0 {
		return mapPgError(pgx.ErrNoRows, "suggestion")
	}
	return nil
}
