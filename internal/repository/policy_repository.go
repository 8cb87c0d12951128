package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// PolicyRepository stores the triage policy singleton.
type PolicyRepository interface {
	Get(ctx context.Context) (*domain.TriagePolicy, error)
	Upsert(ctx context.Context, policy *domain.TriagePolicy) error
}

type policyRepository struct {
	pool *pgxpool.Pool
}

// NewPolicyRepository instantiates repository.
func NewPolicyRepository(pool *pgxpool.Pool) PolicyRepository {
	return &policyRepository{pool: pool}
}

func (r *policyRepository) Get(ctx context.Context) (*domain.TriagePolicy, error) {
	const query = `
        SELECT auto_close_enabled, confidence_threshold, sla_hours, updated_at
        FROM triage_policy WHERE id=TRUE`
	var policy domain.TriagePolicy
	if err := r.pool.QueryRow(ctx, query).Scan(
		&policy.AutoCloseEnabled,
		&policy.ConfidenceThreshold,
		&policy.SLAHours,
		&policy.UpdatedAt,
	); err != nil {
		return nil, mapPgError(err, "triage policy")
	}
	return &policy, nil
}

func (r *policyRepository) Upsert(ctx context.Context, policy *domain.TriagePolicy) error {
	const query = `
        INSERT INTO triage_policy (id, auto_close_enabled, confidence_threshold, sla_hours, updated_at)
        VALUES (TRUE, $1, $2, $3, NOW())
        ON CONFLICT (id) DO UPDATE SET
            auto_close_enabled=EXCLUDED.auto_close_enabled,
            confidence_threshold=EXCLUDED.confidence_threshold,
            sla_hours=EXCLUDED.sla_hours,
            updated_at=NOW()
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		policy.AutoCloseEnabled,
		policy.ConfidenceThreshold,
		policy.SLAHours,
	).Scan(&policy.UpdatedAt)
	return mapPgError(err, "triage policy")
}
