package service

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	util "github.com/spec-kit/helpdesk-service/pkg/util"
)

// ConfigService manages the triage policy singleton for the administrative
// surface. The orchestrator reads the repository directly.
type ConfigService struct {
	policies repository.PolicyRepository
}

// NewConfigService constructs the service.
func NewConfigService(policies repository.PolicyRepository) *ConfigService {
	return &ConfigService{policies: policies}
}

// GetPolicy returns the stored policy, or the conservative default when none
// has been stored yet.
func (s *ConfigService) GetPolicy(ctx context.Context) (*domain.TriagePolicy, error) {
	policy, err := s.policies.Get(ctx)
	if err != nil {
		if util.IsNotFound(err) {
			fallback := domain.DefaultTriagePolicy()
			return &fallback, nil
		}
		return nil, err
	}
	return policy, nil
}

// UpdatePolicy validates and stores the policy.
func (s *ConfigService) UpdatePolicy(ctx context.Context, policy *domain.TriagePolicy) error {
	if policy.ConfidenceThreshold < 0 || policy.ConfidenceThreshold > 1 {
		return util.NewValidationError("confidence_threshold must be within [0,1]", map[string]any{
			"confidence_threshold": policy.ConfidenceThreshold,
		})
	}
	if policy.SLAHours <= 0 {
		return util.NewValidationError("sla_hours must be positive", map[string]any{
			"sla_hours": policy.SLAHours,
		})
	}
	return s.policies.Upsert(ctx, policy)
}
