package memory

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	util "github.com/spec-kit/helpdesk-service/pkg/util"
)

// PolicyRepository holds the triage policy singleton.
type PolicyRepository struct {
	mu      sync.RWMutex
	policy  domain.TriagePolicy
	present bool
	getErr  error
}

// NewPolicyRepository builds an empty store; Get fails with not found until
// the first Upsert, which mirrors a fresh database.
func NewPolicyRepository() *PolicyRepository {
	return &PolicyRepository{}
}

// FailReads makes subsequent Get calls fail with err. Test hook.
func (r *PolicyRepository) FailReads(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getErr = err
}

func (r *PolicyRepository) Get(ctx context.Context) (*domain.TriagePolicy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	if !r.present {
		return nil, util.NewNotFound("triage policy", nil)
	}
	policy := r.policy
	return &policy, nil
}

func (r *PolicyRepository) Upsert(ctx context.Context, policy *domain.TriagePolicy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	policy.UpdatedAt = time.Now()
	r.policy = *policy
	r.present = true
	return nil
}
