package service

import (
	"context"
	"testing"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
)

func TestGetPolicyDefaults(t *testing.T) {
	svc := NewConfigService(memory.NewPolicyRepository())
	policy, err := svc.GetPolicy(context.Background())
	if err != nil {
		t.Fatalf("GetPolicy: %v", err)
	}
	if policy.AutoCloseEnabled {
		t.Error("auto-close enabled by default")
	}
	if policy.ConfidenceThreshold != 0.8 {
		t.Errorf("threshold = %v, want 0.8", policy.ConfidenceThreshold)
	}
	if policy.SLAHours != 24 {
		t.Errorf("sla hours = %d, want 24", policy.SLAHours)
	}
}

func TestUpdatePolicyRoundTrip(t *testing.T) {
	svc := NewConfigService(memory.NewPolicyRepository())
	ctx := context.Background()

	want := &domain.TriagePolicy{AutoCloseEnabled: true, ConfidenceThreshold: 0.65, SLAHours: 8}
	if err := svc.UpdatePolicy(ctx, want); err != nil {
		t.Fatalf("UpdatePolicy: %v", err)
	}

	got, err := svc.GetPolicy(ctx)
	if err != nil {
		t.Fatalf("GetPolicy: %v", err)
	}
	if !got.AutoCloseEnabled || got.ConfidenceThreshold != 0.65 || got.SLAHours != 8 {
		t.Errorf("policy = %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("updated_at not set")
	}
}

func TestUpdatePolicyValidation(t *testing.T) {
	svc := NewConfigService(memory.NewPolicyRepository())
	ctx := context.Background()

	if err := svc.UpdatePolicy(ctx, &domain.TriagePolicy{ConfidenceThreshold: 1.2, SLAHours: 24}); err == nil {
		t.Error("threshold above 1 accepted")
	}
	if err := svc.UpdatePolicy(ctx, &domain.TriagePolicy{ConfidenceThreshold: -0.1, SLAHours: 24}); err == nil {
		t.Error("negative threshold accepted")
	}
	if err := svc.UpdatePolicy(ctx, &domain.TriagePolicy{ConfidenceThreshold: 0.5, SLAHours: 0}); err == nil {
		t.Error("zero sla accepted")
	}
}
