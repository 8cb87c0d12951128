package domain

import "time"

// TriagePolicy is the singleton runtime configuration read by the triage
// decision step. Owned by the administrative interface, not the orchestrator.
type TriagePolicy struct {
	AutoCloseEnabled    bool
	ConfidenceThreshold float64
	SLAHours            int
	UpdatedAt           time.Time
}

// DefaultTriagePolicy is the conservative fallback used when no policy has
// been stored: auto-close disabled, threshold 0.8.
func DefaultTriagePolicy() TriagePolicy {
	return TriagePolicy{
		AutoCloseEnabled:    false,
		ConfidenceThreshold: 0.8,
		SLAHours:            24,
	}
}
