package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorConstructorsCarryStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"validation", NewValidationError("bad", nil), "VALIDATION_FAILED", http.StatusBadRequest},
		{"not found", NewNotFound("ticket", nil), "NOT_FOUND", http.StatusNotFound},
		{"unauthorized", NewUnauthorized("nope"), "UNAUTHORIZED", http.StatusUnauthorized},
		{"forbidden", NewForbidden("nope"), "FORBIDDEN", http.StatusForbidden},
		{"conflict", NewConflict("dup", nil), "CONFLICT", http.StatusConflict},
		{"rate limited", NewRateLimited("slow down"), "RATE_LIMITED", http.StatusTooManyRequests},
		{"internal", NewInternalError(errors.New("boom")), "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			domainErr := ToDomainError(tc.err)
			if domainErr.Code != tc.code {
				t.Errorf("code = %q, want %q", domainErr.Code, tc.code)
			}
			if domainErr.HTTPStatus != tc.status {
				t.Errorf("status = %d, want %d", domainErr.HTTPStatus, tc.status)
			}
		})
	}
}

func TestIsNotFoundThroughWrapping(t *testing.T) {
	err := fmt.Errorf("loading ticket: %w", NewNotFound("ticket", nil))
	if !IsNotFound(err) {
		t.Error("wrapped not-found not detected")
	}
	if IsConflict(err) {
		t.Error("not-found detected as conflict")
	}
	if IsNotFound(errors.New("plain")) {
		t.Error("plain error detected as not-found")
	}
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	cause := errors.New("disk on fire")
	domainErr := ToDomainError(cause)
	if domainErr.Code != "INTERNAL_ERROR" || domainErr.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("wrapped = %+v", domainErr)
	}
	if !errors.Is(domainErr, cause) {
		t.Error("cause not preserved")
	}
	if ToDomainError(nil) != nil {
		t.Error("nil did not stay nil")
	}
}

func TestNotFoundMessageNamesResource(t *testing.T) {
	err := NewNotFound("suggestion", nil)
	if err.Error() != "suggestion not found" {
		t.Errorf("message = %q", err.Error())
	}
}
