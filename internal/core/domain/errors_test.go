package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrMissingChassis", ErrMissingChassis},
		{"ErrSubmissionDiscarded", ErrSubmissionDiscarded},
		{"ErrPersistence", ErrPersistence},
		{"ErrSessionActive", ErrSessionActive},
		{"ErrNoSession", ErrNoSession},
		{"ErrTransient", ErrTransient},
		{"ErrPermanent", ErrPermanent},
		{"ErrInvalidPayload", ErrInvalidPayload},
		{"ErrEngineRunning", ErrEngineRunning},
		{"ErrOffline", ErrOffline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrTransient_NotPermanent(t *testing.T) {
	assert.True(t, errors.Is(ErrTransient, ErrTransient))
	assert.False(t, errors.Is(ErrTransient, ErrPermanent))
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestClassifyFailure(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected FailureClass
	}{
		{"nil", nil, FailureNone},
		{"wrapped transient", fmt.Errorf("submit: %w", ErrTransient), FailureTransient},
		{"deadline", context.DeadlineExceeded, FailureTransient},
		{"net error", fmt.Errorf("post: %w", timeoutErr{}), FailureTransient},
		{"offline", ErrOffline, FailureTransient},
		{"wrapped permanent", fmt.Errorf("fbr: %w", ErrPermanent), FailurePermanent},
		{"invalid payload", fmt.Errorf("%w: missing USIN", ErrInvalidPayload), FailurePermanent},
		{"unknown", errors.New("boom"), FailurePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyFailure(tt.err))
		})
	}
}
