package domain

import (
	"context"
	"errors"
	"net"
)

// FailureClass separates failures the sync engine retries from those it does not.
type FailureClass int

// Failure classes.
const (
	// FailureNone means no error occurred.
	FailureNone FailureClass = iota

	// FailureTransient leaves the invoice PENDING for the next cycle.
	FailureTransient

	// FailurePermanent moves the invoice to FAILED.
	FailurePermanent
)

// String returns the string representation.
func (c FailureClass) String() string {
	switch c {
	case FailureNone:
		return "none"
	case FailureTransient:
		return "transient"
	case FailurePermanent:
		return "permanent"
	default:
		return unknownDescription
	}
}

// ClassifyFailure maps a submit error to a failure class.
// Network errors, timeouts and anything wrapping ErrTransient are transient;
// everything else, including ErrPermanent and ErrInvalidPayload, is permanent.
func ClassifyFailure(err error) FailureClass {
	if err == nil {
		return FailureNone
	}
	if errors.Is(err, ErrTransient) || errors.Is(err, ErrOffline) {
		return FailureTransient
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return FailureTransient
	}
	return FailurePermanent
}
