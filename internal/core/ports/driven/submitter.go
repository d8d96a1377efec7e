package driven

import (
	"context"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
)

// InvoiceSubmitter is the remote submit capability.
//
// Errors wrap domain.ErrTransient when the invoice should be retried on a
// later cycle and domain.ErrPermanent when it should not.
type InvoiceSubmitter interface {
	Submit(ctx context.Context, payload domain.InvoicePayload) (*domain.SubmitResponse, error)
}

// ConnectivityProbe checks whether the network is reachable.
type ConnectivityProbe interface {
	// Probe returns nil when any endpoint is reachable, or an error wrapping
	// domain.ErrOffline when none are.
	Probe(ctx context.Context) error
}
