// Package connectivity decides whether the network is usable by probing an
// ordered list of well-known endpoints.
package connectivity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
	"github.com/custodia-labs/dealer-capture/internal/core/ports/driven"
	"github.com/custodia-labs/dealer-capture/internal/logger"
)

// Ensure Prober implements the interface.
var _ driven.ConnectivityProbe = (*Prober)(nil)

// DefaultTimeout bounds one endpoint check.
const DefaultTimeout = 5 * time.Second

// Prober checks endpoints in order; the first one that answers means online.
type Prober struct {
	client    *http.Client
	endpoints []string
	timeout   time.Duration
}

// NewProber creates a prober. Redirects are not followed: any answer at all
// proves reachability.
func NewProber(endpoints []string, timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Prober{
		client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		endpoints: endpoints,
		timeout:   timeout,
	}
}

// Probe returns nil as soon as one endpoint answers with a status below 500.
func (p *Prober) Probe(ctx context.Context) error {
	if len(p.endpoints) == 0 {
		return fmt.Errorf("%w: no probe endpoints configured", domain.ErrOffline)
	}

	var errs []error
	for _, endpoint := range p.endpoints {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := p.check(ctx, endpoint)
		if err == nil {
			return nil
		}
		logger.Debug("probe %s: %v", endpoint, err)
		errs = append(errs, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrOffline, errors.Join(errs...))
}

// check tries HEAD, falling back to GET for servers that refuse HEAD.
func (p *Prober) check(ctx context.Context, endpoint string) error {
	status, err := p.request(ctx, http.MethodHead, endpoint)
	if err == nil && reachable(status) {
		return nil
	}
	if err == nil && status != http.StatusMethodNotAllowed && status != http.StatusNotImplemented {
		return fmt.Errorf("%s: status %d", endpoint, status)
	}

	status, err = p.request(ctx, http.MethodGet, endpoint)
	if err != nil {
		return err
	}
	if !reachable(status) {
		return fmt.Errorf("%s: status %d", endpoint, status)
	}
	return nil
}

func (p *Prober) request(ctx context.Context, method, endpoint string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", endpoint, err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return resp.StatusCode, nil
}

// reachable treats 2xx-4xx as an answer from a live server.
func reachable(status int) bool {
	return status >= 200 && status < 500
}
