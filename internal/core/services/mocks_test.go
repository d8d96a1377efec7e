package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
	"github.com/custodia-labs/dealer-capture/internal/core/ports/driven"
)

// --- Mock implementations shared by service tests ---

// mockSubmitter implements driven.InvoiceSubmitter with per-USIN outcomes.
type mockSubmitter struct {
	mu       sync.Mutex
	errs     map[string]error
	calls    []string
	onSubmit func(payload domain.InvoicePayload)
}

func newMockSubmitter() *mockSubmitter {
	return &mockSubmitter{errs: make(map[string]error)}
}

func (m *mockSubmitter) Submit(_ context.Context, payload domain.InvoicePayload) (*domain.SubmitResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, payload.USIN)
	err := m.errs[payload.USIN]
	hook := m.onSubmit
	m.mu.Unlock()

	if hook != nil {
		hook(payload)
	}
	if err != nil {
		return nil, err
	}
	return &domain.SubmitResponse{InvoiceNumber: "FBR-" + payload.USIN, Code: "100", Message: "Invoice received"}, nil
}

func (m *mockSubmitter) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// mockProbe implements driven.ConnectivityProbe.
type mockProbe struct {
	mu     sync.Mutex
	online bool
	calls  int
}

func (m *mockProbe) Probe(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.online {
		return nil
	}
	return domain.ErrOffline
}

func (m *mockProbe) SetOnline(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.online = v
}

// mockBrowserDriver implements driven.BrowserDriver.
type mockBrowserDriver struct {
	session   *mockBrowserSession
	launchErr error
	launches  int
}

func (m *mockBrowserDriver) Launch(_ context.Context, _ driven.LaunchOptions) (driven.BrowserSession, error) {
	m.launches++
	if m.launchErr != nil {
		return nil, m.launchErr
	}
	return m.session, nil
}

// mockBrowserSession implements driven.BrowserSession.
type mockBrowserSession struct {
	mu          sync.Mutex
	initScripts []string
	bindings    map[string]driven.BindingFunc
	navigated   []string
	html        string
	htmlErr     error
	pages       int
	closed      bool
	navErr      error
}

func newMockBrowserSession() *mockBrowserSession {
	return &mockBrowserSession{
		bindings: make(map[string]driven.BindingFunc),
		htmlErr:  errors.New("no snapshot"),
	}
}

func (m *mockBrowserSession) AddInitScript(script string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initScripts = append(m.initScripts, script)
	return nil
}

func (m *mockBrowserSession) Bind(name string, fn driven.BindingFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bindings[name] = fn
	return nil
}

func (m *mockBrowserSession) Navigate(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.navErr != nil {
		return m.navErr
	}
	m.navigated = append(m.navigated, url)
	m.pages = 1
	return nil
}

func (m *mockBrowserSession) PageHTML(_ context.Context, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.html, m.htmlErr
}

func (m *mockBrowserSession) OpenPages() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pages
}

func (m *mockBrowserSession) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.pages = 0
	return nil
}

func (m *mockBrowserSession) call(name string, src domain.SourceContext, payload string) {
	m.mu.Lock()
	fn := m.bindings[name]
	m.mu.Unlock()
	fn(src, []byte(payload))
}

func (m *mockBrowserSession) closePages() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages = 0
}

func (m *mockBrowserSession) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
