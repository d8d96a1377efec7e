// Package playwright drives a Chromium browser through playwright-go.
//
// One Launch starts a Playwright driver process, a browser and a single
// browsing context. Init scripts and the host binding are installed on the
// context so they reach every page, including popups the portal opens.
package playwright

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	pw "github.com/playwright-community/playwright-go"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
	"github.com/custodia-labs/dealer-capture/internal/core/ports/driven"
	"github.com/custodia-labs/dealer-capture/internal/logger"
)

// ExecutablePathEnv overrides the browser binary.
const ExecutablePathEnv = "PLAYWRIGHT_EXECUTABLE_PATH"

// Options configures the driver.
type Options struct {
	// ExecutablePath is the Chromium binary. Empty uses ExecutablePathEnv,
	// then the Playwright-managed browser.
	ExecutablePath string

	// InstallDriver downloads the Playwright driver before the first launch.
	InstallDriver bool

	// NavigationTimeout bounds page.Goto.
	NavigationTimeout time.Duration

	// ShutdownTimeout bounds browser and driver teardown.
	ShutdownTimeout time.Duration
}

// Driver implements driven.BrowserDriver.
type Driver struct {
	opts        Options
	installOnce sync.Once
	installErr  error
}

var _ driven.BrowserDriver = (*Driver)(nil)

// NewDriver creates a Playwright browser driver.
func NewDriver(opts Options) *Driver {
	if opts.ExecutablePath == "" {
		opts.ExecutablePath = os.Getenv(ExecutablePathEnv)
	}
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = 60 * time.Second
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	return &Driver{opts: opts}
}

// Launch starts Playwright, a browser and one context with one page.
func (d *Driver) Launch(ctx context.Context, opts driven.LaunchOptions) (driven.BrowserSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.opts.InstallDriver {
		d.installOnce.Do(func() {
			logger.Info("installing Playwright driver")
			d.installErr = pw.Install(&pw.RunOptions{SkipInstallBrowsers: true})
		})
		if d.installErr != nil {
			return nil, fmt.Errorf("installing playwright driver: %w", d.installErr)
		}
	}

	runtime, err := pw.Run()
	if err != nil {
		return nil, fmt.Errorf("starting playwright: %w", err)
	}

	launch := pw.BrowserTypeLaunchOptions{Headless: pw.Bool(opts.Headless)}
	if d.opts.ExecutablePath != "" {
		launch.ExecutablePath = pw.String(d.opts.ExecutablePath)
		logger.Debug("using browser executable %s", d.opts.ExecutablePath)
	}

	browser, err := runtime.Chromium.Launch(launch)
	if err != nil {
		_ = runtime.Stop()
		return nil, fmt.Errorf("launching chromium: %w", err)
	}

	bctx, err := browser.NewContext()
	if err != nil {
		_ = browser.Close()
		_ = runtime.Stop()
		return nil, fmt.Errorf("creating browser context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = browser.Close()
		_ = runtime.Stop()
		return nil, fmt.Errorf("opening page: %w", err)
	}
	page.SetDefaultNavigationTimeout(float64(d.opts.NavigationTimeout.Milliseconds()))

	return &Session{
		runtime:  runtime,
		browser:  browser,
		context:  bctx,
		page:     page,
		shutdown: d.opts.ShutdownTimeout,
	}, nil
}

// Session implements driven.BrowserSession over one browser context.
type Session struct {
	runtime  *pw.Playwright
	browser  pw.Browser
	context  pw.BrowserContext
	page     pw.Page
	shutdown time.Duration

	closeOnce sync.Once
	closeErr  error
}

var _ driven.BrowserSession = (*Session)(nil)

// AddInitScript registers a script on the context.
func (s *Session) AddInitScript(script string) error {
	if err := s.context.AddInitScript(pw.Script{Content: pw.String(script)}); err != nil {
		return fmt.Errorf("adding init script: %w", err)
	}
	return nil
}

// Bind exposes fn to every page as window[name]. The first argument of each
// call is re-encoded as JSON; the calling page supplies the source URL.
func (s *Session) Bind(name string, fn driven.BindingFunc) error {
	err := s.context.ExposeBinding(name, func(source *pw.BindingSource, args ...any) any {
		payload, err := encodeBindingArgs(args)
		if err != nil {
			logger.Warn("binding %s: %v", name, err)
			return nil
		}
		var src domain.SourceContext
		if source != nil && source.Page != nil {
			src.PageURL = source.Page.URL()
		}
		fn(src, payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("exposing binding %s: %w", name, err)
	}
	return nil
}

// Navigate opens url in the session's first page.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.page.Goto(url, pw.PageGotoOptions{WaitUntil: pw.WaitUntilStateDomcontentloaded}); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

// PageHTML returns the serialised DOM of the open page showing url, falling
// back to the most recently opened page.
func (s *Session) PageHTML(ctx context.Context, url string) (string, error) {
	page, ok := findPage(s.context.Pages(), url)
	if !ok {
		return "", fmt.Errorf("page %s: %w", url, domain.ErrNotFound)
	}

	type result struct {
		html string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		html, err := page.Content()
		ch <- result{html, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return "", fmt.Errorf("reading page content: %w", r.err)
		}
		return r.html, nil
	}
}

// OpenPages returns the number of pages still open.
func (s *Session) OpenPages() int {
	n := 0
	for _, p := range s.context.Pages() {
		if !p.IsClosed() {
			n++
		}
	}
	return n
}

// Close tears down the browser and the driver process, bounded by the
// shutdown timeout. Repeated calls return the first result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		done := make(chan error, 1)
		go func() {
			var errs []error
			if err := s.browser.Close(); err != nil && !errors.Is(err, pw.ErrTargetClosed) {
				errs = append(errs, fmt.Errorf("closing browser: %w", err))
			}
			if err := s.runtime.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("stopping playwright: %w", err))
			}
			done <- errors.Join(errs...)
		}()
		select {
		case s.closeErr = <-done:
		case <-time.After(s.shutdown):
			s.closeErr = fmt.Errorf("browser shutdown exceeded %s", s.shutdown)
		}
	})
	return s.closeErr
}

// encodeBindingArgs returns the JSON encoding of the agent's message, the
// first binding argument. A string argument is taken as already-encoded JSON.
func encodeBindingArgs(args []any) ([]byte, error) {
	if len(args) == 0 || args[0] == nil {
		return nil, fmt.Errorf("binding called without a message: %w", domain.ErrInvalidInput)
	}
	if s, ok := args[0].(string); ok {
		if !json.Valid([]byte(s)) {
			return nil, fmt.Errorf("binding message is not JSON: %w", domain.ErrInvalidInput)
		}
		return []byte(s), nil
	}
	payload, err := json.Marshal(args[0])
	if err != nil {
		return nil, fmt.Errorf("encoding binding message: %w", err)
	}
	return payload, nil
}

// pageInfo is the part of a page findPage needs.
type pageInfo interface {
	URL() string
	IsClosed() bool
}

// findPage picks the open page showing url, else the last open page.
func findPage[P pageInfo](pages []P, url string) (P, bool) {
	var last P
	found := false
	for _, p := range pages {
		if p.IsClosed() {
			continue
		}
		if p.URL() == url {
			return p, true
		}
		last, found = p, true
	}
	return last, found
}
