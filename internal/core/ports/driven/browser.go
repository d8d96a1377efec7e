package driven

import (
	"context"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
)

// BindingFunc receives one call from the in-page agent.
// The payload is the JSON encoding of the agent's message.
type BindingFunc func(src domain.SourceContext, payload []byte)

// LaunchOptions configures a browser launch.
type LaunchOptions struct {
	// Headless runs without a window.
	Headless bool
}

// BrowserDriver launches browser sessions.
type BrowserDriver interface {
	Launch(ctx context.Context, opts LaunchOptions) (BrowserSession, error)
}

// BrowserSession is one running browser with a single browsing context.
type BrowserSession interface {
	// AddInitScript registers a script evaluated in every page before the
	// page's own scripts.
	AddInitScript(script string) error

	// Bind exposes a host function to every page under the given name.
	Bind(name string, fn BindingFunc) error

	// Navigate opens a URL in the session's first page.
	Navigate(ctx context.Context, url string) error

	// PageHTML returns the serialised DOM of the open page with the given URL.
	PageHTML(ctx context.Context, url string) (string, error)

	// OpenPages returns the number of open pages.
	OpenPages() int

	// Close tears the browser down.
	Close() error
}
