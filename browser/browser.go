// Package browser defines the capabilities the scraper needs from an
// automated browser and provides the go-rod implementation.
package browser

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrElementNotFound is returned when a selector matches nothing
	ErrElementNotFound = errors.New("element not found")
	// ErrTimeout is returned when a bounded wait expires
	ErrTimeout = errors.New("wait timed out")
	// ErrNotInteractive is returned by elements that cannot be clicked
	ErrNotInteractive = errors.New("element is not interactive")
)

// Element is a handle to a DOM node. A handle may describe stale content if the
// DOM has changed since it was queried.
type Element interface {
	Text() (string, error)
	// Attribute returns nil when the attribute is absent
	Attribute(name string) (*string, error)
	Visible() (bool, error)
	Click() error
	// Find returns the first descendant matching selector or ErrElementNotFound
	Find(selector string) (Element, error)
	FindAll(selector string) ([]Element, error)
}

// Browser is a single tab driven by one goroutine. Every call may block on the
// out-of-process renderer and must not overlap with another call.
type Browser interface {
	Navigate(ctx context.Context, url string) error
	WaitDocumentLoaded(ctx context.Context, timeout time.Duration) error
	WaitElementVisible(ctx context.Context, selector string, timeout time.Duration) error
	QueryAll(ctx context.Context, selector string) ([]Element, error)
	ScrollBy(ctx context.Context, pixels int) error
	ScrollToTop(ctx context.Context) error
	Reload(ctx context.Context) error
	WaitURLChanged(ctx context.Context, previousURL string, timeout time.Duration) error
	CurrentURL(ctx context.Context) (string, error)
	Screenshot(ctx context.Context, path string) error
	Quit() error
}

// Launcher starts a browser session
type Launcher interface {
	Launch(ctx context.Context) (Browser, error)
}

// LauncherFunc adapts a function to the Launcher interface
type LauncherFunc func(ctx context.Context) (Browser, error)

// Launch calls f(ctx)
func (f LauncherFunc) Launch(ctx context.Context) (Browser, error) {
	return f(ctx)
}
