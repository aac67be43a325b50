package gmaps

import (
	"context"
	"time"
)

// Session is the page-automation capability the walker and extractor run
// against. Every wait carries an explicit timeout; no operation may block
// indefinitely. The chromedp implementation lives in chrome.go; tests use a
// scripted fake.
type Session interface {
	// Navigate loads the given URL and waits for the load event.
	Navigate(ctx context.Context, url string) error
	// Fill types the value into the element matching the selector.
	Fill(ctx context.Context, selector, value string) error
	// Submit presses Enter on the element matching the selector.
	Submit(ctx context.Context, selector string) error
	// WaitVisible waits until an element matching the selector is visible,
	// failing after the timeout.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	// Count returns the number of elements currently matching the selector.
	Count(ctx context.Context, selector string) (int, error)
	// ClickNth clicks the index-th element matching the selector.
	ClickNth(ctx context.Context, selector string, index int) error
	// ScrollToBottom scrolls the element matching the selector to its bottom.
	ScrollToBottom(ctx context.Context, selector string) error
	// Evaluate runs the JavaScript expression and unmarshals its result.
	Evaluate(ctx context.Context, js string, out any) error
	// Location returns the page's current URL.
	Location(ctx context.Context) (string, error)
	// Close releases the underlying browser resources.
	Close() error
}

// SessionFactory creates one fresh, exclusively-owned Session per job.
// Whoever obtains a session from the factory must close it on every exit path.
type SessionFactory interface {
	NewSession(ctx context.Context) (Session, error)
}
