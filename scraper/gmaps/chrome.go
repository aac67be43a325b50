package gmaps

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"maps-scraper/utils"
)

const defaultOpTimeout = 30 * time.Second

// BrowserFactory creates ChromeSessions. One factory serves all jobs; every
// call launches an independent browser process.
type BrowserFactory struct {
	Headless  bool
	ChromeBin string
	Logger    *utils.Logger
}

// NewBrowserFactory creates a factory for chromedp-backed sessions.
func NewBrowserFactory(headless bool, chromeBin string, logger *utils.Logger) *BrowserFactory {
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	return &BrowserFactory{Headless: headless, ChromeBin: chromeBin, Logger: logger}
}

// NewSession launches a browser and returns a ready Session. The caller owns
// the session and must Close it on every exit path.
func (f *BrowserFactory) NewSession(ctx context.Context) (Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", f.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if f.ChromeBin != "" {
		opts = append(opts, chromedp.ExecPath(f.ChromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))

	// Force the browser process to start now so a broken Chrome install
	// surfaces as a session-creation failure, not mid-walk.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	return &ChromeSession{
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
	}, nil
}

// ChromeSession drives one Chrome process through chromedp.
type ChromeSession struct {
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
}

func (s *ChromeSession) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := context.WithTimeout(s.browserCtx, timeout)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

func (s *ChromeSession) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, defaultOpTimeout, chromedp.Navigate(url))
}

func (s *ChromeSession) Fill(ctx context.Context, selector, value string) error {
	return s.run(ctx, defaultOpTimeout,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
}

func (s *ChromeSession) Submit(ctx context.Context, selector string) error {
	return s.run(ctx, defaultOpTimeout,
		chromedp.SendKeys(selector, kb.Enter, chromedp.ByQuery))
}

func (s *ChromeSession) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return s.run(ctx, timeout, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (s *ChromeSession) Count(ctx context.Context, selector string) (int, error) {
	var n int
	err := s.run(ctx, defaultOpTimeout, chromedp.Evaluate(
		fmt.Sprintf(`document.querySelectorAll(%q).length`, selector), &n))
	return n, err
}

func (s *ChromeSession) ClickNth(ctx context.Context, selector string, index int) error {
	var ok bool
	err := s.run(ctx, defaultOpTimeout, chromedp.Evaluate(fmt.Sprintf(`
		(function () {
			var nodes = document.querySelectorAll(%q);
			if (%d >= nodes.length) { return false; }
			nodes[%d].click();
			return true;
		})()`, selector, index, index), &ok))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("click: no element %d for selector %q", index, selector)
	}
	return nil
}

func (s *ChromeSession) ScrollToBottom(ctx context.Context, selector string) error {
	return s.run(ctx, defaultOpTimeout, chromedp.Evaluate(fmt.Sprintf(`
		(function () {
			var el = document.querySelector(%q);
			if (el) {
				el.scrollTo(0, el.scrollHeight);
			} else {
				window.scrollTo(0, document.body.scrollHeight);
			}
		})()`, selector), nil))
}

func (s *ChromeSession) Evaluate(ctx context.Context, js string, out any) error {
	return s.run(ctx, defaultOpTimeout, chromedp.Evaluate(js, out))
}

func (s *ChromeSession) Location(ctx context.Context) (string, error) {
	var url string
	err := s.run(ctx, defaultOpTimeout, chromedp.Location(&url))
	return url, err
}

// Close tears down the browser process and its allocator.
func (s *ChromeSession) Close() error {
	s.cancelBrowser()
	s.cancelAlloc()
	return nil
}

// findChromeBinary locates a Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
