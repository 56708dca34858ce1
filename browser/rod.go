package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"zillow-scraper/config"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/rod/lib/utils"
	"github.com/go-rod/stealth"
	log "github.com/sirupsen/logrus"
)

const urlPollInterval = 200 * time.Millisecond

// RodBrowser implements Browser on a single rod page
type RodBrowser struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

// RodLauncher launches RodBrowser sessions from a BrowserConfig
type RodLauncher struct {
	cfg config.BrowserConfig
}

// NewRodLauncher creates a launcher for the given browser settings
func NewRodLauncher(cfg config.BrowserConfig) *RodLauncher {
	return &RodLauncher{cfg: cfg}
}

// Launch starts Chrome, connects to it and opens the working tab
func (rl *RodLauncher) Launch(ctx context.Context) (Browser, error) {
	return NewRodBrowser(ctx, rl.cfg)
}

// NewRodBrowser creates a new RodBrowser instance
func NewRodBrowser(ctx context.Context, cfg config.BrowserConfig) (*RodBrowser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	userDataDir := cfg.UserDataDir
	if userDataDir != "" {
		if err := os.MkdirAll(userDataDir, 0755); err != nil {
			log.Printf("Warning: Failed to create browser data directory %s: %v", userDataDir, err)
			userDataDir = ""
		}
	}

	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(true).
		Leakless(false). // Disable leakless to avoid antivirus issues
		Set("disable-blink-features", "AutomationControlled").
		Set("window-size", fmt.Sprintf("%d,%d", cfg.WindowWidth, cfg.WindowHeight)).
		Set("log-level", "0").
		Set("disable-features", "VizDisplayCompositor,TranslateUI").
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("disable-extensions").
		Set("disable-popup-blocking").
		Set("disable-sync").
		Set("mute-audio").
		Set("password-store", "basic")

	if userDataDir != "" {
		l = l.UserDataDir(userDataDir)
	}

	if bin := findChrome(cfg.Bin); bin != "" {
		l = l.Bin(bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	rb := &RodBrowser{launcher: l, browser: b}
	if err := rb.openPage(cfg); err != nil {
		_ = rb.Quit()
		return nil, err
	}
	return rb, nil
}

func (rb *RodBrowser) openPage(cfg config.BrowserConfig) error {
	var (
		page *rod.Page
		err  error
	)
	if cfg.Stealth {
		page, err = stealth.Page(rb.browser)
	} else {
		page, err = rb.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	}
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}

	if cfg.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: cfg.UserAgent}); err != nil {
			return fmt.Errorf("failed to set user agent: %w", err)
		}
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  cfg.WindowWidth,
		Height: cfg.WindowHeight,
	}); err != nil {
		log.Printf("Warning: Failed to set viewport: %v", err)
	}

	rb.page = page
	return nil
}

// findChrome prefers an explicit binary, then well-known system installs.
// An empty result lets rod download its own Chromium.
func findChrome(explicit string) string {
	if explicit != "" {
		return explicit
	}

	paths := []string{
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/snap/bin/chromium",
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
	}
	if username := os.Getenv("USERNAME"); username != "" {
		paths = append(paths, `C:\Users\`+username+`\AppData\Local\Google\Chrome\Application\chrome.exe`)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Quit closes the browser and kills the process
func (rb *RodBrowser) Quit() error {
	var err error
	if rb.browser != nil {
		err = rb.browser.Close()
	}
	if rb.launcher != nil {
		rb.launcher.Kill()
	}
	return err
}

// Navigate opens url in the working tab
func (rb *RodBrowser) Navigate(ctx context.Context, url string) error {
	if err := rb.page.Context(ctx).Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate: %w", err)
	}
	return nil
}

// WaitDocumentLoaded waits for the load event
func (rb *RodBrowser) WaitDocumentLoaded(ctx context.Context, timeout time.Duration) error {
	page := rb.page.Context(ctx).Timeout(timeout)
	defer page.CancelTimeout()

	return waitErr(ctx, page.WaitLoad())
}

// WaitElementVisible waits until an element matching selector exists and is visible
func (rb *RodBrowser) WaitElementVisible(ctx context.Context, selector string, timeout time.Duration) error {
	page := rb.page.Context(ctx).Timeout(timeout)
	defer page.CancelTimeout()

	el, err := page.Element(selector)
	if err != nil {
		return waitErr(ctx, err)
	}
	return waitErr(ctx, el.WaitVisible())
}

// QueryAll returns the elements currently matching selector without waiting
func (rb *RodBrowser) QueryAll(ctx context.Context, selector string) ([]Element, error) {
	els, err := rb.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", selector, err)
	}
	return wrapElements(els), nil
}

// ScrollBy scrolls the window vertically
func (rb *RodBrowser) ScrollBy(ctx context.Context, pixels int) error {
	if _, err := rb.page.Context(ctx).Eval(`(y) => window.scrollBy(0, y)`, pixels); err != nil {
		return fmt.Errorf("failed to scroll: %w", err)
	}
	return nil
}

// ScrollToTop scrolls the window back to the origin
func (rb *RodBrowser) ScrollToTop(ctx context.Context) error {
	if _, err := rb.page.Context(ctx).Eval(`() => window.scrollTo(0, 0)`); err != nil {
		return fmt.Errorf("failed to scroll to top: %w", err)
	}
	return nil
}

// Reload refreshes the current page
func (rb *RodBrowser) Reload(ctx context.Context) error {
	if err := rb.page.Context(ctx).Reload(); err != nil {
		return fmt.Errorf("failed to reload: %w", err)
	}
	return nil
}

// CurrentURL returns the URL of the working tab
func (rb *RodBrowser) CurrentURL(ctx context.Context) (string, error) {
	info, err := rb.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("failed to read page info: %w", err)
	}
	return info.URL, nil
}

// WaitURLChanged polls the tab URL until it differs from previousURL
func (rb *RodBrowser) WaitURLChanged(ctx context.Context, previousURL string, timeout time.Duration) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(urlPollInterval)
	defer ticker.Stop()

	for {
		current, err := rb.CurrentURL(ctx)
		if err != nil {
			return err
		}
		if current != previousURL {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("%w: url still %s after %v", ErrTimeout, previousURL, timeout)
		case <-ticker.C:
		}
	}
}

// Screenshot saves a PNG of the viewport to path
func (rb *RodBrowser) Screenshot(ctx context.Context, path string) error {
	data, err := rb.page.Context(ctx).Screenshot(false, nil)
	if err != nil {
		return fmt.Errorf("failed to capture screenshot: %w", err)
	}
	if err := utils.OutputFile(path, data); err != nil {
		return fmt.Errorf("failed to save screenshot: %w", err)
	}
	return nil
}

// waitErr maps a deadline hit by a bounded wait to ErrTimeout while keeping
// cancellation of the parent context distinguishable.
func waitErr(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

type rodElement struct {
	el *rod.Element
}

func wrapElements(els rod.Elements) []Element {
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, rodElement{el: el})
	}
	return out
}

func (e rodElement) Text() (string, error) {
	return e.el.Text()
}

func (e rodElement) Attribute(name string) (*string, error) {
	return e.el.Attribute(name)
}

func (e rodElement) Visible() (bool, error) {
	return e.el.Visible()
}

func (e rodElement) Click() error {
	return e.el.Click(proto.InputMouseButtonLeft, 1)
}

func (e rodElement) Find(selector string) (Element, error) {
	has, child, err := e.el.Has(selector)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	return rodElement{el: child}, nil
}

func (e rodElement) FindAll(selector string) ([]Element, error) {
	els, err := e.el.Elements(selector)
	if err != nil {
		return nil, err
	}
	return wrapElements(els), nil
}
