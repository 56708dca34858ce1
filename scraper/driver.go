package scraper

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"zillow-scraper/browser"
	"zillow-scraper/config"
	"zillow-scraper/models"

	log "github.com/sirupsen/logrus"
)

// Reason explains why a scrape finished
type Reason string

const (
	ReasonEndOfPagination  Reason = "end_of_pagination"
	ReasonRepeatedContent  Reason = "repeated_content"
	ReasonMaxPages         Reason = "max_pages"
	ReasonLoadTimeout      Reason = "load_timeout"
	ReasonNavigationFailed Reason = "navigation_failed"
	ReasonCollectionFailed Reason = "collection_failed"
	ReasonCancelled        Reason = "cancelled"
)

// Result is the outcome of a completed scrape
type Result struct {
	Listings []models.Listing
	// Pages is the number of results pages that were read
	Pages int
	// TotalExpected is the site's reported result count, when it could be read
	TotalExpected *int
	Reason        Reason
}

type state int

const (
	stateInit state = iota
	stateLoadingPage
	stateCollecting
	stateDeciding
	stateAdvancing
	stateDone
	stateAborted
)

func (s state) String() string {
	switch s {
	case stateInit:
		return "init"
	case stateLoadingPage:
		return "loading_page"
	case stateCollecting:
		return "collecting"
	case stateDeciding:
		return "deciding"
	case stateAdvancing:
		return "advancing"
	case stateDone:
		return "done"
	case stateAborted:
		return "aborted"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var resultsCountPattern = regexp.MustCompile(`\d[\d,]*`)

// Driver walks a paginated search from its first page until pagination ends,
// content repeats, or the page limit is reached.
type Driver struct {
	cfg      config.ScraperConfig
	sel      config.Selectors
	launcher browser.Launcher
	reporter Reporter
	next     Locator
}

// NewDriver creates a driver. A nil reporter discards progress events.
func NewDriver(cfg *config.Config, launcher browser.Launcher, reporter Reporter) *Driver {
	if reporter == nil {
		reporter = discard
	}
	return &Driver{
		cfg:      cfg.Scraper,
		sel:      cfg.Selectors,
		launcher: launcher,
		reporter: reporter,
		next:     NextPageLocator(cfg.Selectors.NextPage),
	}
}

// Run scrapes url and up to maxPages pages after it; maxPages <= 0 follows
// pagination to the end. The browser is always closed before Run returns.
//
// Only a browser that cannot start, or a first page that cannot be loaded,
// produce an error. Every later failure ends the scrape with the listings
// gathered so far.
func (d *Driver) Run(ctx context.Context, url string, maxPages int) (*Result, error) {
	b, err := d.launcher.Launch(ctx)
	if err != nil {
		return nil, &BrowserStartupError{Err: err}
	}
	defer func() {
		if err := b.Quit(); err != nil {
			log.Printf("Warning: Failed to close browser: %v", err)
		}
	}()

	r := &run{
		Driver:    d,
		ctx:       ctx,
		browser:   b,
		url:       url,
		maxPages:  maxPages,
		sess:      newSession(d.cfg.PageSize),
		collector: NewCollector(b, d.cfg, d.sel, d.next, d.reporter),
	}

	st := stateInit
	for st != stateDone && st != stateAborted {
		if ctx.Err() != nil {
			r.reason = ReasonCancelled
			st = stateDone
			break
		}

		log.Debugf("Scraper state %s (page %d)", st, r.sess.page)
		switch st {
		case stateInit:
			st = r.init()
		case stateLoadingPage:
			st = r.loadPage()
		case stateCollecting:
			st = r.collect()
		case stateDeciding:
			st = r.decide()
		case stateAdvancing:
			st = r.advance()
		}
	}

	d.reporter.Report(Event{
		Kind:    KindTerminated,
		Page:    r.sess.page,
		Message: fmt.Sprintf("Scraping finished: %s", r.reason),
		Records: len(r.sess.records),
		Err:     r.err,
	})

	if st == stateAborted {
		return nil, r.err
	}
	return &Result{
		Listings:      r.sess.records,
		Pages:         r.sess.pagesScraped,
		TotalExpected: r.sess.totalExpected,
		Reason:        r.reason,
	}, nil
}

// run carries the state of a single Run through the state handlers
type run struct {
	*Driver
	ctx       context.Context
	browser   browser.Browser
	url       string
	maxPages  int
	sess      *session
	collector *Collector
	observed  []models.Listing
	reason    Reason
	err       error
}

func (r *run) warn(err error, format string, args ...any) {
	r.reporter.Report(Event{
		Kind:    KindWarning,
		Page:    r.sess.page,
		Message: fmt.Sprintf(format, args...),
		Records: len(r.sess.records),
		Err:     err,
	})
}

// finish ends the scrape with reason, treating cancellation as its own reason
func (r *run) finish(reason Reason) state {
	if r.ctx.Err() != nil {
		reason = ReasonCancelled
	}
	r.reason = reason
	return stateDone
}

func (r *run) init() state {
	if err := r.browser.Navigate(r.ctx, r.url); err != nil {
		if r.ctx.Err() != nil {
			return r.finish(ReasonCancelled)
		}
		r.err = &NavigationError{Page: 1, Err: err}
		r.reason = ReasonNavigationFailed
		return stateAborted
	}

	if err := r.browser.WaitDocumentLoaded(r.ctx, r.cfg.WaitTimeout); err != nil {
		log.Debugf("Initial document load wait failed: %v", err)
	}

	if r.cfg.ScreenshotDir != "" {
		path := filepath.Join(r.cfg.ScreenshotDir, "page_1_initial.png")
		if err := r.browser.Screenshot(r.ctx, path); err != nil {
			r.warn(err, "Failed to save screenshot %s", path)
		}
	}

	total, err := r.readResultsCount()
	if err != nil {
		r.warn(err, "Could not read total results, assuming %d listings per page", r.cfg.PageSize)
	} else {
		r.sess.setTotalExpected(total)
		log.WithField("total", total).Info("Total results reported by site")
	}
	return stateLoadingPage
}

func (r *run) readResultsCount() (int, error) {
	if err := r.browser.WaitElementVisible(r.ctx, r.sel.ResultsCount, r.cfg.WaitTimeout); err != nil {
		return 0, &ResultsCountParseError{Err: err}
	}
	els, err := r.browser.QueryAll(r.ctx, r.sel.ResultsCount)
	if err != nil {
		return 0, &ResultsCountParseError{Err: err}
	}
	if len(els) == 0 {
		return 0, &ResultsCountParseError{Err: browser.ErrElementNotFound}
	}
	text, err := els[0].Text()
	if err != nil {
		return 0, &ResultsCountParseError{Err: err}
	}
	return parseResultsCount(text)
}

// parseResultsCount reads the first number in text such as "1,234 results"
func parseResultsCount(text string) (int, error) {
	match := resultsCountPattern.FindString(text)
	if match == "" {
		return 0, &ResultsCountParseError{Text: text}
	}
	n, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return 0, &ResultsCountParseError{Text: text, Err: err}
	}
	return n, nil
}

func (r *run) loadPage() state {
	page := r.sess.page
	r.reporter.Report(Event{
		Kind:    KindPageStarted,
		Page:    page,
		Message: fmt.Sprintf("Scraping page %d", page),
		Records: len(r.sess.records),
	})

	err := r.waitForListings()
	if err == nil {
		return stateCollecting
	}
	if r.ctx.Err() != nil {
		return r.finish(ReasonCancelled)
	}

	timeoutErr := &WaitTimeoutError{Page: page, Err: err}
	if page == 1 {
		r.err = timeoutErr
		r.reason = ReasonLoadTimeout
		return stateAborted
	}

	r.warn(timeoutErr, "Page %d did not load, reloading", page)
	if err := r.browser.Reload(r.ctx); err != nil {
		r.warn(err, "Failed to reload page %d", page)
		return r.finish(ReasonLoadTimeout)
	}
	r.reporter.Report(Event{
		Kind:    KindPageReloaded,
		Page:    page,
		Message: fmt.Sprintf("Reloaded page %d", page),
		Records: len(r.sess.records),
	})
	if err := sleep(r.ctx, r.cfg.ReloadSettle); err != nil {
		return r.finish(ReasonCancelled)
	}

	if err := r.waitForListings(); err != nil {
		r.warn(&WaitTimeoutError{Page: page, Err: err}, "Page %d still did not load after reload", page)
		return r.finish(ReasonLoadTimeout)
	}
	return stateCollecting
}

func (r *run) waitForListings() error {
	if err := r.browser.WaitDocumentLoaded(r.ctx, r.cfg.WaitTimeout); err != nil {
		return err
	}
	return r.browser.WaitElementVisible(r.ctx, r.sel.Card, r.cfg.WaitTimeout)
}

func (r *run) collect() state {
	page := r.sess.page
	expected := r.sess.expectedFor(page)

	scan := r.collector.Scan(r.ctx, page, expected, r.sess.index)
	for listing := range scan.Records() {
		r.sess.add(listing)
	}
	r.observed = scan.Observed()
	r.sess.pagesScraped = page

	if err := scan.Err(); err != nil {
		if r.ctx.Err() != nil {
			return r.finish(ReasonCancelled)
		}
		r.warn(err, "Stopped reading page %d after %d new listings", page, scan.Emitted())
		return r.finish(ReasonCollectionFailed)
	}

	r.reporter.Report(Event{
		Kind:    KindPageCompleted,
		Page:    page,
		Message: fmt.Sprintf("Page %d: %d new listings (%d expected, %d skipped)", page, scan.Emitted(), expected, scan.Skipped()),
		Records: len(r.sess.records),
	})
	return stateDeciding
}

func (r *run) decide() state {
	decision := Decide(r.observed, r.sess.trailing)
	if decision.Action == Stop {
		log.Printf("Page %d ends with the same listing as the previous page, stopping", r.sess.page)
		return r.finish(ReasonRepeatedContent)
	}
	r.sess.rememberTrailing(decision.Trailing)

	if r.maxPages > 0 && r.sess.page >= r.maxPages {
		return r.finish(ReasonMaxPages)
	}
	return stateAdvancing
}

func (r *run) advance() state {
	page := r.sess.page

	next, err := r.next.Locate(r.ctx, r.browser)
	if err != nil {
		return r.navigationFailed(err)
	}
	if next == nil {
		log.Printf("No next page control after page %d", page)
		return r.finish(ReasonEndOfPagination)
	}

	disabled, err := Disabled(next, r.sel.DisabledAttribute)
	if err != nil {
		r.warn(err, "Failed to read next page control state")
	} else if disabled {
		log.Printf("Next page control disabled after page %d", page)
		return r.finish(ReasonEndOfPagination)
	}

	previousURL, err := r.browser.CurrentURL(r.ctx)
	if err != nil {
		return r.navigationFailed(err)
	}
	if err := next.Click(); err != nil {
		return r.navigationFailed(err)
	}
	if err := r.browser.WaitURLChanged(r.ctx, previousURL, r.cfg.URLChangeTimeout); err != nil {
		return r.navigationFailed(err)
	}

	r.sess.advance()
	if err := sleep(r.ctx, r.cfg.AdvanceSettle); err != nil {
		return r.finish(ReasonCancelled)
	}
	return stateLoadingPage
}

func (r *run) navigationFailed(err error) state {
	if r.ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return r.finish(ReasonCancelled)
	}
	navErr := &NavigationError{Page: r.sess.page + 1, Err: err}
	r.warn(navErr, "Could not move past page %d", r.sess.page)
	return r.finish(ReasonNavigationFailed)
}
