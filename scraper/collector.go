package scraper

import (
	"context"
	"fmt"
	"iter"
	"time"

	"zillow-scraper/browser"
	"zillow-scraper/config"
	"zillow-scraper/dedup"
	"zillow-scraper/models"
	"zillow-scraper/parser"

	log "github.com/sirupsen/logrus"
)

// maxPasses bounds how often a page is re-read from the top
const maxPasses = 2

// Collector reads the listings of one results page while the site renders
// more cards on scroll.
type Collector struct {
	browser  browser.Browser
	cfg      config.ScraperConfig
	sel      config.Selectors
	next     Locator
	reporter Reporter
}

// NewCollector creates a collector for the given browser tab
func NewCollector(b browser.Browser, cfg config.ScraperConfig, sel config.Selectors, next Locator, reporter Reporter) *Collector {
	if reporter == nil {
		reporter = discard
	}
	return &Collector{browser: b, cfg: cfg, sel: sel, next: next, reporter: reporter}
}

// PageScan is a single scan of a results page. Like bufio.Scanner, iterate
// Records to completion and then check Err.
type PageScan struct {
	c        *Collector
	ctx      context.Context
	page     int
	expected int
	index    *dedup.Index

	started  bool
	err      error
	observed []models.Listing
	emitted  int
	skipped  int
	passes   int
}

// Scan prepares a scan of the current page. Nothing touches the browser until
// Records is iterated. expected is the number of new listings the page should
// yield; falling short triggers one more pass from the top.
func (c *Collector) Scan(ctx context.Context, page, expected int, index *dedup.Index) *PageScan {
	return &PageScan{c: c, ctx: ctx, page: page, expected: expected, index: index}
}

// Records yields each listing not already in the index, in the order found.
// The sequence can only be consumed once.
func (s *PageScan) Records() iter.Seq[models.Listing] {
	return func(yield func(models.Listing) bool) {
		if s.started {
			return
		}
		s.started = true
		s.run(yield)
	}
}

// Err returns the failure that ended the scan early, if any
func (s *PageScan) Err() error { return s.err }

// Observed returns every listing read during the final pass in page order,
// including ones suppressed as duplicates.
func (s *PageScan) Observed() []models.Listing { return s.observed }

// Emitted is the number of new listings yielded
func (s *PageScan) Emitted() int { return s.emitted }

// Skipped is the number of cards that could not be extracted
func (s *PageScan) Skipped() int { return s.skipped }

// Passes is the number of passes made over the page
func (s *PageScan) Passes() int { return s.passes }

func (s *PageScan) run(yield func(models.Listing) bool) {
	for pass := 1; pass <= maxPasses; pass++ {
		s.passes = pass
		s.observed = nil

		if !s.scrollThrough(yield) || s.err != nil {
			return
		}
		if s.emitted >= s.expected || pass == maxPasses {
			return
		}

		s.c.reporter.Report(Event{
			Kind:    KindRetry,
			Page:    s.page,
			Message: fmt.Sprintf("Found %d of %d expected listings, rescanning from the top", s.emitted, s.expected),
		})
		if err := s.c.browser.ScrollToTop(s.ctx); err != nil {
			s.err = err
			return
		}
		if err := sleep(s.ctx, s.c.cfg.RescanSettle); err != nil {
			s.err = err
			return
		}
	}
}

// scrollThrough reads the page once from the current scroll position. It
// returns false when the consumer stopped iterating.
func (s *PageScan) scrollThrough(yield func(models.Listing) bool) bool {
	b := s.c.browser
	lastProcessed := 0

	cards, err := b.QueryAll(s.ctx, s.c.sel.Card)
	if err != nil {
		s.err = fmt.Errorf("failed to query listings: %w", err)
		return true
	}

	for {
		// The page can re-render with fewer cards than last seen
		lastProcessed = min(lastProcessed, len(cards))
		for _, card := range cards[lastProcessed:] {
			listing, err := parser.ExtractCard(card, s.c.sel)
			if err != nil {
				s.skipped++
				log.Debugf("Skipping card on page %d: %v", s.page, err)
				continue
			}
			s.observed = append(s.observed, listing)

			if s.index.Seen(listing.Fingerprint()) {
				continue
			}
			s.index.Record(listing.Fingerprint())
			s.emitted++
			if !yield(listing) {
				return false
			}
		}
		lastProcessed = len(cards)

		if s.nextVisible() {
			return true
		}

		if err := s.ctx.Err(); err != nil {
			s.err = err
			return true
		}
		if err := b.ScrollBy(s.ctx, s.c.cfg.ScrollStep); err != nil {
			s.err = err
			return true
		}
		if err := sleep(s.ctx, s.c.cfg.ScrollSettle); err != nil {
			s.err = err
			return true
		}

		cards, err = b.QueryAll(s.ctx, s.c.sel.Card)
		if err != nil {
			s.err = fmt.Errorf("failed to query listings: %w", err)
			return true
		}
		if len(cards) == lastProcessed {
			return true
		}
	}
}

// nextVisible reports whether the next-page control is on screen, meaning
// every card of the page has been rendered.
func (s *PageScan) nextVisible() bool {
	el, err := s.c.next.Locate(s.ctx, s.c.browser)
	if err != nil {
		log.Debugf("Next page control lookup failed on page %d: %v", s.page, err)
		return false
	}
	if el == nil {
		return false
	}
	visible, err := el.Visible()
	if err != nil {
		log.Debugf("Next page control visibility check failed on page %d: %v", s.page, err)
		return false
	}
	return visible
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
