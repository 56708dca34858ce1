package scraper

import (
	"context"

	"zillow-scraper/browser"

	log "github.com/sirupsen/logrus"
)

// Querier runs CSS queries against a page. browser.Browser and
// *htmldom.Document both satisfy it.
type Querier interface {
	QueryAll(ctx context.Context, selector string) ([]browser.Element, error)
}

// Locator finds a single control on the current page. A nil element with a
// nil error means the control is absent.
type Locator interface {
	Locate(ctx context.Context, q Querier) (browser.Element, error)
}

// SelectorLocator returns the first element matching a CSS selector
type SelectorLocator string

// Locate queries the selector without waiting
func (s SelectorLocator) Locate(ctx context.Context, q Querier) (browser.Element, error) {
	els, err := q.QueryAll(ctx, string(s))
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, nil
	}
	return els[0], nil
}

// FirstMatch tries each strategy in order and returns the first hit. A
// failing strategy does not stop the ones after it.
type FirstMatch []Locator

// Locate returns the first element found; the last strategy error is only
// returned when nothing was found.
func (fm FirstMatch) Locate(ctx context.Context, q Querier) (browser.Element, error) {
	var lastErr error
	for _, l := range fm {
		el, err := l.Locate(ctx, q)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Debugf("Next page lookup failed: %v", err)
			lastErr = err
			continue
		}
		if el != nil {
			return el, nil
		}
	}
	return nil, lastErr
}

// NextPageLocator builds the ordered lookup for the next-page control
func NextPageLocator(selectors []string) FirstMatch {
	fm := make(FirstMatch, 0, len(selectors))
	for _, s := range selectors {
		fm = append(fm, SelectorLocator(s))
	}
	return fm
}

// Disabled reports whether el carries attr="true". An empty attr never
// disables.
func Disabled(el browser.Element, attr string) (bool, error) {
	if attr == "" {
		return false, nil
	}
	v, err := el.Attribute(attr)
	if err != nil {
		return false, err
	}
	return v != nil && *v == "true", nil
}
