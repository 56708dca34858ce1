package fetcher

import (
	"bytes"
	"context"
	"fmt"

	"zillow-scraper/config"
	"zillow-scraper/dedup"
	"zillow-scraper/htmldom"
	"zillow-scraper/models"
	"zillow-scraper/parser"
	"zillow-scraper/scraper"

	"github.com/gocolly/colly/v2"
	log "github.com/sirupsen/logrus"
)

// CollyFetcher implements the Fetcher interface using colly
type CollyFetcher struct {
	collector *colly.Collector
	sel       config.Selectors
	next      scraper.Locator
}

// NewCollyFetcher creates a new CollyFetcher instance
func NewCollyFetcher(cfg *config.Config) *CollyFetcher {
	c := colly.NewCollector(
		colly.UserAgent(cfg.Browser.UserAgent),
		colly.AllowURLRevisit(),
	)

	// One request at a time, spaced by the configured delay
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       cfg.Scraper.FetchDelay,
	}); err != nil {
		log.Printf("Warning: Failed to set rate limit: %v", err)
	}

	return &CollyFetcher{
		collector: c,
		sel:       cfg.Selectors,
		next:      scraper.NextPageLocator(cfg.Selectors.NextPage),
	}
}

// pageResult is what one response yields
type pageResult struct {
	listings []models.Listing
	next     string
	err      error
}

// Fetch implements the Fetcher interface. Pagination stops when there is no
// enabled next link, a link was already visited, or a page ends on the same
// listing as the one before it.
func (cf *CollyFetcher) Fetch(ctx context.Context, url string, maxPages int) ([]models.Listing, error) {
	var current pageResult
	c := cf.collector.Clone()
	c.OnError(func(r *colly.Response, err error) {
		log.Printf("Error fetching %s: %v", r.Request.URL, err)
	})
	c.OnResponse(func(r *colly.Response) {
		doc, err := htmldom.ParseReader(bytes.NewReader(r.Body))
		if err != nil {
			current.err = err
			return
		}
		current.listings = parser.ParseDocument(doc, cf.sel)
		if href := cf.nextHref(ctx, doc); href != "" {
			current.next = r.Request.AbsoluteURL(href)
		}
	})

	index := dedup.New()
	visited := make(map[string]bool)
	var (
		listings []models.Listing
		trailing *models.Fingerprint
	)

	for page := 1; url != ""; page++ {
		if err := ctx.Err(); err != nil {
			log.Printf("Fetch cancelled after %d pages", page-1)
			break
		}
		if visited[url] {
			log.Printf("Skipping duplicate URL: %s", url)
			break
		}
		visited[url] = true

		current = pageResult{}
		if err := c.Visit(url); err != nil {
			if page == 1 {
				return nil, fmt.Errorf("failed to visit URL: %w", err)
			}
			log.Printf("Warning: Failed to fetch page %d: %v", page, err)
			break
		}
		if current.err != nil {
			if page == 1 {
				return nil, current.err
			}
			log.Printf("Warning: Failed to parse page %d: %v", page, current.err)
			break
		}

		decision := scraper.Decide(current.listings, trailing)
		if decision.Action == scraper.Stop {
			log.Printf("Page %d repeats the previous page, stopping", page)
			break
		}
		trailing = decision.Trailing

		fresh := index.Unique(current.listings)
		listings = append(listings, fresh...)
		log.WithFields(log.Fields{"page": page, "url": url}).
			Infof("Fetched %d new listings", len(fresh))

		if maxPages > 0 && page >= maxPages {
			break
		}
		url = current.next
	}

	if len(listings) == 0 {
		log.Println("Warning: No listings found. The site may be rendering results with JavaScript.")
		log.Println("Consider using the scrape command, which drives a headless browser.")
	}
	return listings, nil
}

// nextHref returns the target of the first enabled next-page link
func (cf *CollyFetcher) nextHref(ctx context.Context, doc *htmldom.Document) string {
	el, err := cf.next.Locate(ctx, doc)
	if err != nil || el == nil {
		return ""
	}
	if disabled, _ := scraper.Disabled(el, cf.sel.DisabledAttribute); disabled {
		return ""
	}
	href, _ := el.Attribute("href")
	if href == nil || *href == "" || *href == "#" {
		return ""
	}
	return *href
}
