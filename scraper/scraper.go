// Package scraper drives a paginated, infinite-scroll search results page
// through a browser and collects every listing exactly once.
package scraper

import "context"

// Scraper defines the contract for scraping implementations
type Scraper interface {
	// Run scrapes the search at url. maxPages limits how many results pages
	// are read; zero or less reads until pagination ends.
	Run(ctx context.Context, url string, maxPages int) (*Result, error)
}

var _ Scraper = (*Driver)(nil)
